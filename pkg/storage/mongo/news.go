package mongo

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

// AddNews inserts a new article. If the article's ID or CreatedAt are zero
// values, they are generated here.
func (s *Storage) AddNews(ctx context.Context, n storage.News) (storage.News, error) {
	if n.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return storage.News{}, err
		}
		n.ID = id
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Comments == nil {
		n.Comments = []uuid.UUID{}
	}

	if _, err := s.coll(collNews).InsertOne(ctx, n); err != nil {
		return storage.News{}, err
	}

	return n, nil
}

func newsQuery(filter storage.NewsFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Author != uuid.Nil {
		query["author"] = filter.Author
	}
	if filter.TitleContains != "" {
		query["title"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.TitleContains),
			Options: "i",
		}
	}
	return query
}

// NewsList returns one page of articles matching the filter, sorted by
// creation time descending with authors populated, plus the total match
// count. The count and the page fetch are issued as two concurrent queries.
func (s *Storage) NewsList(ctx context.Context, filter storage.NewsFilter, page, limit int) ([]storage.NewsItem, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	query := newsQuery(filter)
	skip := int64((page - 1) * limit)

	var (
		wg       sync.WaitGroup
		total    int64
		news     []storage.News
		countErr error
		findErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		total, countErr = s.coll(collNews).CountDocuments(ctx, query)
	}()
	go func() {
		defer wg.Done()
		opts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(skip).
			SetLimit(int64(limit))
		cur, err := s.coll(collNews).Find(ctx, query, opts)
		if err != nil {
			findErr = err
			return
		}
		findErr = cur.All(ctx, &news)
	}()
	wg.Wait()

	if countErr != nil {
		return nil, 0, countErr
	}
	if findErr != nil {
		return nil, 0, findErr
	}

	authorIDs := make([]uuid.UUID, 0, len(news))
	for _, n := range news {
		authorIDs = append(authorIDs, n.Author)
	}
	authors, err := s.userSummaries(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	items := make([]storage.NewsItem, 0, len(news))
	for _, n := range news {
		items = append(items, storage.NewsItem{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			Thumbnail: n.Thumbnail,
			Category:  n.Category,
			Author:    authors[n.Author],
			Views:     n.Views,
			CreatedAt: n.CreatedAt,
		})
	}

	return items, int(total), nil
}

// FeaturedNews returns the limit articles with the highest view counts.
// Tie order follows the store's natural order and is not deterministic.
func (s *Storage) FeaturedNews(ctx context.Context, limit int) ([]storage.News, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.coll(collNews).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var news []storage.News
	if err := cur.All(ctx, &news); err != nil {
		return nil, err
	}

	return news, nil
}

func (s *Storage) News(ctx context.Context, id uuid.UUID) (storage.News, error) {
	var n storage.News
	err := s.coll(collNews).FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.News{}, storage.ErrNewsNotFound
		}
		return storage.News{}, err
	}

	return n, nil
}

// NewsDetailed returns an article with its author record populated and its
// top-level comments sorted by creation time descending, each carrying one
// level of replies. Replies of replies are not resolved.
func (s *Storage) NewsDetailed(ctx context.Context, id uuid.UUID) (storage.NewsDetailed, error) {
	n, err := s.News(ctx, id)
	if err != nil {
		return storage.NewsDetailed{}, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.coll(collComments).Find(ctx, bson.M{"news": id, "reply_to": uuid.Nil}, opts)
	if err != nil {
		return storage.NewsDetailed{}, err
	}
	var topLevel []storage.Comment
	if err := cur.All(ctx, &topLevel); err != nil {
		return storage.NewsDetailed{}, err
	}

	var replies []storage.Comment
	if len(topLevel) > 0 {
		parentIDs := make([]uuid.UUID, 0, len(topLevel))
		for _, c := range topLevel {
			parentIDs = append(parentIDs, c.ID)
		}
		ropts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		rcur, err := s.coll(collComments).Find(ctx, bson.M{"reply_to": bson.M{"$in": parentIDs}}, ropts)
		if err != nil {
			return storage.NewsDetailed{}, err
		}
		if err := rcur.All(ctx, &replies); err != nil {
			return storage.NewsDetailed{}, err
		}
	}

	authorIDs := []uuid.UUID{n.Author}
	for _, c := range topLevel {
		authorIDs = append(authorIDs, c.Author)
	}
	for _, c := range replies {
		authorIDs = append(authorIDs, c.Author)
	}
	authors, err := s.userSummaries(ctx, authorIDs)
	if err != nil {
		return storage.NewsDetailed{}, err
	}

	detail := storage.NewsDetailed{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Thumbnail: n.Thumbnail,
		Category:  n.Category,
		Author:    authors[n.Author],
		Views:     n.Views,
		CreatedAt: n.CreatedAt,
		Comments:  []*storage.CommentDetailed{},
	}

	// The detail page exposes the author's email, unlike list summaries.
	var author storage.User
	err = s.coll(collUsers).FindOne(ctx, bson.M{"_id": n.Author}).Decode(&author)
	if err == nil {
		detail.Author.Email = author.Email
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return storage.NewsDetailed{}, err
	}

	byParent := make(map[uuid.UUID][]*storage.CommentDetailed)
	for _, r := range replies {
		byParent[r.ReplyTo] = append(byParent[r.ReplyTo], &storage.CommentDetailed{
			ID:        r.ID,
			Content:   r.Content,
			Author:    authors[r.Author],
			News:      r.News,
			ReplyTo:   r.ReplyTo,
			CreatedAt: r.CreatedAt,
		})
	}

	for _, c := range topLevel {
		detail.Comments = append(detail.Comments, &storage.CommentDetailed{
			ID:        c.ID,
			Content:   c.Content,
			Author:    authors[c.Author],
			News:      c.News,
			CreatedAt: c.CreatedAt,
			Replies:   byParent[c.ID],
		})
	}

	return detail, nil
}

// UpdateNews applies the allow-listed field updates and returns the updated
// document.
func (s *Storage) UpdateNews(ctx context.Context, id uuid.UUID, upd storage.NewsUpdate) (storage.News, error) {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if len(set) == 0 {
		return s.News(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n storage.News
	err := s.coll(collNews).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.News{}, storage.ErrNewsNotFound
		}
		return storage.News{}, err
	}

	return n, nil
}

// IncreaseViews atomically increments the article's view counter by one and
// returns the new count.
func (s *Storage) IncreaseViews(ctx context.Context, id uuid.UUID) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n storage.News
	err := s.coll(collNews).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, storage.ErrNewsNotFound
		}
		return 0, err
	}

	return n.Views, nil
}

// DeleteNews removes the article and cascades to every comment attached to it.
func (s *Storage) DeleteNews(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll(collNews).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNewsNotFound
	}

	if _, err := s.coll(collComments).DeleteMany(ctx, bson.M{"news": id}); err != nil {
		return err
	}

	return nil
}

// Categories returns the distinct set of category values in use.
func (s *Storage) Categories(ctx context.Context) ([]string, error) {
	values, err := s.coll(collNews).Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			categories = append(categories, c)
		}
	}

	return categories, nil
}
