// Package memdb provides an in-memory Storage implementation used in
// development mode and in API tests.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

type Store struct {
	mu       sync.Mutex
	news     map[uuid.UUID]storage.News
	comments map[uuid.UUID]storage.Comment
	users    map[uuid.UUID]storage.User
}

func New() *Store {
	return &Store{
		news:     make(map[uuid.UUID]storage.News),
		comments: make(map[uuid.UUID]storage.Comment),
		users:    make(map[uuid.UUID]storage.User),
	}
}

func (db *Store) AddNews(ctx context.Context, n storage.News) (storage.News, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

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
	db.news[n.ID] = n

	return n, nil
}

func (db *Store) NewsList(ctx context.Context, filter storage.NewsFilter, page, limit int) ([]storage.NewsItem, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var matched []storage.News
	for _, n := range db.news {
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		if filter.Author != uuid.Nil && n.Author != filter.Author {
			continue
		}
		if filter.TitleContains != "" &&
			!strings.Contains(strings.ToLower(n.Title), strings.ToLower(filter.TitleContains)) {
			continue
		}
		matched = append(matched, n)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []storage.NewsItem{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]storage.NewsItem, 0, end-start)
	for _, n := range matched[start:end] {
		items = append(items, db.newsItem(n))
	}

	return items, total, nil
}

func (db *Store) FeaturedNews(ctx context.Context, limit int) ([]storage.News, error) {
	db.mu.Lock()
	all := make([]storage.News, 0, len(db.news))
	for _, n := range db.news {
		all = append(all, n)
	}
	db.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].Views > all[j].Views
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

func (db *Store) News(ctx context.Context, id uuid.UUID) (storage.News, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.news[id]
	if !ok {
		return storage.News{}, storage.ErrNewsNotFound
	}

	return n, nil
}

func (db *Store) NewsDetailed(ctx context.Context, id uuid.UUID) (storage.NewsDetailed, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.news[id]
	if !ok {
		return storage.NewsDetailed{}, storage.ErrNewsNotFound
	}

	detail := storage.NewsDetailed{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Thumbnail: n.Thumbnail,
		Category:  n.Category,
		Author:    db.userSummary(n.Author),
		Views:     n.Views,
		CreatedAt: n.CreatedAt,
		Comments:  []*storage.CommentDetailed{},
	}
	detail.Author.Email = db.users[n.Author].Email

	var topLevel []storage.Comment
	for _, c := range db.comments {
		if c.News == id && c.ReplyTo == uuid.Nil {
			topLevel = append(topLevel, c)
		}
	}
	sort.Slice(topLevel, func(i, j int) bool {
		return topLevel[i].CreatedAt.After(topLevel[j].CreatedAt)
	})

	for _, c := range topLevel {
		dc := db.detailComment(c)
		for _, r := range db.comments {
			if r.ReplyTo == c.ID {
				reply := db.detailComment(r)
				dc.Replies = append(dc.Replies, &reply)
			}
		}
		sort.Slice(dc.Replies, func(i, j int) bool {
			return dc.Replies[i].CreatedAt.Before(dc.Replies[j].CreatedAt)
		})
		detail.Comments = append(detail.Comments, &dc)
	}

	return detail, nil
}

func (db *Store) UpdateNews(ctx context.Context, id uuid.UUID, upd storage.NewsUpdate) (storage.News, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.news[id]
	if !ok {
		return storage.News{}, storage.ErrNewsNotFound
	}

	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.Thumbnail != nil {
		n.Thumbnail = *upd.Thumbnail
	}
	if upd.Category != nil {
		n.Category = *upd.Category
	}
	db.news[id] = n

	return n, nil
}

func (db *Store) IncreaseViews(ctx context.Context, id uuid.UUID) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.news[id]
	if !ok {
		return 0, storage.ErrNewsNotFound
	}
	n.Views++
	db.news[id] = n

	return n.Views, nil
}

// DeleteNews removes the article and cascades to every comment attached to it.
func (db *Store) DeleteNews(ctx context.Context, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.news[id]; !ok {
		return storage.ErrNewsNotFound
	}
	delete(db.news, id)

	for cid, c := range db.comments {
		if c.News == id {
			delete(db.comments, cid)
		}
	}

	return nil
}

func (db *Store) Categories(ctx context.Context) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[string]struct{})
	var categories []string
	for _, n := range db.news {
		if _, ok := seen[n.Category]; !ok {
			seen[n.Category] = struct{}{}
			categories = append(categories, n.Category)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

func (db *Store) AddComment(ctx context.Context, c storage.Comment) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n, ok := db.news[c.News]
	if !ok {
		return storage.Comment{}, storage.ErrNewsNotFound
	}

	if c.ReplyTo != uuid.Nil {
		if _, ok := db.comments[c.ReplyTo]; !ok {
			return storage.Comment{}, storage.ErrParentCommentNotFound
		}
	}

	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return storage.Comment{}, err
		}
		c.ID = id
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	db.comments[c.ID] = c
	n.Comments = append(n.Comments, c.ID)
	db.news[c.News] = n

	return c, nil
}

func (db *Store) Comment(ctx context.Context, id uuid.UUID) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.Comment{}, storage.ErrCommentNotFound
	}

	return c, nil
}

func (db *Store) PopulatedComment(ctx context.Context, id uuid.UUID) (storage.CommentDetailed, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.CommentDetailed{}, storage.ErrCommentNotFound
	}

	return db.detailComment(c), nil
}

func (db *Store) UpdateComment(ctx context.Context, id uuid.UUID, content string) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.Comment{}, storage.ErrCommentNotFound
	}
	c.Content = content
	db.comments[id] = c

	return c, nil
}

// DeleteComment removes the comment and detaches its id from the owning
// article's comment list.
func (db *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.ErrCommentNotFound
	}
	delete(db.comments, id)

	if n, ok := db.news[c.News]; ok {
		filtered := n.Comments[:0]
		for _, cid := range n.Comments {
			if cid != id {
				filtered = append(filtered, cid)
			}
		}
		n.Comments = filtered
		db.news[c.News] = n
	}

	return nil
}

func (db *Store) AddUser(ctx context.Context, u storage.User) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return storage.User{}, err
		}
		u.ID = id
	}
	db.users[u.ID] = u

	return u, nil
}

func (db *Store) User(ctx context.Context, id uuid.UUID) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (db *Store) UpdateUser(ctx context.Context, id uuid.UUID, upd storage.UserUpdate) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotFound
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return storage.User{}, err
		}
		u.Password = string(hash)
	}
	db.users[id] = u

	return u, nil
}

// callers must hold db.mu
func (db *Store) newsItem(n storage.News) storage.NewsItem {
	return storage.NewsItem{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Thumbnail: n.Thumbnail,
		Category:  n.Category,
		Author:    db.userSummary(n.Author),
		Views:     n.Views,
		CreatedAt: n.CreatedAt,
	}
}

// callers must hold db.mu
func (db *Store) detailComment(c storage.Comment) storage.CommentDetailed {
	return storage.CommentDetailed{
		ID:        c.ID,
		Content:   c.Content,
		Author:    db.userSummary(c.Author),
		News:      c.News,
		ReplyTo:   c.ReplyTo,
		CreatedAt: c.CreatedAt,
	}
}

// callers must hold db.mu
func (db *Store) userSummary(id uuid.UUID) storage.UserSummary {
	if u, ok := db.users[id]; ok {
		return u.Summary()
	}
	return storage.UserSummary{ID: id}
}
