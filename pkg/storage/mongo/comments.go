package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

// AddComment inserts a new comment.
//
// Validates that the owning article exists and, if ReplyTo is set, that the
// parent comment exists. The parent is looked up by id alone, so a reply may
// reference a comment on another article. The comment id is then appended to
// the article's comment list; the insert and the append are two separate
// writes with no transaction between them.
func (s *Storage) AddComment(ctx context.Context, c storage.Comment) (storage.Comment, error) {
	cnt, err := s.coll(collNews).CountDocuments(ctx, bson.M{"_id": c.News})
	if err != nil {
		return storage.Comment{}, err
	}
	if cnt == 0 {
		return storage.Comment{}, storage.ErrNewsNotFound
	}

	if c.ReplyTo != uuid.Nil {
		cnt, err := s.coll(collComments).CountDocuments(ctx, bson.M{"_id": c.ReplyTo})
		if err != nil {
			return storage.Comment{}, err
		}
		if cnt == 0 {
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

	if _, err := s.coll(collComments).InsertOne(ctx, c); err != nil {
		return storage.Comment{}, err
	}

	_, err = s.coll(collNews).UpdateOne(ctx, bson.M{"_id": c.News},
		bson.M{"$push": bson.M{"comments": c.ID}})
	if err != nil {
		return storage.Comment{}, err
	}

	return c, nil
}

func (s *Storage) Comment(ctx context.Context, id uuid.UUID) (storage.Comment, error) {
	var c storage.Comment
	err := s.coll(collComments).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.Comment{}, storage.ErrCommentNotFound
		}
		return storage.Comment{}, err
	}

	return c, nil
}

// PopulatedComment returns a comment with its author resolved to a summary.
func (s *Storage) PopulatedComment(ctx context.Context, id uuid.UUID) (storage.CommentDetailed, error) {
	c, err := s.Comment(ctx, id)
	if err != nil {
		return storage.CommentDetailed{}, err
	}

	authors, err := s.userSummaries(ctx, []uuid.UUID{c.Author})
	if err != nil {
		return storage.CommentDetailed{}, err
	}

	return storage.CommentDetailed{
		ID:        c.ID,
		Content:   c.Content,
		Author:    authors[c.Author],
		News:      c.News,
		ReplyTo:   c.ReplyTo,
		CreatedAt: c.CreatedAt,
	}, nil
}

// UpdateComment replaces the comment's content and returns the updated
// document.
func (s *Storage) UpdateComment(ctx context.Context, id uuid.UUID, content string) (storage.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c storage.Comment
	err := s.coll(collComments).FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content}}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.Comment{}, storage.ErrCommentNotFound
		}
		return storage.Comment{}, err
	}

	return c, nil
}

// DeleteComment removes the comment and detaches its id from the owning
// article's comment list.
func (s *Storage) DeleteComment(ctx context.Context, id uuid.UUID) error {
	c, err := s.Comment(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.coll(collComments).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}

	_, err = s.coll(collNews).UpdateOne(ctx, bson.M{"_id": c.News},
		bson.M{"$pull": bson.M{"comments": id}})
	return err
}
