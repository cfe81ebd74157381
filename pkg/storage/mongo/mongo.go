// Package mongo implements storage.Storage on top of a MongoDB instance
// with three collections: news, comments and users.
package mongo

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

const (
	collNews     = "news"
	collComments = "comments"
	collUsers    = "users"
)

type Storage struct {
	client *mongo.Client
	dbName string
}

func New(ctx context.Context, conf *Config) (*Storage, error) {
	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, err
	}

	s := Storage{client: client, dbName: conf.DBName}
	for _, name := range []string{collNews, collComments, collUsers} {
		if err := s.createCollection(ctx, name); err != nil {
			return nil, err
		}
	}

	return &s, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Close(ctx context.Context) {
	s.client.Disconnect(ctx)
}

func (s *Storage) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// userSummaries resolves the given user ids into summaries in one query.
// Unknown ids map to a bare summary carrying only the id, so dangling
// author references do not fail a detail fetch.
func (s *Storage) userSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]storage.UserSummary, error) {
	summaries := make(map[uuid.UUID]storage.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	cur, err := s.coll(collUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []storage.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}

	for _, id := range ids {
		summaries[id] = storage.UserSummary{ID: id}
	}
	for _, u := range users {
		summaries[u.ID] = u.Summary()
	}

	return summaries, nil
}

// createCollection creates a collection with the given name in the database if it doesn't already exist.
func (s *Storage) createCollection(ctx context.Context, collName string) error {
	collExists, err := collectionExists(ctx, s.client.Database(s.dbName), collName)
	if err != nil {
		return err
	}

	if !collExists {
		err := s.client.Database(s.dbName).CreateCollection(ctx, collName)
		if err != nil {
			return err
		}
	}

	return nil
}

// collectionExists checks if a collection with the given name exists in the database.
func collectionExists(ctx context.Context, db *mongo.Database, collName string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return false, fmt.Errorf("failed to list collection names: %w", err)
	}

	for _, name := range names {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}
