package mongo

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

func (s *Storage) AddUser(ctx context.Context, u storage.User) (storage.User, error) {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return storage.User{}, err
		}
		u.ID = id
	}

	if _, err := s.coll(collUsers).InsertOne(ctx, u); err != nil {
		return storage.User{}, err
	}

	return u, nil
}

func (s *Storage) User(ctx context.Context, id uuid.UUID) (storage.User, error) {
	var u storage.User
	err := s.coll(collUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.User{}, storage.ErrUserNotFound
		}
		return storage.User{}, err
	}

	return u, nil
}

// UpdateUser applies the allow-listed profile updates. A new password is
// bcrypt-hashed before it is stored.
func (s *Storage) UpdateUser(ctx context.Context, id uuid.UUID, upd storage.UserUpdate) (storage.User, error) {
	set := bson.M{}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return storage.User{}, err
		}
		set["password"] = string(hash)
	}
	if len(set) == 0 {
		return s.User(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u storage.User
	err := s.coll(collUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.User{}, storage.ErrUserNotFound
		}
		return storage.User{}, err
	}

	return u, nil
}
