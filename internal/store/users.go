// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatherly/gatherly/internal/model"
)

// GetUserByUsername looks up a user by the stored (lowercase) username.
// Returns ErrNotFound if no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := s.db.Collection(CollUsers).
		FindOne(ctx, bson.M{"username": model.NormalizeUsername(username)}).
		Decode(&user)
	if err != nil {
		return model.User{}, mapError(err)
	}
	return user, nil
}

// CreateUser inserts a new user with the given password hash. The username
// is stored lowercase; the unique index makes a concurrent duplicate insert
// fail with ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	user := model.User{
		Username:     model.NormalizeUsername(username),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	res, err := s.db.Collection(CollUsers).InsertOne(ctx, user)
	if err != nil {
		return model.User{}, mapError(err)
	}

	user.ID = objectID(res.InsertedID)
	return user, nil
}

// UpdateUserPassword replaces a user's password hash. Used when a login
// succeeds against a hash produced with outdated argon2id parameters.
func (s *Store) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.Collection(CollUsers).UpdateOne(ctx,
		bson.M{"username": model.NormalizeUsername(username)},
		bson.M{"$set": bson.M{"password_hash": passwordHash}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	cur, err := s.db.Collection(CollUsers).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}
