package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/makemydestiny/travel-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
	DeleteAllUsers(ctx context.Context) error
}

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// normalizeEmail lowercases and trims an address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InsertUser inserts a new user. A duplicate email yields ErrEmailTaken.
func (c *MongoUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := c.Collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id, models.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": oid})
}

// FindUserByEmail finds a user by their email
func (c *MongoUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// FindUserByVerificationToken finds the user a verification link was issued to.
func (c *MongoUserCollection) FindUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUserNotFound
	}
	return c.findOne(ctx, bson.M{"verification_token": token})
}

func (c *MongoUserCollection) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := c.Collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err, models.ErrUserNotFound, "find user")
	}
	return &user, nil
}

// FindUsersByIDs loads the users referenced by a page of bookings.
func (c *MongoUserCollection) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// MarkVerified flags the user verified and consumes the verification token.
func (c *MongoUserCollection) MarkVerified(ctx context.Context, id string) error {
	oid, err := objectID(id, models.ErrUserNotFound)
	if err != nil {
		return err
	}
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$set":   bson.M{"is_verified": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"verification_token": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time for a user
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	oid, err := objectID(id, models.ErrUserNotFound)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}

// DeleteAllUsers removes every user.
func (c *MongoUserCollection) DeleteAllUsers(ctx context.Context) error {
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
