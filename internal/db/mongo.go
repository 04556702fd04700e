package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makemydestiny/travel-booking/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	tripsCollection    = "trips"
	bookingsCollection = "bookings"
	usersCollection    = "users"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, cfg config.StorageConfig) (*mongo.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store bundles the collections the application works with.
type Store struct {
	Trips    TripCollection
	Bookings BookingLedger
	Users    UserCollection
	// Ping reports storage health.
	Ping func(ctx context.Context) error
	// Close releases the underlying connection.
	Close func(ctx context.Context) error
}

// NewMongoStore wires the Mongo collections of database dbName.
func NewMongoStore(client *mongo.Client, dbName string) *Store {
	database := client.Database(dbName)
	trips := database.Collection(tripsCollection)
	bookings := database.Collection(bookingsCollection)
	return &Store{
		Trips:    &MongoTripCollection{Collection: trips},
		Bookings: &MongoBookingLedger{Client: client, Bookings: bookings, Trips: trips},
		Users:    &MongoUserCollection{Collection: database.Collection(usersCollection)},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		Close: client.Disconnect,
	}
}

// Open returns the store selected by cfg.Driver. Mongo stores get their indexes created.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := EnsureIndexes(ctx, client, cfg.Database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return NewMongoStore(client, cfg.Database), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	database := client.Database(dbName)
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		tripsCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		bookingsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "bookingDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id; malformed ids resolve to notFound since no document can match them.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// translate maps a missing document to notFound and wraps anything else.
func translate(err error, notFound error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
