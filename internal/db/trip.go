package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/makemydestiny/travel-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a trip and sets its ID and creation time.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip *models.Trip) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	trip.ID = primitive.NewObjectID()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}
	if _, err := c.Collection.InsertOne(ctx, trip); err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// InsertTrips bulk inserts trips, used by the seeder.
func (c *MongoTripCollection) InsertTrips(ctx context.Context, trips []models.Trip) error {
	if len(trips) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(trips))
	for i := range trips {
		if trips[i].ID.IsZero() {
			trips[i].ID = primitive.NewObjectID()
		}
		if trips[i].CreatedAt.IsZero() {
			trips[i].CreatedAt = time.Now().UTC()
		}
		docs = append(docs, trips[i])
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

// FindTrips returns active trips matching filter, newest first.
func (c *MongoTripCollection) FindTrips(ctx context.Context, filter models.TripFilter) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.Collection.Find(ctx, tripQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find trips: %w", err)
	}
	defer cursor.Close(ctx)

	trips := []models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("decode trips: %w", err)
	}
	return trips, nil
}

// tripQuery builds the listing filter. Search text is matched literally.
func tripQuery(f models.TripFilter) bson.M {
	query := bson.M{"isActive": true}
	if f.State != "" {
		query["state"] = f.State
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"destination": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// FindTripByID finds a trip by its ID.
func (c *MongoTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return nil, err
	}
	var trip models.Trip
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&trip); err != nil {
		return nil, translate(err, models.ErrTripNotFound, "find trip")
	}
	return &trip, nil
}

// FindTripsByIDs loads the trips referenced by a page of bookings.
func (c *MongoTripCollection) FindTripsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find trips by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("decode trips: %w", err)
	}
	return trips, nil
}

// ReplaceTrip replaces a trip while its seat counter is unchanged since it was read.
func (c *MongoTripCollection) ReplaceTrip(ctx context.Context, id string, expectedAvailable int, trip models.Trip) error {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return err
	}
	trip.ID = oid
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": oid, "availableSeats": expectedAvailable}, trip)
	if err != nil {
		return fmt.Errorf("replace trip: %w", err)
	}
	if result.MatchedCount == 0 {
		n, err := c.Collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("count trip: %w", err)
		}
		if n == 0 {
			return models.ErrTripNotFound
		}
		return models.ErrTripSeatsChanged
	}
	return nil
}

// DeleteTrip deletes a trip by its ID.
func (c *MongoTripCollection) DeleteTrip(ctx context.Context, id string) error {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return err
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrTripNotFound
	}
	return nil
}

// CountActiveTrips counts trips visible in the public listing.
func (c *MongoTripCollection) CountActiveTrips(ctx context.Context) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"isActive": true})
}

// DeleteAllTrips removes every trip.
func (c *MongoTripCollection) DeleteAllTrips(ctx context.Context) error {
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
