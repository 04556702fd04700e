package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makemydestiny/travel-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingLedger implements BookingLedger for MongoDB. Seat changes and
// booking writes share a multi-document transaction, which requires a replica set.
type MongoBookingLedger struct {
	Client   *mongo.Client
	Bookings *mongo.Collection
	Trips    *mongo.Collection
}

func (l *MongoBookingLedger) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := l.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateBooking reserves seats and inserts the booking atomically.
func (l *MongoBookingLedger) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Trip, error) {
	if booking.SeatsBooked < 1 {
		return nil, models.Validationf("seatsBooked must be at least 1")
	}
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}

	var reserved models.Trip
	err := l.inTransaction(ctx, func(sc mongo.SessionContext) error {
		err := l.Trips.FindOneAndUpdate(sc,
			bson.M{"_id": booking.TripID, "availableSeats": bson.M{"$gte": booking.SeatsBooked}},
			bson.M{"$inc": bson.M{"availableSeats": -booking.SeatsBooked}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&reserved)
		if errors.Is(err, mongo.ErrNoDocuments) {
			n, err := l.Trips.CountDocuments(sc, bson.M{"_id": booking.TripID})
			if err != nil {
				return fmt.Errorf("count trip: %w", err)
			}
			if n == 0 {
				return models.ErrTripNotFound
			}
			return models.ErrNotEnoughSeats
		}
		if err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}

		booking.TotalAmount = models.BookingTotal(reserved.Price, booking.SeatsBooked)
		if _, err := l.Bookings.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reserved, nil
}

// CancelBooking cancels a booking and restores its seats atomically.
func (l *MongoBookingLedger) CancelBooking(ctx context.Context, id string) (*models.Booking, bool, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, false, err
	}

	var (
		cancelled models.Booking
		restored  bool
	)
	err = l.inTransaction(ctx, func(sc mongo.SessionContext) error {
		err := l.Bookings.FindOneAndUpdate(sc,
			bson.M{"_id": oid, "status": bson.M{"$ne": models.StatusCancelled}},
			bson.M{"$set": bson.M{
				"status":        models.StatusCancelled,
				"paymentStatus": models.PaymentRefunded,
				"updatedAt":     time.Now().UTC(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&cancelled)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return l.missingOr(sc, oid, models.ErrBookingCancelled)
		}
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		result, err := l.Trips.UpdateOne(sc,
			bson.M{"_id": cancelled.TripID},
			bson.M{"$inc": bson.M{"availableSeats": cancelled.SeatsBooked}},
		)
		if err != nil {
			return fmt.Errorf("restore seats: %w", err)
		}
		restored = result.MatchedCount > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &cancelled, restored, nil
}

// UpdateTravellers replaces the traveller list of a booking that is not cancelled.
func (l *MongoBookingLedger) UpdateTravellers(ctx context.Context, id string, travellers []models.Traveller) (*models.Booking, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	if travellers == nil {
		travellers = []models.Traveller{}
	}
	var updated models.Booking
	err = l.Bookings.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": bson.M{"$ne": models.StatusCancelled}},
		bson.M{"$set": bson.M{"travellerDetails": travellers, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, l.missingOr(ctx, oid, models.ErrCancelledNotEditable)
	}
	if err != nil {
		return nil, fmt.Errorf("update travellers: %w", err)
	}
	return &updated, nil
}

// missingOr tells a missing booking apart from one excluded by a status guard.
func (l *MongoBookingLedger) missingOr(ctx context.Context, oid primitive.ObjectID, guardErr error) error {
	n, err := l.Bookings.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count booking: %w", err)
	}
	if n == 0 {
		return models.ErrBookingNotFound
	}
	return guardErr
}

// FindBookingByID finds a booking by its ID.
func (l *MongoBookingLedger) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := l.Bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking); err != nil {
		return nil, translate(err, models.ErrBookingNotFound, "find booking")
	}
	return &booking, nil
}

// FindBookings lists bookings newest first, optionally for one user.
func (l *MongoBookingLedger) FindBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	filter := bson.M{}
	if userID != "" {
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return []models.Booking{}, nil
		}
		filter["user"] = oid
	}
	opts := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: -1}})
	cursor, err := l.Bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// BookingStats computes the admin report with server-side counts and aggregations.
func (l *MongoBookingLedger) BookingStats(ctx context.Context) (*models.BookingStats, error) {
	stats := &models.BookingStats{MonthlyBookings: []models.MonthlyBookings{}}
	var err error

	if stats.TotalBookings, err = l.Bookings.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.ActiveBookings, err = l.Bookings.CountDocuments(ctx, bson.M{"status": models.StatusBooked}); err != nil {
		return nil, fmt.Errorf("count active bookings: %w", err)
	}
	if stats.CancelledBookings, err = l.Bookings.CountDocuments(ctx, bson.M{"status": models.StatusCancelled}); err != nil {
		return nil, fmt.Errorf("count cancelled bookings: %w", err)
	}

	revenue, err := l.Bookings.Aggregate(ctx, revenuePipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}
	var totals []struct {
		Total float64 `bson:"total"`
	}
	if err := revenue.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("decode revenue: %w", err)
	}
	if len(totals) > 0 {
		stats.TotalRevenue = totals[0].Total
	}

	monthly, err := l.Bookings.Aggregate(ctx, monthlyPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly bookings: %w", err)
	}
	if err := monthly.All(ctx, &stats.MonthlyBookings); err != nil {
		return nil, fmt.Errorf("decode monthly bookings: %w", err)
	}
	return stats, nil
}

func revenuePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: models.StatusBooked}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}
}

// monthlyPipeline groups by calendar month only, so the same month of different years merges.
func monthlyPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$bookingDate"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// DeleteAllBookings removes every booking.
func (l *MongoBookingLedger) DeleteAllBookings(ctx context.Context) error {
	_, err := l.Bookings.DeleteMany(ctx, bson.M{})
	return err
}
