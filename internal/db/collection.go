package db

import (
	"context"

	"github.com/makemydestiny/travel-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripCollection defines the interface for trip catalog operations.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip *models.Trip) error
	InsertTrips(ctx context.Context, trips []models.Trip) error
	FindTrips(ctx context.Context, filter models.TripFilter) ([]models.Trip, error)
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	FindTripsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Trip, error)
	// ReplaceTrip overwrites a trip only while its availableSeats still equals
	// expectedAvailable, so an edit cannot clobber a concurrent reservation.
	ReplaceTrip(ctx context.Context, id string, expectedAvailable int, trip models.Trip) error
	DeleteTrip(ctx context.Context, id string) error
	CountActiveTrips(ctx context.Context) (int64, error)
	DeleteAllTrips(ctx context.Context) error
}

// BookingLedger defines the booking operations. Every method that touches a
// trip's seat counter does so atomically together with the booking write.
type BookingLedger interface {
	// CreateBooking reserves booking.SeatsBooked seats on booking.TripID and inserts
	// the booking in one transaction. TotalAmount is priced from the reserved trip.
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Trip, error)
	// CancelBooking marks a non-cancelled booking cancelled and refunded and returns
	// its seats to the trip in one transaction. seatsRestored is false when the trip
	// no longer exists.
	CancelBooking(ctx context.Context, id string) (booking *models.Booking, seatsRestored bool, err error)
	UpdateTravellers(ctx context.Context, id string, travellers []models.Traveller) (*models.Booking, error)
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	// FindBookings lists bookings newest first; an empty userID lists everyone's.
	FindBookings(ctx context.Context, userID string) ([]models.Booking, error)
	BookingStats(ctx context.Context) (*models.BookingStats, error)
	DeleteAllBookings(ctx context.Context) error
}
