package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// PaymentStatus tracks the simulated payment attached to a booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Traveller is one person travelling on a booking.
type Traveller struct {
	Name   string `json:"name" bson:"name"`
	Age    int    `json:"age" bson:"age"`
	Gender string `json:"gender" bson:"gender"`
}

// Booking is a reservation of seats on a trip. TotalAmount is frozen at creation.
type Booking struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"user"`
	TripID           primitive.ObjectID `json:"tripId" bson:"trip"`
	SeatsBooked      int                `json:"seatsBooked" bson:"seatsBooked"`
	TotalAmount      float64            `json:"totalAmount" bson:"totalAmount"`
	Status           BookingStatus      `json:"status" bson:"status"`
	PaymentStatus    PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	BookingDate      time.Time          `json:"bookingDate" bson:"bookingDate"`
	TravellerDetails []Traveller        `json:"travellerDetails" bson:"travellerDetails"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BookingTotal is the amount charged for seats at the given per-seat price.
func BookingTotal(price float64, seats int) float64 {
	return price * float64(seats)
}

// IsOwnedBy reports whether userID made the booking.
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.UserID.Hex() == userID
}

// CreateBookingRequest is the customer payload for POST /api/bookings.
type CreateBookingRequest struct {
	TripID           string      `json:"tripId"`
	SeatsBooked      int         `json:"seatsBooked"`
	TravellerDetails []Traveller `json:"travellerDetails"`
}

// BookingPatch lists the fields a customer may change on an existing booking.
type BookingPatch struct {
	TravellerDetails []Traveller `json:"travellerDetails"`
}

// BookingView is a booking enriched with trip and user summaries for display.
type BookingView struct {
	Booking
	Trip *TripSummary `json:"trip,omitempty"`
	User *UserSummary `json:"user,omitempty"`
}

// MonthlyBookings aggregates bookings made in one calendar month across all years.
type MonthlyBookings struct {
	Month   int     `json:"month" bson:"_id"`
	Count   int64   `json:"count" bson:"count"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

// BookingStats is the admin summary report.
type BookingStats struct {
	TotalBookings     int64             `json:"totalBookings"`
	ActiveBookings    int64             `json:"activeBookings"`
	CancelledBookings int64             `json:"cancelledBookings"`
	TotalRevenue      float64           `json:"totalRevenue"`
	MonthlyBookings   []MonthlyBookings `json:"monthlyBookings"`
}

// BookingEvent is published on the booking feed after a committed change.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"bookingId"`
	TripID      string    `json:"tripId"`
	UserID      string    `json:"userId"`
	Seats       int       `json:"seats"`
	TotalAmount float64   `json:"totalAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}
