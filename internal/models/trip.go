package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies a trip for browsing.
type Category string

const (
	CategoryAdventure   Category = "Adventure"
	CategoryReligious   Category = "Religious"
	CategoryWildlife    Category = "Wildlife"
	CategoryHeritage    Category = "Heritage"
	CategoryBeach       Category = "Beach"
	CategoryHillStation Category = "Hill Station"
	CategoryCultural    Category = "Cultural"
)

// DefaultTripImage is stored when an administrator does not upload one.
const DefaultTripImage = "default-trip.jpg"

// IsValidCategory reports whether c is one of the known trip categories.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryAdventure, CategoryReligious, CategoryWildlife, CategoryHeritage,
		CategoryBeach, CategoryHillStation, CategoryCultural:
		return true
	default:
		return false
	}
}

// Trip represents a sellable travel package with a per-seat price and a seat capacity.
type Trip struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Destination    string             `json:"destination" bson:"destination"`
	State          string             `json:"state" bson:"state"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price"` // per seat
	Duration       string             `json:"duration" bson:"duration"`
	AvailableSeats int                `json:"availableSeats" bson:"availableSeats"`
	TotalSeats     int                `json:"totalSeats" bson:"totalSeats"`
	StartDate      time.Time          `json:"startDate" bson:"startDate"`
	EndDate        time.Time          `json:"endDate" bson:"endDate"`
	Image          string             `json:"image" bson:"image"`
	Highlights     []string           `json:"highlights" bson:"highlights"`
	Category       Category           `json:"category" bson:"category"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// TripInput is the admin payload for creating or replacing a trip.
// IsActive is a pointer so an omitted flag defaults to active.
type TripInput struct {
	Destination    string    `json:"destination"`
	State          string    `json:"state"`
	Description    string    `json:"description"`
	Price          *float64  `json:"price"`
	Duration       string    `json:"duration"`
	AvailableSeats *int      `json:"availableSeats"`
	TotalSeats     *int      `json:"totalSeats"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Image          string    `json:"image"`
	Highlights     []string  `json:"highlights"`
	Category       Category  `json:"category"`
	IsActive       *bool     `json:"isActive"`
}

// TripFilter narrows the public trip listing. Zero values mean "no constraint".
type TripFilter struct {
	State    string
	Category Category
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// TripSummary is the slice of a trip embedded in booking responses.
type TripSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Destination string             `json:"destination"`
	State       string             `json:"state"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
	Price       float64            `json:"price"`
	Duration    string             `json:"duration"`
}

// Summary returns the booking-facing view of the trip.
func (t *Trip) Summary() *TripSummary {
	return &TripSummary{
		ID:          t.ID,
		Destination: t.Destination,
		State:       t.State,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Price:       t.Price,
		Duration:    t.Duration,
	}
}
