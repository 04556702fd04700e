package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/makemydestiny/travel-booking/internal/cache"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// Service manages the trip catalog.
type Service struct {
	trips db.TripCollection
	cache cache.Cache
	log   *logrus.Entry
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(trips db.TripCollection, c cache.Cache, log *logrus.Entry) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{trips: trips, cache: c, log: log.WithField("component", "catalog")}
}

// FilterFromQuery reads the listing filter from query parameters.
func FilterFromQuery(q url.Values) (models.TripFilter, error) {
	filter := models.TripFilter{
		State:    strings.TrimSpace(q.Get("state")),
		Category: models.Category(strings.TrimSpace(q.Get("category"))),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.Get("minPrice"), "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(q.Get("maxPrice"), "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, models.Validationf("%s must be a number", name)
	}
	return &v, nil
}

// ListTrips returns active trips matching filter, newest first.
func (s *Service) ListTrips(ctx context.Context, filter models.TripFilter) ([]models.Trip, error) {
	return s.trips.FindTrips(ctx, filter)
}

// GetTrip returns any trip by ID, active or not.
func (s *Service) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.trips.FindTripByID(ctx, id)
}

// CreateTrip validates input and stores a new trip.
func (s *Service) CreateTrip(ctx context.Context, in models.TripInput) (*models.Trip, error) {
	trip, err := buildTrip(in)
	if err != nil {
		return nil, err
	}
	if err := s.trips.InsertTrip(ctx, trip); err != nil {
		return nil, err
	}
	s.invalidateCount(ctx)
	s.log.WithFields(logrus.Fields{"trip_id": trip.ID.Hex(), "destination": trip.Destination}).Info("trip created")
	return trip, nil
}

// UpdateTrip replaces a trip, keeping its ID and creation time. The replacement
// fails with ErrTripSeatsChanged if a booking moved the seat counter meanwhile.
func (s *Service) UpdateTrip(ctx context.Context, id string, in models.TripInput) (*models.Trip, error) {
	existing, err := s.trips.FindTripByID(ctx, id)
	if err != nil {
		return nil, err
	}
	trip, err := buildTrip(in)
	if err != nil {
		return nil, err
	}
	trip.ID = existing.ID
	trip.CreatedAt = existing.CreatedAt

	if err := s.trips.ReplaceTrip(ctx, id, existing.AvailableSeats, *trip); err != nil {
		return nil, err
	}
	s.invalidateCount(ctx)
	s.log.WithField("trip_id", id).Info("trip updated")
	return trip, nil
}

// DeleteTrip removes a trip. Existing bookings keep their frozen amounts.
func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	if err := s.trips.DeleteTrip(ctx, id); err != nil {
		return err
	}
	s.invalidateCount(ctx)
	s.log.WithField("trip_id", id).Info("trip deleted")
	return nil
}

// CountActiveTrips returns the number of active trips, served from cache when possible.
func (s *Service) CountActiveTrips(ctx context.Context) (int64, error) {
	var count int64
	if found, err := s.cache.GetJSON(ctx, cache.KeyActiveTripsCount, &count); err != nil {
		s.log.WithError(err).Warn("active trip count cache read failed")
	} else if found {
		return count, nil
	}

	count, err := s.trips.CountActiveTrips(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetJSON(ctx, cache.KeyActiveTripsCount, count); err != nil {
		s.log.WithError(err).Warn("active trip count cache write failed")
	}
	return count, nil
}

func (s *Service) invalidateCount(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyActiveTripsCount); err != nil {
		s.log.WithError(err).Warn("active trip count cache invalidation failed")
	}
}

// buildTrip validates admin input and applies defaults.
func buildTrip(in models.TripInput) (*models.Trip, error) {
	trip := &models.Trip{
		Destination: strings.TrimSpace(in.Destination),
		State:       strings.TrimSpace(in.State),
		Description: strings.TrimSpace(in.Description),
		Duration:    strings.TrimSpace(in.Duration),
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Image:       strings.TrimSpace(in.Image),
		Highlights:  in.Highlights,
		Category:    in.Category,
		IsActive:    true,
	}

	switch {
	case trip.Destination == "":
		return nil, models.Validationf("Please add a destination")
	case trip.State == "":
		return nil, models.Validationf("Please add a state")
	case trip.Description == "":
		return nil, models.Validationf("Please add a description")
	case in.Price == nil:
		return nil, models.Validationf("Please add a price")
	case trip.Duration == "":
		return nil, models.Validationf("Please add duration")
	case in.AvailableSeats == nil:
		return nil, models.Validationf("Please add available seats")
	case in.TotalSeats == nil:
		return nil, models.Validationf("Please add total seats")
	case in.StartDate.IsZero():
		return nil, models.Validationf("Please add start date")
	case in.EndDate.IsZero():
		return nil, models.Validationf("Please add end date")
	}

	trip.Price = *in.Price
	trip.AvailableSeats = *in.AvailableSeats
	trip.TotalSeats = *in.TotalSeats

	switch {
	case trip.Price < 0:
		return nil, models.Validationf("Price cannot be negative")
	case trip.AvailableSeats < 0 || trip.TotalSeats < 0:
		return nil, models.Validationf("Seats cannot be negative")
	case trip.AvailableSeats > trip.TotalSeats:
		return nil, models.Validationf("Available seats cannot exceed total seats")
	case trip.EndDate.Before(trip.StartDate):
		return nil, models.Validationf("End date cannot be before start date")
	}

	if trip.Category == "" {
		trip.Category = models.CategoryCultural
	} else if !models.IsValidCategory(trip.Category) {
		return nil, models.Validationf("%s is not a valid category", trip.Category)
	}
	if trip.Image == "" {
		trip.Image = models.DefaultTripImage
	}
	if trip.Highlights == nil {
		trip.Highlights = []string{}
	}
	if in.IsActive != nil {
		trip.IsActive = *in.IsActive
	}
	return trip, nil
}
