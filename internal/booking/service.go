package booking

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/makemydestiny/travel-booking/internal/cache"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/events"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/makemydestiny/travel-booking/internal/tickets"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service owns the booking lifecycle: every change to a trip's seat counter goes through it.
type Service struct {
	bookings  db.BookingLedger
	trips     db.TripCollection
	users     db.UserCollection
	cache     cache.Cache
	publisher events.Publisher
	log       *logrus.Entry
	now       func() time.Time
}

// NewService creates a booking service. Nil cache or publisher disable those side effects.
func NewService(store *db.Store, c cache.Cache, publisher events.Publisher, log *logrus.Entry) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		bookings:  store.Bookings,
		trips:     store.Trips,
		users:     store.Users,
		cache:     c,
		publisher: publisher,
		log:       log.WithField("component", "booking"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DecodePatch parses an update body. Only travellerDetails may be changed.
func DecodePatch(body []byte) (models.BookingPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.BookingPatch{}, models.Validationf("Invalid request body")
	}

	var rejected []string
	for name := range fields {
		if name != "travellerDetails" {
			rejected = append(rejected, name)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return models.BookingPatch{}, models.Validationf("Only travellerDetails can be updated, got %s", strings.Join(rejected, ", "))
	}

	raw, ok := fields["travellerDetails"]
	if !ok {
		return models.BookingPatch{}, models.Validationf("Please provide travellerDetails")
	}
	var patch models.BookingPatch
	if err := json.Unmarshal(raw, &patch.TravellerDetails); err != nil {
		return models.BookingPatch{}, models.Validationf("travellerDetails must be a list of {name, age, gender}")
	}
	if patch.TravellerDetails == nil {
		patch.TravellerDetails = []models.Traveller{}
	}
	return patch, nil
}

// CreateBooking reserves seats on a trip for the requesting user.
func (s *Service) CreateBooking(ctx context.Context, requester *models.Claims, req models.CreateBookingRequest) (*models.BookingView, error) {
	if strings.TrimSpace(req.TripID) == "" {
		return nil, models.Validationf("Please provide a trip")
	}
	if req.SeatsBooked < 1 {
		return nil, models.Validationf("Please specify number of seats")
	}
	tripID, err := primitive.ObjectIDFromHex(req.TripID)
	if err != nil {
		return nil, models.ErrTripNotFound
	}
	userID, err := primitive.ObjectIDFromHex(requester.UserID)
	if err != nil {
		return nil, models.ErrNotAuthorized
	}

	travellers := req.TravellerDetails
	if travellers == nil {
		travellers = []models.Traveller{}
	}
	now := s.now()
	booking := &models.Booking{
		UserID:           userID,
		TripID:           tripID,
		SeatsBooked:      req.SeatsBooked,
		Status:           models.StatusBooked,
		PaymentStatus:    models.PaymentCompleted,
		BookingDate:      now,
		TravellerDetails: travellers,
		UpdatedAt:        now,
	}

	trip, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":      booking.ID.Hex(),
		"trip_id":         req.TripID,
		"seats":           booking.SeatsBooked,
		"seats_remaining": trip.AvailableSeats,
	}).Info("booking created")
	s.afterCommit(ctx, events.BookingCreated, booking)

	view := &models.BookingView{Booking: *booking, Trip: trip.Summary()}
	if user, err := s.users.FindUserByID(ctx, requester.UserID); err == nil {
		view.User = user.Summary()
	} else {
		s.log.WithError(err).WithField("user_id", requester.UserID).Warn("booking user lookup failed")
	}
	return view, nil
}

// CancelBooking cancels a booking and returns its seats to the trip.
func (s *Service) CancelBooking(ctx context.Context, requester *models.Claims, id string) (*models.Booking, error) {
	existing, err := s.authorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.StatusCancelled {
		return nil, models.ErrBookingCancelled
	}

	cancelled, restored, err := s.bookings.CancelBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := s.log.WithFields(logrus.Fields{
		"booking_id": id,
		"trip_id":    cancelled.TripID.Hex(),
		"seats":      cancelled.SeatsBooked,
	})
	if restored {
		entry.Info("booking cancelled")
	} else {
		entry.Warn("booking cancelled but trip no longer exists, seats not restored")
	}
	s.afterCommit(ctx, events.BookingCancelled, cancelled)
	return cancelled, nil
}

// UpdateBooking replaces the traveller details of a booking that is not cancelled.
func (s *Service) UpdateBooking(ctx context.Context, requester *models.Claims, id string, patch models.BookingPatch) (*models.BookingView, error) {
	existing, err := s.authorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.StatusCancelled {
		return nil, models.ErrCancelledNotEditable
	}

	updated, err := s.bookings.UpdateTravellers(ctx, id, patch.TravellerDetails)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"booking_id": id, "travellers": len(updated.TravellerDetails)}).Info("booking updated")
	s.publish(ctx, events.BookingUpdated, updated)

	views, err := s.enrich(ctx, []models.Booking{*updated}, false)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetBooking returns a booking the requester owns, or any booking for an admin.
func (s *Service) GetBooking(ctx context.Context, requester *models.Claims, id string) (*models.BookingView, error) {
	booking, err := s.authorized(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, []models.Booking{*booking}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListUserBookings returns the requester's bookings newest first.
func (s *Service) ListUserBookings(ctx context.Context, requester *models.Claims) ([]models.BookingView, error) {
	bookings, err := s.bookings.FindBookings(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings, false)
}

// ListAllBookings returns every booking newest first with user and trip summaries.
func (s *Service) ListAllBookings(ctx context.Context) ([]models.BookingView, error) {
	bookings, err := s.bookings.FindBookings(ctx, "")
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, bookings, true)
}

// Stats returns the admin report, served from cache when possible.
func (s *Service) Stats(ctx context.Context) (*models.BookingStats, error) {
	var stats models.BookingStats
	if found, err := s.cache.GetJSON(ctx, cache.KeyBookingStats, &stats); err != nil {
		s.log.WithError(err).Warn("stats cache read failed")
	} else if found {
		return &stats, nil
	}

	computed, err := s.bookings.BookingStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.KeyBookingStats, computed); err != nil {
		s.log.WithError(err).Warn("stats cache write failed")
	}
	return computed, nil
}

// Ticket renders the e-ticket PDF of a booking the requester may see.
func (s *Service) Ticket(ctx context.Context, requester *models.Claims, id string) ([]byte, string, error) {
	view, err := s.GetBooking(ctx, requester, id)
	if err != nil {
		return nil, "", err
	}
	return tickets.Render(*view)
}

func (s *Service) authorized(ctx context.Context, requester *models.Claims, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && (requester == nil || !booking.IsOwnedBy(requester.UserID)) {
		return nil, models.ErrNotAuthorized
	}
	return booking, nil
}

// afterCommit runs the side effects of a seat-changing mutation. Failures are
// logged only; the mutation has already committed.
func (s *Service) afterCommit(ctx context.Context, eventType string, booking *models.Booking) {
	if err := s.cache.Delete(ctx, cache.KeyBookingStats); err != nil {
		s.log.WithError(err).Warn("stats cache invalidation failed")
	}
	s.publish(ctx, eventType, booking)
}

func (s *Service) publish(ctx context.Context, eventType string, booking *models.Booking) {
	event := models.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID.Hex(),
		TripID:      booking.TripID.Hex(),
		UserID:      booking.UserID.Hex(),
		Seats:       booking.SeatsBooked,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": eventType, "booking_id": event.BookingID}).Warn("booking event not published")
	}
}

// enrich attaches trip summaries, and user summaries when withUser is set.
// References to deleted trips or users are left empty.
func (s *Service) enrich(ctx context.Context, bookings []models.Booking, withUser bool) ([]models.BookingView, error) {
	views := make([]models.BookingView, len(bookings))
	if len(bookings) == 0 {
		return views, nil
	}

	tripIDs := make([]primitive.ObjectID, 0, len(bookings))
	userIDs := make([]primitive.ObjectID, 0, len(bookings))
	seenTrips := map[primitive.ObjectID]bool{}
	seenUsers := map[primitive.ObjectID]bool{}
	for _, b := range bookings {
		if !seenTrips[b.TripID] {
			seenTrips[b.TripID] = true
			tripIDs = append(tripIDs, b.TripID)
		}
		if !seenUsers[b.UserID] {
			seenUsers[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
	}

	trips, err := s.trips.FindTripsByIDs(ctx, tripIDs)
	if err != nil {
		return nil, err
	}
	tripByID := make(map[primitive.ObjectID]*models.TripSummary, len(trips))
	for i := range trips {
		tripByID[trips[i].ID] = trips[i].Summary()
	}

	userByID := map[primitive.ObjectID]*models.UserSummary{}
	if withUser {
		users, err := s.users.FindUsersByIDs(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		for i := range users {
			userByID[users[i].ID] = users[i].Summary()
		}
	}

	for i, b := range bookings {
		views[i] = models.BookingView{Booking: b, Trip: tripByID[b.TripID], User: userByID[b.UserID]}
	}
	return views, nil
}
