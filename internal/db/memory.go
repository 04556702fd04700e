package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/makemydestiny/travel-booking/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps trips, bookings and users in process memory. A single
// mutex serializes every operation, which gives the ledger the same
// all-or-nothing seat accounting the Mongo transactions provide.
type MemoryStore struct {
	mu       sync.Mutex
	trips    []models.Trip
	bookings []models.Booking
	users    []models.User
}

// NewMemoryStore returns a Store backed by a fresh MemoryStore.
func NewMemoryStore() *Store {
	m := &MemoryStore{}
	return &Store{
		Trips:    m,
		Bookings: m,
		Users:    m,
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

func copyTrip(t models.Trip) models.Trip {
	t.Highlights = append([]string(nil), t.Highlights...)
	return t
}

func copyBooking(b models.Booking) models.Booking {
	if b.TravellerDetails != nil {
		b.TravellerDetails = append([]models.Traveller{}, b.TravellerDetails...)
	}
	return b
}

func (m *MemoryStore) tripIndex(id primitive.ObjectID) int {
	for i := range m.trips {
		if m.trips[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) bookingIndex(id primitive.ObjectID) int {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// InsertTrip stores a trip and sets its ID and creation time.
func (m *MemoryStore) InsertTrip(_ context.Context, trip *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip.ID = primitive.NewObjectID()
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}
	m.trips = append(m.trips, copyTrip(*trip))
	return nil
}

// InsertTrips stores several trips.
func (m *MemoryStore) InsertTrips(_ context.Context, trips []models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range trips {
		if trips[i].ID.IsZero() {
			trips[i].ID = primitive.NewObjectID()
		}
		if trips[i].CreatedAt.IsZero() {
			trips[i].CreatedAt = time.Now().UTC()
		}
		m.trips = append(m.trips, copyTrip(trips[i]))
	}
	return nil
}

// FindTrips returns active trips matching filter, newest first.
func (m *MemoryStore) FindTrips(_ context.Context, filter models.TripFilter) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(filter.Search)
	trips := []models.Trip{}
	for i := len(m.trips) - 1; i >= 0; i-- {
		t := m.trips[i]
		switch {
		case !t.IsActive:
		case filter.State != "" && t.State != filter.State:
		case filter.Category != "" && t.Category != filter.Category:
		case filter.MinPrice != nil && t.Price < *filter.MinPrice:
		case filter.MaxPrice != nil && t.Price > *filter.MaxPrice:
		case search != "" &&
			!strings.Contains(strings.ToLower(t.Destination), search) &&
			!strings.Contains(strings.ToLower(t.Description), search):
		default:
			trips = append(trips, copyTrip(t))
		}
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
	return trips, nil
}

// FindTripByID finds a trip by its ID.
func (m *MemoryStore) FindTripByID(_ context.Context, id string) (*models.Trip, error) {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.tripIndex(oid)
	if i < 0 {
		return nil, models.ErrTripNotFound
	}
	trip := copyTrip(m.trips[i])
	return &trip, nil
}

// FindTripsByIDs returns the stored trips among ids.
func (m *MemoryStore) FindTripsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trips []models.Trip
	for _, id := range ids {
		if i := m.tripIndex(id); i >= 0 {
			trips = append(trips, copyTrip(m.trips[i]))
		}
	}
	return trips, nil
}

// ReplaceTrip replaces a trip while its seat counter equals expectedAvailable.
func (m *MemoryStore) ReplaceTrip(_ context.Context, id string, expectedAvailable int, trip models.Trip) error {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.tripIndex(oid)
	if i < 0 {
		return models.ErrTripNotFound
	}
	if m.trips[i].AvailableSeats != expectedAvailable {
		return models.ErrTripSeatsChanged
	}
	trip.ID = oid
	m.trips[i] = copyTrip(trip)
	return nil
}

// DeleteTrip deletes a trip by its ID.
func (m *MemoryStore) DeleteTrip(_ context.Context, id string) error {
	oid, err := objectID(id, models.ErrTripNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.tripIndex(oid)
	if i < 0 {
		return models.ErrTripNotFound
	}
	m.trips = append(m.trips[:i], m.trips[i+1:]...)
	return nil
}

// CountActiveTrips counts trips visible in the public listing.
func (m *MemoryStore) CountActiveTrips(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.trips {
		if t.IsActive {
			n++
		}
	}
	return n, nil
}

// DeleteAllTrips removes every trip.
func (m *MemoryStore) DeleteAllTrips(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = nil
	return nil
}

// CreateBooking reserves seats and stores the booking under one lock.
func (m *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) (*models.Trip, error) {
	if booking.SeatsBooked < 1 {
		return nil, models.Validationf("seatsBooked must be at least 1")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.tripIndex(booking.TripID)
	if i < 0 {
		return nil, models.ErrTripNotFound
	}
	if m.trips[i].AvailableSeats < booking.SeatsBooked {
		return nil, models.ErrNotEnoughSeats
	}
	m.trips[i].AvailableSeats -= booking.SeatsBooked

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.TotalAmount = models.BookingTotal(m.trips[i].Price, booking.SeatsBooked)
	m.bookings = append(m.bookings, copyBooking(*booking))

	trip := copyTrip(m.trips[i])
	return &trip, nil
}

// CancelBooking cancels a booking and restores its seats under one lock.
func (m *MemoryStore) CancelBooking(_ context.Context, id string) (*models.Booking, bool, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookingIndex(oid)
	if i < 0 {
		return nil, false, models.ErrBookingNotFound
	}
	b := &m.bookings[i]
	if b.Status == models.StatusCancelled {
		return nil, false, models.ErrBookingCancelled
	}
	b.Status = models.StatusCancelled
	b.PaymentStatus = models.PaymentRefunded
	b.UpdatedAt = time.Now().UTC()

	restored := false
	if t := m.tripIndex(b.TripID); t >= 0 {
		m.trips[t].AvailableSeats += b.SeatsBooked
		restored = true
	}
	cancelled := copyBooking(*b)
	return &cancelled, restored, nil
}

// UpdateTravellers replaces the traveller list of a booking that is not cancelled.
func (m *MemoryStore) UpdateTravellers(_ context.Context, id string, travellers []models.Traveller) (*models.Booking, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bookingIndex(oid)
	if i < 0 {
		return nil, models.ErrBookingNotFound
	}
	b := &m.bookings[i]
	if b.Status == models.StatusCancelled {
		return nil, models.ErrCancelledNotEditable
	}
	b.TravellerDetails = append([]models.Traveller{}, travellers...)
	b.UpdatedAt = time.Now().UTC()
	updated := copyBooking(*b)
	return &updated, nil
}

// FindBookingByID finds a booking by its ID.
func (m *MemoryStore) FindBookingByID(_ context.Context, id string) (*models.Booking, error) {
	oid, err := objectID(id, models.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.bookingIndex(oid)
	if i < 0 {
		return nil, models.ErrBookingNotFound
	}
	booking := copyBooking(m.bookings[i])
	return &booking, nil
}

// FindBookings lists bookings newest first, optionally for one user.
func (m *MemoryStore) FindBookings(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bookings := []models.Booking{}
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if userID != "" && !b.IsOwnedBy(userID) {
			continue
		}
		bookings = append(bookings, copyBooking(b))
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].BookingDate.After(bookings[j].BookingDate)
	})
	return bookings, nil
}

// BookingStats computes the admin report over every stored booking.
func (m *MemoryStore) BookingStats(context.Context) (*models.BookingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.BookingStats{MonthlyBookings: []models.MonthlyBookings{}}
	months := map[int]*models.MonthlyBookings{}
	for _, b := range m.bookings {
		stats.TotalBookings++
		switch b.Status {
		case models.StatusBooked:
			stats.ActiveBookings++
			stats.TotalRevenue += b.TotalAmount
		case models.StatusCancelled:
			stats.CancelledBookings++
		}

		month := int(b.BookingDate.UTC().Month())
		entry, ok := months[month]
		if !ok {
			entry = &models.MonthlyBookings{Month: month}
			months[month] = entry
		}
		entry.Count++
		entry.Revenue += b.TotalAmount
	}
	for _, entry := range months {
		stats.MonthlyBookings = append(stats.MonthlyBookings, *entry)
	}
	sort.Slice(stats.MonthlyBookings, func(i, j int) bool {
		return stats.MonthlyBookings[i].Month < stats.MonthlyBookings[j].Month
	})
	return stats, nil
}

// DeleteAllBookings removes every booking.
func (m *MemoryStore) DeleteAllBookings(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = nil
	return nil
}

// InsertUser stores a new user. A duplicate email yields ErrEmailTaken.
func (m *MemoryStore) InsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := normalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return models.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users = append(m.users, *user)
	return nil
}

func (m *MemoryStore) findUser(match func(u *models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if match(&m.users[i]) {
			user := m.users[i]
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// FindUserByID finds a user by their ID.
func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	oid, err := objectID(id, models.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return m.findUser(func(u *models.User) bool { return u.ID == oid })
}

// FindUserByEmail finds a user by their email.
func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return m.findUser(func(u *models.User) bool { return u.Email == email })
}

// FindUserByVerificationToken finds the user a verification link was issued to.
func (m *MemoryStore) FindUserByVerificationToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUserNotFound
	}
	return m.findUser(func(u *models.User) bool { return u.VerificationToken == token })
}

// FindUsersByIDs returns the stored users among ids.
func (m *MemoryStore) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []models.User
	for _, id := range ids {
		for _, u := range m.users {
			if u.ID == id {
				users = append(users, u)
				break
			}
		}
	}
	return users, nil
}

func (m *MemoryStore) updateUser(id string, fn func(u *models.User)) error {
	oid, err := objectID(id, models.ErrUserNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == oid {
			fn(&m.users[i])
			m.users[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return models.ErrUserNotFound
}

// MarkVerified flags the user verified and consumes the verification token.
func (m *MemoryStore) MarkVerified(_ context.Context, id string) error {
	return m.updateUser(id, func(u *models.User) {
		u.IsVerified = true
		u.VerificationToken = ""
	})
}

// UpdateLastLogin records the login time.
func (m *MemoryStore) UpdateLastLogin(_ context.Context, id string) error {
	return m.updateUser(id, func(u *models.User) {
		now := time.Now().UTC()
		u.LastLogin = &now
	})
}

// DeleteAllUsers removes every user.
func (m *MemoryStore) DeleteAllUsers(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
	return nil
}
