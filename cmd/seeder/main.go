package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/makemydestiny/travel-booking/internal/auth"
	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/models"
	log "github.com/sirupsen/logrus"
)

// seedAccount is a login created by the seeder.
type seedAccount struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     models.Role
}

var accounts = []seedAccount{
	{Name: "Admin User", Email: "admin@makemydestiny.com", Password: "admin123", Phone: "9876543210", Role: models.RoleAdmin},
	{Name: "Test User", Email: "user@test.com", Password: "user123", Phone: "9876543211", Role: models.RoleUser},
}

// tripSeed describes a sample trip relative to the seeding date.
type tripSeed struct {
	Destination string
	State       string
	Description string
	Price       float64
	Nights      int
	Seats       int
	StartsIn    int // days from now
	Category    models.Category
	Highlights  []string
}

var catalog = []tripSeed{
	{"Netarhat", "Jharkhand", "Queen of Chotanagpur with sunrise and sunset points over pine forests.", 6500, 2, 20, 21,
		models.CategoryHillStation, []string{"Magnolia Point", "Upper Ghaghri Falls", "Pine forest walk"}},
	{"Deoghar", "Jharkhand", "Pilgrimage to Baidyanath Dham, one of the twelve Jyotirlingas.", 5200, 2, 30, 14,
		models.CategoryReligious, []string{"Baidyanath Temple", "Trikut Hills ropeway", "Naulakha Mandir"}},
	{"Betla National Park", "Jharkhand", "Jeep safaris through the Palamau tiger reserve.", 7800, 3, 16, 35,
		models.CategoryWildlife, []string{"Jeep safari", "Palamau forts", "Kechki sangam"}},
	{"Ranchi", "Jharkhand", "City of waterfalls with Hundru, Dassam and Jonha falls.", 5800, 3, 25, 28,
		models.CategoryAdventure, []string{"Hundru Falls", "Tagore Hill", "Rock Garden"}},
	{"Manali", "Himachal Pradesh", "Snow peaks, Solang valley and the old town cafes.", 14500, 5, 24, 45,
		models.CategoryHillStation, []string{"Solang Valley", "Rohtang Pass", "Hadimba Temple"}},
	{"Goa", "Goa", "Beaches, Portuguese churches and seafood shacks.", 18500, 4, 30, 30,
		models.CategoryBeach, []string{"Baga Beach", "Old Goa churches", "Dudhsagar Falls"}},
	{"Jaipur", "Rajasthan", "Forts and palaces of the Pink City.", 11200, 3, 28, 40,
		models.CategoryHeritage, []string{"Amber Fort", "Hawa Mahal", "City Palace"}},
	{"Varanasi", "Uttar Pradesh", "Ganga aarti and the ghats of the oldest living city.", 8900, 3, 22, 18,
		models.CategoryCultural, []string{"Dashashwamedh Ghat aarti", "Sarnath", "Boat ride at dawn"}},
}

// sampleTrips builds the catalog with start dates relative to now.
func sampleTrips(now time.Time) []models.Trip {
	day := now.UTC().Truncate(24 * time.Hour)
	trips := make([]models.Trip, 0, len(catalog))
	for _, s := range catalog {
		start := day.AddDate(0, 0, s.StartsIn)
		trips = append(trips, models.Trip{
			Destination:    s.Destination,
			State:          s.State,
			Description:    s.Description,
			Price:          s.Price,
			Duration:       duration(s.Nights),
			AvailableSeats: s.Seats,
			TotalSeats:     s.Seats,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, s.Nights),
			Image:          models.DefaultTripImage,
			Highlights:     s.Highlights,
			Category:       s.Category,
			IsActive:       true,
		})
	}
	return trips
}

func duration(nights int) string {
	return fmt.Sprintf("%d Days / %d Nights", nights+1, nights)
}

// destroy removes every trip, booking and user.
func destroy(ctx context.Context, store *db.Store) error {
	if err := store.Bookings.DeleteAllBookings(ctx); err != nil {
		return err
	}
	if err := store.Trips.DeleteAllTrips(ctx); err != nil {
		return err
	}
	return store.Users.DeleteAllUsers(ctx)
}

// seed replaces all data with the sample catalog and the seed accounts.
func seed(ctx context.Context, store *db.Store, authService *auth.Service, now time.Time) error {
	if err := destroy(ctx, store); err != nil {
		return err
	}

	trips := sampleTrips(now)
	if err := store.Trips.InsertTrips(ctx, trips); err != nil {
		return err
	}
	log.WithField("trips", len(trips)).Info("Trips imported")

	for _, a := range accounts {
		hash, err := authService.HashPassword(a.Password)
		if err != nil {
			return err
		}
		user := &models.User{
			Name:         a.Name,
			Email:        a.Email,
			Phone:        a.Phone,
			PasswordHash: hash,
			Role:         a.Role,
			IsVerified:   true,
		}
		if err := store.Users.InsertUser(ctx, user); err != nil {
			return err
		}
		log.WithFields(log.Fields{"email": a.Email, "role": a.Role}).Info("Account created")
	}
	return nil
}

func main() {
	destroyOnly := flag.Bool("destroy", false, "remove all trips, bookings and users without importing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	log.SetLevel(config.NewLogger(cfg.Log).GetLevel())
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("STORAGE_DRIVER=memory: seeded data is discarded when the seeder exits")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer func() { _ = store.Close(context.Background()) }()

	if *destroyOnly {
		if err := destroy(ctx, store); err != nil {
			log.WithError(err).Error("Failed to destroy data")
			os.Exit(1)
		}
		log.Info("Data destroyed")
		return
	}

	authService, err := auth.NewService(cfg.JWT)
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}
	if err := seed(ctx, store, authService, time.Now()); err != nil {
		log.WithError(err).Error("Failed to import data")
		os.Exit(1)
	}
	log.Info("Data imported")
}
