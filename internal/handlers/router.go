package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/makemydestiny/travel-booking/internal/auth"
	"github.com/makemydestiny/travel-booking/internal/booking"
	"github.com/makemydestiny/travel-booking/internal/catalog"
	"github.com/makemydestiny/travel-booking/internal/chatbot"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/middleware"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Deps are the services the HTTP API is built from.
type Deps struct {
	Auth           *auth.Service
	Users          db.UserCollection
	Catalog        *catalog.Service
	Bookings       *booking.Service
	Chatbot        *chatbot.Responder
	Checks         []HealthCheck
	Log            *logrus.Entry
	ChatLimit      int           // chatbot requests per client IP
	ChatWindow     time.Duration // window ChatLimit applies to
	AllowedOrigins []string
}

// NewRouter wires every route with its auth requirements and the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Auth)
	chatLimiter := middleware.NewRateLimitMiddleware()

	user := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(authMW.RequireRole(models.RoleAdmin)(h))
	}

	system := NewSystemHandler(d.Checks, d.Log)
	authH := NewAuthHandler(d.Auth, d.Users, d.Log)
	trips := NewTripHandler(d.Catalog, d.Log)
	bookings := NewBookingHandler(d.Bookings, d.Log)
	chat := NewChatbotHandler(d.Chatbot, d.Log)

	r := mux.NewRouter()
	r.HandleFunc("/", system.Welcome).Methods(http.MethodGet)
	r.HandleFunc("/health", system.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-email/{token}", authH.VerifyEmail).Methods(http.MethodGet)
	api.Handle("/auth/me", user(authH.Me)).Methods(http.MethodGet)

	api.HandleFunc("/trips", trips.List).Methods(http.MethodGet)
	api.Handle("/trips", admin(trips.Create)).Methods(http.MethodPost)
	api.HandleFunc("/trips/{id}", trips.Get).Methods(http.MethodGet)
	api.Handle("/trips/{id}", admin(trips.Update)).Methods(http.MethodPut)
	api.Handle("/trips/{id}", admin(trips.Delete)).Methods(http.MethodDelete)

	// fixed paths must be registered before /bookings/{id}
	api.Handle("/bookings", user(bookings.Create)).Methods(http.MethodPost)
	api.Handle("/bookings", admin(bookings.ListAll)).Methods(http.MethodGet)
	api.Handle("/bookings/user", user(bookings.ListMine)).Methods(http.MethodGet)
	api.Handle("/bookings/stats/report", admin(bookings.Stats)).Methods(http.MethodGet)
	api.Handle("/bookings/{id}", user(bookings.Get)).Methods(http.MethodGet)
	api.Handle("/bookings/{id}", user(bookings.Update)).Methods(http.MethodPut)
	api.Handle("/bookings/{id}/cancel", user(bookings.Cancel)).Methods(http.MethodPut)
	api.Handle("/bookings/{id}/ticket", user(bookings.Ticket)).Methods(http.MethodGet)

	api.Handle("/chatbot", chatLimiter.RateLimit(d.ChatLimit, d.ChatWindow)(http.HandlerFunc(chat.Message))).
		Methods(http.MethodPost)
	api.HandleFunc("/chatbot/faqs", chat.FAQs).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusNotFound, models.APIResponse{Message: "Route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, models.APIResponse{Message: "Method not allowed"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(middleware.RequestLogger(d.Log)(middleware.Recoverer(d.Log)(r)))
}
