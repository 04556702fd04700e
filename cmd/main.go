package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/makemydestiny/travel-booking/internal/auth"
	"github.com/makemydestiny/travel-booking/internal/booking"
	"github.com/makemydestiny/travel-booking/internal/cache"
	"github.com/makemydestiny/travel-booking/internal/catalog"
	"github.com/makemydestiny/travel-booking/internal/chatbot"
	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/events"
	"github.com/makemydestiny/travel-booking/internal/handlers"
	"github.com/sirupsen/logrus"
)

// app is the assembled server with the resources it must release on shutdown.
type app struct {
	server  *http.Server
	closers []func(ctx context.Context)
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
}

// newApp connects storage and the optional cache and event feed, then builds the HTTP server.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*app, error) {
	a := &app{}

	store, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Storage.Driver).Info("storage ready")
	a.closers = append(a.closers, func(ctx context.Context) {
		if err := store.Close(ctx); err != nil {
			log.WithError(err).Warn("storage close failed")
		}
	})
	checks := []handlers.HealthCheck{{Name: "database", Required: true, Check: store.Ping}}

	var c cache.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache")
		} else {
			redisCache := cache.NewRedis(client, cfg.Redis.TTL)
			c = redisCache
			a.closers = append(a.closers, func(context.Context) { _ = redisCache.Close() })
			checks = append(checks, handlers.HealthCheck{Name: "redis", Check: redisCache.Ping})
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.MQTT.Broker != "" {
		mqttPublisher, err := events.NewMQTTPublisher(cfg.MQTT, log)
		if err != nil {
			log.WithError(err).Warn("mqtt unavailable, booking events disabled")
		} else {
			publisher = mqttPublisher
			a.closers = append(a.closers, func(context.Context) { mqttPublisher.Close() })
			checks = append(checks, handlers.HealthCheck{Name: "mqtt", Check: func(context.Context) error {
				if !mqttPublisher.Connected() {
					return errors.New("not connected")
				}
				return nil
			}})
		}
	}

	authService, err := auth.NewService(cfg.JWT)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	catalogService := catalog.NewService(store.Trips, c, log)

	router := handlers.NewRouter(handlers.Deps{
		Auth:           authService,
		Users:          store.Users,
		Catalog:        catalogService,
		Bookings:       booking.NewService(store, c, publisher, log),
		Chatbot:        chatbot.NewResponder(catalogService, log),
		Checks:         checks,
		Log:            log,
		ChatLimit:      cfg.Chatbot.RateLimit,
		ChatWindow:     cfg.Chatbot.RateWindow,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := config.NewLogger(cfg.Log)
	log := logrus.NewEntry(logger).WithField("service", "makemydestiny-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", a.server.Addr).Info("HTTP server listening")
		serverErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server stopped")
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
	a.close(shutdownCtx)
}
