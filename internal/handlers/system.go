package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Version is reported by the welcome endpoint.
const Version = "1.0.0"

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency. A Required dependency that is down fails the whole check.
type HealthCheck struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// SystemHandler serves the welcome and health endpoints.
type SystemHandler struct {
	checks []HealthCheck
	log    *logrus.Entry
}

func NewSystemHandler(checks []HealthCheck, log *logrus.Entry) *SystemHandler {
	return &SystemHandler{checks: checks, log: log.WithField("component", "health")}
}

// Welcome describes the API and its entry points.
func (h *SystemHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Welcome to MakeMyDestiny Travel Booking API",
		"version": Version,
		"endpoints": map[string]string{
			"auth":     "/api/auth",
			"trips":    "/api/trips",
			"bookings": "/api/bookings",
			"chatbot":  "/api/chatbot",
			"health":   "/health",
		},
	})
}

// Health reports the state of storage, cache and event feed.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]string, len(h.checks))
	status, code := "ok", http.StatusOK

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.Check(ctx)
		cancel()
		if err == nil {
			services[c.Name] = "up"
			continue
		}
		services[c.Name] = "down"
		h.log.WithError(err).WithField("service", c.Name).Warn("health check failed")
		if c.Required {
			status, code = "unavailable", http.StatusServiceUnavailable
		} else if status == "ok" {
			status = "degraded"
		}
	}

	respondJSON(w, code, map[string]interface{}{
		"success":   code == http.StatusOK,
		"status":    status,
		"services":  services,
		"timestamp": time.Now().UTC(),
	})
}
