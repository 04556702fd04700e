package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/makemydestiny/travel-booking/internal/middleware"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, models.APIResponse{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, models.APIResponse{Success: true, Count: &count, Data: data})
}

// statusFor maps an error category to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInsufficientCapacity),
		errors.Is(err, models.ErrAlreadyCancelled):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers with the failure envelope. Unexpected errors are logged with the request id.
func respondError(w http.ResponseWriter, r *http.Request, log *logrus.Entry, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
	respondJSON(w, status, models.APIResponse{Success: false, Message: err.Error()})
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return models.Validationf("Invalid request body")
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, models.Validationf("Failed to read request body")
	}
	return body, nil
}

// requester returns the authenticated caller. Routes requiring it sit behind Authenticate.
func requester(r *http.Request) *models.Claims {
	claims, _ := middleware.GetUserFromContext(r.Context())
	return claims
}
