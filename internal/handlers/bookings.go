package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/makemydestiny/travel-booking/internal/booking"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	bookings *booking.Service
	log      *logrus.Entry
}

func NewBookingHandler(bookings *booking.Service, log *logrus.Entry) *BookingHandler {
	return &BookingHandler{bookings: bookings, log: log.WithField("component", "bookings")}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	view, err := h.bookings.CreateBooking(r.Context(), requester(r), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusCreated, view)
}

// ListAll is the admin listing of every booking.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.bookings.ListAllBookings(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondList(w, views, len(views))
}

// ListMine returns the caller's own bookings.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	views, err := h.bookings.ListUserBookings(r.Context(), requester(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondList(w, views, len(views))
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.bookings.GetBooking(r.Context(), requester(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

// Update accepts only travellerDetails in the body.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	patch, err := booking.DecodePatch(body)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	view, err := h.bookings.UpdateBooking(r.Context(), requester(r), mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, view)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.bookings.CancelBooking(r.Context(), requester(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, cancelled)
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookings.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

// Ticket streams the booking's e-ticket as a PDF attachment.
func (h *BookingHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	pdf, filename, err := h.bookings.Ticket(r.Context(), requester(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
