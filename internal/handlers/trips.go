package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/makemydestiny/travel-booking/internal/catalog"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// TripHandler serves the trip catalog.
type TripHandler struct {
	catalog *catalog.Service
	log     *logrus.Entry
}

func NewTripHandler(c *catalog.Service, log *logrus.Entry) *TripHandler {
	return &TripHandler{catalog: c, log: log.WithField("component", "trips")}
}

// List returns active trips matching the query filters.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.FilterFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	trips, err := h.catalog.ListTrips(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondList(w, trips, len(trips))
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.catalog.GetTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, trip)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TripInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	trip, err := h.catalog.CreateTrip(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusCreated, trip)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.TripInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	trip, err := h.catalog.UpdateTrip(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, trip)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteTrip(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{})
}
