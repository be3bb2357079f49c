package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// RentalHandler handles rental availability, bookings and vendor responses.
type RentalHandler struct {
	service service.RentalService
	logger  zerolog.Logger
}

// NewRentalHandler creates a new rental handler.
func NewRentalHandler(service service.RentalService, logger zerolog.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		logger:  logger.With().Str("handler", "rental").Logger(),
	}
}

// Availability handles GET /api/products/{id}/availability requests. The
// range comes from the start_date and end_date query parameters.
func (h *RentalHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var v model.Validator
	var want model.DateRange
	query := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *model.Date
	}{
		{"start_date", &want.Start},
		{"end_date", &want.End},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			v.Add(p.name, "This field is required.")
			continue
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			v.Add(p.name, "Use the YYYY-MM-DD format.")
			continue
		}
		*p.dst = d
	}
	if err := v.Err(); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	availability, err := h.service.Availability(r.Context(), id, want)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// Create handles POST /api/rentals requests.
func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateRentalRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	rental, err := h.service.Create(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

// ListMine handles GET /api/rentals requests.
func (h *RentalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	rentals, err := h.service.ListMine(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

// ListForVendor handles GET /api/vendor/rentals requests.
func (h *RentalHandler) ListForVendor(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	rentals, err := h.service.ListForVendor(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

// Respond handles PUT /api/vendor/rentals/{id} requests.
func (h *RentalHandler) Respond(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.VendorRentalRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	rental, err := h.service.Respond(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}
