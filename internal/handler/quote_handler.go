package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// QuoteHandler handles quote requests and vendor responses.
type QuoteHandler struct {
	service service.QuoteService
	logger  zerolog.Logger
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service service.QuoteService, logger zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		logger:  logger.With().Str("handler", "quote").Logger(),
	}
}

// Create handles POST /api/quotes requests.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateQuoteRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	quote, err := h.service.Create(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

// ListMine handles GET /api/quotes requests.
func (h *QuoteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	quotes, err := h.service.ListMine(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// ListForVendor handles GET /api/vendor/quotes requests.
func (h *QuoteHandler) ListForVendor(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	quotes, err := h.service.ListForVendor(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// Respond handles PUT /api/vendor/quotes/{id} requests.
func (h *QuoteHandler) Respond(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.VendorQuoteRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	quote, err := h.service.Respond(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
