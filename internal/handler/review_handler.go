package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles product reviews.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

// Create handles POST /api/products/{id}/reviews requests.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	review, err := h.service.Create(r.Context(), a, productID, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// List handles GET /api/products/{id}/reviews requests.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	reviews, err := h.service.List(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Stats handles GET /api/products/{id}/stats requests.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
