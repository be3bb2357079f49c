package handler

import (
	"errors"
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateOrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	checkout, err := h.service.CreateOrder(r.Context(), a, req)
	if err != nil {
		// Entries named in the body that are missing or foreign are a bad
		// request here, not a missing resource.
		if errors.Is(err, model.ErrCartEntryNotFound) {
			writeError(w, http.StatusBadRequest, model.ErrCodeCartEntryNotFound, model.ErrCartEntryNotFound.Message, h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, checkout)
}

// CreateFromWishlist handles POST /api/orders/from-wishlist requests.
func (h *OrderHandler) CreateFromWishlist(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.OrderFromWishlistRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	checkout, err := h.service.CreateFromWishlist(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, checkout)
}

// RetryPayment handles POST /api/orders/{id}/retry-payment requests.
func (h *OrderHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	checkout, err := h.service.RetryPayment(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, checkout)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.List(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles POST /api/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.OrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
