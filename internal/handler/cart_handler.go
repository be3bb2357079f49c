package handler

import (
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart and wishlist HTTP requests.
type CartHandler struct {
	cart     service.CartService
	wishlist service.WishlistService
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, wishlist service.WishlistService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		wishlist: wishlist,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// List handles GET /api/cart requests.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.cart.List(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	entry, err := h.cart.Add(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Update handles PUT /api/cart/{id} requests.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.UpdateCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	entry, err := h.cart.UpdateQuantity(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Remove handles DELETE /api/cart/{id} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.cart.Remove(r.Context(), a, id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveToWishlist handles POST /api/cart/{id}/move-to-wishlist requests.
func (h *CartHandler) MoveToWishlist(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.cart.MoveToWishlist(r.Context(), a, id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWishlist handles GET /api/wishlist requests.
func (h *CartHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.wishlist.List(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddToWishlist handles POST /api/wishlist requests.
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.AddToWishlistRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	entry, err := h.wishlist.Add(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// RemoveFromWishlist handles DELETE /api/wishlist/{id} requests.
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.wishlist.Remove(r.Context(), a, id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveToCart handles POST /api/wishlist/{id}/move-to-cart requests.
func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entry, err := h.wishlist.MoveToCart(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
