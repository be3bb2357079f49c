package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"bazaar/internal/report"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// VendorHandler serves the vendor dashboard and exports.
type VendorHandler struct {
	service service.VendorService
	logger  zerolog.Logger
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(service service.VendorService, logger zerolog.Logger) *VendorHandler {
	return &VendorHandler{
		service: service,
		logger:  logger.With().Str("handler", "vendor").Logger(),
	}
}

// Dashboard handles GET /api/vendor/dashboard requests.
func (h *VendorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), a)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// ExportProducts handles GET /api/vendor/products/export requests.
func (h *VendorHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.service.ExportProducts(r.Context(), a, &buf); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write export")
	}
}
