package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalog HTTP requests.
type ProductHandler struct {
	service   service.CatalogService
	maxUpload int64
	logger    zerolog.Logger
}

// NewProductHandler creates a new product handler. maxUploadMB bounds image
// uploads.
func NewProductHandler(service service.CatalogService, maxUploadMB int, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		maxUpload: int64(maxUploadMB) << 20,
		logger:    logger.With().Str("handler", "product").Logger(),
	}
}

// ListCategories handles GET /api/categories requests.
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories requests.
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// ListSubcategories handles GET /api/categories/{id}/subcategories requests.
func (h *ProductHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	subcategories, err := h.service.ListSubcategories(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, subcategories)
}

// CreateSubcategory handles POST /api/subcategories requests.
func (h *ProductHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	subcategory, err := h.service.CreateSubcategory(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, subcategory)
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	products, err := h.service.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	var req model.ProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), a, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.ProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), a, id, req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UploadImage handles POST /api/products/{id}/images requests. The body is a
// multipart form with an "image" file and an optional "alt_text" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, model.NewValidationError("image", fmt.Sprintf("Image must be at most %d MB.", h.maxUpload>>20)), h.logger)
			return
		}
		writeServiceError(w, model.NewValidationError("image", "Request must be multipart/form-data."), h.logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeServiceError(w, model.NewValidationError("image", "An image file is required."), h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		writeServiceError(w, fmt.Errorf("read upload: %w", err), h.logger)
		return
	}
	if int64(len(data)) > h.maxUpload {
		writeServiceError(w, model.NewValidationError("image", fmt.Sprintf("Image must be at most %d MB.", h.maxUpload>>20)), h.logger)
		return
	}

	upload := model.ImageUpload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if alt := r.FormValue("alt_text"); alt != "" {
		upload.AltText = &alt
	}

	image, err := h.service.AddImage(r.Context(), a, id, upload)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, image)
}
