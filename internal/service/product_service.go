package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/media"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
	cache        cache.ProductCache
	store        media.Store
	maxPageSize  int
	logger       zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	productCache cache.ProductCache,
	store media.Store,
	maxPageSize int,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
		cache:        productCache,
		store:        store,
		maxPageSize:  maxPageSize,
		logger:       logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.ListCategories(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Category, error) {
	if err := Authorize(actor, Resource{Kind: StaffOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &model.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categoryRepo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *catalogService) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]model.Subcategory, error) {
	category, err := s.categoryRepo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.ErrNotFound
	}
	return s.categoryRepo.ListSubcategories(ctx, categoryID)
}

func (s *catalogService) CreateSubcategory(ctx context.Context, actor model.Actor, req model.CategoryRequest) (*model.Subcategory, error) {
	if err := Authorize(actor, Resource{Kind: StaffOnly}); err != nil {
		return nil, err
	}
	if req.CategoryID == nil || *req.CategoryID == uuid.Nil {
		return nil, model.NewValidationError("category_id", "This field is required.")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := &model.Subcategory{
		ID:          uuid.New(),
		CategoryID:  *req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categoryRepo.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListProducts retrieves active products with pagination.
func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetProduct retrieves an active product with its images and review summary.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error) {
	if detail, ok := s.cache.Get(ctx, id); ok {
		return detail, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	images, err := s.productRepo.ListImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product images: %w", err)
	}
	counts, err := s.reviewRepo.ApprovedStarCounts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review stats: %w", err)
	}
	stats := counts.Stats()

	detail := &model.ProductDetail{
		Product:       *product,
		Images:        images,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
	}
	s.cache.Set(ctx, detail)
	return detail, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, actor model.Actor, req model.ProductRequest) (*model.Product, error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSubcategory(ctx, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Product{
		ID:        uuid.New(),
		VendorID:  actor.UserID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(p)

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", p.ID.String()).
		Str("vendor_id", p.VendorID.String()).
		Msg("product created")
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor model.Actor, id uuid.UUID, req model.ProductRequest) (*model.Product, error) {
	p, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkSubcategory(ctx, req); err != nil {
		return nil, err
	}

	req.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

// AddImage stores an uploaded picture. The first image of a product becomes
// its main image.
func (s *catalogService) AddImage(ctx context.Context, actor model.Actor, productID uuid.UUID, upload model.ImageUpload) (*model.ProductImage, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedProduct(ctx, actor, productID); err != nil {
		return nil, err
	}

	imageID := uuid.New()
	key := fmt.Sprintf("%s/%s%s", productID, imageID, upload.Extension())
	obj, err := s.store.Put(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to store image")
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img := &model.ProductImage{
		ID:         imageID,
		ProductID:  productID,
		URL:        obj.URL,
		StorageKey: obj.Key,
		AltText:    upload.AltText,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.productRepo.AddImage(ctx, img); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, productID)

	s.logger.Debug().
		Str("product_id", productID.String()).
		Str("key", obj.Key).
		Bool("is_main", img.IsMain).
		Msg("product image added")
	return img, nil
}

func (s *catalogService) ownedProduct(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	if err := Authorize(actor, Resource{Kind: OwnedByVendor, OwnerID: p.VendorID}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) checkSubcategory(ctx context.Context, req model.ProductRequest) error {
	sub, err := s.categoryRepo.GetSubcategory(ctx, req.SubcategoryID)
	if err != nil {
		return fmt.Errorf("failed to get subcategory: %w", err)
	}
	if sub == nil || sub.CategoryID != req.CategoryID {
		return model.NewValidationError("subcategory_id", "Subcategory does not belong to the selected category.")
	}
	return nil
}
