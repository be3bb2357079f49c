package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       cache.ProductCache
	autoApprove bool
	logger      zerolog.Logger
}

// NewReviewService creates a new review service. When autoApprove is false new
// reviews are stored unapproved and stay out of listings and stats.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	productCache cache.ProductCache,
	autoApprove bool,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       productCache,
		autoApprove: autoApprove,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

func (s *reviewService) Create(ctx context.Context, actor model.Actor, productID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	verified, err := s.orderRepo.HasPaidPurchase(ctx, actor.UserID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}

	now := time.Now().UTC()
	review := &model.Review{
		ID:                 uuid.New(),
		UserID:             actor.UserID,
		ProductID:          productID,
		Stars:              req.Stars,
		Title:              req.Title,
		Message:            req.Message,
		IsVerifiedPurchase: verified,
		IsApproved:         s.autoApprove,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	if review.IsApproved {
		s.cache.Invalidate(ctx, productID)
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("product_id", productID.String()).
		Int("stars", review.Stars).
		Bool("verified", verified).
		Msg("review created")
	return review, nil
}

func (s *reviewService) List(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return nonNil(s.reviewRepo.ListApproved(ctx, productID))
}

// Stats summarises approved reviews.
func (s *reviewService) Stats(ctx context.Context, productID uuid.UUID) (*model.ReviewStats, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	counts, err := s.reviewRepo.ApprovedStarCounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	stats := counts.Stats()
	return &stats, nil
}

func (s *reviewService) requireProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return model.ErrProductNotFound
	}
	return nil
}
