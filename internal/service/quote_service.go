package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// quoteService implements QuoteService.
type quoteService struct {
	quoteRepo   repository.QuoteRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewQuoteService creates a new quote service.
func NewQuoteService(quoteRepo repository.QuoteRepository, productRepo repository.ProductRepository, logger zerolog.Logger) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "quote").Logger(),
	}
}

func (s *quoteService) Create(ctx context.Context, actor model.Actor, req model.CreateQuoteRequest) (*model.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, model.ErrProductNotFound
	}
	if !p.AllowsQuotes() {
		return nil, model.NewValidationError("product_id", "This product is not available for quotes.")
	}

	now := time.Now().UTC()
	q := &model.Quote{
		ID:                   uuid.New(),
		UserID:               actor.UserID,
		ProductID:            req.ProductID,
		Quantity:             req.Quantity,
		Message:              req.Message,
		Requirements:         req.Requirements,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               model.QuotePending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("quote_id", q.ID.String()).
		Str("product_id", q.ProductID.String()).
		Msg("quote requested")
	return q, nil
}

func (s *quoteService) ListMine(ctx context.Context, actor model.Actor) ([]model.Quote, error) {
	return nonNil(s.quoteRepo.ListByUser(ctx, actor.UserID))
}

func (s *quoteService) ListForVendor(ctx context.Context, actor model.Actor) ([]model.Quote, error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	return nonNil(s.quoteRepo.ListByVendor(ctx, actor.UserID))
}

// Respond records the vendor's answer to a pending quote.
func (s *quoteService) Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorQuoteRequest) (*model.Quote, error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, model.ErrNotFound
	}
	p, err := s.productRepo.GetByID(ctx, q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.ErrNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByVendor, OwnerID: p.VendorID}, model.ErrNotFound); err != nil {
		return nil, err
	}
	if q.Status != model.QuotePending {
		return nil, model.ErrInvalidTransition
	}

	q.Status = req.Status
	q.VendorResponse = req.VendorResponse
	if req.QuotedPrice != nil {
		q.QuotedPrice = req.QuotedPrice
	}
	q.ExpiresAt = req.ExpiresAt
	q.UpdatedAt = time.Now().UTC()

	answered, err := s.quoteRepo.Answer(ctx, q)
	if err != nil {
		return nil, err
	}
	if !answered {
		s.logger.Warn().Str("quote_id", q.ID.String()).Msg("quote answered concurrently")
		return nil, model.ErrInvalidTransition
	}

	s.logger.Info().
		Str("quote_id", q.ID.String()).
		Str("status", string(q.Status)).
		Msg("quote answered")
	return q, nil
}

// nonNil turns a nil slice result into an empty one so it encodes as [].
func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
