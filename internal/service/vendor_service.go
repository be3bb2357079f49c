package service

import (
	"context"
	"fmt"
	"io"

	"bazaar/internal/model"
	"bazaar/internal/report"
	"bazaar/internal/repository"

	"github.com/rs/zerolog"
)

type vendorService struct {
	vendorRepo  repository.VendorRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewVendorService creates a new vendor service.
func NewVendorService(vendorRepo repository.VendorRepository, productRepo repository.ProductRepository, logger zerolog.Logger) VendorService {
	return &vendorService{
		vendorRepo:  vendorRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "vendor").Logger(),
	}
}

func (s *vendorService) Dashboard(ctx context.Context, actor model.Actor) (*model.VendorDashboard, error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	return s.vendorRepo.Dashboard(ctx, actor.UserID)
}

func (s *vendorService) ExportProducts(ctx context.Context, actor model.Actor, w io.Writer) error {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return err
	}

	products, err := s.productRepo.ListByVendor(ctx, actor.UserID)
	if err != nil {
		return fmt.Errorf("failed to list vendor products: %w", err)
	}
	if err := report.WriteProducts(w, products); err != nil {
		return fmt.Errorf("failed to write product export: %w", err)
	}

	s.logger.Debug().
		Str("vendor_id", actor.UserID.String()).
		Int("products", len(products)).
		Msg("products exported")
	return nil
}
