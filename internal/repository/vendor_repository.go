package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type vendorRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVendorRepository creates a new PostgreSQL-backed vendor stats repository.
func NewVendorRepository(pool *pgxpool.Pool, logger zerolog.Logger) VendorRepository {
	return &vendorRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "vendor").Logger(),
	}
}

func (r *vendorRepository) Dashboard(ctx context.Context, vendorID uuid.UUID) (*model.VendorDashboard, error) {
	var d model.VendorDashboard
	var avg float64

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE vendor_id = $1),
			(SELECT COUNT(*) FROM products WHERE vendor_id = $1 AND is_active),
			(SELECT COUNT(*) FROM quotes q JOIN products p ON p.id = q.product_id WHERE p.vendor_id = $1),
			(SELECT COUNT(*) FROM quotes q JOIN products p ON p.id = q.product_id
				WHERE p.vendor_id = $1 AND q.status = 'pending'),
			(SELECT COUNT(*) FROM rentals r JOIN products p ON p.id = r.product_id WHERE p.vendor_id = $1),
			(SELECT COUNT(*) FROM rentals r JOIN products p ON p.id = r.product_id
				WHERE p.vendor_id = $1 AND r.status = 'active'),
			(SELECT COUNT(*) FROM reviews v JOIN products p ON p.id = v.product_id WHERE p.vendor_id = $1),
			(SELECT COALESCE(AVG(v.stars), 0)::float8 FROM reviews v JOIN products p ON p.id = v.product_id
				WHERE p.vendor_id = $1)
	`, vendorID).Scan(
		&d.Products.Total, &d.Products.Active,
		&d.Quotes.Total, &d.Quotes.Pending,
		&d.Rentals.Total, &d.Rentals.Active,
		&d.Reviews.Total, &avg,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query dashboard")
		return nil, fmt.Errorf("failed to query vendor dashboard: %w", err)
	}

	d.Products.Inactive = d.Products.Total - d.Products.Active
	d.Reviews.AverageRating = model.RoundRating(avg)
	return &d, nil
}
