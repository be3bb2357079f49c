package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (id, user_id, product_id, stars, title, message, is_verified_purchase, is_approved,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		rv.ID, rv.UserID, rv.ProductID, rv.Stars, rv.Title, rv.Message, rv.IsVerifiedPurchase, rv.IsApproved,
		rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrDuplicateReview
		case isForeignKeyViolation(err):
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListApproved(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, product_id, stars, title, message, is_verified_purchase, is_approved, created_at, updated_at
		FROM reviews
		WHERE product_id = $1 AND is_approved
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Stars, &rv.Title, &rv.Message,
			&rv.IsVerifiedPurchase, &rv.IsApproved, &rv.CreatedAt, &rv.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// ApprovedStarCounts counts approved reviews of productID per star value.
func (r *reviewRepository) ApprovedStarCounts(ctx context.Context, productID uuid.UUID) (model.StarCounts, error) {
	var counts model.StarCounts

	rows, err := r.pool.Query(ctx, `
		SELECT stars, COUNT(*)
		FROM reviews
		WHERE product_id = $1 AND is_approved
		GROUP BY stars
	`, productID)
	if err != nil {
		return counts, fmt.Errorf("failed to count reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stars, n int
		if err := rows.Scan(&stars, &n); err != nil {
			return counts, fmt.Errorf("failed to scan review count: %w", err)
		}
		if stars >= 1 && stars <= 5 {
			counts[stars] = n
		}
	}
	return counts, rows.Err()
}
