package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type quoteRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewQuoteRepository creates a new PostgreSQL-backed quote repository.
func NewQuoteRepository(pool *pgxpool.Pool, logger zerolog.Logger) QuoteRepository {
	return &quoteRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "quote").Logger(),
	}
}

const quoteColumns = `q.id, q.user_id, q.product_id, q.quantity, q.message, q.requirements, q.expected_delivery_date,
	q.status, q.vendor_response, q.quoted_price, q.expires_at, q.created_at, q.updated_at`

func scanQuote(row rowScanner, q *model.Quote) error {
	return row.Scan(
		&q.ID, &q.UserID, &q.ProductID, &q.Quantity, &q.Message, &q.Requirements, &q.ExpectedDeliveryDate,
		&q.Status, &q.VendorResponse, &q.QuotedPrice, &q.ExpiresAt, &q.CreatedAt, &q.UpdatedAt,
	)
}

func (r *quoteRepository) Create(ctx context.Context, q *model.Quote) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quotes (id, user_id, product_id, quantity, message, requirements, expected_delivery_date,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		q.ID, q.UserID, q.ProductID, q.Quantity, q.Message, q.Requirements, q.ExpectedDeliveryDate,
		q.Status, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("quote_id", q.ID.String()).Msg("failed to create quote")
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	if err := scanQuote(r.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes q WHERE q.id = $1`, id), &q); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query quote: %w", err)
	}
	return &q, nil
}

func (r *quoteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Quote, error) {
	return r.list(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		WHERE q.user_id = $1
		ORDER BY q.created_at DESC
	`, userID)
}

func (r *quoteRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Quote, error) {
	return r.list(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		JOIN products p ON p.id = q.product_id
		WHERE p.vendor_id = $1
		ORDER BY q.created_at DESC
	`, vendorID)
}

func (r *quoteRepository) list(ctx context.Context, query string, id uuid.UUID) ([]model.Quote, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query quotes")
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		var q model.Quote
		if err := scanQuote(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// Answer stores the vendor's response. The row only changes while the quote
// is still pending; false means another response got there first.
func (r *quoteRepository) Answer(ctx context.Context, q *model.Quote) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quotes
		SET status = $2, vendor_response = $3, quoted_price = $4, expires_at = $5, updated_at = $6
		WHERE id = $1 AND status = 'pending'
	`, q.ID, q.Status, q.VendorResponse, q.QuotedPrice, q.ExpiresAt, q.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("quote_id", q.ID.String()).Msg("failed to update quote")
		return false, fmt.Errorf("failed to update quote: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
