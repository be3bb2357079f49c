package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type cartRepository struct {
	txBeginner
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		txBeginner: txBeginner{pool: pool},
		pool:       pool,
		logger:     logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at, p.name, p.price
		FROM cart_entries c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.ProductPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		l.LineTotal = l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CartEntry, error) {
	var e model.CartEntry
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_entries WHERE id = $1
	`, id).Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cart entry: %w", err)
	}
	return &e, nil
}

// AddOrIncrement inserts the entry, or adds its quantity to the existing
// (user, product) row. On return entry holds the stored row.
func (r *cartRepository) AddOrIncrement(ctx context.Context, q DBTX, entry *model.CartEntry) error {
	err := r.querier(q).QueryRow(ctx, `
		INSERT INTO cart_entries (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_entries.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING id, quantity, created_at, updated_at
	`, entry.ID, entry.UserID, entry.ProductID, entry.Quantity, entry.UpdatedAt).
		Scan(&entry.ID, &entry.Quantity, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("user_id", entry.UserID.String()).Msg("failed to add cart entry")
		return fmt.Errorf("failed to add cart entry: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) (*model.CartEntry, error) {
	var e model.CartEntry
	err := r.pool.QueryRow(ctx, `
		UPDATE cart_entries SET quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, product_id, quantity, created_at, updated_at
	`, id, quantity).Scan(&e.ID, &e.UserID, &e.ProductID, &e.Quantity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update cart entry: %w", err)
	}
	return &e, nil
}

func (r *cartRepository) Delete(ctx context.Context, q DBTX, id uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM cart_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	return nil
}

// LockForCheckout row-locks the requested entries that belong to userID and
// returns them with the product price read under the lock. Entries that are
// missing or owned by someone else are simply absent from the result.
func (r *cartRepository) LockForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []uuid.UUID) ([]CheckoutLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at, p.name, p.price
		FROM cart_entries c
		JOIN products p ON p.id = c.product_id
		WHERE c.id = ANY($1) AND c.user_id = $2
		ORDER BY c.id
		FOR UPDATE OF c
	`, ids, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart entries")
		return nil, fmt.Errorf("failed to lock cart entries: %w", err)
	}
	defer rows.Close()

	var lines []CheckoutLine
	for rows.Next() {
		var l CheckoutLine
		err := rows.Scan(
			&l.Entry.ID, &l.Entry.UserID, &l.Entry.ProductID, &l.Entry.Quantity,
			&l.Entry.CreatedAt, &l.Entry.UpdatedAt, &l.ProductName, &l.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart entries: %w", err)
	}
	return lines, nil
}

func (r *cartRepository) DeleteEntries(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM cart_entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete cart entries: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("deleted %d of %d cart entries", tag.RowsAffected(), len(ids))
	}
	return nil
}
