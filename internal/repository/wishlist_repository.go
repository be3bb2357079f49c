package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type wishlistRepository struct {
	txBeginner
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool *pgxpool.Pool, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{
		txBeginner: txBeginner{pool: pool},
		pool:       pool,
		logger:     logger.With().Str("repository", "wishlist").Logger(),
	}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	entries := []model.WishlistEntry{}
	for rows.Next() {
		var e model.WishlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *wishlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WishlistEntry, error) {
	return r.get(ctx, r.pool, `SELECT id, user_id, product_id, created_at FROM wishlist_entries WHERE id = $1`, id)
}

func (r *wishlistRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.WishlistEntry, error) {
	return r.get(ctx, tx, `SELECT id, user_id, product_id, created_at FROM wishlist_entries WHERE id = $1 FOR UPDATE`, id)
}

func (r *wishlistRepository) get(ctx context.Context, q DBTX, query string, id uuid.UUID) (*model.WishlistEntry, error) {
	var e model.WishlistEntry
	err := q.QueryRow(ctx, query, id).Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query wishlist entry: %w", err)
	}
	return &e, nil
}

func (r *wishlistRepository) Create(ctx context.Context, e *model.WishlistEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wishlist_entries (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, e.ID, e.UserID, e.ProductID, e.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrAlreadyInWishlist
		case isForeignKeyViolation(err):
			return model.ErrProductNotFound
		}
		return fmt.Errorf("failed to create wishlist entry: %w", err)
	}
	return nil
}

func (r *wishlistRepository) CreateIfAbsent(ctx context.Context, tx pgx.Tx, e *model.WishlistEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wishlist_entries (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, e.ID, e.UserID, e.ProductID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wishlist entry: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, q DBTX, id uuid.UUID) error {
	if _, err := r.querier(q).Exec(ctx, `DELETE FROM wishlist_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}
	return nil
}
