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

type rentalRepository struct {
	txBeginner
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRentalRepository creates a new PostgreSQL-backed rental repository.
func NewRentalRepository(pool *pgxpool.Pool, logger zerolog.Logger) RentalRepository {
	return &rentalRepository{
		txBeginner: txBeginner{pool: pool},
		pool:       pool,
		logger:     logger.With().Str("repository", "rental").Logger(),
	}
}

const rentalColumns = `r.id, r.user_id, r.product_id, r.start_date, r.end_date, r.total_days, r.total_price,
	r.security_deposit, r.status, r.notes, r.delivery_address, r.pickup_address, r.created_at, r.updated_at`

func scanRental(row rowScanner, r *model.Rental) error {
	return row.Scan(
		&r.ID, &r.UserID, &r.ProductID, &r.StartDate, &r.EndDate, &r.TotalDays, &r.TotalPrice,
		&r.SecurityDeposit, &r.Status, &r.Notes, &r.DeliveryAddress, &r.PickupAddress, &r.CreatedAt, &r.UpdatedAt,
	)
}

func (r *rentalRepository) Create(ctx context.Context, tx pgx.Tx, rental *model.Rental) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO rentals (id, user_id, product_id, start_date, end_date, total_days, total_price,
			security_deposit, status, notes, delivery_address, pickup_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		rental.ID, rental.UserID, rental.ProductID, rental.StartDate, rental.EndDate, rental.TotalDays,
		rental.TotalPrice, rental.SecurityDeposit, rental.Status, rental.Notes, rental.DeliveryAddress,
		rental.PickupAddress, rental.CreatedAt, rental.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("rental_id", rental.ID.String()).Msg("failed to create rental")
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	return r.get(ctx, r.pool, `SELECT `+rentalColumns+` FROM rentals r WHERE r.id = $1`, id)
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Rental, error) {
	return r.get(ctx, tx, `SELECT `+rentalColumns+` FROM rentals r WHERE r.id = $1 FOR UPDATE`, id)
}

func (r *rentalRepository) get(ctx context.Context, q DBTX, query string, id uuid.UUID) (*model.Rental, error) {
	var rental model.Rental
	if err := scanRental(q.QueryRow(ctx, query, id), &rental); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query rental: %w", err)
	}
	return &rental, nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Rental, error) {
	return r.list(ctx, r.pool, `
		SELECT `+rentalColumns+`
		FROM rentals r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
}

func (r *rentalRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Rental, error) {
	return r.list(ctx, r.pool, `
		SELECT `+rentalColumns+`
		FROM rentals r
		JOIN products p ON p.id = r.product_id
		WHERE p.vendor_id = $1
		ORDER BY r.created_at DESC
	`, vendorID)
}

// ListBlocking returns approved or active rentals of productID that overlap
// want, excluding excludeID.
func (r *rentalRepository) ListBlocking(ctx context.Context, q DBTX, productID uuid.UUID, want model.DateRange, excludeID uuid.UUID) ([]model.Rental, error) {
	return r.list(ctx, q, `
		SELECT `+rentalColumns+`
		FROM rentals r
		WHERE r.product_id = $1
		  AND r.status IN ('approved', 'active')
		  AND r.start_date <= $3
		  AND r.end_date >= $2
		  AND r.id <> $4
		ORDER BY r.start_date
	`, productID, want.Start, want.End, excludeID)
}

func (r *rentalRepository) list(ctx context.Context, q DBTX, query string, args ...any) ([]model.Rental, error) {
	rows, err := r.querier(q).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query rentals")
		return nil, fmt.Errorf("failed to query rentals: %w", err)
	}
	defer rows.Close()

	rentals := []model.Rental{}
	for rows.Next() {
		var rental model.Rental
		if err := scanRental(rows, &rental); err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) Update(ctx context.Context, tx pgx.Tx, rental *model.Rental) error {
	_, err := tx.Exec(ctx, `
		UPDATE rentals
		SET status = $2, notes = $3, security_deposit = $4, pickup_address = $5, updated_at = $6
		WHERE id = $1
	`, rental.ID, rental.Status, rental.Notes, rental.SecurityDeposit, rental.PickupAddress, rental.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("rental_id", rental.ID.String()).Msg("failed to update rental")
		return fmt.Errorf("failed to update rental: %w", err)
	}
	return nil
}
