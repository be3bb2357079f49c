package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type deliveryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDeliveryRepository creates a new PostgreSQL-backed delivery repository.
func NewDeliveryRepository(pool *pgxpool.Pool, logger zerolog.Logger) DeliveryRepository {
	return &deliveryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "delivery").Logger(),
	}
}

const deliveryColumns = `id, order_id, status, shipping_address, city, state, pin_code, phone,
	expected_delivery, delivery_date, created_at, updated_at`

func scanDelivery(row rowScanner, d *model.Delivery) error {
	return row.Scan(
		&d.ID, &d.OrderID, &d.Status, &d.ShippingAddress, &d.City, &d.State, &d.PinCode, &d.Phone,
		&d.ExpectedDelivery, &d.DeliveryDate, &d.CreatedAt, &d.UpdatedAt,
	)
}

func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
}

func (r *deliveryRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID)
}

func (r *deliveryRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*model.Delivery, error) {
	var d model.Delivery
	if err := scanDelivery(r.pool.QueryRow(ctx, query, id), &d); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to query delivery")
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}
	return &d, nil
}

// UpdateStatus sets the delivery status. deliveredOn, when non-nil, replaces
// the delivery date.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, deliveredOn *model.Date) (*model.Delivery, error) {
	var d model.Delivery
	err := scanDelivery(r.pool.QueryRow(ctx, `
		UPDATE deliveries
		SET status = $2, delivery_date = COALESCE($3, delivery_date), updated_at = NOW()
		WHERE id = $1
		RETURNING `+deliveryColumns, id, status, deliveredOn), &d)
	if err != nil {
		if isNoRows(err) {
			return nil, model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("delivery_id", id.String()).Msg("failed to update delivery status")
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}
	return &d, nil
}
