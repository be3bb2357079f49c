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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	txBeginner
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		txBeginner: txBeginner{pool: pool},
		pool:       pool,
		logger:     logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, total_amount, status, gateway_order_id, gateway_payment_id, gateway_signature, created_at, updated_at`

func scanOrder(row rowScanner, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.GatewaySignature,
		&o.CreatedAt, &o.UpdatedAt,
	)
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_amount, status, gateway_order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.TotalAmount, order.Status, order.GatewayOrderID,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// CreateDelivery inserts the delivery row of an order.
func (r *orderRepository) CreateDelivery(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO deliveries (id, order_id, status, shipping_address, city, state, pin_code, phone,
			expected_delivery, delivery_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		d.ID, d.OrderID, d.Status, d.ShippingAddress, d.City, d.State, d.PinCode, d.Phone,
		d.ExpectedDelivery, d.DeliveryDate, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", d.OrderID.String()).Msg("failed to create delivery")
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// SetGatewayOrder stores a new gateway order id and sets status to PENDING.
func (r *orderRepository) SetGatewayOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayOrderID string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET gateway_order_id = $2, status = 'PENDING', updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'FAILED')
	`, id, gatewayOrderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store gateway order id")
		return false, fmt.Errorf("failed to store gateway order id: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &order)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.GetItems(ctx, r.pool, id)
	if err != nil {
		return nil, nil, err
	}

	return &order, items, nil
}

// GetForUpdate retrieves and row-locks an order within tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id), &order)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &order, nil
}

// GetItems retrieves the items of an order.
func (r *orderRepository) GetItems(ctx context.Context, q DBTX, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.querier(q).Query(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// MarkPaid moves a PENDING order to PAID, storing the payment id and signature.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentID, signature string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'PAID', gateway_payment_id = $2, gateway_signature = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`, id, paymentID, signature)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TransitionStatus moves an order from one status to another.
func (r *orderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// HasPaidPurchase reports whether userID has a PAID order containing productID.
func (r *orderRepository) HasPaidPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items i ON i.order_id = o.id
			WHERE o.user_id = $1 AND i.product_id = $2 AND o.status = 'PAID'
		)
	`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}
