// Package worker runs background consumers of order events.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// Consumer is the subset of *amqp.Channel used to receive deliveries.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// StockStore lowers product stock inside a transaction.
type StockStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// ItemReader loads the items of an order.
type ItemReader interface {
	GetItems(ctx context.Context, q repository.DBTX, orderID uuid.UUID) ([]model.OrderItem, error)
}

// StockWorker decrements stock once for every paid order.
type StockWorker struct {
	consumer Consumer
	queue    string
	items    ItemReader
	stock    StockStore
	marker   cache.Marker
	logger   zerolog.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewStockWorker creates a worker consuming order.paid events from queue.
func NewStockWorker(
	consumer Consumer,
	queue string,
	items ItemReader,
	stock StockStore,
	marker cache.Marker,
	logger zerolog.Logger,
) *StockWorker {
	return &StockWorker{
		consumer: consumer,
		queue:    queue,
		items:    items,
		stock:    stock,
		marker:   marker,
		logger:   logger.With().Str("component", "stock-worker").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins consuming in a background goroutine.
func (w *StockWorker) Start(ctx context.Context) error {
	msgs, err := w.consumer.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.logger.Info().Str("queue", w.queue).Msg("stock worker started")
	return nil
}

// Stop ends the consume loop. It is safe to call more than once.
func (w *StockWorker) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func stockKey(orderID string) string {
	return "order_stock_applied:" + orderID
}

func (w *StockWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.logger.Error().Err(err).Msg("unmarshal order event")
		_ = msg.Nack(false, false)
		return
	}

	logger := w.logger.With().Str("order_id", event.OrderID).Logger()

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil || event.Type != model.EventOrderPaid {
		logger.Error().Str("type", event.Type).Msg("unexpected event on stock queue")
		_ = msg.Nack(false, false)
		return
	}

	key := stockKey(event.OrderID)
	claimed, err := w.marker.Claim(ctx, key, idempotencyTTL)
	if err != nil {
		logger.Error().Err(err).Msg("claim idempotency key")
		_ = msg.Nack(false, true)
		return
	}
	if !claimed {
		logger.Info().Msg("stock already applied, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.applyStock(ctx, orderID); err != nil {
		logger.Error().Err(err).Msg("apply stock failed")
		if relErr := w.marker.Release(ctx, key); relErr != nil {
			logger.Error().Err(relErr).Msg("release idempotency key")
		}
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
	logger.Info().Msg("stock applied")
}

func (w *StockWorker) applyStock(ctx context.Context, orderID uuid.UUID) (err error) {
	tx, err := w.stock.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	items, err := w.items.GetItems(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("order %s has no items", orderID)
	}

	if err = w.stock.DecrementStock(ctx, tx, items); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
