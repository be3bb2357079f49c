package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaar/internal/events"
	"bazaar/internal/model"
	"bazaar/internal/payment"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	deliveryRepo repository.DeliveryRepository
	gateway      payment.Gateway
	publisher    events.Publisher
	currency     string
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. Gateway calls are bounded by
// timeout and charged in currency.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	deliveryRepo repository.DeliveryRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	currency string,
	timeout time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		deliveryRepo: deliveryRepo,
		gateway:      gateway,
		publisher:    publisher,
		currency:     currency,
		timeout:      timeout,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder checks out the requested cart entries. The entries are locked,
// priced, turned into a PENDING order with a delivery, and consumed, all in
// one transaction that also covers the gateway call.
func (s *orderService) CreateOrder(ctx context.Context, actor model.Actor, req model.CreateOrderRequest) (_ *model.CheckoutResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	lines, err := s.cartRepo.LockForCheckout(ctx, tx, actor.UserID, req.CartItems)
	if err != nil {
		return nil, err
	}
	if len(lines) != len(req.CartItems) {
		s.logger.Warn().
			Str("user_id", actor.UserID.String()).
			Int("requested", len(req.CartItems)).
			Int("found", len(lines)).
			Msg("cart entries missing or not owned")
		err = model.ErrCartEntryNotFound
		return nil, err
	}

	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			ProductID: l.Entry.ProductID,
			Quantity:  l.Entry.Quantity,
			Price:     l.Price,
		}
	}

	order, gwOrder, err := s.place(ctx, tx, actor.UserID, items, req.ShippingDetails)
	if err != nil {
		return nil, err
	}

	if err = s.cartRepo.DeleteEntries(ctx, tx, req.CartItems); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to consume cart entries")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("gateway_order_id", gwOrder.ID).
		Int("item_count", len(items)).
		Msg("order created successfully")

	s.publish(ctx, order, model.EventOrderCreated)
	return s.checkoutResponse(order, gwOrder.ID), nil
}

// CreateFromWishlist checks out one wishlist entry with quantity 1. The entry
// is deleted only once the order and gateway order exist.
func (s *orderService) CreateFromWishlist(ctx context.Context, actor model.Actor, req model.OrderFromWishlistRequest) (_ *model.CheckoutResponse, err error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	wish, err := s.wishlistRepo.GetForUpdate(ctx, tx, req.WishlistID)
	if err != nil {
		return nil, err
	}
	if wish == nil {
		err = model.ErrNotFound
		return nil, err
	}
	if err = authorizeLookup(actor, Resource{Kind: OwnedByUser, OwnerID: wish.UserID}, model.ErrNotFound); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetForUpdate(ctx, tx, wish.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		err = model.ErrProductNotFound
		return nil, err
	}

	items := []model.OrderItem{{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  1,
		Price:     product.Price,
	}}

	order, gwOrder, err := s.place(ctx, tx, actor.UserID, items, req.ShippingDetails)
	if err != nil {
		return nil, err
	}

	if err = s.wishlistRepo.Delete(ctx, tx, wish.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("wishlist_id", wish.ID.String()).
		Msg("order created from wishlist")

	s.publish(ctx, order, model.EventOrderCreated)
	return s.checkoutResponse(order, gwOrder.ID), nil
}

// place writes the order, its items and delivery within tx and opens the
// gateway order for the total.
func (s *orderService) place(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	items []model.OrderItem,
	shipping model.ShippingDetails,
) (*model.Order, *payment.Order, error) {
	now := time.Now().UTC()
	order := &model.Order{
		ID:          uuid.New(),
		UserID:      userID,
		TotalAmount: model.OrderTotal(items),
		Status:      model.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, nil, fmt.Errorf("failed to create order items: %w", err)
	}

	delivery := shipping.NewDelivery(order.ID, now)
	if err := s.orderRepo.CreateDelivery(ctx, tx, &delivery); err != nil {
		return nil, nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	gwOrder, err := s.openGatewayOrder(ctx, order)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.orderRepo.SetGatewayOrder(ctx, tx, order.ID, gwOrder.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store gateway order: %w", err)
	}
	if !updated {
		return nil, nil, fmt.Errorf("order %s left PENDING during checkout", order.ID)
	}
	order.GatewayOrderID = &gwOrder.ID

	return order, gwOrder, nil
}

// RetryPayment opens a new gateway order for an unpaid order. When the
// gateway fails a PENDING order is marked FAILED.
func (s *orderService) RetryPayment(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.CheckoutResponse, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retry payment: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByUser, OwnerID: order.UserID}, model.ErrOrderNotFound); err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending && order.Status != model.OrderFailed {
		return nil, model.ErrInvalidTransition
	}

	gwOrder, gwErr := s.openGatewayOrder(ctx, order)
	if gwErr != nil {
		if order.Status != model.OrderPending {
			return nil, gwErr
		}
		moved, err := s.orderRepo.TransitionStatus(ctx, tx, order.ID, model.OrderPending, model.OrderFailed)
		if err != nil {
			return nil, fmt.Errorf("failed to mark order failed: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to mark order failed: %w", err)
		}
		committed = true
		if moved {
			order.Status = model.OrderFailed
			s.publish(ctx, order, model.EventOrderFailed)
		}
		return nil, gwErr
	}

	updated, err := s.orderRepo.SetGatewayOrder(ctx, tx, order.ID, gwOrder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to store gateway order: %w", err)
	}
	if !updated {
		return nil, model.ErrInvalidTransition
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to retry payment: %w", err)
	}
	committed = true

	order.Status = model.OrderPending
	order.GatewayOrderID = &gwOrder.ID
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("gateway_order_id", gwOrder.ID).
		Msg("payment retry opened")

	return s.checkoutResponse(order, gwOrder.ID), nil
}

func (s *orderService) List(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// Get retrieves an order with its items and delivery.
func (s *orderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderDetail, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByUserOrStaff, OwnerID: order.UserID}, model.ErrOrderNotFound); err != nil {
		return nil, err
	}

	delivery, err := s.deliveryRepo.GetByOrderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	if items == nil {
		items = []model.OrderItem{}
	}
	return &model.OrderDetail{Order: *order, Items: items, Delivery: delivery}, nil
}

// UpdateStatus cancels or refunds an order.
func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (_ *model.Order, err error) {
	if err := Authorize(actor, Resource{Kind: StaffOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if !order.Status.CanTransition(req.Status) {
		err = model.ErrInvalidTransition
		return nil, err
	}

	moved, err := s.orderRepo.TransitionStatus(ctx, tx, id, order.Status, req.Status)
	if err != nil {
		return nil, err
	}
	if !moved {
		err = model.ErrInvalidTransition
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(req.Status)).
		Msg("order status changed")

	order.Status = req.Status
	s.publish(ctx, order, model.EventOrderStatus)
	return order, nil
}

// openGatewayOrder asks the gateway for an order covering order's total.
// Any failure is reported as model.ErrGatewayUnavailable.
func (s *orderService) openGatewayOrder(ctx context.Context, order *model.Order) (*payment.Order, error) {
	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	gwOrder, err := s.gateway.CreateOrder(gwCtx, payment.OrderRequest{
		Amount:   model.MinorUnits(order.TotalAmount),
		Currency: s.currency,
		Receipt:  order.ID.String(),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Bool("timeout", errors.Is(err, context.DeadlineExceeded)).
			Msg("payment gateway order failed")
		return nil, model.ErrGatewayUnavailable
	}
	return gwOrder, nil
}

func (s *orderService) checkoutResponse(order *model.Order, gatewayOrderID string) *model.CheckoutResponse {
	return &model.CheckoutResponse{
		OrderID:          order.ID,
		GatewayOrderID:   gatewayOrderID,
		Amount:           model.MinorUnits(order.TotalAmount),
		Currency:         s.currency,
		GatewayPublicKey: s.gateway.PublicKey(),
	}
}

func (s *orderService) publish(ctx context.Context, order *model.Order, eventType string) {
	publishOrderEvent(ctx, s.publisher, s.logger, order, eventType)
}

// publishOrderEvent sends a best-effort notification about order.
func publishOrderEvent(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, order *model.Order, eventType string) {
	event := model.Event{
		Type:      eventType,
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		Status:    string(order.Status),
		Data:      map[string]any{"total_amount": order.TotalAmount.StringFixed(2)},
		Timestamp: time.Now().Unix(),
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("order_id", event.OrderID).Str("type", eventType).Msg("failed to publish order event")
	}
}
