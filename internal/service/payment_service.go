package service

import (
	"context"
	"fmt"

	"bazaar/internal/events"
	"bazaar/internal/model"
	"bazaar/internal/payment"
	"bazaar/internal/repository"

	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo repository.OrderRepository
	gateway   payment.Gateway
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment confirmation service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	gateway payment.Gateway,
	publisher events.Publisher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

// ConfirmPayment applies a gateway payment callback to the order it names.
// The order row stays locked from lookup to commit, so concurrent callbacks
// for the same order apply at most one transition.
func (s *paymentService) ConfirmPayment(ctx context.Context, req model.PaymentWebhookRequest) (*model.PaymentResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.logger.Warn().Str("order_id", req.OrderID.String()).Msg("payment callback for unknown order")
		return nil, model.ErrPaymentVerification
	}

	logger := s.logger.With().
		Str("order_id", order.ID.String()).
		Str("gateway_order_id", req.GatewayOrderID).
		Logger()

	// A callback for a superseded gateway order must not touch the order.
	if order.GatewayOrderID == nil || *order.GatewayOrderID != req.GatewayOrderID {
		logger.Warn().Msg("stale gateway order id in payment callback")
		return nil, model.ErrPaymentVerification
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		logger.Warn().Str("status", string(order.Status)).Msg("payment signature verification failed")
		if order.Status != model.OrderPending {
			return nil, model.ErrPaymentVerification
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
			publishOrderEvent(ctx, s.publisher, s.logger, order, model.EventOrderFailed)
		}
		return nil, model.ErrPaymentVerification
	}

	switch order.Status {
	case model.OrderPaid:
		logger.Info().Msg("payment already confirmed")
		return &model.PaymentResult{OrderID: order.ID, Status: model.OrderPaid}, nil
	case model.OrderPending:
	default:
		logger.Warn().Str("status", string(order.Status)).Msg("payment callback for order that is not pending")
		return nil, model.ErrInvalidTransition
	}

	paid, err := s.orderRepo.MarkPaid(ctx, tx, order.ID, req.GatewayPaymentID, req.GatewaySignature)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if !paid {
		return nil, model.ErrInvalidTransition
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	committed = true

	order.Status = model.OrderPaid
	logger.Info().Str("gateway_payment_id", req.GatewayPaymentID).Msg("payment confirmed")
	publishOrderEvent(ctx, s.publisher, s.logger, order, model.EventOrderPaid)

	return &model.PaymentResult{OrderID: order.ID, Status: model.OrderPaid}, nil
}
