package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/events"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// deliveryService implements DeliveryService.
type deliveryService struct {
	deliveryRepo repository.DeliveryRepository
	orderRepo    repository.OrderRepository
	publisher    events.Publisher
	now          func() time.Time
	logger       zerolog.Logger
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) DeliveryService {
	return &deliveryService{
		deliveryRepo: deliveryRepo,
		orderRepo:    orderRepo,
		publisher:    publisher,
		now:          time.Now,
		logger:       logger.With().Str("service", "delivery").Logger(),
	}
}

// Track returns the delivery's progress to the buyer or to staff.
func (s *deliveryService) Track(ctx context.Context, actor model.Actor, deliveryID uuid.UUID) (*model.DeliveryTracking, error) {
	d, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, model.ErrNotFound
	}

	order, _, err := s.orderRepo.GetByID(ctx, d.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrNotFound
	}
	if err := authorizeLookup(actor, Resource{Kind: OwnedByUserOrStaff, OwnerID: order.UserID}, model.ErrNotFound); err != nil {
		return nil, err
	}

	return &model.DeliveryTracking{
		DeliveryID:       d.ID,
		OrderID:          d.OrderID,
		Status:           d.Status,
		ExpectedDelivery: d.ExpectedDelivery,
		DeliveryDate:     d.DeliveryDate,
	}, nil
}

// UpdateStatus moves a delivery to a new status. Marking it DELIVERED stamps
// the delivery date, today unless given.
func (s *deliveryService) UpdateStatus(ctx context.Context, actor model.Actor, deliveryID uuid.UUID, req model.DeliveryStatusRequest) (*model.Delivery, error) {
	if err := Authorize(actor, Resource{Kind: StaffOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deliveredOn := req.DeliveryDate
	if req.Status == model.DeliveryDelivered && deliveredOn == nil {
		today := model.DateOf(s.now())
		deliveredOn = &today
	}

	d, err := s.deliveryRepo.UpdateStatus(ctx, deliveryID, req.Status, deliveredOn)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("delivery_id", d.ID.String()).
		Str("order_id", d.OrderID.String()).
		Str("status", string(d.Status)).
		Msg("delivery status updated")

	event := model.Event{
		Type:      model.EventDeliveryUpdated,
		OrderID:   d.OrderID.String(),
		Status:    string(d.Status),
		Data:      map[string]any{"delivery_id": d.ID.String()},
		Timestamp: s.now().Unix(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("delivery_id", d.ID.String()).Msg("failed to publish delivery event")
	}
	return d, nil
}
