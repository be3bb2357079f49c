package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// rentalService implements RentalService.
type rentalService struct {
	rentalRepo  repository.RentalRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewRentalService creates a new rental service.
func NewRentalService(rentalRepo repository.RentalRepository, productRepo repository.ProductRepository, logger zerolog.Logger) RentalService {
	return &rentalService{
		rentalRepo:  rentalRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "rental").Logger(),
	}
}

// Availability prices a date range and reports whether it is free.
func (s *rentalService) Availability(ctx context.Context, productID uuid.UUID, want model.DateRange) (*model.Availability, error) {
	if err := validateRange(want); err != nil {
		return nil, err
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, model.ErrProductNotFound
	}

	result := &model.Availability{Days: want.Days(), RentalPrice: decimal.Zero}
	if !rentable(p) {
		return result, nil
	}

	existing, err := s.rentalRepo.ListBlocking(ctx, nil, p.ID, want, uuid.Nil)
	if err != nil {
		return nil, err
	}
	// Unavailable ranges are not priced.
	if result.Available = model.IsAvailableForRental(p, existing, want); result.Available {
		result.RentalPrice = model.RentalPrice(*p.RentalPricePerDay, want)
	}
	return result, nil
}

// Create books a product for a date range. The product row stays locked while
// availability is checked so overlapping bookings serialize.
func (s *rentalService) Create(ctx context.Context, actor model.Actor, req model.CreateRentalRequest) (_ *model.Rental, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	want := req.Range()

	tx, err := s.rentalRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	p, err := s.productRepo.GetForUpdate(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		err = model.ErrProductNotFound
		return nil, err
	}
	if !rentable(p) {
		err = model.NewValidationError("product_id", "This product is not available for rental.")
		return nil, err
	}
	if want.Days() < p.MinRentalDays {
		err = model.NewValidationError("end_date", fmt.Sprintf("Minimum rental period is %d days.", p.MinRentalDays))
		return nil, err
	}

	existing, err := s.rentalRepo.ListBlocking(ctx, tx, p.ID, want, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if !model.IsAvailableForRental(p, existing, want) {
		err = model.ErrNotAvailable
		return nil, err
	}

	now := time.Now().UTC()
	rental := &model.Rental{
		ID:              uuid.New(),
		UserID:          actor.UserID,
		ProductID:       p.ID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalDays:       want.Days(),
		TotalPrice:      model.RentalPrice(*p.RentalPricePerDay, want),
		SecurityDeposit: decimal.Zero,
		Status:          model.RentalPending,
		Notes:           req.Notes,
		DeliveryAddress: req.DeliveryAddress,
		PickupAddress:   req.PickupAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err = s.rentalRepo.Create(ctx, tx, rental); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	s.logger.Info().
		Str("rental_id", rental.ID.String()).
		Str("product_id", p.ID.String()).
		Int("days", rental.TotalDays).
		Str("total_price", rental.TotalPrice.StringFixed(2)).
		Msg("rental requested")
	return rental, nil
}

func (s *rentalService) ListMine(ctx context.Context, actor model.Actor) ([]model.Rental, error) {
	return nonNil(s.rentalRepo.ListByUser(ctx, actor.UserID))
}

func (s *rentalService) ListForVendor(ctx context.Context, actor model.Actor) ([]model.Rental, error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	return nonNil(s.rentalRepo.ListByVendor(ctx, actor.UserID))
}

// Respond applies the vendor's status change. Approval re-checks the dates
// against other approved or active rentals.
func (s *rentalService) Respond(ctx context.Context, actor model.Actor, id uuid.UUID, req model.VendorRentalRequest) (_ *model.Rental, err error) {
	if err := Authorize(actor, Resource{Kind: VendorOnly}); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.rentalRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update rental: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	rental, err := s.rentalRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		err = model.ErrNotFound
		return nil, err
	}
	p, err := s.productRepo.GetForUpdate(ctx, tx, rental.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		err = model.ErrNotFound
		return nil, err
	}
	if err = authorizeLookup(actor, Resource{Kind: OwnedByVendor, OwnerID: p.VendorID}, model.ErrNotFound); err != nil {
		return nil, err
	}

	if req.Status != rental.Status {
		if !rental.Status.CanTransition(req.Status) {
			err = model.ErrInvalidTransition
			return nil, err
		}
		if req.Status == model.RentalApproved {
			want := model.DateRange{Start: rental.StartDate, End: rental.EndDate}
			var existing []model.Rental
			existing, err = s.rentalRepo.ListBlocking(ctx, tx, p.ID, want, rental.ID)
			if err != nil {
				return nil, err
			}
			if len(existing) > 0 {
				err = model.ErrNotAvailable
				return nil, err
			}
		}
	}

	previous := rental.Status
	rental.Status = req.Status
	if req.Notes != nil {
		rental.Notes = req.Notes
	}
	if req.SecurityDeposit != nil {
		rental.SecurityDeposit = *req.SecurityDeposit
	}
	if req.PickupAddress != nil {
		rental.PickupAddress = req.PickupAddress
	}
	rental.UpdatedAt = time.Now().UTC()

	if err = s.rentalRepo.Update(ctx, tx, rental); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update rental: %w", err)
	}

	s.logger.Info().
		Str("rental_id", rental.ID.String()).
		Str("from", string(previous)).
		Str("to", string(rental.Status)).
		Msg("rental updated")
	return rental, nil
}

func rentable(p *model.Product) bool {
	return p.IsRentalAvailable && p.RentalPricePerDay != nil
}

func validateRange(r model.DateRange) error {
	var v model.Validator
	v.Check(!r.Start.IsZero(), "start_date", "This field is required.")
	v.Check(!r.End.IsZero(), "end_date", "This field is required.")
	if !r.Start.IsZero() && !r.End.IsZero() {
		v.Check(!r.End.Before(r.Start), "end_date", "End date cannot be before start date.")
	}
	return v.Err()
}
