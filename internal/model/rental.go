package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalStatus is the lifecycle state of a rental.
type RentalStatus string

const (
	RentalPending  RentalStatus = "pending"
	RentalApproved RentalStatus = "approved"
	RentalRejected RentalStatus = "rejected"
	RentalActive   RentalStatus = "active"
	RentalReturned RentalStatus = "returned"
	RentalOverdue  RentalStatus = "overdue"
)

var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalPending:  {RentalApproved, RentalRejected},
	RentalApproved: {RentalActive, RentalRejected},
	RentalActive:   {RentalReturned, RentalOverdue},
	RentalOverdue:  {RentalReturned},
}

// CanTransition reports whether a rental may move from s to next.
func (s RentalStatus) CanTransition(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Blocks reports whether a rental in status s reserves its dates.
func (s RentalStatus) Blocks() bool {
	return s == RentalApproved || s == RentalActive
}

// Rental is a dated hire of a product. TotalDays and TotalPrice are fixed when
// the rental is created.
type Rental struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	StartDate       Date            `json:"start_date"`
	EndDate         Date            `json:"end_date"`
	TotalDays       int             `json:"total_days"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	Status          RentalStatus    `json:"status"`
	Notes           *string         `json:"notes,omitempty"`
	DeliveryAddress string          `json:"delivery_address"`
	PickupAddress   *string         `json:"pickup_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

// Days returns the inclusive number of days in r.
func (r DateRange) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Overlaps reports whether r and other share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !other.Start.After(r.End) && !other.End.Before(r.Start)
}

// RentalPrice is rate × inclusive days.
func RentalPrice(rate decimal.Decimal, r DateRange) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(r.Days())))
}

// IsAvailableForRental reports whether p can be rented for want given the
// product's existing rentals. Only approved and active rentals reserve dates.
func IsAvailableForRental(p *Product, existing []Rental, want DateRange) bool {
	if p == nil || !p.IsRentalAvailable {
		return false
	}
	for _, rental := range existing {
		if rental.ProductID != p.ID || !rental.Status.Blocks() {
			continue
		}
		if want.Overlaps(DateRange{Start: rental.StartDate, End: rental.EndDate}) {
			return false
		}
	}
	return true
}

// Availability is the answer to a rental date query.
type Availability struct {
	Available   bool            `json:"available"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	Days        int             `json:"days"`
}

// CreateRentalRequest asks to hire a product for a date range.
type CreateRentalRequest struct {
	ProductID       uuid.UUID `json:"product_id"`
	StartDate       Date      `json:"start_date"`
	EndDate         Date      `json:"end_date"`
	Notes           *string   `json:"notes,omitempty"`
	DeliveryAddress string    `json:"delivery_address"`
	PickupAddress   *string   `json:"pickup_address,omitempty"`
}

func (r CreateRentalRequest) Validate() error {
	var v Validator
	v.Check(r.ProductID != uuid.Nil, "product_id", "This field is required.")
	v.Check(!r.StartDate.IsZero(), "start_date", "This field is required.")
	v.Check(!r.EndDate.IsZero(), "end_date", "This field is required.")
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() {
		v.Check(r.EndDate.After(r.StartDate), "end_date", "End date must be after start date.")
	}
	v.Check(strings.TrimSpace(r.DeliveryAddress) != "", "delivery_address", "This field is required.")
	return v.Err()
}

// Range returns the requested dates.
func (r CreateRentalRequest) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// VendorRentalRequest is a vendor's response to a rental.
type VendorRentalRequest struct {
	Status          RentalStatus     `json:"status"`
	Notes           *string          `json:"notes,omitempty"`
	SecurityDeposit *decimal.Decimal `json:"security_deposit,omitempty"`
	PickupAddress   *string          `json:"pickup_address,omitempty"`
}

func (r VendorRentalRequest) Validate() error {
	var v Validator
	switch r.Status {
	case RentalPending, RentalApproved, RentalRejected, RentalActive, RentalReturned, RentalOverdue:
	default:
		v.Add("status", "Unknown rental status.")
	}
	if r.SecurityDeposit != nil {
		v.Check(!r.SecurityDeposit.IsNegative(), "security_deposit", "Security deposit cannot be negative.")
	}
	return v.Err()
}
