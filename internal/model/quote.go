package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus is the state of a price quote request.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// Quote is a buyer's request for a vendor price.
type Quote struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               uuid.UUID        `json:"user_id"`
	ProductID            uuid.UUID        `json:"product_id"`
	Quantity             int              `json:"quantity"`
	Message              string           `json:"message"`
	Requirements         *string          `json:"requirements,omitempty"`
	ExpectedDeliveryDate *Date            `json:"expected_delivery_date,omitempty"`
	Status               QuoteStatus      `json:"status"`
	VendorResponse       *string          `json:"vendor_response,omitempty"`
	QuotedPrice          *decimal.Decimal `json:"quoted_price,omitempty"`
	ExpiresAt            *time.Time       `json:"expires_at,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// CreateQuoteRequest asks a vendor to price a product.
type CreateQuoteRequest struct {
	ProductID            uuid.UUID `json:"product_id"`
	Quantity             int       `json:"quantity"`
	Message              string    `json:"message"`
	Requirements         *string   `json:"requirements,omitempty"`
	ExpectedDeliveryDate *Date     `json:"expected_delivery_date,omitempty"`
}

func (r *CreateQuoteRequest) Validate() error {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	var v Validator
	v.Check(r.ProductID != uuid.Nil, "product_id", "This field is required.")
	v.Check(r.Quantity >= 1, "quantity", "Quantity must be at least 1.")
	v.Required(r.Message, "message")
	return v.Err()
}

// VendorQuoteRequest is a vendor's answer to a quote.
type VendorQuoteRequest struct {
	Status         QuoteStatus      `json:"status"`
	VendorResponse *string          `json:"vendor_response,omitempty"`
	QuotedPrice    *decimal.Decimal `json:"quoted_price,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

func (r VendorQuoteRequest) Validate() error {
	var v Validator
	switch r.Status {
	case QuoteApproved:
		if r.QuotedPrice == nil {
			v.Add("quoted_price", "Quoted price is required when approving a quote.")
		} else {
			v.Check(r.QuotedPrice.IsPositive(), "quoted_price", "Quoted price must be greater than zero.")
		}
	case QuoteRejected, QuoteExpired:
	default:
		v.Add("status", "Status must be approved, rejected or expired.")
	}
	return v.Err()
}
