package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartEntry is a user's intent to buy a quantity of one product.
type CartEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is a cart entry joined with the product's current price.
type CartLine struct {
	CartEntry
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// CartView is the caller's cart with a running total.
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// WishlistEntry marks a product a user wants to keep an eye on.
type WishlistEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AddToCartRequest adds quantity of a product to the cart.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r *AddToCartRequest) Validate() error {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	var v Validator
	v.Check(r.ProductID != uuid.Nil, "product_id", "This field is required.")
	v.Check(r.Quantity >= 1, "quantity", "Quantity must be at least 1.")
	return v.Err()
}

// UpdateCartRequest sets the quantity of an existing entry.
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (r UpdateCartRequest) Validate() error {
	var v Validator
	v.Check(r.Quantity >= 1, "quantity", "Quantity must be at least 1.")
	return v.Err()
}

// AddToWishlistRequest adds a product to the wishlist.
type AddToWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

func (r AddToWishlistRequest) Validate() error {
	var v Validator
	v.Check(r.ProductID != uuid.Nil, "product_id", "This field is required.")
	return v.Err()
}
