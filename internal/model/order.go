package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the payment lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderFailed    OrderStatus = "FAILED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderFailed, OrderCancelled, OrderRefunded},
	OrderFailed:  {OrderPending},
	OrderPaid:    {OrderCancelled, OrderRefunded},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderFailed, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Order is a purchase awaiting or having completed payment.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           OrderStatus     `json:"status"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	GatewaySignature *string         `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem is a line of an order with its price frozen at checkout.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal returns price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal sums the subtotals of items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// MinorUnits converts an amount to the gateway's smallest currency unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// DeliveryStatus is the fulfilment state of a delivery.
type DeliveryStatus string

const (
	DeliveryProcessing DeliveryStatus = "PROCESSING"
	DeliveryShipped    DeliveryStatus = "SHIPPED"
	DeliveryInTransit  DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered  DeliveryStatus = "DELIVERED"
	DeliveryReturned   DeliveryStatus = "RETURNED"
	DeliveryCancelled  DeliveryStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryProcessing, DeliveryShipped, DeliveryInTransit, DeliveryDelivered, DeliveryReturned, DeliveryCancelled:
		return true
	}
	return false
}

// Delivery is the shipment created alongside every order.
type Delivery struct {
	ID               uuid.UUID      `json:"id"`
	OrderID          uuid.UUID      `json:"order_id"`
	Status           DeliveryStatus `json:"status"`
	ShippingAddress  string         `json:"shipping_address"`
	City             string         `json:"city"`
	State            string         `json:"state"`
	PinCode          string         `json:"pin_code"`
	Phone            string         `json:"phone"`
	ExpectedDelivery Date           `json:"expected_delivery"`
	DeliveryDate     *Date          `json:"delivery_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// DeliveryTracking is the subset of a delivery shown to the buyer.
type DeliveryTracking struct {
	DeliveryID       uuid.UUID      `json:"delivery_id"`
	OrderID          uuid.UUID      `json:"order_id"`
	Status           DeliveryStatus `json:"status"`
	ExpectedDelivery Date           `json:"expected_delivery"`
	DeliveryDate     *Date          `json:"delivery_date"`
}

// ShippingDetails are the caller-supplied delivery fields.
type ShippingDetails struct {
	ShippingAddress  string `json:"shipping_address"`
	City             string `json:"city"`
	State            string `json:"state"`
	PinCode          string `json:"pin_code"`
	Phone            string `json:"phone"`
	ExpectedDelivery Date   `json:"expected_delivery"`
}

func (s ShippingDetails) validate(v *Validator) {
	v.Required(s.ShippingAddress, "shipping_address")
	v.Required(s.City, "city")
	v.Required(s.State, "state")
	v.Required(s.PinCode, "pin_code")
	v.Required(s.Phone, "phone")
	v.Check(!s.ExpectedDelivery.IsZero(), "expected_delivery", "This field is required.")
}

// NewDelivery builds the initial delivery row for an order.
func (s ShippingDetails) NewDelivery(orderID uuid.UUID, now time.Time) Delivery {
	return Delivery{
		ID:               uuid.New(),
		OrderID:          orderID,
		Status:           DeliveryProcessing,
		ShippingAddress:  strings.TrimSpace(s.ShippingAddress),
		City:             strings.TrimSpace(s.City),
		State:            strings.TrimSpace(s.State),
		PinCode:          strings.TrimSpace(s.PinCode),
		Phone:            strings.TrimSpace(s.Phone),
		ExpectedDelivery: s.ExpectedDelivery,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateOrderRequest checks out a set of the caller's cart entries.
type CreateOrderRequest struct {
	CartItems []uuid.UUID `json:"cart_items"`
	ShippingDetails
}

func (r CreateOrderRequest) Validate() error {
	var v Validator
	if len(r.CartItems) == 0 {
		v.Add("cart_items", "At least one cart item is required.")
	} else {
		seen := make(map[uuid.UUID]struct{}, len(r.CartItems))
		for _, id := range r.CartItems {
			if id == uuid.Nil {
				v.Add("cart_items", "Cart item ids must be valid.")
				break
			}
			if _, dup := seen[id]; dup {
				v.Add("cart_items", "Cart item ids must be unique.")
				break
			}
			seen[id] = struct{}{}
		}
	}
	r.ShippingDetails.validate(&v)
	return v.Err()
}

// OrderFromWishlistRequest checks out a single wishlist entry. The entry may
// also be named by wishlist_item_id.
type OrderFromWishlistRequest struct {
	WishlistID     uuid.UUID `json:"wishlist_id"`
	WishlistItemID uuid.UUID `json:"wishlist_item_id,omitempty"`
	ShippingDetails
}

// Normalize folds wishlist_item_id into WishlistID.
func (r *OrderFromWishlistRequest) Normalize() {
	if r.WishlistID == uuid.Nil {
		r.WishlistID = r.WishlistItemID
	}
}

func (r OrderFromWishlistRequest) Validate() error {
	var v Validator
	v.Check(r.WishlistID != uuid.Nil, "wishlist_id", "This field is required.")
	r.ShippingDetails.validate(&v)
	return v.Err()
}

// CheckoutResponse carries what the client needs to open the gateway checkout.
type CheckoutResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	GatewayPublicKey string    `json:"gateway_public_key"`
}

// OrderDetail is an order with its items and delivery.
type OrderDetail struct {
	Order
	Items    []OrderItem `json:"items"`
	Delivery *Delivery   `json:"delivery,omitempty"`
}

// PaymentWebhookRequest is the gateway's payment callback. The gateway's
// native field names are accepted alongside the generic ones.
type PaymentWebhookRequest struct {
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	GatewaySignature string    `json:"gateway_signature"`
	OrderID          uuid.UUID `json:"order_id"`

	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Normalize folds the gateway-native names into the generic fields.
func (r *PaymentWebhookRequest) Normalize() {
	if r.GatewayOrderID == "" {
		r.GatewayOrderID = r.RazorpayOrderID
	}
	if r.GatewayPaymentID == "" {
		r.GatewayPaymentID = r.RazorpayPaymentID
	}
	if r.GatewaySignature == "" {
		r.GatewaySignature = r.RazorpaySignature
	}
}

func (r PaymentWebhookRequest) Validate() error {
	var v Validator
	v.Required(r.GatewayOrderID, "gateway_order_id")
	v.Required(r.GatewayPaymentID, "gateway_payment_id")
	v.Required(r.GatewaySignature, "gateway_signature")
	v.Check(r.OrderID != uuid.Nil, "order_id", "This field is required.")
	return v.Err()
}

// PaymentResult reports the order state after a webhook.
type PaymentResult struct {
	OrderID uuid.UUID   `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

// OrderStatusRequest is an administrative status change.
type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

func (r OrderStatusRequest) Validate() error {
	var v Validator
	v.Check(r.Status == OrderCancelled || r.Status == OrderRefunded, "status", "Status must be CANCELLED or REFUNDED.")
	return v.Err()
}

// DeliveryStatusRequest updates a delivery's fulfilment state.
type DeliveryStatusRequest struct {
	Status       DeliveryStatus `json:"status"`
	DeliveryDate *Date          `json:"delivery_date,omitempty"`
}

func (r DeliveryStatusRequest) Validate() error {
	var v Validator
	v.Check(r.Status.Valid(), "status", "Unknown delivery status.")
	return v.Err()
}
