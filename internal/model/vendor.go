package model

// VendorDashboard is the aggregate view shown to a vendor.
type VendorDashboard struct {
	Products struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
	} `json:"products"`
	Quotes struct {
		Total   int `json:"total"`
		Pending int `json:"pending"`
	} `json:"quotes"`
	Rentals struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"rentals"`
	Reviews struct {
		Total         int     `json:"total"`
		AverageRating float64 `json:"average_rating"`
	} `json:"reviews"`
}

// Event is a notification about an order or delivery change.
type Event struct {
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	UserID    string         `json:"user_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Event types.
const (
	EventOrderCreated    = "order.created"
	EventOrderPaid       = "order.paid"
	EventOrderFailed     = "order.failed"
	EventOrderStatus     = "order.status"
	EventDeliveryUpdated = "delivery.updated"
)
