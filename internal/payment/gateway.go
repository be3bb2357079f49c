// Package payment talks to the external payment gateway and verifies the
// signatures it attaches to payment confirmations.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrGateway wraps every failure to obtain a gateway order.
var ErrGateway = errors.New("payment gateway error")

// OrderRequest asks the gateway to open a payment order.
type OrderRequest struct {
	// Amount in minor currency units.
	Amount   int64
	Currency string
	// Receipt is our order id.
	Receipt string
}

// Order is the gateway's view of a payment order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates payment orders and checks payment signatures.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)

	// VerifySignature reports whether signature was produced by the gateway
	// for the given gateway order and payment.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool

	// PublicKey is the key id handed to clients to open the checkout widget.
	PublicKey() string
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID" keyed with secret.
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature against Sign in constant time.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
