package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bazaar/internal/config"

	"github.com/rs/zerolog"
)

// Razorpay is a Gateway backed by the Razorpay orders API.
type Razorpay struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	logger    zerolog.Logger
}

// NewRazorpay creates a gateway client from configuration.
func NewRazorpay(cfg config.GatewayConfig, logger zerolog.Logger) *Razorpay {
	return &Razorpay{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger.With().Str("component", "payment_gateway").Logger(),
	}
}

type createOrderBody struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type errorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a gateway order for req.Amount minor units.
func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload, err := json.Marshal(createOrderBody{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Receipt:        req.Receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrGateway, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error().Err(err).Str("receipt", req.Receipt).Msg("failed to reach payment gateway")
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(body, &e)
		r.logger.Error().
			Int("status", resp.StatusCode).
			Str("code", e.Error.Code).
			Str("description", e.Error.Description).
			Str("receipt", req.Receipt).
			Msg("payment gateway rejected order")
		return nil, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, e.Error.Description)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrGateway)
	}

	r.logger.Debug().
		Str("gateway_order_id", order.ID).
		Int64("amount", order.Amount).
		Str("receipt", req.Receipt).
		Msg("gateway order created")

	return &order, nil
}

func (r *Razorpay) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(r.keySecret, gatewayOrderID, paymentID, signature)
}

func (r *Razorpay) PublicKey() string {
	return r.keyID
}
