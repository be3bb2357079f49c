package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, app http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func login(t *testing.T, app http.Handler, email, password string) string {
	t.Helper()
	w := do(t, app, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.AuthResponse](t, w).Token
}

func register(t *testing.T, app http.Handler, email string, vendor bool) string {
	t.Helper()
	w := do(t, app, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Email: email, Name: "Test " + email, Password: "correct-horse", IsVendor: vendor,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.AuthResponse](t, w).Token
}

type marketplace struct {
	app         http.Handler
	gateway     *FakeGateway
	customer    string
	vendor      string
	staff       string
	category    uuid.UUID
	subcategory uuid.UUID
	product     uuid.UUID
}

// newMarketplace registers the three roles and lists one directly sold
// product priced at 499.50.
func newMarketplace(t *testing.T, testDB *TestDB) *marketplace {
	t.Helper()

	gw := NewFakeGateway(t)
	app := NewApp(t, testDB.Pool, gw.URL)

	SeedStaff(t, testDB.Pool, "ops@bazaar.test", "staff-password")
	m := &marketplace{
		app:      app,
		gateway:  gw,
		staff:    login(t, app, "ops@bazaar.test", "staff-password"),
		vendor:   register(t, app, "seller@bazaar.test", true),
		customer: register(t, app, "buyer@bazaar.test", false),
	}

	w := do(t, app, http.MethodPost, "/api/categories", m.staff, model.CategoryRequest{Name: "Power Tools"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[model.Category](t, w)

	w = do(t, app, http.MethodPost, "/api/subcategories", m.staff, model.CategoryRequest{CategoryID: &category.ID, Name: "Drills"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	subcategory := decode[model.Subcategory](t, w)

	w = do(t, app, http.MethodPost, "/api/products", m.vendor, map[string]any{
		"category_id":    category.ID,
		"subcategory_id": subcategory.ID,
		"name":           "Hammer Drill",
		"price":          "499.50",
		"selling_method": model.SellingDirect,
		"stock_quantity": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m.product = decode[model.Product](t, w).ID
	m.category = category.ID
	m.subcategory = subcategory.ID

	return m
}

func (m *marketplace) addToCart(t *testing.T, quantity int) uuid.UUID {
	t.Helper()
	return m.addToCartAs(t, m.customer, quantity)
}

func (m *marketplace) addToCartAs(t *testing.T, token string, quantity int) uuid.UUID {
	t.Helper()
	w := do(t, m.app, http.MethodPost, "/api/cart", token, model.AddToCartRequest{ProductID: m.product, Quantity: quantity})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.CartEntry](t, w).ID
}

func (m *marketplace) checkout(t *testing.T, entries ...uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, m.app, http.MethodPost, "/api/orders", m.customer, map[string]any{
		"cart_items":        entries,
		"shipping_address":  "12 MG Road",
		"city":              "Bengaluru",
		"state":             "Karnataka",
		"pin_code":          "560001",
		"phone":             "+919800000000",
		"expected_delivery": time.Now().AddDate(0, 0, 7).Format(model.DateLayout),
	})
}

func (m *marketplace) webhook(t *testing.T, checkout model.CheckoutResponse, signature string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, m.app, http.MethodPost, "/api/payments/webhook", "", model.PaymentWebhookRequest{
		OrderID:          checkout.OrderID,
		GatewayOrderID:   checkout.GatewayOrderID,
		GatewayPaymentID: "pay_TEST0001",
		GatewaySignature: signature,
	})
}

func TestCheckoutAndPayment_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)

	t.Run("Paid order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		entry := m.addToCart(t, 2)
		w := m.checkout(t, entry)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		checkout := decode[model.CheckoutResponse](t, w)
		assert.Equal(t, int64(99900), checkout.Amount)
		assert.Equal(t, "INR", checkout.Currency)
		assert.Equal(t, "rzp_test_key", checkout.GatewayPublicKey)
		assert.NotEmpty(t, checkout.GatewayOrderID)

		// Checked-out entries leave the cart
		w = do(t, m.app, http.MethodGet, "/api/cart", m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[model.CartView](t, w).Items)

		signature := payment.Sign(gatewaySecret, checkout.GatewayOrderID, "pay_TEST0001")
		w = m.webhook(t, checkout, signature)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.OrderPaid, decode[model.PaymentResult](t, w).Status)

		// Replayed callbacks are acknowledged without changing anything
		w = m.webhook(t, checkout, signature)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.OrderPaid, decode[model.PaymentResult](t, w).Status)

		w = do(t, m.app, http.MethodPost, "/api/orders/"+checkout.OrderID.String()+"/retry-payment", m.customer, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = do(t, m.app, http.MethodGet, "/api/orders/"+checkout.OrderID.String(), m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[model.OrderDetail](t, w)
		assert.Equal(t, model.OrderPaid, detail.Status)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, 2, detail.Items[0].Quantity)
		require.NotNil(t, detail.Delivery)
		assert.Equal(t, "Bengaluru", detail.Delivery.City)

		// Orders are private to their owner
		w = do(t, m.app, http.MethodGet, "/api/orders/"+checkout.OrderID.String(), m.vendor, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad signature fails the order and retry reopens it", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		w := m.checkout(t, m.addToCart(t, 1))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		checkout := decode[model.CheckoutResponse](t, w)

		w = m.webhook(t, checkout, "deadbeef")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodePaymentVerify, decode[model.ErrorResponse](t, w).Error)

		w = do(t, m.app, http.MethodGet, "/api/orders/"+checkout.OrderID.String(), m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.OrderFailed, decode[model.OrderDetail](t, w).Status)

		w = do(t, m.app, http.MethodPost, "/api/orders/"+checkout.OrderID.String()+"/retry-payment", m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		retry := decode[model.CheckoutResponse](t, w)
		assert.Equal(t, checkout.OrderID, retry.OrderID)
		assert.NotEqual(t, checkout.GatewayOrderID, retry.GatewayOrderID)
		assert.Equal(t, checkout.Amount, retry.Amount)

		// The superseded gateway order can no longer settle the order
		w = m.webhook(t, checkout, payment.Sign(gatewaySecret, checkout.GatewayOrderID, "pay_TEST0001"))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = m.webhook(t, retry, payment.Sign(gatewaySecret, retry.GatewayOrderID, "pay_TEST0001"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.OrderPaid, decode[model.PaymentResult](t, w).Status)
	})

	t.Run("Gateway outage keeps the cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		entry := m.addToCart(t, 1)
		m.gateway.Fail.Store(true)
		w := m.checkout(t, entry)
		m.gateway.Fail.Store(false)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, model.ErrCodeGatewayUnavailable, decode[model.ErrorResponse](t, w).Error)

		w = do(t, m.app, http.MethodGet, "/api/cart", m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		items := decode[model.CartView](t, w).Items
		require.Len(t, items, 1)
		assert.Equal(t, entry, items[0].ID)

		w = do(t, m.app, http.MethodGet, "/api/orders", m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]model.Order](t, w))
	})

	t.Run("Another customer's cart entry", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		other := register(t, m.app, "other-buyer@bazaar.test", false)
		own := m.addToCart(t, 1)
		foreign := m.addToCartAs(t, other, 3)

		w := m.checkout(t, own, foreign)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeCartEntryNotFound, decode[model.ErrorResponse](t, w).Error)

		// Nothing was written and both carts are intact
		assertRowCount(t, testDB, "orders", 0)
		assertRowCount(t, testDB, "order_items", 0)
		assertRowCount(t, testDB, "deliveries", 0)
		assertRowCount(t, testDB, "cart_entries", 2)

		w = m.checkout(t, uuid.New())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertRowCount(t, testDB, "orders", 0)
	})

	t.Run("Prices are frozen at checkout", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		w := m.checkout(t, m.addToCart(t, 2))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		checkout := decode[model.CheckoutResponse](t, w)

		w = do(t, m.app, http.MethodPut, "/api/products/"+m.product.String(), m.vendor, map[string]any{
			"category_id":    m.category,
			"subcategory_id": m.subcategory,
			"name":           "Hammer Drill",
			"price":          "749.00",
			"selling_method": model.SellingDirect,
			"stock_quantity": 10,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decode[model.Product](t, w).Price.Equal(decimal.RequireFromString("749.00")))

		w = do(t, m.app, http.MethodGet, "/api/orders/"+checkout.OrderID.String(), m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[model.OrderDetail](t, w)
		assert.True(t, detail.TotalAmount.Equal(decimal.RequireFromString("999.00")), "total %s", detail.TotalAmount)
		require.Len(t, detail.Items, 1)
		assert.True(t, detail.Items[0].Price.Equal(decimal.RequireFromString("499.50")), "price %s", detail.Items[0].Price)

		// Retrying charges the frozen total, not the new price
		w = m.webhook(t, checkout, "deadbeef")
		require.Equal(t, http.StatusBadRequest, w.Code)
		w = do(t, m.app, http.MethodPost, "/api/orders/"+checkout.OrderID.String()+"/retry-payment", m.customer, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, int64(99900), decode[model.CheckoutResponse](t, w).Amount)
	})

	t.Run("Webhook for an unknown order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		checkout := model.CheckoutResponse{OrderID: uuid.New(), GatewayOrderID: "order_UNKNOWN"}
		w := m.webhook(t, checkout, payment.Sign(gatewaySecret, checkout.GatewayOrderID, "pay_TEST0001"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodePaymentVerify, decode[model.ErrorResponse](t, w).Error)
	})

	t.Run("Concurrent checkouts of the same entry", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		entry := m.addToCart(t, 1)

		var wg sync.WaitGroup
		codes := make([]int, 2)
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				codes[i] = m.checkout(t, entry).Code
			}(i)
		}
		wg.Wait()

		assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusBadRequest}, codes)
		assertRowCount(t, testDB, "orders", 1)
		assertRowCount(t, testDB, "order_items", 1)
		assertRowCount(t, testDB, "deliveries", 1)
		assertRowCount(t, testDB, "cart_entries", 0)
	})

	t.Run("Concurrent duplicate webhooks", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		m := newMarketplace(t, testDB)

		w := m.checkout(t, m.addToCart(t, 1))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		checkout := decode[model.CheckoutResponse](t, w)
		signature := payment.Sign(gatewaySecret, checkout.GatewayOrderID, "pay_TEST0001")

		var wg sync.WaitGroup
		results := make([]*httptest.ResponseRecorder, 4)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = m.webhook(t, checkout, signature)
			}(i)
		}
		wg.Wait()

		for _, w := range results {
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, model.OrderPaid, decode[model.PaymentResult](t, w).Status)
		}

		var status, paymentID string
		err := testDB.Pool.QueryRow(context.Background(),
			`SELECT status, gateway_payment_id FROM orders WHERE id = $1`, checkout.OrderID).Scan(&status, &paymentID)
		require.NoError(t, err)
		assert.Equal(t, string(model.OrderPaid), status)
		assert.Equal(t, "pay_TEST0001", paymentID)
	})
}

func assertRowCount(t *testing.T, testDB *TestDB, table string, expected int) {
	t.Helper()
	var n int
	require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	assert.Equal(t, expected, n, table)
}

func TestHealth_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	app := NewApp(t, testDB.Pool, "http://127.0.0.1:1")

	w := do(t, app, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
