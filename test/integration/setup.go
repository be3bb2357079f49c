package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/config"
	"bazaar/internal/database"
	"bazaar/internal/events"
	"bazaar/internal/handler"
	"bazaar/internal/media"
	"bazaar/internal/model"
	"bazaar/internal/payment"
	"bazaar/internal/repository"
	"bazaar/internal/router"
	"bazaar/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

const (
	gatewaySecret = "integration-secret"
	jwtSecret     = "integration-jwt-secret"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all rows, children first.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"deliveries", "order_items", "orders", "reviews", "rentals", "quotes",
		"cart_entries", "wishlist_entries", "product_images", "products",
		"subcategories", "categories", "users",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// FakeGateway imitates the gateway's order endpoint. Fail switches it to
// answering 503.
type FakeGateway struct {
	*httptest.Server
	Fail  atomic.Bool
	calls atomic.Int64
}

// NewFakeGateway starts a fake gateway, closed on test cleanup.
func NewFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()
	g := &FakeGateway{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if g.Fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":"SERVER_ERROR","description":"maintenance"}}`))
			return
		}

		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := g.calls.Add(1)
		_ = json.NewEncoder(w).Encode(payment.Order{
			ID:       fmt.Sprintf("order_TEST%04d", n),
			Amount:   body.Amount,
			Currency: body.Currency,
			Receipt:  body.Receipt,
			Status:   "created",
		})
	}))
	t.Cleanup(g.Close)
	return g
}

// NewApp wires the real services and router against pool and the gateway.
func NewApp(t *testing.T, pool *pgxpool.Pool, gatewayURL string) http.Handler {
	t.Helper()
	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	quoteRepo := repository.NewQuoteRepository(pool, logger)
	rentalRepo := repository.NewRentalRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	vendorRepo := repository.NewVendorRepository(pool, logger)

	gateway := payment.NewRazorpay(config.GatewayConfig{
		BaseURL:   gatewayURL,
		KeyID:     "rzp_test_key",
		KeySecret: gatewaySecret,
		Currency:  "INR",
		Timeout:   5 * time.Second,
	}, logger)
	publisher := events.Noop{}
	productCache := cache.Noop{}
	store := media.NewFallbackStore(nil, media.NewLocalStore(t.TempDir(), "/media", logger), false, logger)

	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour, logger)

	return router.New(router.Handlers{
		Health:   handler.NewHealthHandler(map[string]handler.Check{"postgres": pool.Ping}, logger),
		Auth:     handler.NewAuthHandler(authService, logger),
		Product:  handler.NewProductHandler(service.NewCatalogService(categoryRepo, productRepo, reviewRepo, productCache, store, 100, logger), 5, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(cartRepo, wishlistRepo, productRepo, logger), service.NewWishlistService(wishlistRepo, cartRepo, productRepo, logger), logger),
		Order:    handler.NewOrderHandler(service.NewOrderService(orderRepo, cartRepo, wishlistRepo, productRepo, deliveryRepo, gateway, publisher, "INR", 5*time.Second, logger), logger),
		Payment:  handler.NewPaymentHandler(service.NewPaymentService(orderRepo, gateway, publisher, logger), logger),
		Delivery: handler.NewDeliveryHandler(service.NewDeliveryService(deliveryRepo, orderRepo, publisher, logger), logger),
		Quote:    handler.NewQuoteHandler(service.NewQuoteService(quoteRepo, productRepo, logger), logger),
		Rental:   handler.NewRentalHandler(service.NewRentalService(rentalRepo, productRepo, logger), logger),
		Review:   handler.NewReviewHandler(service.NewReviewService(reviewRepo, productRepo, orderRepo, productCache, true, logger), logger),
		Vendor:   handler.NewVendorHandler(service.NewVendorService(vendorRepo, productRepo, logger), logger),
	}, authService, logger)
}

// SeedStaff inserts a staff account, which cannot be created through the API.
func SeedStaff(t *testing.T, pool *pgxpool.Pool, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	u := &model.User{
		ID: uuid.New(), Email: email, Name: "Staff", PasswordHash: string(hash),
		IsStaff: true, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := repository.NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), u); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
}
