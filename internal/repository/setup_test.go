package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bazaar/internal/database"
	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema
// and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// fixture holds rows most repository tests need.
type fixture struct {
	buyer       model.User
	vendor      model.User
	category    model.Category
	subcategory model.Subcategory
}

func seedFixture(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		buyer:  seedUser(t, pool, "buyer@example.com", false),
		vendor: seedUser(t, pool, "vendor@example.com", true),
	}

	categories := NewCategoryRepository(pool, zerolog.Nop())
	f.category = model.Category{ID: uuid.New(), Name: "Tools", Slug: "tools", IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, categories.CreateCategory(ctx, &f.category))

	f.subcategory = model.Subcategory{
		ID: uuid.New(), CategoryID: f.category.ID, Name: "Drills", Slug: "drills", IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, categories.CreateSubcategory(ctx, &f.subcategory))

	return f
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string, vendor bool) model.User {
	t.Helper()
	now := time.Now()
	u := model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		IsVendor:     vendor,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), &u))
	return u
}

var productSeq int

// seedProduct inserts an active product priced at price. mutate may adjust
// the product before insertion.
func seedProduct(t *testing.T, pool *pgxpool.Pool, f fixture, price string, mutate func(*model.Product)) model.Product {
	t.Helper()
	productSeq++
	now := time.Now()
	p := model.Product{
		ID:               uuid.New(),
		VendorID:         f.vendor.ID,
		CategoryID:       f.category.ID,
		SubcategoryID:    f.subcategory.ID,
		Name:             fmt.Sprintf("Product %03d", productSeq),
		Slug:             fmt.Sprintf("product-%03d", productSeq),
		Price:            decimal.RequireFromString(price),
		Type:             model.ProductTypeNew,
		SellingMethod:    model.SellingDirect,
		IsActive:         true,
		StockQuantity:    10,
		MinOrderQuantity: 1,
		MinRentalDays:    1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(t, NewProductRepository(pool, zerolog.Nop()).Create(context.Background(), &p))
	return p
}

func seedCartEntry(t *testing.T, pool *pgxpool.Pool, userID, productID uuid.UUID, quantity int) model.CartEntry {
	t.Helper()
	e := model.CartEntry{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity, UpdatedAt: time.Now()}
	require.NoError(t, NewCartRepository(pool, zerolog.Nop()).AddOrIncrement(context.Background(), pool, &e))
	return e
}

// seedOrder commits an order with one item per product at its current price.
func seedOrder(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, status model.OrderStatus, products ...model.Product) model.Order {
	t.Helper()
	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())

	now := time.Now()
	gatewayID := "order_" + uuid.NewString()[:8]
	order := model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         status,
		GatewayOrderID: &gatewayID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	items := make([]model.OrderItem, 0, len(products))
	for _, p := range products {
		items = append(items, model.OrderItem{ID: uuid.New(), OrderID: order.ID, ProductID: p.ID, Quantity: 1, Price: p.Price})
	}
	order.TotalAmount = model.OrderTotal(items)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, &order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
	return order
}
