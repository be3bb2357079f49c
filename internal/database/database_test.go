package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"bazaar/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSchema_DeclaresEveryTable(t *testing.T) {
	for _, table := range []string{
		"users", "categories", "subcategories", "products", "product_images", "cart_entries",
		"wishlist_entries", "orders", "order_items", "deliveries", "quotes", "rentals", "reviews",
	} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

func TestNewPool_InvalidConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "invalid-host.localdomain",
		Port:            5432,
		User:            "user",
		Password:        "pass",
		Database:        "testdb",
		MaxConnections:  2,
		MinConnections:  0,
		MaxConnLifetime: time.Minute,
		ConnectAttempts: 1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestNewPool_AndMigrate(t *testing.T) {
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
	defer pgContainer.Terminate(ctx)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		MaxConnections:  4,
		MinConnections:  1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	// Applying twice must succeed.
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, Migrate(ctx, pool, zerolog.Nop()))

	var tables int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public'
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(Schema(), "CREATE TABLE"), tables)
}
