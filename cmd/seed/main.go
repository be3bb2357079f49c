// Command seed applies the schema and loads a small demo catalog: one staff
// account, one vendor, one customer, and a few products covering direct sale,
// quotes and rentals. It does nothing when the demo vendor already exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bazaar/internal/config"
	"bazaar/internal/database"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "bazaar-demo"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	users := repository.NewUserRepository(pool, logger)
	categories := repository.NewCategoryRepository(pool, logger)
	products := repository.NewProductRepository(pool, logger)

	existing, err := users.GetByEmail(ctx, "vendor@bazaar.test")
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info().Msg("demo data already present, nothing to do")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()

	account := func(email, name string, vendor, staff bool) (*model.User, error) {
		u := &model.User{
			ID:           uuid.New(),
			Email:        email,
			Name:         name,
			PasswordHash: string(hash),
			IsVendor:     vendor,
			IsStaff:      staff,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return u, users.Create(ctx, u)
	}

	if _, err := account("staff@bazaar.test", "Operations", false, true); err != nil {
		return err
	}
	vendor, err := account("vendor@bazaar.test", "Kumar Machine Tools", true, false)
	if err != nil {
		return err
	}
	if _, err := account("customer@bazaar.test", "Asha Rao", false, false); err != nil {
		return err
	}

	category := &model.Category{ID: uuid.New(), Name: "Machinery", Slug: "machinery", IsActive: true, CreatedAt: now}
	if err := categories.CreateCategory(ctx, category); err != nil {
		return err
	}
	subcategory := &model.Subcategory{ID: uuid.New(), CategoryID: category.ID, Name: "Workshop", Slug: "workshop", IsActive: true, CreatedAt: now}
	if err := categories.CreateSubcategory(ctx, subcategory); err != nil {
		return err
	}

	dailyRate := decimal.RequireFromString("1200.00")
	catalog := []model.Product{
		{
			Name: "Bench Drill 13mm", Price: decimal.RequireFromString("8499.00"),
			Type: model.ProductTypeNew, SellingMethod: model.SellingDirect, StockQuantity: 25,
		},
		{
			Name: "CNC Lathe", Price: decimal.RequireFromString("1250000.00"),
			Type: model.ProductTypeNew, SellingMethod: model.SellingQuote, StockQuantity: 2,
		},
		{
			Name: "Concrete Mixer", Price: decimal.RequireFromString("64000.00"),
			Type: model.ProductTypeUsed, SellingMethod: model.SellingBoth, StockQuantity: 4,
			IsRentalAvailable: true, RentalPricePerDay: &dailyRate, MinRentalDays: 2,
		},
	}
	for i := range catalog {
		p := &catalog[i]
		p.ID = uuid.New()
		p.VendorID = vendor.ID
		p.CategoryID = category.ID
		p.SubcategoryID = subcategory.ID
		p.Slug = model.Slugify(p.Name)
		p.IsActive = true
		p.MinOrderQuantity = 1
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := products.Create(ctx, p); err != nil {
			return err
		}
	}

	logger.Info().
		Int("products", len(catalog)).
		Str("password", demoPassword).
		Msg("demo data seeded")
	return nil
}
