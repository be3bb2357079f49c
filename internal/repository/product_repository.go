package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	txBeginner
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		txBeginner: txBeginner{pool: pool},
		pool:       pool,
		logger:     logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `
	id, vendor_id, category_id, subcategory_id, name, slug, description, manufacturer, model,
	price, type, selling_method, is_active, stock_quantity, min_order_quantity,
	is_rental_available, rental_price_per_day, min_rental_days, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.VendorID, &p.CategoryID, &p.SubcategoryID, &p.Name, &p.Slug,
		&p.Description, &p.Manufacturer, &p.Model,
		&p.Price, &p.Type, &p.SellingMethod, &p.IsActive, &p.StockQuantity, &p.MinOrderQuantity,
		&p.IsRentalAvailable, &p.RentalPricePerDay, &p.MinRentalDays, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

// ListByVendor retrieves every product owned by vendorID.
func (r *productRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE vendor_id = $1
		ORDER BY created_at DESC, id
	`, vendorID)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

// GetForUpdate retrieves and row-locks a product within tx.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id), &p)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		p.ID, p.VendorID, p.CategoryID, p.SubcategoryID, p.Name, p.Slug, p.Description, p.Manufacturer, p.Model,
		p.Price, p.Type, p.SellingMethod, p.IsActive, p.StockQuantity, p.MinOrderQuantity,
		p.IsRentalAvailable, p.RentalPricePerDay, p.MinRentalDays, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return r.mapWriteError(err, p.ID, "create")
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created successfully")
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET
			category_id = $2, subcategory_id = $3, name = $4, slug = $5, description = $6,
			manufacturer = $7, model = $8, price = $9, type = $10, selling_method = $11,
			is_active = $12, stock_quantity = $13, min_order_quantity = $14,
			is_rental_available = $15, rental_price_per_day = $16, min_rental_days = $17,
			updated_at = $18
		WHERE id = $1
	`,
		p.ID, p.CategoryID, p.SubcategoryID, p.Name, p.Slug, p.Description,
		p.Manufacturer, p.Model, p.Price, p.Type, p.SellingMethod,
		p.IsActive, p.StockQuantity, p.MinOrderQuantity,
		p.IsRentalAvailable, p.RentalPricePerDay, p.MinRentalDays,
		p.UpdatedAt,
	)
	if err != nil {
		return r.mapWriteError(err, p.ID, "update")
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) mapWriteError(err error, id uuid.UUID, op string) error {
	switch {
	case isUniqueViolation(err):
		return model.ErrSlugTaken
	case isForeignKeyViolation(err):
		return model.NewValidationError("category_id", "Category or subcategory does not exist.")
	case isCheckViolation(err):
		return model.NewValidationError("price", "Product values violate catalog rules.")
	}
	r.logger.Error().Err(err).Str("product_id", id.String()).Msgf("failed to %s product", op)
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// AddImage inserts an image. The first image of a product becomes its main image.
func (r *productRepository) AddImage(ctx context.Context, img *model.ProductImage) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO product_images (id, product_id, url, storage_key, is_main, alt_text, created_at)
		VALUES ($1, $2, $3, $4,
			NOT EXISTS (SELECT 1 FROM product_images WHERE product_id = $2),
			$5, $6)
		RETURNING is_main
	`, img.ID, img.ProductID, img.URL, img.StorageKey, img.AltText, img.CreatedAt).Scan(&img.IsMain)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		return fmt.Errorf("failed to create product image: %w", err)
	}
	return nil
}

func (r *productRepository) ListImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, url, storage_key, is_main, alt_text, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY is_main DESC, created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := []model.ProductImage{}
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.StorageKey, &img.IsMain, &img.AltText, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DecrementStock lowers stock for each item, never below zero.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $2, 0), updated_at = NOW()
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ProductID, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to decrement stock")
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	return nil
}
