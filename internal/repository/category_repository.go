package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Slug, c.Description, c.IsActive, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) CreateSubcategory(ctx context.Context, s *model.Subcategory) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subcategories (id, category_id, name, slug, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.CategoryID, s.Name, s.Slug, s.Description, s.IsActive, s.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrSlugTaken
		case isForeignKeyViolation(err):
			return model.NewValidationError("category_id", "Category does not exist.")
		}
		return fmt.Errorf("failed to create subcategory: %w", err)
	}
	return nil
}

func (r *categoryRepository) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]model.Subcategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category_id, name, slug, description, is_active, created_at
		FROM subcategories
		WHERE category_id = $1 AND is_active
		ORDER BY name
	`, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to query subcategories")
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	subs := []model.Subcategory{}
	for rows.Next() {
		var s model.Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *categoryRepository) GetSubcategory(ctx context.Context, id uuid.UUID) (*model.Subcategory, error) {
	var s model.Subcategory
	err := r.pool.QueryRow(ctx, `
		SELECT id, category_id, name, slug, description, is_active, created_at
		FROM subcategories WHERE id = $1
	`, id).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query subcategory: %w", err)
	}
	return &s, nil
}
