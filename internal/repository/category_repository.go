package repository

import (
	"context"
	"errors"
	"fmt"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, vendor_id, name, color, bg_color, icon, subcategories, created_at, updated_at`

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

func scanCategory(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.VendorID, &c.Name, &c.Color, &c.BgColor, &c.Icon, &c.Subcategories, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoryRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE vendor_id = $1 ORDER BY name`, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := collect(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND vendor_id = $2`, id, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (id, vendor_id, name, color, bg_color, icon, subcategories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.VendorID, c.Name, c.Color, c.BgColor, c.Icon, c.Subcategories, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update replaces a category owned by c.VendorID. CreatedAt is refreshed from the stored row.
func (r *categoryRepository) Update(ctx context.Context, c *model.Category) (bool, error) {
	query := `
		UPDATE categories
		SET name = $3, color = $4, bg_color = $5, icon = $6, subcategories = $7, updated_at = $8
		WHERE id = $1 AND vendor_id = $2
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		c.ID, c.VendorID, c.Name, c.Color, c.BgColor, c.Icon, c.Subcategories, c.UpdatedAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		return false, fmt.Errorf("failed to update category: %w", err)
	}
	return true, nil
}

// Delete removes a category. Products keep their category_id.
func (r *categoryRepository) Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
