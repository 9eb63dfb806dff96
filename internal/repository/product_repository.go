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

const productColumns = `p.id, p.vendor_id, p.name, p.description, p.category, p.category_id,
	p.price, p.stock, p.image_url, p.is_available, p.created_at, p.updated_at, p.last_restocked`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Category, &p.CategoryID,
		&p.Price, &p.Stock, &p.ImageURL, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt, &p.LastRestocked,
	)
	return p, err
}

func scanProductWithCategory(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Category, &p.CategoryID,
		&p.Price, &p.Stock, &p.ImageURL, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt, &p.LastRestocked,
		&p.CategoryName,
	)
	return p, err
}

// ListAvailable retrieves available products with pagination support.
func (r *productRepository) ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.is_available
		ORDER BY p.name, p.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collect(rows, scanProduct)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// ListByVendor retrieves every product of a vendor. A category id that no longer
// resolves is reported as "unknown".
func (r *productRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `,
			CASE
				WHEN p.category_id IS NULL THEN p.category
				ELSE COALESCE(c.name, 'unknown')
			END
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id AND c.vendor_id = p.vendor_id
		WHERE p.vendor_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query vendor products")
		return nil, fmt.Errorf("failed to query vendor products: %w", err)
	}

	products, err := collect(rows, scanProductWithCategory)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1)
		ORDER BY p.name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := collect(rows, scanProduct)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// GetForUpdate locks and returns a product owned by vendorID.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 AND p.vendor_id = $2 FOR UPDATE`

	p, err := scanProduct(tx.QueryRow(ctx, query, id, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to lock product")
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return &p, nil
}

const insertProduct = `
	INSERT INTO products (id, vendor_id, name, description, category, category_id, price, stock,
		image_url, is_available, created_at, updated_at, last_restocked)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

func insertProductArgs(p *model.Product) []any {
	return []any{
		p.ID, p.VendorID, p.Name, p.Description, p.Category, p.CategoryID, p.Price, p.Stock,
		p.ImageURL, p.IsAvailable, p.CreatedAt, p.UpdatedAt, p.LastRestocked,
	}
}

// Create inserts a product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	if _, err := r.pool.Exec(ctx, insertProduct, insertProductArgs(p)...); err != nil {
		if isOutOfRange(err) {
			return model.ErrValueOutOfRange
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created successfully")
	return nil
}

// CreateBatch inserts products within the provided transaction.
func (r *productRepository) CreateBatch(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range products {
		batch.Queue(insertProduct, insertProductArgs(&products[i])...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range products {
		if _, err := results.Exec(); err != nil {
			if isOutOfRange(err) {
				return fmt.Errorf("product %q: %w", products[i].Name, model.ErrValueOutOfRange)
			}
			r.logger.Error().
				Err(err).
				Str("product_name", products[i].Name).
				Msg("failed to create product in batch")
			return fmt.Errorf("failed to create product %q: %w", products[i].Name, err)
		}
	}

	r.logger.Debug().Int("count", len(products)).Msg("products created successfully")
	return nil
}

// Update writes every mutable field of a product within the provided transaction.
func (r *productRepository) Update(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, category = $5, category_id = $6, price = $7, stock = $8,
			image_url = $9, is_available = $10, updated_at = $11, last_restocked = $12
		WHERE id = $1 AND vendor_id = $2
	`

	_, err := tx.Exec(ctx, query,
		p.ID, p.VendorID, p.Name, p.Description, p.Category, p.CategoryID, p.Price, p.Stock,
		p.ImageURL, p.IsAvailable, p.UpdatedAt, p.LastRestocked,
	)
	if err != nil {
		if isOutOfRange(err) {
			return model.ErrValueOutOfRange
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product owned by vendorID and reports whether it existed.
func (r *productRepository) Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
