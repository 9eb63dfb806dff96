package repository

import (
	"context"
	"fmt"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// AddItem creates the cart on first use and merges the quantity into an existing line
// in the same statement, so concurrent adds never lose an increment. A merge that would
// pass model.MaxLineQuantity leaves the line unchanged and returns model.ErrQuantityLimit.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		WITH cart AS (
			INSERT INTO carts (user_id, created_at, updated_at)
			VALUES ($1, NOW(), NOW())
			ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
			RETURNING user_id
		)
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		SELECT user_id, $2, $3, NOW() FROM cart
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity + EXCLUDED.quantity <= $4
	`

	tag, err := r.pool.Exec(ctx, query, userID, productID, quantity, model.MaxLineQuantity)
	if err != nil {
		if isOutOfRange(err) {
			return model.ErrValueOutOfRange
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrQuantityLimit
	}

	return nil
}

// SetQuantity replaces the quantity of an existing line. A zero quantity deletes the line.
func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error) {
	if quantity == 0 {
		return r.RemoveItem(ctx, userID, productID)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity)
	if err != nil {
		if isOutOfRange(err) {
			return false, model.ErrValueOutOfRange
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// RemoveItem deletes a line and reports whether it existed.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

const cartLinesQuery = `
	SELECT ci.product_id, ci.quantity,
		COALESCE(p.name, ''), COALESCE(p.price, 0), COALESCE(p.image_url, ''),
		COALESCE(p.vendor_id, '00000000-0000-0000-0000-000000000000'::uuid),
		COALESCE(p.is_available, FALSE)
	FROM cart_items ci
	LEFT JOIN products p ON p.id = ci.product_id
	WHERE ci.user_id = $1
	ORDER BY ci.added_at, ci.product_id
`

func scanCartLine(row pgx.Row) (model.CartLine, error) {
	var l model.CartLine
	err := row.Scan(&l.ProductID, &l.Quantity, &l.Name, &l.Price, &l.ImageURL, &l.VendorID, &l.Available)
	return l, err
}

func (r *cartRepository) lines(ctx context.Context, q querier, query string, userID uuid.UUID) ([]model.CartLine, error) {
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	lines, err := collect(rows, scanCartLine)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read cart rows")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return lines, nil
}

// GetLines returns the cart joined with current product details.
func (r *cartRepository) GetLines(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	return r.lines(ctx, r.pool, cartLinesQuery, userID)
}

// LockLines returns the cart lines and locks them until the transaction ends.
func (r *cartRepository) LockLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error) {
	return r.lines(ctx, tx, cartLinesQuery+` FOR UPDATE OF ci`, userID)
}

// Clear removes every line of the cart. The cart row itself is kept.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
