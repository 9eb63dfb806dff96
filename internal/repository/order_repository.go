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

const orderColumns = `id, user_id, vendor_id, items, status, total_amount, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.VendorID, &o.Items, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrders inserts orders within the provided transaction.
func (r *orderRepository) CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	query := `
		INSERT INTO orders (id, user_id, vendor_id, items, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(query, o.ID, o.UserID, o.VendorID, o.Items, o.Status, o.TotalAmount, o.CreatedAt, o.UpdatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range orders {
		if _, err := results.Exec(); err != nil {
			if isOutOfRange(err) {
				return model.ErrValueOutOfRange
			}
			r.logger.Error().
				Err(err).
				Str("order_id", orders[i].ID.String()).
				Msg("failed to create order")
			return fmt.Errorf("failed to create order: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(orders)).
		Msg("orders created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return &o, nil
}

// GetForUpdate locks and returns an order owned by vendorID.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Order, error) {
	o, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND vendor_id = $2 FOR UPDATE`, id, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &o, nil
}

// UpdateStatus sets the status of an order in a single statement.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, vendorID *uuid.UUID) (*model.Order, error) {
	query := `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1 AND ($3::uuid IS NULL OR vendor_id = $3)
		RETURNING ` + orderColumns

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id, status, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &o, nil
}

// MarkPreparing moves a Pending order to Preparing. Orders in any other status are left alone.
func (r *orderRepository) MarkPreparing(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, model.OrderStatusPreparing, model.OrderStatusPending)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order preparing")
		return fmt.Errorf("failed to mark order preparing: %w", err)
	}
	return nil
}

// ListByVendor retrieves every order of a vendor, newest first.
func (r *orderRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE vendor_id = $1 ORDER BY created_at DESC, id`, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query vendor orders")
		return nil, fmt.Errorf("failed to query vendor orders: %w", err)
	}

	orders, err := collect(rows, scanOrder)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read order rows")
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

// ListByCustomer retrieves one page of a customer's orders, newest first, and the total match count.
func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`,
		customerID, status,
	).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, customerID, status, filter.Limit, filter.Offset())
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := collect(rows, scanOrder)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read order rows")
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}

	return orders, total, nil
}
