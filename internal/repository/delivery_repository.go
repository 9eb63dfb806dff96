package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const deliveryColumns = `d.id, d.delivery_ref, d.order_id, d.vendor_id, d.customer_id, d.customer_name,
	d.customer_address, d.customer_phone, d.assigned_agent_id, d.status, d.estimated_delivery_time,
	d.actual_delivery_time, d.current_location, d.order_value, d.package_size, d.created_at, d.updated_at`

// deliveryWithAgent selects a delivery and the agent it points at. The agent columns are
// NULL when the delivery is unassigned or the agent row was deleted.
const deliveryWithAgent = `
	SELECT ` + deliveryColumns + `,
		a.id, a.vendor_id, a.name, a.phone, a.vehicle_type, a.is_active, a.created_at, a.updated_at
	FROM deliveries d
	LEFT JOIN delivery_agents a ON a.id = d.assigned_agent_id
`

// deliveryRepository implements the DeliveryRepository interface using PostgreSQL.
type deliveryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDeliveryRepository creates a new PostgreSQL-backed delivery repository.
func NewDeliveryRepository(pool *pgxpool.Pool, logger zerolog.Logger) DeliveryRepository {
	return &deliveryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "delivery").Logger(),
	}
}

func deliveryDest(d *model.Delivery) []any {
	return []any{
		&d.ID, &d.DeliveryID, &d.OrderID, &d.VendorID, &d.CustomerID, &d.CustomerName,
		&d.CustomerAddress, &d.CustomerPhone, &d.AssignedAgentID, &d.Status, &d.EstimatedDeliveryTime,
		&d.ActualDeliveryTime, &d.CurrentLocation, &d.OrderValue, &d.PackageSize, &d.CreatedAt, &d.UpdatedAt,
	}
}

func scanDelivery(row pgx.Row) (model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(deliveryDest(&d)...)
	return d, err
}

func scanDeliveryWithAgent(row pgx.Row) (model.Delivery, error) {
	var (
		d         model.Delivery
		agentID   *uuid.UUID
		vendorID  *uuid.UUID
		name      *string
		phone     *string
		vehicle   *string
		isActive  *bool
		createdAt *time.Time
		updatedAt *time.Time
	)

	dest := append(deliveryDest(&d), &agentID, &vendorID, &name, &phone, &vehicle, &isActive, &createdAt, &updatedAt)
	if err := row.Scan(dest...); err != nil {
		return d, err
	}

	if agentID != nil {
		d.Agent = &model.DeliveryAgent{
			ID:          *agentID,
			VendorID:    *vendorID,
			Name:        *name,
			Phone:       *phone,
			VehicleType: model.VehicleType(*vehicle),
			IsActive:    *isActive,
			CreatedAt:   *createdAt,
			UpdatedAt:   *updatedAt,
		}
	}
	return d, nil
}

// Create inserts a delivery within the provided transaction.
func (r *deliveryRepository) Create(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	query := `
		INSERT INTO deliveries (id, delivery_ref, order_id, vendor_id, customer_id, customer_name,
			customer_address, customer_phone, assigned_agent_id, status, estimated_delivery_time,
			actual_delivery_time, current_location, order_value, package_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := tx.Exec(ctx, query,
		d.ID, d.DeliveryID, d.OrderID, d.VendorID, d.CustomerID, d.CustomerName,
		d.CustomerAddress, d.CustomerPhone, d.AssignedAgentID, d.Status, d.EstimatedDeliveryTime,
		d.ActualDeliveryTime, d.CurrentLocation, d.OrderValue, d.PackageSize, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDeliveryExists
		}
		r.logger.Error().Err(err).Str("order_id", d.OrderID.String()).Msg("failed to create delivery")
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	r.logger.Debug().
		Str("delivery_id", d.ID.String()).
		Str("order_id", d.OrderID.String()).
		Msg("delivery created successfully")
	return nil
}

// GetForUpdate locks and returns a delivery owned by vendorID.
func (r *deliveryRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries d WHERE d.id = $1 AND d.vendor_id = $2 FOR UPDATE`

	d, err := scanDelivery(tx.QueryRow(ctx, query, id, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("delivery_id", id.String()).Msg("failed to lock delivery")
		return nil, fmt.Errorf("failed to lock delivery: %w", err)
	}
	return &d, nil
}

// Update writes the mutable fields of a delivery within the provided transaction.
func (r *deliveryRepository) Update(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	query := `
		UPDATE deliveries
		SET assigned_agent_id = $2, status = $3, actual_delivery_time = $4,
			current_location = $5, updated_at = $6
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		d.ID, d.AssignedAgentID, d.Status, d.ActualDeliveryTime, d.CurrentLocation, d.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("delivery_id", d.ID.String()).Msg("failed to update delivery")
		return fmt.Errorf("failed to update delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepository) getOne(ctx context.Context, where string, args ...any) (*model.Delivery, error) {
	d, err := scanDeliveryWithAgent(r.pool.QueryRow(ctx, deliveryWithAgent+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query delivery")
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}
	return &d, nil
}

// GetByID retrieves a delivery owned by vendorID with its agent joined.
func (r *deliveryRepository) GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.Delivery, error) {
	return r.getOne(ctx, `WHERE d.id = $1 AND d.vendor_id = $2`, id, vendorID)
}

// GetByOrder retrieves the delivery of an order with its agent joined.
func (r *deliveryRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	return r.getOne(ctx, `WHERE d.order_id = $1`, orderID)
}

// ListByVendor retrieves every delivery of a vendor, newest first, with agents joined.
func (r *deliveryRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Delivery, error) {
	rows, err := r.pool.Query(ctx,
		deliveryWithAgent+`WHERE d.vendor_id = $1 ORDER BY d.created_at DESC, d.id`, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query deliveries")
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}

	deliveries, err := collect(rows, scanDeliveryWithAgent)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read delivery rows")
		return nil, fmt.Errorf("failed to read deliveries: %w", err)
	}
	return deliveries, nil
}
