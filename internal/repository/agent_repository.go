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

const agentColumns = `id, vendor_id, name, phone, vehicle_type, is_active, created_at, updated_at`

type agentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAgentRepository creates a new PostgreSQL-backed delivery agent repository.
func NewAgentRepository(pool *pgxpool.Pool, logger zerolog.Logger) AgentRepository {
	return &agentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "agent").Logger(),
	}
}

func scanAgent(row pgx.Row) (model.DeliveryAgent, error) {
	var a model.DeliveryAgent
	err := row.Scan(&a.ID, &a.VendorID, &a.Name, &a.Phone, &a.VehicleType, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *agentRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.DeliveryAgent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+agentColumns+` FROM delivery_agents WHERE vendor_id = $1 ORDER BY name, id`, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID.String()).Msg("failed to query agents")
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}

	agents, err := collect(rows, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents: %w", err)
	}
	return agents, nil
}

func (r *agentRepository) GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.DeliveryAgent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM delivery_agents WHERE id = $1 AND vendor_id = $2`, id, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("agent_id", id.String()).Msg("failed to query agent")
		return nil, fmt.Errorf("failed to query agent: %w", err)
	}
	return &a, nil
}

func (r *agentRepository) Create(ctx context.Context, a *model.DeliveryAgent) error {
	query := `
		INSERT INTO delivery_agents (id, vendor_id, name, phone, vehicle_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query, a.ID, a.VendorID, a.Name, a.Phone, a.VehicleType, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("agent_id", a.ID.String()).Msg("failed to create agent")
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

func (r *agentRepository) Update(ctx context.Context, a *model.DeliveryAgent) (bool, error) {
	query := `
		UPDATE delivery_agents
		SET name = $3, phone = $4, vehicle_type = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND vendor_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, a.ID, a.VendorID, a.Name, a.Phone, a.VehicleType, a.IsActive, a.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("agent_id", a.ID.String()).Msg("failed to update agent")
		return false, fmt.Errorf("failed to update agent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an agent. Deliveries that reference it keep the dangling id.
func (r *agentRepository) Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delivery_agents WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		r.logger.Error().Err(err).Str("agent_id", id.String()).Msg("failed to delete agent")
		return false, fmt.Errorf("failed to delete agent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
