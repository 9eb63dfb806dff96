package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type agentService struct {
	agents repository.AgentRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAgentService creates a new delivery agent service.
func NewAgentService(agents repository.AgentRepository, logger zerolog.Logger) AgentService {
	return &agentService{
		agents: agents,
		logger: logger.With().Str("service", "agent").Logger(),
		now:    time.Now,
	}
}

func validVehicle(v model.VehicleType) bool {
	switch v {
	case model.VehicleBike, model.VehicleCar, model.VehicleScooter, model.VehicleOther:
		return true
	}
	return false
}

func (s *agentService) List(ctx context.Context, vendorID uuid.UUID) ([]model.DeliveryAgent, error) {
	agents, err := s.agents.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (s *agentService) Get(ctx context.Context, id, vendorID uuid.UUID) (*model.DeliveryAgent, error) {
	agent, err := s.agents.GetByID(ctx, id, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent == nil {
		return nil, model.ErrAgentNotFound
	}
	return agent, nil
}

func (s *agentService) Create(ctx context.Context, vendorID uuid.UUID, req *model.AgentRequest) (*model.DeliveryAgent, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, model.MissingFieldError("name")
	case strings.TrimSpace(req.Phone) == "":
		return nil, model.MissingFieldError("phone")
	case req.VehicleType == "":
		return nil, model.MissingFieldError("vehicleType")
	case !validVehicle(req.VehicleType):
		return nil, model.ValidationError("vehicleType must be one of Bike, Car, Scooter, Other")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.now().UTC()
	agent := &model.DeliveryAgent{
		ID:          uuid.New(),
		VendorID:    vendorID,
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		VehicleType: req.VehicleType,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	s.logger.Info().Str("agent_id", agent.ID.String()).Str("vendor_id", vendorID.String()).Msg("agent created")
	return agent, nil
}

func (s *agentService) Update(ctx context.Context, id, vendorID uuid.UUID, patch *model.AgentPatch) (*model.DeliveryAgent, error) {
	if patch.VehicleType != nil && !validVehicle(*patch.VehicleType) {
		return nil, model.ValidationError("vehicleType must be one of Bike, Car, Scooter, Other")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, model.ValidationError("name must not be empty")
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		return nil, model.ValidationError("phone must not be empty")
	}

	agent, err := s.Get(ctx, id, vendorID)
	if err != nil {
		return nil, err
	}

	patch.Apply(agent, s.now().UTC())

	found, err := s.agents.Update(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	if !found {
		return nil, model.ErrAgentNotFound
	}
	return agent, nil
}

// Delete removes an agent. Deliveries keep the id and render the agent as null.
func (s *agentService) Delete(ctx context.Context, id, vendorID uuid.UUID) error {
	removed, err := s.agents.Delete(ctx, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	if !removed {
		return model.ErrAgentNotFound
	}
	s.logger.Info().Str("agent_id", id.String()).Msg("agent deleted")
	return nil
}
