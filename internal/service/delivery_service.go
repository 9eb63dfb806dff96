package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freshmart/internal/events"
	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// deliveryService implements DeliveryService. Every mutation locks the delivery row and
// goes through the model's transition methods.
type deliveryService struct {
	deliveries repository.DeliveryRepository
	orders     repository.OrderRepository
	agents     repository.AgentRepository
	accounts   repository.AccountRepository
	txr        repository.Transactor
	publisher  events.Publisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(
	deliveries repository.DeliveryRepository,
	orders repository.OrderRepository,
	agents repository.AgentRepository,
	accounts repository.AccountRepository,
	txr repository.Transactor,
	publisher events.Publisher,
	logger zerolog.Logger,
) DeliveryService {
	return &deliveryService{
		deliveries: deliveries,
		orders:     orders,
		agents:     agents,
		accounts:   accounts,
		txr:        txr,
		publisher:  publisher,
		logger:     logger.With().Str("service", "delivery").Logger(),
		now:        time.Now,
	}
}

// Create starts fulfilment of an order: it stores the delivery and moves a Pending order
// to Preparing in one transaction.
func (s *deliveryService) Create(ctx context.Context, vendorID uuid.UUID, req *model.CreateDeliveryRequest) (*model.Delivery, error) {
	if req.OrderID == uuid.Nil {
		return nil, model.MissingFieldError("orderId")
	}

	var (
		delivery  *model.Delivery
		preparing bool
		order     *model.Order
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, tx, req.OrderID, vendorID)
		if err != nil {
			return fmt.Errorf("failed to create delivery: %w", err)
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.Status == model.OrderStatusCancelled {
			return model.NewDomainError(model.KindConflict, model.ErrCodeConflict, "order is cancelled")
		}

		delivery = model.NewDelivery(order, s.now().UTC())
		if err := s.fillCustomer(ctx, delivery, req); err != nil {
			return err
		}

		if err := s.deliveries.Create(ctx, tx, delivery); err != nil {
			return err
		}

		if order.Status == model.OrderStatusPending {
			if err := s.orders.MarkPreparing(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("failed to create delivery: %w", err)
			}
			preparing = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("delivery_id", delivery.ID.String()).
		Str("order_id", delivery.OrderID.String()).
		Msg("delivery created")

	evts := []events.Event{events.DeliveryUpdated(*delivery, "created")}
	if preparing {
		order.Status = model.OrderStatusPreparing
		order.UpdatedAt = delivery.CreatedAt
		evts = append(evts, events.OrderStatusUpdated(*order))
	}
	publish(ctx, s.publisher, s.logger, evts...)

	return delivery, nil
}

// fillCustomer copies the request details onto d, defaulting missing ones from the customer account.
func (s *deliveryService) fillCustomer(ctx context.Context, d *model.Delivery, req *model.CreateDeliveryRequest) error {
	d.DeliveryID = req.DeliveryID
	d.EstimatedDeliveryTime = req.EstimatedDeliveryTime
	d.PackageSize = req.PackageSize
	d.CustomerPhone = req.CustomerPhone
	if req.CustomerName != nil {
		d.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerAddress != nil {
		d.CustomerAddress = *req.CustomerAddress
	}

	if d.CustomerName == "" || req.CustomerAddress == nil || d.CustomerPhone == nil {
		customer, err := s.accounts.GetByID(ctx, model.RoleCustomer, d.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to load customer: %w", err)
		}
		if customer != nil {
			if d.CustomerName == "" {
				d.CustomerName = customer.Name
			}
			if req.CustomerAddress == nil && customer.Address != nil {
				d.CustomerAddress = *customer.Address
			}
			if d.CustomerPhone == nil {
				d.CustomerPhone = customer.Phone
			}
		}
	}

	switch {
	case d.CustomerName == "":
		return model.MissingFieldError("customerName")
	case d.CustomerAddress.Street == "" || d.CustomerAddress.City == "" || d.CustomerAddress.PostalCode == "":
		return model.MissingFieldError("customerAddress")
	}
	return nil
}

// mutate locks a delivery, applies fn and stores the result. The returned delivery has its agent joined.
func (s *deliveryService) mutate(ctx context.Context, id, vendorID uuid.UUID, change string, fn func(d *model.Delivery, now time.Time) error) (*model.Delivery, error) {
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		d, err := s.deliveries.GetForUpdate(ctx, tx, id, vendorID)
		if err != nil {
			return fmt.Errorf("failed to update delivery: %w", err)
		}
		if d == nil {
			return model.ErrDeliveryNotFound
		}

		if err := fn(d, s.now().UTC()); err != nil {
			return err
		}

		if err := s.deliveries.Update(ctx, tx, d); err != nil {
			return fmt.Errorf("failed to update delivery: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	delivery, err := s.deliveries.GetByID(ctx, id, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload delivery: %w", err)
	}
	if delivery == nil {
		return nil, model.ErrDeliveryNotFound
	}

	s.logger.Info().
		Str("delivery_id", id.String()).
		Str("change", change).
		Str("status", string(delivery.Status)).
		Msg("delivery updated")

	publish(ctx, s.publisher, s.logger, events.DeliveryUpdated(*delivery, change))
	return delivery, nil
}

func (s *deliveryService) SetStatus(ctx context.Context, id, vendorID uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	return s.mutate(ctx, id, vendorID, "status_updated", func(d *model.Delivery, now time.Time) error {
		return d.SetStatus(status, now)
	})
}

// AssignAgent validates that the agent is an active member of the vendor's roster before assigning.
func (s *deliveryService) AssignAgent(ctx context.Context, id, vendorID uuid.UUID, agentID *uuid.UUID) (*model.Delivery, error) {
	if agentID != nil {
		agent, err := s.agents.GetByID(ctx, *agentID, vendorID)
		if err != nil {
			return nil, fmt.Errorf("failed to assign agent: %w", err)
		}
		if agent == nil {
			return nil, model.ErrAgentNotFound
		}
		if !agent.IsActive {
			return nil, model.ValidationError("delivery agent %s is inactive", agent.ID)
		}
	}

	change := "assigned"
	if agentID == nil {
		change = "unassigned"
	}
	return s.mutate(ctx, id, vendorID, change, func(d *model.Delivery, now time.Time) error {
		return d.AssignAgent(agentID, now)
	})
}

func (s *deliveryService) UpdateLocation(ctx context.Context, id, vendorID uuid.UUID, loc model.Location) (*model.Delivery, error) {
	return s.mutate(ctx, id, vendorID, "location_updated", func(d *model.Delivery, now time.Time) error {
		return d.UpdateLocation(loc, now)
	})
}

func (s *deliveryService) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Delivery, error) {
	deliveries, err := s.deliveries.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return deliveries, nil
}

// GetForOrder returns the delivery of an order the caller may see.
func (s *deliveryService) GetForOrder(ctx context.Context, caller model.Identity, orderID uuid.UUID) (*model.Delivery, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !canSee(caller, order) {
		return nil, model.ErrOrderNotFound
	}

	delivery, err := s.deliveries.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	if delivery == nil {
		return nil, model.ErrDeliveryNotFound
	}
	return delivery, nil
}
