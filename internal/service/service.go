package service

import (
	"context"
	"fmt"

	"freshmart/internal/events"
	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CatalogService defines operations for products and categories.
type CatalogService interface {
	// ListAvailableProducts returns products open for purchase, paginated.
	ListAvailableProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct returns a single product or model.ErrProductNotFound.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)

	ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error)
	CreateProduct(ctx context.Context, vendorID uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// UpdateProduct applies patch to a product owned by vendorID. A non-owner gets NotFound.
	UpdateProduct(ctx context.Context, id, vendorID uuid.UUID, patch *model.ProductPatch) (*model.Product, error)

	DeleteProduct(ctx context.Context, id, vendorID uuid.UUID) error

	ListCategories(ctx context.Context, vendorID uuid.UUID) ([]model.Category, error)
	CreateCategory(ctx context.Context, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id, vendorID uuid.UUID) error
}

// CartService defines operations on a customer's cart.
type CartService interface {
	// AddItem adds quantity of a product and returns the full cart.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) ([]model.CartLine, error)

	// SetQuantity replaces a line's quantity. It returns nil when quantity 0 removed the line.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartLine, error)

	// RemoveItem deletes a line and reports whether it was present. Removing twice is not an error.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)

	// Checkout turns the cart into one order per vendor and empties it.
	Checkout(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder snapshots the requested products into a new Pending order.
	CreateOrder(ctx context.Context, caller model.Identity, req *model.OrderRequest) (*model.Order, error)

	// GetOrder returns an order visible to caller.
	GetOrder(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error)

	// UpdateStatus changes an order's status. When vendorID is set the order must belong to it.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, vendorID *uuid.UUID) (*model.Order, error)

	ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error)
}

// DeliveryService defines the delivery lifecycle operations.
type DeliveryService interface {
	Create(ctx context.Context, vendorID uuid.UUID, req *model.CreateDeliveryRequest) (*model.Delivery, error)
	SetStatus(ctx context.Context, id, vendorID uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error)

	// AssignAgent sets or, with a nil agentID, clears the courier of a delivery.
	AssignAgent(ctx context.Context, id, vendorID uuid.UUID, agentID *uuid.UUID) (*model.Delivery, error)

	UpdateLocation(ctx context.Context, id, vendorID uuid.UUID, loc model.Location) (*model.Delivery, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Delivery, error)

	// GetForOrder returns the delivery of an order visible to caller.
	GetForOrder(ctx context.Context, caller model.Identity, orderID uuid.UUID) (*model.Delivery, error)
}

// AgentService defines vendor-scoped delivery agent management.
type AgentService interface {
	List(ctx context.Context, vendorID uuid.UUID) ([]model.DeliveryAgent, error)
	Get(ctx context.Context, id, vendorID uuid.UUID) (*model.DeliveryAgent, error)
	Create(ctx context.Context, vendorID uuid.UUID, req *model.AgentRequest) (*model.DeliveryAgent, error)
	Update(ctx context.Context, id, vendorID uuid.UUID, patch *model.AgentPatch) (*model.DeliveryAgent, error)
	Delete(ctx context.Context, id, vendorID uuid.UUID) error
}

// AccountService defines registration and login for customers and vendors.
type AccountService interface {
	Register(ctx context.Context, role model.Role, req *model.RegisterRequest) (*model.Account, error)
	Login(ctx context.Context, role model.Role, req *model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, identity model.Identity) (*model.Account, error)
}

// inTx runs fn inside a transaction, committing when it returns nil and rolling back otherwise.
func inTx(ctx context.Context, txr repository.Transactor, logger zerolog.Logger, fn func(tx pgx.Tx) error) (err error) {
	tx, err := txr.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// publish sends events for a committed mutation. A failure is logged and otherwise ignored.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, evts ...events.Event) {
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.Warn().Err(err).Int("count", len(evts)).Msg("failed to publish events")
	}
}
