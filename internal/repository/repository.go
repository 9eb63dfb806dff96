package repository

import (
	"context"

	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions for multi-row mutations.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for product data access operations.
// Lookups return (nil, nil) when no row matches.
type ProductRepository interface {
	// ListAvailable retrieves available products with pagination support.
	ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, error)

	// ListByVendor retrieves every product of a vendor with category names resolved.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetForUpdate locks and returns a product owned by vendorID.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Product, error)

	// Create inserts a product.
	Create(ctx context.Context, product *model.Product) error

	// CreateBatch inserts products within the provided transaction.
	CreateBatch(ctx context.Context, tx pgx.Tx, products []model.Product) error

	// Update writes every mutable field of a product within the provided transaction.
	Update(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// Delete removes a product owned by vendorID and reports whether it existed.
	Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Category, error)
	GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error

	// Update replaces a category owned by category.VendorID and reports whether it existed.
	Update(ctx context.Context, category *model.Category) (bool, error)

	Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error)
}

// CartRepository defines the interface for cart data access operations. Every
// single-line mutation is one atomic statement.
type CartRepository interface {
	// AddItem creates the cart if needed and adds quantity to the product's line.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// SetQuantity replaces the quantity of an existing line and reports whether it existed.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error)

	// RemoveItem deletes a line and reports whether it existed.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// GetLines returns the cart joined with current product details, oldest line first.
	GetLines(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)

	// LockLines returns the cart lines and locks them until the transaction ends.
	LockLines(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error)

	// Clear removes every line of the cart within the provided transaction.
	Clear(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrders inserts orders within the provided transaction.
	CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate locks and returns an order owned by vendorID.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Order, error)

	// UpdateStatus sets the status of an order. When vendorID is not nil the order must
	// belong to that vendor. Returns nil when no order matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, vendorID *uuid.UUID) (*model.Order, error)

	// MarkPreparing moves a Pending order to Preparing within the provided transaction.
	MarkPreparing(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// ListByVendor retrieves every order of a vendor, newest first.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Order, error)

	// ListByCustomer retrieves one page of a customer's orders and the total match count.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error)
}

// DeliveryRepository defines the interface for delivery data access operations.
type DeliveryRepository interface {
	// Create inserts a delivery. Returns model.ErrDeliveryExists when the order already has one.
	Create(ctx context.Context, tx pgx.Tx, delivery *model.Delivery) error

	// GetForUpdate locks and returns a delivery owned by vendorID.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id, vendorID uuid.UUID) (*model.Delivery, error)

	// Update writes the mutable fields of a delivery within the provided transaction.
	Update(ctx context.Context, tx pgx.Tx, delivery *model.Delivery) error

	// GetByID retrieves a delivery owned by vendorID with its agent joined.
	GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.Delivery, error)

	// GetByOrder retrieves the delivery of an order with its agent joined.
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error)

	// ListByVendor retrieves every delivery of a vendor, newest first, with agents joined.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Delivery, error)
}

// AgentRepository defines the interface for delivery agent data access operations.
type AgentRepository interface {
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.DeliveryAgent, error)
	GetByID(ctx context.Context, id, vendorID uuid.UUID) (*model.DeliveryAgent, error)
	Create(ctx context.Context, agent *model.DeliveryAgent) error
	Update(ctx context.Context, agent *model.DeliveryAgent) (bool, error)
	Delete(ctx context.Context, id, vendorID uuid.UUID) (bool, error)
}

// AccountRepository defines the interface for customer and vendor accounts.
type AccountRepository interface {
	// Create inserts an account. Returns model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, account *model.Account) error

	GetByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error)
	GetByID(ctx context.Context, role model.Role, id uuid.UUID) (*model.Account, error)
}
