package service

import (
	"context"
	"fmt"
	"time"

	"freshmart/internal/events"
	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// orderService implements OrderService.
type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	txr       repository.Transactor
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	txr repository.Transactor,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:    orders,
		products:  products,
		txr:       txr,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       time.Now,
	}
}

// orderLine is a product and the quantity being bought.
type orderLine struct {
	product  model.Product
	quantity int
}

// newOrder snapshots lines into a Pending order. Prices are summed in decimal and rounded to cents.
func newOrder(userID, vendorID uuid.UUID, lines []orderLine, now time.Time) model.Order {
	items := make([]model.OrderItem, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		items[i] = model.OrderItem{
			ProductID: l.product.ID,
			Quantity:  l.quantity,
			Price:     l.product.Price,
			Name:      l.product.Name,
			ImageURL:  l.product.ImageURL,
		}
		total = total.Add(decimal.NewFromFloat(l.product.Price).Mul(decimal.NewFromInt(int64(l.quantity))))
	}

	return model.Order{
		ID:          uuid.New(),
		UserID:      userID,
		VendorID:    vendorID,
		Items:       items,
		Status:      model.OrderStatusPending,
		TotalAmount: total.Round(2).InexactFloat64(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// checkOrderTotal rejects an order whose total does not fit the stored amount.
func checkOrderTotal(order model.Order) error {
	if order.TotalAmount > model.MaxOrderTotal {
		return model.ValidationError("order total %.2f exceeds the maximum of %.2f", order.TotalAmount, model.MaxOrderTotal)
	}
	return nil
}

// CreateOrder validates the request, snapshots the catalog and stores a Pending order.
func (s *orderService) CreateOrder(ctx context.Context, caller model.Identity, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(caller, req); err != nil {
		return nil, err
	}

	// Repeated products are merged into one line.
	quantities := make(map[uuid.UUID]int, len(req.Products))
	ids := make([]uuid.UUID, 0, len(req.Products))
	for _, item := range req.Products {
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("product_count", len(ids)).Msg("failed to load order products")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]orderLine, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, model.NewDomainError(model.KindNotFound, model.ErrCodeProductNotFound,
				fmt.Sprintf("product %s not found", id))
		}
		if p.VendorID != req.VendorID {
			return nil, model.ValidationError("product %s is not sold by vendor %s", id, req.VendorID)
		}
		if !p.IsAvailable {
			return nil, model.ValidationError("product %s is not available", id)
		}
		if quantities[id] > model.MaxLineQuantity {
			return nil, model.ErrQuantityLimit
		}
		lines = append(lines, orderLine{product: p, quantity: quantities[id]})
	}

	order := newOrder(req.UserID, req.VendorID, lines, s.now().UTC())
	if err := checkOrderTotal(order); err != nil {
		return nil, err
	}

	claimed := decimal.NewFromFloat(*req.TotalAmount).Round(2)
	if !claimed.Equal(decimal.NewFromFloat(order.TotalAmount)) {
		s.logger.Warn().
			Str("claimed", claimed.StringFixed(2)).
			Float64("computed", order.TotalAmount).
			Msg("order total mismatch")
		return nil, model.ValidationError("totalAmount %s does not match the item total %.2f", claimed.StringFixed(2), order.TotalAmount)
	}

	err = inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.orders.CreateOrders(ctx, tx, []model.Order{order}); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	publish(ctx, s.publisher, s.logger, events.OrderCreated(order))
	return &order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(caller model.Identity, req *model.OrderRequest) error {
	switch {
	case req == nil:
		return model.ValidationError("order request is empty")
	case req.UserID == uuid.Nil:
		return model.MissingFieldError("userId")
	case req.VendorID == uuid.Nil:
		return model.MissingFieldError("vendorId")
	case len(req.Products) == 0:
		return model.MissingFieldError("products")
	case req.TotalAmount == nil:
		return model.MissingFieldError("totalAmount")
	}

	if caller.Role == model.RoleCustomer && caller.ID != req.UserID {
		return model.ErrForbidden
	}
	if caller.Role == model.RoleVendor && caller.ID != req.VendorID {
		return model.ErrForbidden
	}

	for i, item := range req.Products {
		if item.ProductID == uuid.Nil {
			return model.ValidationError("products[%d]: productId is required", i)
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
		if item.Quantity > model.MaxLineQuantity {
			return model.ErrQuantityLimit
		}
	}
	return nil
}

// GetOrder returns the order when caller is its customer or its vendor.
func (s *orderService) GetOrder(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !canSee(caller, order) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func canSee(caller model.Identity, order *model.Order) bool {
	switch caller.Role {
	case model.RoleCustomer:
		return order.UserID == caller.ID
	case model.RoleVendor:
		return order.VendorID == caller.ID
	default:
		return false
	}
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, vendorID *uuid.UUID) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orders.UpdateStatus(ctx, id, status, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Msg("order status updated")

	publish(ctx, s.publisher, s.logger, events.OrderStatusUpdated(*order))
	return order, nil
}

func (s *orderService) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orders.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListForCustomer returns one page of the customer's order history, newest first.
func (s *orderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	orders, total, err := s.orders.ListByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders: orders,
		Page:   filter.Page,
		Limit:  filter.Limit,
		Total:  total,
	}, nil
}
