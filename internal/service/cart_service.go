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
)

// cartService implements CartService.
type cartService struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	txr       repository.Transactor
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	txr repository.Transactor,
	publisher events.Publisher,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		carts:     carts,
		products:  products,
		orders:    orders,
		txr:       txr,
		publisher: publisher,
		logger:    logger.With().Str("service", "cart").Logger(),
		now:       time.Now,
	}
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) ([]model.CartLine, error) {
	if req.ProductID == uuid.Nil {
		return nil, model.MissingFieldError("productId")
	}
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	if req.Quantity > model.MaxLineQuantity {
		return nil, model.ErrQuantityLimit
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if !product.IsAvailable {
		return nil, model.ValidationError("product %s is not available", product.ID)
	}

	if err := s.carts.AddItem(ctx, userID, req.ProductID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", req.ProductID.String()).
		Int("quantity", req.Quantity).
		Msg("cart item added")

	return s.GetCart(ctx, userID)
}

func (s *cartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartLine, error) {
	if quantity < 0 {
		return nil, model.ValidationError("quantity must not be negative")
	}
	if quantity > model.MaxLineQuantity {
		return nil, model.ErrQuantityLimit
	}

	found, err := s.carts.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if !found {
		return nil, model.ErrCartItemNotFound
	}
	if quantity == 0 {
		return nil, nil
	}

	lines, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ProductID == productID {
			return &lines[i], nil
		}
	}
	// Removed concurrently between the update and the read.
	return nil, model.ErrCartItemNotFound
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	removed, err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return removed, nil
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	lines, err := s.carts.GetLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return lines, nil
}

// Checkout locks the cart, creates one Pending order per vendor and clears the cart,
// all in one transaction.
func (s *cartService) Checkout(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order

	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		lines, err := s.carts.LockLines(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to checkout: %w", err)
		}
		if len(lines) == 0 {
			return model.ValidationError("cart is empty")
		}

		ids := make([]uuid.UUID, len(lines))
		for i, l := range lines {
			if !l.Available {
				return model.ValidationError("product %s is no longer available", l.ProductID)
			}
			ids[i] = l.ProductID
		}

		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to checkout: %w", err)
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// Group by vendor, keeping the order in which vendors first appear in the cart.
		var vendors []uuid.UUID
		grouped := make(map[uuid.UUID][]orderLine)
		for _, l := range lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return model.ValidationError("product %s is no longer available", l.ProductID)
			}
			if _, seen := grouped[p.VendorID]; !seen {
				vendors = append(vendors, p.VendorID)
			}
			grouped[p.VendorID] = append(grouped[p.VendorID], orderLine{product: p, quantity: l.Quantity})
		}

		now := s.now().UTC()
		orders = make([]model.Order, 0, len(vendors))
		for _, v := range vendors {
			order := newOrder(userID, v, grouped[v], now)
			if err := checkOrderTotal(order); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		if err := s.orders.CreateOrders(ctx, tx, orders); err != nil {
			return fmt.Errorf("failed to checkout: %w", err)
		}
		if err := s.carts.Clear(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to checkout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Int("order_count", len(orders)).
		Msg("cart checked out")

	evts := make([]events.Event, len(orders))
	for i := range orders {
		evts[i] = events.OrderCreated(orders[i])
	}
	publish(ctx, s.publisher, s.logger, evts...)

	return orders, nil
}
