package service

import (
	"context"
	"testing"

	"freshmart/internal/events"
	"freshmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartMocks struct {
	carts     *MockCartRepository
	products  *MockProductRepository
	orders    *MockOrderRepository
	publisher *MockPublisher
}

func newCartService(txr *MockTransactor) (CartService, cartMocks) {
	m := cartMocks{
		carts:     new(MockCartRepository),
		products:  new(MockProductRepository),
		orders:    new(MockOrderRepository),
		publisher: new(MockPublisher),
	}
	if txr == nil {
		txr = new(MockTransactor)
	}
	return NewCartService(m.carts, m.products, m.orders, txr, m.publisher, zerolog.Nop()), m
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	product := &model.Product{ID: uuid.New(), Name: "Apple", Price: 1, IsAvailable: true}

	t.Run("Adds and returns the cart", func(t *testing.T) {
		svc, m := newCartService(nil)
		lines := []model.CartLine{{ProductID: product.ID, Quantity: 3, Name: "Apple", Available: true}}
		m.products.On("GetByID", ctx, product.ID).Return(product, nil)
		m.carts.On("AddItem", ctx, user, product.ID, 3).Return(nil)
		m.carts.On("GetLines", ctx, user).Return(lines, nil)

		got, err := svc.AddItem(ctx, user, &model.AddToCartRequest{ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, lines, got)
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		svc, m := newCartService(nil)
		_, err := svc.AddItem(ctx, user, &model.AddToCartRequest{ProductID: product.ID, Quantity: 0})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
		m.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Quantity above the line limit", func(t *testing.T) {
		svc, m := newCartService(nil)
		_, err := svc.AddItem(ctx, user, &model.AddToCartRequest{ProductID: product.ID, Quantity: model.MaxLineQuantity + 1})
		assert.ErrorIs(t, err, model.ErrQuantityLimit)
		m.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Merge would pass the line limit", func(t *testing.T) {
		svc, m := newCartService(nil)
		m.products.On("GetByID", ctx, product.ID).Return(product, nil)
		m.carts.On("AddItem", ctx, user, product.ID, 5).Return(model.ErrQuantityLimit)

		_, err := svc.AddItem(ctx, user, &model.AddToCartRequest{ProductID: product.ID, Quantity: 5})

		assert.ErrorIs(t, err, model.ErrQuantityLimit)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		m.carts.AssertNotCalled(t, "GetLines", mock.Anything, mock.Anything)
	})

	t.Run("Missing product id", func(t *testing.T) {
		svc, _ := newCartService(nil)
		_, err := svc.AddItem(ctx, user, &model.AddToCartRequest{Quantity: 1})
		assert.Equal(t, model.KindValidation, model.KindOf(err))
	})

	t.Run("Unknown product", func(t *testing.T) {
		svc, m := newCartService(nil)
		m.products.On("GetByID", ctx, product.ID).Return(nil, nil)
		_, err := svc.AddItem(ctx, user, &model.AddToCartRequest{ProductID: product.ID, Quantity: 1})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestCartService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	pid := uuid.New()

	tests := []struct {
		name     string
		quantity int
		found    bool
		wantErr  error
		wantNil  bool
	}{
		{name: "Line absent", quantity: 2, found: false, wantErr: model.ErrCartItemNotFound},
		{name: "Zero removes the line", quantity: 0, found: true, wantNil: true},
		{name: "Positive updates", quantity: 4, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCartService(nil)
			m.carts.On("SetQuantity", ctx, user, pid, tt.quantity).Return(tt.found, nil)
			m.carts.On("GetLines", ctx, user).Return([]model.CartLine{{ProductID: pid, Quantity: tt.quantity}}, nil).Maybe()

			line, err := svc.SetQuantity(ctx, user, pid, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, line)
				return
			}
			require.NotNil(t, line)
			assert.Equal(t, tt.quantity, line.Quantity)
		})
	}

	t.Run("Negative quantity", func(t *testing.T) {
		svc, _ := newCartService(nil)
		_, err := svc.SetQuantity(ctx, user, pid, -1)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
	})

	t.Run("Quantity above the line limit", func(t *testing.T) {
		svc, m := newCartService(nil)
		_, err := svc.SetQuantity(ctx, user, pid, 3_000_000_000)
		assert.ErrorIs(t, err, model.ErrQuantityLimit)
		m.carts.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartService_RemoveItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	pid := uuid.New()

	svc, m := newCartService(nil)
	m.carts.On("RemoveItem", ctx, user, pid).Return(true, nil).Once()
	m.carts.On("RemoveItem", ctx, user, pid).Return(false, nil).Once()

	removed, err := svc.RemoveItem(ctx, user, pid)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.RemoveItem(ctx, user, pid)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCartService_Checkout_GroupsByVendor(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	vendorA, vendorB := uuid.New(), uuid.New()
	a1 := model.Product{ID: uuid.New(), VendorID: vendorA, Name: "A1", Price: 1.5, IsAvailable: true}
	b1 := model.Product{ID: uuid.New(), VendorID: vendorB, Name: "B1", Price: 2, IsAvailable: true}
	a2 := model.Product{ID: uuid.New(), VendorID: vendorA, Name: "A2", Price: 0.25, IsAvailable: true}

	lines := []model.CartLine{
		{ProductID: a1.ID, Quantity: 2, VendorID: vendorA, Available: true},
		{ProductID: b1.ID, Quantity: 1, VendorID: vendorB, Available: true},
		{ProductID: a2.ID, Quantity: 4, VendorID: vendorA, Available: true},
	}

	txr, tx := newCommittingTx(ctx)
	svc, m := newCartService(txr)
	m.carts.On("LockLines", ctx, tx, user).Return(lines, nil)
	m.products.On("GetByIDs", ctx, []uuid.UUID{a1.ID, b1.ID, a2.ID}).Return([]model.Product{a1, b1, a2}, nil)
	m.orders.On("CreateOrders", ctx, tx, mock.Anything).Return(nil)
	m.carts.On("Clear", ctx, tx, user).Return(nil)
	m.publisher.On("Publish", ctx, mock.MatchedBy(func(evts []events.Event) bool { return len(evts) == 2 })).Return(nil)

	orders, err := svc.Checkout(ctx, user)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, vendorA, orders[0].VendorID)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, 4.0, orders[0].TotalAmount)
	assert.Equal(t, vendorB, orders[1].VendorID)
	assert.Equal(t, 2.0, orders[1].TotalAmount)
	for _, o := range orders {
		assert.Equal(t, user, o.UserID)
		assert.Equal(t, model.OrderStatusPending, o.Status)
	}
	assert.True(t, tx.committed)
	m.carts.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestCartService_Checkout_Failures(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	gone := uuid.New()

	tests := []struct {
		name  string
		lines []model.CartLine
	}{
		{name: "Empty cart", lines: []model.CartLine{}},
		{name: "Deleted product", lines: []model.CartLine{{ProductID: gone, Quantity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txr, tx := newRollingBackTx(ctx)
			svc, m := newCartService(txr)
			m.carts.On("LockLines", ctx, tx, user).Return(tt.lines, nil)

			_, err := svc.Checkout(ctx, user)

			assert.Equal(t, model.KindValidation, model.KindOf(err))
			assert.True(t, tx.rolledBack)
			m.orders.AssertNotCalled(t, "CreateOrders", mock.Anything, mock.Anything, mock.Anything)
			m.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCartService_Checkout_TotalTooLarge(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	vendor := uuid.New()
	truffle := model.Product{ID: uuid.New(), VendorID: vendor, Name: "Truffle", Price: model.MaxPrice, IsAvailable: true}
	lines := []model.CartLine{{ProductID: truffle.ID, Quantity: 200, VendorID: vendor, Available: true}}

	txr, tx := newRollingBackTx(ctx)
	svc, m := newCartService(txr)
	m.carts.On("LockLines", ctx, tx, user).Return(lines, nil)
	m.products.On("GetByIDs", ctx, []uuid.UUID{truffle.ID}).Return([]model.Product{truffle}, nil)

	_, err := svc.Checkout(ctx, user)

	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
	assert.Contains(t, err.Error(), "exceeds the maximum")
	assert.True(t, tx.rolledBack)
	m.orders.AssertNotCalled(t, "CreateOrders", mock.Anything, mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything, mock.Anything)
}
