package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"freshmart/internal/auth"
	"freshmart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// serve routes a single request through a chi router with pattern registered for method.
// A non-nil identity is stored in the request context as the authentication middleware does.
func serve(t *testing.T, method, pattern, path string, h http.HandlerFunc, body any, identity *model.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, path, reader)
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *identity))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func customerIdentity() *model.Identity {
	return &model.Identity{ID: uuid.New(), Role: model.RoleCustomer}
}

func vendorIdentity() *model.Identity {
	return &model.Identity{ID: uuid.New(), Role: model.RoleVendor}
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListAvailableProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, vendorID uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id, vendorID uuid.UUID, patch *model.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, id, vendorID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id, vendorID uuid.UUID) error {
	return m.Called(ctx, id, vendorID).Error(0)
}

func (m *MockCatalogService) ListCategories(ctx context.Context, vendorID uuid.UUID) ([]model.Category, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, id, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id, vendorID uuid.UUID) error {
	return m.Called(ctx, id, vendorID).Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) ([]model.CartLine, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartLine, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, caller model.Identity, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, vendorID *uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id, status, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) (*model.OrderPage, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

// MockDeliveryService is a mock implementation of DeliveryService.
type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) Create(ctx context.Context, vendorID uuid.UUID, req *model.CreateDeliveryRequest) (*model.Delivery, error) {
	args := m.Called(ctx, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) SetStatus(ctx context.Context, id, vendorID uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error) {
	args := m.Called(ctx, id, vendorID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) AssignAgent(ctx context.Context, id, vendorID uuid.UUID, agentID *uuid.UUID) (*model.Delivery, error) {
	args := m.Called(ctx, id, vendorID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) UpdateLocation(ctx context.Context, id, vendorID uuid.UUID, loc model.Location) (*model.Delivery, error) {
	args := m.Called(ctx, id, vendorID, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Delivery, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Delivery), args.Error(1)
}

func (m *MockDeliveryService) GetForOrder(ctx context.Context, caller model.Identity, orderID uuid.UUID) (*model.Delivery, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

// MockAgentService is a mock implementation of AgentService.
type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) List(ctx context.Context, vendorID uuid.UUID) ([]model.DeliveryAgent, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryAgent), args.Error(1)
}

func (m *MockAgentService) Get(ctx context.Context, id, vendorID uuid.UUID) (*model.DeliveryAgent, error) {
	args := m.Called(ctx, id, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryAgent), args.Error(1)
}

func (m *MockAgentService) Create(ctx context.Context, vendorID uuid.UUID, req *model.AgentRequest) (*model.DeliveryAgent, error) {
	args := m.Called(ctx, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryAgent), args.Error(1)
}

func (m *MockAgentService) Update(ctx context.Context, id, vendorID uuid.UUID, patch *model.AgentPatch) (*model.DeliveryAgent, error) {
	args := m.Called(ctx, id, vendorID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryAgent), args.Error(1)
}

func (m *MockAgentService) Delete(ctx context.Context, id, vendorID uuid.UUID) error {
	return m.Called(ctx, id, vendorID).Error(0)
}

// MockAccountService is a mock implementation of AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, role model.Role, req *model.RegisterRequest) (*model.Account, error) {
	args := m.Called(ctx, role, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, role model.Role, req *model.LoginRequest) (*model.LoginResponse, error) {
	args := m.Called(ctx, role, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockAccountService) Me(ctx context.Context, identity model.Identity) (*model.Account, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

// MockImporter is a mock implementation of catalogimport.Importer.
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, vendorID uuid.UUID, sources []string) (int, error) {
	args := m.Called(ctx, vendorID, sources)
	return args.Int(0), args.Error(1)
}
