package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freshmart/internal/auth"
	"freshmart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, s *TestServer, token string, body map[string]any) model.Product {
	t.Helper()
	if _, ok := body["category"]; !ok {
		body["category"] = "Groceries"
	}
	if _, ok := body["imageUrl"]; !ok {
		body["imageUrl"] = "https://img.example/product.png"
	}
	w := s.Do(t, http.MethodPost, "/api/vendor/products", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return Decode[model.Product](t, w)
}

func TestCatalogAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := NewTestServer(t, testDB, t.TempDir())

	t.Run("product is owned by its creator", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		vToken, vendor := server.Login(t, model.RoleVendor, "v@example.com")
		wToken, _ := server.Login(t, model.RoleVendor, "w@example.com")

		milk := createProduct(t, server, vToken, map[string]any{
			"name": "Milk", "category": "Dairy", "price": 2.5, "stock": 10,
			"imageUrl": "https://img.example/milk.png", "vendorId": vendor.ID,
		})
		assert.Equal(t, vendor.ID, milk.VendorID)
		assert.True(t, milk.IsAvailable)

		w := server.Do(t, http.MethodPut, "/api/vendor/products/"+milk.ID.String(), map[string]any{"price": 1}, wToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = server.Do(t, http.MethodGet, "/api/products/"+milk.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2.5, Decode[model.Product](t, w).Price)
	})

	t.Run("restock refreshes lastRestocked", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		token, _ := server.Login(t, model.RoleVendor, "v@example.com")
		bread := createProduct(t, server, token, map[string]any{"name": "Bread", "category": "Bakery", "price": 3, "stock": 2})
		assert.Nil(t, bread.LastRestocked)

		w := server.Do(t, http.MethodPut, "/api/vendor/products/"+bread.ID.String(), map[string]any{"stock": 20}, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, Decode[model.Product](t, w).LastRestocked)
	})

	t.Run("category names resolve for vendor listing", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		token, _ := server.Login(t, model.RoleVendor, "v@example.com")

		w := server.Do(t, http.MethodPost, "/api/vendor/categories", map[string]any{"name": "Dairy", "subcategories": []string{"Milk"}}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		dairy := Decode[model.Category](t, w)

		w = server.Do(t, http.MethodPost, "/api/vendor/products",
			map[string]any{"name": "Cheese", "categoryId": dairy.ID, "price": 5, "stock": 3, "imageUrl": "https://img.example/cheese.png"}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "category is required", Decode[model.ErrorResponse](t, w).Message)

		createProduct(t, server, token, map[string]any{"name": "Cheese", "category": "Dairy", "categoryId": dairy.ID, "price": 5, "stock": 3})

		w = server.Do(t, http.MethodGet, "/api/vendor/products", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Dairy", Decode[[]model.Product](t, w)[0].CategoryName)

		w = server.Do(t, http.MethodDelete, "/api/vendor/categories/"+dairy.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = server.Do(t, http.MethodGet, "/api/vendor/products", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		products := Decode[[]model.Product](t, w)
		require.Len(t, products, 1)
		assert.Equal(t, "unknown", products[0].CategoryName)
	})

	t.Run("public listing paginates available products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		token, _ := server.Login(t, model.RoleVendor, "v@example.com")
		for _, name := range []string{"A", "B", "C"} {
			createProduct(t, server, token, map[string]any{"name": name, "price": 1, "stock": 1})
		}
		createProduct(t, server, token, map[string]any{"name": "Hidden", "price": 1, "stock": 1, "isAvailable": false})

		w := server.Do(t, http.MethodGet, "/api/products?limit=2&offset=1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		products := Decode[[]model.Product](t, w)
		require.Len(t, products, 2)
		assert.Equal(t, "B", products[0].Name)
		assert.Equal(t, "C", products[1].Name)
	})
}

func TestCartAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := NewTestServer(t, testDB, t.TempDir())
	CleanupDB(t, testDB.Pool)

	vToken, _ := server.Login(t, model.RoleVendor, "v@example.com")
	cToken, _ := server.Login(t, model.RoleCustomer, "c@example.com")
	p1 := createProduct(t, server, vToken, map[string]any{"name": "Apples", "price": 1.25, "stock": 50})

	t.Run("adding twice merges quantities", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/cart", map[string]any{"productId": p1.ID, "quantity": 2}, cToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = server.Do(t, http.MethodPost, "/api/cart", map[string]any{"productId": p1.ID, "quantity": 3}, cToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = server.Do(t, http.MethodGet, "/api/cart", nil, cToken)
		require.Equal(t, http.StatusOK, w.Code)
		lines := Decode[[]model.CartLine](t, w)
		require.Len(t, lines, 1)
		assert.Equal(t, p1.ID, lines[0].ProductID)
		assert.Equal(t, 5, lines[0].Quantity)
	})

	t.Run("quantity zero empties the cart", func(t *testing.T) {
		w := server.Do(t, http.MethodPut, "/api/cart", map[string]any{"itemId": p1.ID, "quantity": 0}, cToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = server.Do(t, http.MethodGet, "/api/cart", nil, cToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("removing an absent line is a no-op", func(t *testing.T) {
		w := server.Do(t, http.MethodDelete, "/api/cart", map[string]any{"productId": p1.ID}, cToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"removed":false}`, w.Body.String())
	})

	t.Run("vendors have no cart", func(t *testing.T) {
		w := server.Do(t, http.MethodGet, "/api/cart", nil, vToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/cart", map[string]any{"productId": "9b2f6a43-5f0e-4a34-a1d5-7a1ac0d8f001", "quantity": 1}, cToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFulfilmentAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := NewTestServer(t, testDB, t.TempDir())
	CleanupDB(t, testDB.Pool)

	v1Token, v1 := server.Login(t, model.RoleVendor, "v1@example.com")
	v2Token, v2 := server.Login(t, model.RoleVendor, "v2@example.com")
	cToken, customer := server.Login(t, model.RoleCustomer, "c@example.com")

	milk := createProduct(t, server, v1Token, map[string]any{"name": "Milk", "price": 2.0, "stock": 10})
	eggs := createProduct(t, server, v2Token, map[string]any{"name": "Eggs", "price": 1.5, "stock": 10})

	for _, line := range []map[string]any{{"productId": milk.ID, "quantity": 2}, {"productId": eggs.ID, "quantity": 4}} {
		w := server.Do(t, http.MethodPost, "/api/cart", line, cToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// Checkout splits the cart into one order per vendor.
	w := server.Do(t, http.MethodPost, "/api/cart/checkout", nil, cToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders := Decode[[]model.Order](t, w)
	require.Len(t, orders, 2)

	byVendor := map[string]model.Order{}
	for _, o := range orders {
		assert.Equal(t, customer.ID, o.UserID)
		assert.Equal(t, model.OrderStatusPending, o.Status)
		byVendor[o.VendorID.String()] = o
	}
	assert.Equal(t, 4.0, byVendor[v1.ID.String()].TotalAmount)
	assert.Equal(t, 6.0, byVendor[v2.ID.String()].TotalAmount)
	assert.Equal(t, []string{"order.created", "order.created"}, server.Events.Types())

	w = server.Do(t, http.MethodGet, "/api/cart", nil, cToken)
	assert.JSONEq(t, `[]`, w.Body.String())

	order := byVendor[v1.ID.String()]

	t.Run("order visibility", func(t *testing.T) {
		w := server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil, cToken)
		assert.Equal(t, http.StatusOK, w.Code)
		w = server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil, v1Token)
		assert.Equal(t, http.StatusOK, w.Code)
		w = server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil, v2Token)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = server.Do(t, http.MethodGet, "/api/orders?status=Pending&limit=1", nil, cToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := Decode[model.OrderPage](t, w)
		assert.Equal(t, 2, page.Total)
		assert.Len(t, page.Orders, 1)
	})

	t.Run("direct order with a wrong total is rejected", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/orders", map[string]any{
			"userId": customer.ID, "vendorId": v1.ID, "totalAmount": 3.0,
			"products": []map[string]any{{"productId": milk.ID, "quantity": 1}, {"productId": milk.ID, "quantity": 1}},
		}, cToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var agent model.DeliveryAgent
	t.Run("agent registry", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/vendor/delivery-agents", map[string]any{"name": "Ravi", "phone": "555-0101", "vehicleType": "Bike"}, v1Token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		agent = Decode[model.DeliveryAgent](t, w)
		assert.True(t, agent.IsActive)

		w = server.Do(t, http.MethodGet, "/api/vendor/delivery-agents/"+agent.ID.String(), nil, v2Token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	var delivery model.Delivery
	t.Run("delivery creation moves the order to Preparing", func(t *testing.T) {
		server.Events.Reset()
		w := server.Do(t, http.MethodPost, "/api/vendor/deliveries", map[string]any{
			"orderId":         order.ID,
			"customerAddress": map[string]string{"street": "12 Elm Street", "city": "Springfield", "postalCode": "12345"},
			"packageSize":     "Small",
		}, v1Token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		delivery = Decode[model.Delivery](t, w)
		assert.Equal(t, model.DeliveryPendingAssignment, delivery.Status)
		assert.Equal(t, customer.ID, delivery.CustomerID)
		assert.Equal(t, []string{"delivery.created", "order.status_updated"}, server.Events.Types())

		w = server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil, cToken)
		assert.Equal(t, model.OrderStatusPreparing, Decode[model.Order](t, w).Status)

		w = server.Do(t, http.MethodPost, "/api/vendor/deliveries", map[string]any{
			"orderId":         order.ID,
			"customerAddress": map[string]string{"street": "1 Other Road", "city": "Springfield", "postalCode": "12345"},
		}, v1Token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	base := "/api/vendor/deliveries/" + delivery.ID.String()

	t.Run("assign and unassign an agent", func(t *testing.T) {
		w := server.Do(t, http.MethodPut, base+"/assign", map[string]any{"agentId": agent.ID}, v1Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assigned := Decode[model.Delivery](t, w)
		assert.Equal(t, model.DeliveryAssigned, assigned.Status)
		require.NotNil(t, assigned.Agent)
		assert.Equal(t, "Ravi", assigned.Agent.Name)

		w = server.Do(t, http.MethodPut, base+"/assign", map[string]any{"agentId": nil}, v1Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		unassigned := Decode[model.Delivery](t, w)
		assert.Equal(t, model.DeliveryPendingAssignment, unassigned.Status)
		assert.Nil(t, unassigned.AssignedAgentID)
	})

	t.Run("location updates", func(t *testing.T) {
		w := server.Do(t, http.MethodPut, base+"/location", map[string]any{"lat": 40.7, "lon": -74.0}, v1Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, Decode[model.Delivery](t, w).CurrentLocation)

		w = server.Do(t, http.MethodGet, "/api/orders/"+order.ID.String()+"/delivery", nil, cToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.InDelta(t, 40.7, Decode[model.Delivery](t, w).CurrentLocation.Lat, 1e-9)
	})

	t.Run("delivered is final", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		w := server.Do(t, http.MethodPut, base+"/status", map[string]any{"newStatus": "Delivered"}, v1Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		after := time.Now().Add(time.Second)

		delivered := Decode[model.Delivery](t, w)
		assert.Equal(t, model.DeliveryDelivered, delivered.Status)
		require.NotNil(t, delivered.ActualDeliveryTime)
		assert.True(t, delivered.ActualDeliveryTime.After(before) && delivered.ActualDeliveryTime.Before(after))

		w = server.Do(t, http.MethodPut, base+"/status", map[string]any{"newStatus": "Delayed"}, v1Token)
		assert.Equal(t, http.StatusConflict, w.Code)
		w = server.Do(t, http.MethodPut, base+"/location", map[string]any{"lat": 1, "lon": 1}, v1Token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("vendor updates order status", func(t *testing.T) {
		w := server.Do(t, http.MethodPatch, "/api/orders/"+order.ID.String(), map[string]any{"status": "Delivered"}, v1Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := Decode[updateOrderResponse](t, w).Updated
		require.NotNil(t, updated)
		assert.Equal(t, model.OrderStatusDelivered, updated.Status)
		assert.Equal(t, order.UserID, updated.UserID)
		assert.Equal(t, order.VendorID, updated.VendorID)
		assert.Equal(t, order.Items, updated.Items)
		assert.InDelta(t, order.TotalAmount, updated.TotalAmount, 0.001)
		assert.True(t, updated.UpdatedAt.After(order.UpdatedAt))

		w = server.Do(t, http.MethodPatch, "/api/orders/"+order.ID.String(), map[string]any{"status": "Shipped"}, v1Token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = server.Do(t, http.MethodPatch, "/api/orders/"+order.ID.String(), map[string]any{"status": "Cancelled"}, v2Token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type updateOrderResponse struct {
	Success bool         `json:"success"`
	Updated *model.Order `json:"updated"`
}

func TestAuthAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := NewTestServer(t, testDB, t.TempDir())
	CleanupDB(t, testDB.Pool)

	server.Login(t, model.RoleCustomer, "Asha@Example.com")

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/auth/customer/register",
			map[string]any{"name": "Asha", "email": "asha@example.com", "password": "password123"}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("same email may register as vendor", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/auth/vendor/register",
			map[string]any{"name": "Asha", "email": "asha@example.com", "password": "password123"}, "")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("session cookie authenticates until logout", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/auth/customer/login",
			map[string]any{"email": "asha@example.com", "password": "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var session *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.SessionCookie {
				session = c
			}
		}
		require.NotNil(t, session)

		me := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: session.Value})
			rec := httptest.NewRecorder()
			server.Handler.ServeHTTP(rec, req)
			return rec
		}

		w = me()
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "asha@example.com", Decode[model.Account](t, w).Email)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: session.Value})
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, http.StatusUnauthorized, me().Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := server.Do(t, http.MethodPost, "/api/auth/customer/login",
			map[string]any{"email": "asha@example.com", "password": "not-the-password"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCORS_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := NewTestServer(t, testDB, t.TempDir())

	t.Run("OPTIONS request returns CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
