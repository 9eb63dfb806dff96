package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"freshmart/internal/auth"
	"freshmart/internal/catalogimport"
	"freshmart/internal/database"
	"freshmart/internal/events"
	"freshmart/internal/handler"
	"freshmart/internal/model"
	"freshmart/internal/repository"
	"freshmart/internal/router"
	"freshmart/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE deliveries, delivery_agents, orders, cart_items, carts,
			products, categories, customers, vendors
	`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// Types returns the types of the events published so far.
func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// TestServer is the full HTTP stack backed by the test database, an in-memory Redis
// for sessions and a recording event publisher.
type TestServer struct {
	Handler http.Handler
	Events  *recordingPublisher
	Redis   *miniredis.Miniredis
}

// NewTestServer wires every layer the way cmd/api does. feedDir is the base directory
// of catalog feed imports.
func NewTestServer(t *testing.T, testDB *TestDB, feedDir string) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := auth.NewRedisSessionStore(client, time.Hour)

	publisher := &recordingPublisher{}
	tokens := auth.NewTokenManager("integration-secret", time.Hour)

	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	agentRepo := repository.NewAgentRepository(pool, logger)
	accountRepo := repository.NewAccountRepository(pool, logger)

	catalogService := service.NewCatalogService(productRepo, categoryRepo, txr, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, txr, publisher, logger)
	deliveryService := service.NewDeliveryService(deliveryRepo, orderRepo, agentRepo, accountRepo, txr, publisher, logger)
	importer := catalogimport.NewImporter(catalogimport.NewFileLoader(feedDir, logger), productRepo, txr, 5, logger)

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(service.NewAccountService(accountRepo, tokens, sessions, logger), false, logger),
		Product:  handler.NewProductHandler(catalogService, importer, logger),
		Category: handler.NewCategoryHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(cartRepo, productRepo, orderRepo, txr, publisher, logger), logger),
		Order:    handler.NewOrderHandler(orderService, deliveryService, logger),
		Delivery: handler.NewDeliveryHandler(deliveryService, logger),
		Agent:    handler.NewAgentHandler(service.NewAgentService(agentRepo, logger), logger),
	}

	h := router.New(handlers, auth.NewResolver(tokens, sessions, logger), router.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		ServiceName:    "freshmart-integration",
	}, logger)

	return &TestServer{Handler: h, Events: publisher, Redis: mr}
}

// Do sends a JSON request. A non-empty token is sent as a bearer credential.
func (s *TestServer) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

// Login registers an account for role and logs it in, returning the token and the account.
func (s *TestServer) Login(t *testing.T, role model.Role, email string) (string, *model.Account) {
	t.Helper()

	register := map[string]any{"name": "Test " + string(role), "email": email, "password": "password123"}
	if role == model.RoleVendor {
		register["storeName"] = "Store of " + email
	}
	w := s.Do(t, http.MethodPost, "/api/auth/"+string(role)+"/register", register, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.Do(t, http.MethodPost, "/api/auth/"+string(role)+"/login", map[string]any{"email": email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := Decode[model.LoginResponse](t, w)
	return resp.Token, resp.Account
}

// Decode unmarshals a JSON response body.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
