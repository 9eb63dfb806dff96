package router

import (
	"encoding/json"
	"net/http"

	"freshmart/internal/handler"
	"freshmart/internal/middleware"
	"freshmart/internal/model"
	"freshmart/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Delivery *handler.DeliveryHandler
	Agent    *handler.AgentHandler
}

// Options configures the cross-cutting middleware.
type Options struct {
	AllowedOrigins []string
	ServiceName    string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, resolver middleware.IdentityResolver, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Request ID -> Recovery -> Logging -> CORS -> tracing
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(telemetry.Middleware(opts.ServiceName, "/health"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: model.ErrCodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{Error: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	authenticate := middleware.Authenticate(resolver, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			for _, role := range []model.Role{model.RoleCustomer, model.RoleVendor} {
				r.Post("/"+string(role)+"/register", h.Auth.Register(role))
				r.Post("/"+string(role)+"/login", h.Auth.Login(role))
			}
			r.Post("/logout", h.Auth.Logout)
			r.With(authenticate).Get("/me", h.Auth.Me)
		})

		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/orders", h.Order.Create)
			r.Get("/orders/{id}", h.Order.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleCustomer))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", h.Cart.Get)
					r.Post("/", h.Cart.Add)
					r.Put("/", h.Cart.Update)
					r.Delete("/", h.Cart.Remove)
					r.Post("/checkout", h.Cart.Checkout)
				})
				r.Get("/orders", h.Order.List)
				r.Get("/orders/{id}/delivery", h.Order.Delivery)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleVendor))

				r.Patch("/orders/{id}", h.Order.UpdateStatus)

				r.Route("/vendor", func(r chi.Router) {
					r.Get("/orders", h.Order.VendorList)

					r.Route("/products", func(r chi.Router) {
						r.Get("/", h.Product.VendorList)
						r.Post("/", h.Product.Create)
						r.Post("/import", h.Product.Import)
						r.Put("/{id}", h.Product.Update)
						r.Delete("/{id}", h.Product.Delete)
					})

					r.Route("/categories", func(r chi.Router) {
						r.Get("/", h.Category.List)
						r.Post("/", h.Category.Create)
						r.Put("/{id}", h.Category.Update)
						r.Delete("/{id}", h.Category.Delete)
					})

					r.Route("/deliveries", func(r chi.Router) {
						r.Get("/", h.Delivery.List)
						r.Post("/", h.Delivery.Create)
						r.Put("/{id}/status", h.Delivery.SetStatus)
						r.Put("/{id}/assign", h.Delivery.Assign)
						r.Put("/{id}/location", h.Delivery.Location)
					})

					r.Route("/delivery-agents", func(r chi.Router) {
						r.Get("/", h.Agent.List)
						r.Post("/", h.Agent.Create)
						r.Get("/{id}", h.Agent.Get)
						r.Put("/{id}", h.Agent.Update)
						r.Delete("/{id}", h.Agent.Delete)
					})
				})
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
