package handler

import (
	"net/http"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders     service.OrderService
	deliveries service.DeliveryService
	logger     zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, deliveries service.DeliveryService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:     orders,
		deliveries: deliveries,
		logger:     logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), identity, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders?page&limit&status for the calling customer.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.OrderFilter{}
	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		filter.Status = &status
	}

	page, err := h.orders.ListForCustomer(r.Context(), customer.ID, filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if page.Orders == nil {
		page.Orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delivery handles GET /api/orders/{id}/delivery.
func (h *OrderHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	delivery, err := h.deliveries.GetForOrder(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, delivery)
}

type updateOrderResponse struct {
	Success bool         `json:"success"`
	Updated *model.Order `json:"updated"`
}

// UpdateStatus handles PATCH /api/orders/{id} for the owning vendor.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req.Status, &vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, updateOrderResponse{Success: true, Updated: order})
}

// VendorList handles GET /api/vendor/orders.
func (h *OrderHandler) VendorList(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.orders.ListForVendor(r.Context(), vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}
