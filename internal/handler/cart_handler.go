package handler

import (
	"net/http"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the customer cart endpoints.
type CartHandler struct {
	carts  service.CartService
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

type cartResponse struct {
	Success bool             `json:"success"`
	Items   []model.CartLine `json:"items"`
}

// Add handles POST /api/cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	lines, err := h.carts.AddItem(r.Context(), customer.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Success: true, Items: lines})
}

// Get handles GET /api/cart. A customer without a cart gets an empty list.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	lines, err := h.carts.GetCart(r.Context(), customer.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if lines == nil {
		lines = []model.CartLine{}
	}

	writeJSON(w, http.StatusOK, lines)
}

// Update handles PUT /api/cart. Quantity 0 removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	line, err := h.carts.SetQuantity(r.Context(), customer.ID, req.ItemID, *req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if line == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true, "removed": true})
		return
	}

	writeJSON(w, http.StatusOK, line)
}

// Remove handles DELETE /api/cart. Removing an absent line succeeds with removed=false.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.RemoveFromCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	removed, err := h.carts.RemoveItem(r.Context(), customer.ID, req.ProductID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "removed": removed})
}

// Checkout handles POST /api/cart/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customer, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.carts.Checkout(r.Context(), customer.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, orders)
}
