package handler

import (
	"net/http"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeliveryHandler handles the vendor delivery endpoints.
type DeliveryHandler struct {
	deliveries service.DeliveryService
	logger     zerolog.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(deliveries service.DeliveryService, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveries: deliveries,
		logger:     logger.With().Str("handler", "delivery").Logger(),
	}
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	deliveries, err := h.deliveries.ListForVendor(r.Context(), vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if deliveries == nil {
		deliveries = []model.Delivery{}
	}

	writeJSON(w, http.StatusOK, deliveries)
}

func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CreateDeliveryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	delivery, err := h.deliveries.Create(r.Context(), vendor.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, delivery)
}

// SetStatus handles PUT /api/vendor/deliveries/{id}/status.
func (h *DeliveryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *deliveryCall) (*model.Delivery, error) {
		var req model.UpdateDeliveryStatusRequest
		if err := decode(w, r, &req); err != nil {
			return nil, err
		}
		return h.deliveries.SetStatus(r.Context(), d.id, d.vendor.ID, req.NewStatus)
	})
}

// Assign handles PUT /api/vendor/deliveries/{id}/assign. A null agentId unassigns.
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *deliveryCall) (*model.Delivery, error) {
		var req model.AssignAgentRequest
		if err := decode(w, r, &req); err != nil {
			return nil, err
		}
		return h.deliveries.AssignAgent(r.Context(), d.id, d.vendor.ID, req.AgentID)
	})
}

// Location handles PUT /api/vendor/deliveries/{id}/location.
func (h *DeliveryHandler) Location(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *deliveryCall) (*model.Delivery, error) {
		var loc model.Location
		if err := decode(w, r, &loc); err != nil {
			return nil, err
		}
		return h.deliveries.UpdateLocation(r.Context(), d.id, d.vendor.ID, loc)
	})
}

type deliveryCall struct {
	vendor model.Identity
	id     uuid.UUID
}

// mutate resolves the caller and delivery id shared by the PUT endpoints.
func (h *DeliveryHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(d *deliveryCall) (*model.Delivery, error)) {
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

	delivery, err := fn(&deliveryCall{vendor: vendor, id: id})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, delivery)
}
