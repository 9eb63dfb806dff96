package handler

import (
	"net/http"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

// AgentHandler handles the vendor delivery agent registry.
type AgentHandler struct {
	agents service.AgentService
	logger zerolog.Logger
}

func NewAgentHandler(agents service.AgentService, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		agents: agents,
		logger: logger.With().Str("handler", "agent").Logger(),
	}
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	agents, err := h.agents.List(r.Context(), vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if agents == nil {
		agents = []model.DeliveryAgent{}
	}

	writeJSON(w, http.StatusOK, agents)
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	agent, err := h.agents.Get(r.Context(), id, vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.AgentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	agent, err := h.agents.Create(r.Context(), vendor.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, agent)
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch model.AgentPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	agent, err := h.agents.Update(r.Context(), id, vendor.ID, &patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.agents.Delete(r.Context(), id, vendor.ID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
