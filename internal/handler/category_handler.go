package handler

import (
	"net/http"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles vendor category HTTP requests.
type CategoryHandler struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

func NewCategoryHandler(catalog service.CatalogService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	categories, err := h.catalog.ListCategories(r.Context(), vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CategoryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), vendor.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// Update handles PUT /api/vendor/categories/{id}; the body replaces the category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.CategoryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, vendor.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeleteCategory(r.Context(), id, vendor.ID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
