package handler

import (
	"net/http"

	"freshmart/internal/catalogimport"
	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 10
	maxProductLimit     = 100
)

// ProductHandler handles public catalog and vendor product HTTP requests.
type ProductHandler struct {
	catalog  service.CatalogService
	importer catalogimport.Importer
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler. importer may be nil, which disables feed imports.
func NewProductHandler(catalog service.CatalogService, importer catalogimport.Importer, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		importer: importer,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultProductLimit)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if limit < 1 || limit > maxProductLimit {
		limit = defaultProductLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := h.catalog.ListAvailableProducts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// VendorList handles GET /api/vendor/products.
func (h *ProductHandler) VendorList(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	products, err := h.catalog.ListVendorProducts(r.Context(), vendor.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/vendor/products. The owning vendor is always the caller.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ProductRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), vendor.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/vendor/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch model.ProductPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, vendor.ID, &patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/vendor/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeleteProduct(r.Context(), id, vendor.ID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Import handles POST /api/vendor/products/import.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	vendor, err := caller(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if h.importer == nil {
		writeError(w, r, model.NewDomainError(model.KindNotFound, model.ErrCodeNotFound, "catalog import is not enabled"), h.logger)
		return
	}

	var req model.ImportRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	n, err := h.importer.Import(r.Context(), vendor.ID, req.Sources)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.ImportResponse{Imported: n})
}
