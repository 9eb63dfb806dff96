package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freshmart/internal/model"
	"freshmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	txr        repository.Transactor
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	txr repository.Transactor,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		products:   products,
		categories: categories,
		txr:        txr,
		logger:     logger.With().Str("service", "catalog").Logger(),
		now:        time.Now,
	}
}

func (s *catalogService) ListAvailableProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := s.products.ListAvailable(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]model.Product, error) {
	products, err := s.products.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor products: %w", err)
	}
	return products, nil
}

// NewProduct validates req and builds the product it describes. It is shared with the feed importer.
func NewProduct(vendorID uuid.UUID, req *model.ProductRequest, now time.Time) (*model.Product, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, model.MissingFieldError("name")
	case strings.TrimSpace(req.Category) == "":
		return nil, model.MissingFieldError("category")
	case req.Price == nil:
		return nil, model.MissingFieldError("price")
	case req.Stock == nil:
		return nil, model.MissingFieldError("stock")
	case strings.TrimSpace(req.ImageURL) == "":
		return nil, model.MissingFieldError("imageUrl")
	case vendorID == uuid.Nil:
		return nil, model.MissingFieldError("vendorId")
	}
	if err := model.CheckPrice(*req.Price); err != nil {
		return nil, err
	}
	if err := model.CheckStock(*req.Stock); err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	return &model.Product{
		ID:          uuid.New(),
		VendorID:    vendorID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		CategoryID:  req.CategoryID,
		Price:       *req.Price,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, vendorID uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	product, err := NewProduct(vendorID, req, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("vendor_id", vendorID.String()).
		Msg("product created")
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id, vendorID uuid.UUID, patch *model.ProductPatch) (*model.Product, error) {
	if patch.Price != nil {
		if err := model.CheckPrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.Stock != nil {
		if err := model.CheckStock(*patch.Stock); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, model.ValidationError("name must not be empty")
	}

	var (
		product   *model.Product
		restocked bool
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		product, err = s.products.GetForUpdate(ctx, tx, id, vendorID)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if product == nil {
			return model.ErrProductNotFound
		}

		restocked = patch.Apply(product, s.now().UTC())
		if err := s.products.Update(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Bool("restocked", restocked).
		Msg("product updated")
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id, vendorID uuid.UUID) error {
	removed, err := s.products.Delete(ctx, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !removed {
		return model.ErrProductNotFound
	}
	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, vendorID uuid.UUID) ([]model.Category, error) {
	categories, err := s.categories.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func newCategory(id, vendorID uuid.UUID, req *model.CategoryRequest, now time.Time) (*model.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, model.MissingFieldError("name")
	}
	subcategories := req.Subcategories
	if subcategories == nil {
		subcategories = []string{}
	}
	return &model.Category{
		ID:            id,
		VendorID:      vendorID,
		Name:          strings.TrimSpace(req.Name),
		Color:         req.Color,
		BgColor:       req.BgColor,
		Icon:          req.Icon,
		Subcategories: subcategories,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	category, err := newCategory(uuid.New(), vendorID, req, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory replaces every editable field of a category.
func (s *catalogService) UpdateCategory(ctx context.Context, id, vendorID uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	category, err := newCategory(id, vendorID, req, s.now().UTC())
	if err != nil {
		return nil, err
	}

	found, err := s.categories.Update(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if !found {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

// DeleteCategory removes a category. Products that reference it are left as they are.
func (s *catalogService) DeleteCategory(ctx context.Context, id, vendorID uuid.UUID) error {
	removed, err := s.categories.Delete(ctx, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !removed {
		return model.ErrCategoryNotFound
	}
	return nil
}
