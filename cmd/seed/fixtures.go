package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"freshmart/internal/model"
	"freshmart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type fixtures struct {
	Vendors   []vendorFixture  `yaml:"vendors"`
	Customers []accountFixture `yaml:"customers"`
}

type accountFixture struct {
	Name     string          `yaml:"name"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Phone    string          `yaml:"phone"`
	Address  *addressFixture `yaml:"address"`
}

type addressFixture struct {
	Street     string `yaml:"street"`
	City       string `yaml:"city"`
	PostalCode string `yaml:"postalCode"`
}

type vendorFixture struct {
	accountFixture `yaml:",inline"`
	StoreName      string            `yaml:"storeName"`
	Categories     []categoryFixture `yaml:"categories"`
	Products       []productFixture  `yaml:"products"`
	Agents         []agentFixture    `yaml:"agents"`
}

type categoryFixture struct {
	Name          string   `yaml:"name"`
	Color         string   `yaml:"color"`
	BgColor       string   `yaml:"bgColor"`
	Icon          string   `yaml:"icon"`
	Subcategories []string `yaml:"subcategories"`
}

type productFixture struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Category    string  `yaml:"category"`
	Price       float64 `yaml:"price"`
	Stock       int     `yaml:"stock"`
	ImageURL    string  `yaml:"imageUrl"`
	Unavailable bool    `yaml:"unavailable"`
}

type agentFixture struct {
	Name        string            `yaml:"name"`
	Phone       string            `yaml:"phone"`
	VehicleType model.VehicleType `yaml:"vehicleType"`
	Inactive    bool              `yaml:"inactive"`
}

// loadFixtures decodes a fixtures document. Unknown keys are rejected.
func loadFixtures(r io.Reader) (*fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

func (a accountFixture) register() *model.RegisterRequest {
	req := &model.RegisterRequest{
		Name:     a.Name,
		Email:    a.Email,
		Password: a.Password,
	}
	if a.Address != nil {
		req.Address = &model.Address{Street: a.Address.Street, City: a.Address.City, PostalCode: a.Address.PostalCode}
	}
	if a.Phone != "" {
		req.Phone = &a.Phone
	}
	return req
}

// productRequest converts a fixture product, linking it to a seeded category by name.
func (p productFixture) productRequest(categories map[string]uuid.UUID) *model.ProductRequest {
	available := !p.Unavailable
	req := &model.ProductRequest{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       &p.Price,
		Stock:       &p.Stock,
		ImageURL:    p.ImageURL,
		IsAvailable: &available,
	}
	if id, ok := categories[p.Category]; ok {
		req.CategoryID = &id
	}
	return req
}

type summary struct {
	Vendors    int
	Customers  int
	Categories int
	Products   int
	Agents     int
	Skipped    int
}

// seeder writes fixtures through the service layer so that every record passes the
// same validation as API input.
type seeder struct {
	accounts service.AccountService
	catalog  service.CatalogService
	agents   service.AgentService
	logger   zerolog.Logger
}

// apply creates the fixtures. Accounts whose email is already registered are skipped
// together with everything they own, so running the seed twice is harmless.
func (s *seeder) apply(ctx context.Context, f *fixtures) (summary, error) {
	var sum summary

	for _, v := range f.Vendors {
		req := v.register()
		if v.StoreName != "" {
			req.StoreName = &v.StoreName
		}
		vendor, err := s.accounts.Register(ctx, model.RoleVendor, req)
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Info().Str("email", v.Email).Msg("vendor already seeded, skipping")
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("vendor %s: %w", v.Email, err)
		}
		sum.Vendors++

		categories := make(map[string]uuid.UUID, len(v.Categories))
		for _, c := range v.Categories {
			category, err := s.catalog.CreateCategory(ctx, vendor.ID, &model.CategoryRequest{
				Name:          c.Name,
				Color:         c.Color,
				BgColor:       c.BgColor,
				Icon:          c.Icon,
				Subcategories: c.Subcategories,
			})
			if err != nil {
				return sum, fmt.Errorf("vendor %s category %s: %w", v.Email, c.Name, err)
			}
			categories[c.Name] = category.ID
			sum.Categories++
		}

		for _, p := range v.Products {
			if _, err := s.catalog.CreateProduct(ctx, vendor.ID, p.productRequest(categories)); err != nil {
				return sum, fmt.Errorf("vendor %s product %s: %w", v.Email, p.Name, err)
			}
			sum.Products++
		}

		for _, a := range v.Agents {
			active := !a.Inactive
			if _, err := s.agents.Create(ctx, vendor.ID, &model.AgentRequest{
				Name:        a.Name,
				Phone:       a.Phone,
				VehicleType: a.VehicleType,
				IsActive:    &active,
			}); err != nil {
				return sum, fmt.Errorf("vendor %s agent %s: %w", v.Email, a.Name, err)
			}
			sum.Agents++
		}
	}

	for _, c := range f.Customers {
		_, err := s.accounts.Register(ctx, model.RoleCustomer, c.register())
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Info().Str("email", c.Email).Msg("customer already seeded, skipping")
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("customer %s: %w", c.Email, err)
		}
		sum.Customers++
	}

	return sum, nil
}
