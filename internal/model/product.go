package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a grocery item listed by a single vendor.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	VendorID      uuid.UUID  `json:"vendorId" db:"vendor_id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	Category      string     `json:"category" db:"category"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	Price         float64    `json:"price" db:"price"`
	Stock         int        `json:"stock" db:"stock"`
	ImageURL      string     `json:"imageUrl" db:"image_url"`
	IsAvailable   bool       `json:"isAvailable" db:"is_available"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty" db:"last_restocked"`

	// CategoryName is resolved from CategoryID at read time; "unknown" when the category is gone.
	CategoryName string `json:"categoryName,omitempty" db:"-"`
}

// ProductRequest is the payload for creating a product. Pointer fields distinguish
// "absent" from zero so that missing fields can be reported by name.
type ProductRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Price       *float64   `json:"price"`
	Stock       *int       `json:"stock"`
	ImageURL    string     `json:"imageUrl"`
	IsAvailable *bool      `json:"isAvailable,omitempty"`
}

// ProductPatch carries the fields of a product update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	IsAvailable *bool      `json:"isAvailable,omitempty"`
}

// Apply copies the set fields of the patch onto p and reports whether the update is a restock.
func (patch *ProductPatch) Apply(p *Product, now time.Time) (restocked bool) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock > p.Stock {
			restocked = true
			p.LastRestocked = &now
		}
		p.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	p.UpdatedAt = now
	return restocked
}

// Category groups a vendor's products for display.
type Category struct {
	ID            uuid.UUID `json:"id" db:"id"`
	VendorID      uuid.UUID `json:"vendorId" db:"vendor_id"`
	Name          string    `json:"name" db:"name"`
	Color         string    `json:"color" db:"color"`
	BgColor       string    `json:"bgColor" db:"bg_color"`
	Icon          string    `json:"icon" db:"icon"`
	Subcategories []string  `json:"subcategories" db:"subcategories"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the payload for creating or replacing a category.
type CategoryRequest struct {
	Name          string   `json:"name" validate:"required"`
	Color         string   `json:"color"`
	BgColor       string   `json:"bgColor"`
	Icon          string   `json:"icon"`
	Subcategories []string `json:"subcategories"`
}

// ImportRequest names the feed sources of a catalog import.
type ImportRequest struct {
	Sources []string `json:"sources" validate:"required,min=1,dive,required"`
}

// ImportResponse reports how many products an import created.
type ImportResponse struct {
	Imported int `json:"imported"`
}
