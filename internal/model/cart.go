package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a persisted cart line.
type CartItem struct {
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// Cart is the per-user collection of cart lines.
type Cart struct {
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartLine is a cart item joined with the product fields needed for display.
// A line whose product has been deleted keeps Name empty and Available false.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	VendorID  uuid.UUID `json:"vendorId"`
	Available bool      `json:"available"`
}

// AddToCartRequest is the payload for POST /api/cart.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0,lte=10000"`
}

// UpdateCartRequest is the payload for PUT /api/cart.
type UpdateCartRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity *int      `json:"quantity" validate:"required,gte=0,lte=10000"`
}

// RemoveFromCartRequest is the payload for DELETE /api/cart.
type RemoveFromCartRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}
