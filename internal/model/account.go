package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the kind of principal making a request.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleVendor
}

// Identity is the resolved caller of a request.
type Identity struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// Account is a registered customer or vendor.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Role         Role      `json:"role" db:"-"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Address      *Address  `json:"address,omitempty" db:"address"`
	StoreName    *string   `json:"storeName,omitempty" db:"store_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Phone     *string  `json:"phone,omitempty"`
	Address   *Address `json:"address,omitempty"`
	StoreName *string  `json:"storeName,omitempty"`
}

// LoginRequest is the payload for account login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Account   *Account  `json:"account"`

	// SessionID is set when server-side sessions are enabled. It travels as a cookie only.
	SessionID string `json:"-"`
}
