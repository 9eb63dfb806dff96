package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusPreparing      OrderStatus = "Preparing"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

// OrderStatuses lists every accepted order status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the fixed order statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is a purchase from a single vendor. Items are a snapshot taken at creation time.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	VendorID    uuid.UUID   `json:"vendorId" db:"vendor_id"`
	Items       []OrderItem `json:"items" db:"items"`
	Status      OrderStatus `json:"status" db:"status"`
	TotalAmount float64     `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshot; price, name and image are copied from the product.
type OrderItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	UserID      uuid.UUID          `json:"userId"`
	VendorID    uuid.UUID          `json:"vendorId"`
	Products    []OrderItemRequest `json:"products"`
	TotalAmount *float64           `json:"totalAmount"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateOrderStatusRequest is the payload for PATCH /api/orders/{id}.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// OrderFilter restricts and paginates a customer's order history.
type OrderFilter struct {
	Page   int
	Limit  int
	Status *OrderStatus
}

// Offset returns the row offset of the requested page.
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// OrderPage is one page of a customer's order history.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Total  int     `json:"total"`
}
