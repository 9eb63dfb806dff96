package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is a state of the delivery lifecycle.
type DeliveryStatus string

const (
	DeliveryPendingAssignment DeliveryStatus = "Pending Assignment"
	DeliveryAssigned          DeliveryStatus = "Assigned"
	DeliveryOutForDelivery    DeliveryStatus = "Out for Delivery"
	DeliveryDelivered         DeliveryStatus = "Delivered"
	DeliveryAttempted         DeliveryStatus = "Attempted Delivery"
	DeliveryCancelled         DeliveryStatus = "Cancelled"
	DeliveryDelayed           DeliveryStatus = "Delayed"
)

// DeliveryStatuses lists every accepted delivery status.
var DeliveryStatuses = []DeliveryStatus{
	DeliveryPendingAssignment,
	DeliveryAssigned,
	DeliveryOutForDelivery,
	DeliveryDelivered,
	DeliveryAttempted,
	DeliveryCancelled,
	DeliveryDelayed,
}

// Valid reports whether s is one of the fixed delivery statuses.
func (s DeliveryStatus) Valid() bool {
	for _, v := range DeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition out of s is allowed.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryCancelled
}

// Address is a customer delivery address.
type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// Location is a courier position.
type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Delivery tracks the fulfilment of exactly one order.
type Delivery struct {
	ID                    uuid.UUID      `json:"id" db:"id"`
	DeliveryID            *string        `json:"deliveryId,omitempty" db:"delivery_ref"`
	OrderID               uuid.UUID      `json:"orderId" db:"order_id"`
	VendorID              uuid.UUID      `json:"vendorId" db:"vendor_id"`
	CustomerID            uuid.UUID      `json:"customerId" db:"customer_id"`
	CustomerName          string         `json:"customerName" db:"customer_name"`
	CustomerAddress       Address        `json:"customerAddress" db:"customer_address"`
	CustomerPhone         *string        `json:"customerPhone,omitempty" db:"customer_phone"`
	AssignedAgentID       *uuid.UUID     `json:"assignedAgentId" db:"assigned_agent_id"`
	Status                DeliveryStatus `json:"status" db:"status"`
	EstimatedDeliveryTime *time.Time     `json:"estimatedDeliveryTime,omitempty" db:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time     `json:"actualDeliveryTime" db:"actual_delivery_time"`
	CurrentLocation       *Location      `json:"currentLocation,omitempty" db:"current_location"`
	OrderValue            *float64       `json:"orderValue,omitempty" db:"order_value"`
	PackageSize           *string        `json:"packageSize,omitempty" db:"package_size"`
	CreatedAt             time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time      `json:"updatedAt" db:"updated_at"`

	// Agent is joined at read time; nil when unassigned or when the agent no longer exists.
	Agent *DeliveryAgent `json:"agent" db:"-"`
}

// NewDelivery returns a delivery in the initial lifecycle state.
func NewDelivery(order *Order, now time.Time) *Delivery {
	value := order.TotalAmount
	return &Delivery{
		ID:         uuid.New(),
		OrderID:    order.ID,
		VendorID:   order.VendorID,
		CustomerID: order.UserID,
		Status:     DeliveryPendingAssignment,
		OrderValue: &value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetStatus moves the delivery to next. It is the single place that enforces the enum,
// the terminal states and the delivered timestamp. Setting the current status is a no-op.
func (d *Delivery) SetStatus(next DeliveryStatus, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if next == d.Status {
		return nil
	}
	if d.Status.Terminal() {
		return ErrDeliveryClosed
	}
	d.Status = next
	if next == DeliveryDelivered && d.ActualDeliveryTime == nil {
		t := now
		d.ActualDeliveryTime = &t
	}
	d.UpdatedAt = now
	return nil
}

// AssignAgent sets or clears the courier. Assigning moves the delivery to Assigned and
// clearing moves it back to Pending Assignment.
func (d *Delivery) AssignAgent(agentID *uuid.UUID, now time.Time) error {
	if d.Status.Terminal() {
		return ErrDeliveryClosed
	}
	d.AssignedAgentID = agentID
	if agentID != nil {
		d.Status = DeliveryAssigned
	} else {
		d.Status = DeliveryPendingAssignment
	}
	d.UpdatedAt = now
	return nil
}

// UpdateLocation records the courier position. Closed deliveries no longer move.
func (d *Delivery) UpdateLocation(loc Location, now time.Time) error {
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
		return ValidationError("location is out of range")
	}
	if d.Status.Terminal() {
		return ErrDeliveryClosed
	}
	d.CurrentLocation = &loc
	d.UpdatedAt = now
	return nil
}

// CreateDeliveryRequest begins fulfilment of an order. Customer fields default from the
// customer account when omitted.
type CreateDeliveryRequest struct {
	OrderID               uuid.UUID  `json:"orderId" validate:"required"`
	DeliveryID            *string    `json:"deliveryId,omitempty"`
	CustomerName          *string    `json:"customerName,omitempty"`
	CustomerAddress       *Address   `json:"customerAddress,omitempty"`
	CustomerPhone         *string    `json:"customerPhone,omitempty"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime,omitempty"`
	PackageSize           *string    `json:"packageSize,omitempty" validate:"omitempty,oneof=Small Medium Large"`
}

// UpdateDeliveryStatusRequest is the payload for PUT /deliveries/{id}/status.
type UpdateDeliveryStatusRequest struct {
	NewStatus DeliveryStatus `json:"newStatus" validate:"required"`
}

// AssignAgentRequest is the payload for PUT /deliveries/{id}/assign. A null agentId unassigns.
type AssignAgentRequest struct {
	AgentID *uuid.UUID `json:"agentId"`
}
