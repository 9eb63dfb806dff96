package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleType is the kind of vehicle a delivery agent uses.
type VehicleType string

const (
	VehicleBike    VehicleType = "Bike"
	VehicleCar     VehicleType = "Car"
	VehicleScooter VehicleType = "Scooter"
	VehicleOther   VehicleType = "Other"
)

// DeliveryAgent is a courier on a vendor's roster.
type DeliveryAgent struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	VendorID    uuid.UUID   `json:"vendorId" db:"vendor_id"`
	Name        string      `json:"name" db:"name"`
	Phone       string      `json:"phone" db:"phone"`
	VehicleType VehicleType `json:"vehicleType" db:"vehicle_type"`
	IsActive    bool        `json:"isActive" db:"is_active"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// AgentRequest is the payload for creating a delivery agent.
type AgentRequest struct {
	Name        string      `json:"name" validate:"required"`
	Phone       string      `json:"phone" validate:"required"`
	VehicleType VehicleType `json:"vehicleType" validate:"required,oneof=Bike Car Scooter Other"`
	IsActive    *bool       `json:"isActive,omitempty"`
}

// AgentPatch carries the fields of an agent update; nil fields are left unchanged.
type AgentPatch struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone       *string      `json:"phone,omitempty" validate:"omitempty,min=1"`
	VehicleType *VehicleType `json:"vehicleType,omitempty" validate:"omitempty,oneof=Bike Car Scooter Other"`
	IsActive    *bool        `json:"isActive,omitempty"`
}

// Apply copies the set fields of the patch onto a.
func (patch *AgentPatch) Apply(a *DeliveryAgent, now time.Time) {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Phone != nil {
		a.Phone = *patch.Phone
	}
	if patch.VehicleType != nil {
		a.VehicleType = *patch.VehicleType
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	a.UpdatedAt = now
}
