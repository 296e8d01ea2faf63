package models

import (
	"time"

	"gorm.io/gorm"
)

// Fulfillment status values
const (
	FulfillmentStatusPending    = "pending"
	FulfillmentStatusProcessing = "processing"
	FulfillmentStatusShipped    = "shipped"
	FulfillmentStatusDelivered  = "delivered"
	FulfillmentStatusCancelled  = "cancelled"
)

// Fulfillment represents a commitment to ship a quantity of a product to a
// customer. Fulfillments drive material demand: every quantity change is
// mirrored onto the linked material's needed inventory.
type Fulfillment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        string         `gorm:"not null;index" json:"user_id"`
	FulfillmentID string         `gorm:"not null;uniqueIndex" json:"fulfillment_id"` // human-readable code, FL + 6 digits + 4 chars
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	Product       Product        `gorm:"foreignKey:ProductID" json:"product"`
	Quantity      int            `gorm:"not null;check:quantity > 0" json:"quantity"`
	CustomerEmail string         `gorm:"not null" json:"customer_email"`
	Notes         *string        `json:"notes"`
	Status        string         `gorm:"not null;default:'pending'" json:"status"` // pending, processing, shipped, delivered, cancelled
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Fulfillment model
func (Fulfillment) TableName() string {
	return "fulfillments"
}

// IsValidFulfillmentStatus reports whether s is a known fulfillment status
func IsValidFulfillmentStatus(s string) bool {
	switch s {
	case FulfillmentStatusPending, FulfillmentStatusProcessing, FulfillmentStatusShipped,
		FulfillmentStatusDelivered, FulfillmentStatusCancelled:
		return true
	}
	return false
}

// CanEdit reports whether the fulfillment may still be edited or deleted
func (f *Fulfillment) CanEdit() bool {
	return f.Status == FulfillmentStatusPending || f.Status == FulfillmentStatusProcessing
}

// NextValidStatuses returns the statuses the fulfillment may transition to
func (f *Fulfillment) NextValidStatuses() []string {
	switch f.Status {
	case FulfillmentStatusPending:
		return []string{FulfillmentStatusProcessing, FulfillmentStatusCancelled}
	case FulfillmentStatusProcessing:
		return []string{FulfillmentStatusShipped, FulfillmentStatusCancelled}
	case FulfillmentStatusShipped:
		return []string{FulfillmentStatusDelivered}
	default:
		// delivered and cancelled are final
		return nil
	}
}

// CanTransitionTo reports whether the fulfillment may move to the given status
func (f *Fulfillment) CanTransitionTo(status string) bool {
	for _, s := range f.NextValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
