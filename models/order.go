package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values
const (
	OrderStatusOrdered    = "ordered"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a purchase request to a supplier to replenish a material
type Order struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               string         `gorm:"not null;index" json:"user_id"`
	MaterialID           uint           `gorm:"not null;index" json:"material_id"`
	Material             Material       `gorm:"foreignKey:MaterialID" json:"material"`
	OrderNumber          string         `gorm:"not null;uniqueIndex" json:"order_number"`
	Quantity             int            `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice            *float64       `json:"unit_price"`
	TotalAmount          *float64       `json:"total_amount"` // unit_price * quantity when both present
	Supplier             *string        `json:"supplier"`
	SupplierOrderID      *string        `json:"supplier_order_id"`
	ExpectedDeliveryDate *time.Time     `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time     `json:"actual_delivery_date"`
	Status               string         `gorm:"not null;default:'ordered'" json:"status"` // ordered, processing, shipped, delivered, cancelled
	Notes                *string        `json:"notes"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OpenOrderStatuses are the statuses whose quantities count toward
// effective inventory in the suggestion computation.
var OpenOrderStatuses = []string{OrderStatusOrdered, OrderStatusProcessing, OrderStatusShipped}

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusOrdered, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the order still counts toward pending inventory
func (o *Order) IsOpen() bool {
	switch o.Status {
	case OrderStatusOrdered, OrderStatusProcessing, OrderStatusShipped:
		return true
	}
	return false
}

// CanEdit reports whether the order may still be edited
func (o *Order) CanEdit() bool {
	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}

// CanCancel reports whether the order may still be cancelled
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}
