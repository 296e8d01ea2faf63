package models

import (
	"time"

	"gorm.io/gorm"
)

// Material status values
const (
	MaterialStatusActive       = "active"
	MaterialStatusInactive     = "inactive"
	MaterialStatusDiscontinued = "discontinued"
)

// Material represents a raw input tracked by on-hand and needed quantity.
// CurrentInventory is the stock physically on hand; NeededInventory is the
// demand accumulated from fulfillments of products that consume this material.
type Material struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            string         `gorm:"not null;index" json:"user_id"` // owner (identity provider subject)
	Name              string         `gorm:"not null" json:"name"`
	Description       string         `json:"description"`
	ImageURL          *string        `json:"image_url"`                            // externally hosted image
	ImageS3Key        *string        `json:"image_s3_key"`                         // nullable, S3 key for uploaded image
	PresignedImageURL *string        `gorm:"-" json:"presigned_image_url,omitempty"` // computed, presigned URL for uploaded image
	CurrentInventory  int            `gorm:"not null;default:0;check:current_inventory >= 0" json:"current_inventory"`
	NeededInventory   int            `gorm:"not null;default:0;check:needed_inventory >= 0" json:"needed_inventory"`
	Unit              string         `gorm:"not null" json:"unit"` // e.g. "pcs", "rolls", "sheets"
	Category          *string        `json:"category"`
	UnitCost          *float64       `json:"unit_cost"`
	Supplier          *string        `json:"supplier"`
	SKU               *string        `json:"sku"`
	LowStockThreshold *int           `json:"low_stock_threshold"`
	Status            string         `gorm:"not null;default:'active'" json:"status"` // active, inactive, discontinued
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// IsValidMaterialStatus reports whether s is a known material status
func IsValidMaterialStatus(s string) bool {
	switch s {
	case MaterialStatusActive, MaterialStatusInactive, MaterialStatusDiscontinued:
		return true
	}
	return false
}
