package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable item that may consume one material per unit
// produced. The material reference is optional and carries no ownership:
// deleting a product leaves historical fulfillments untouched.
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            string         `gorm:"not null;index" json:"user_id"`
	Name              string         `gorm:"not null" json:"name"`
	Description       *string        `json:"description"`
	Category          *string        `json:"category"`
	Price             *float64       `json:"price"`
	ImageURL          *string        `json:"image_url"`
	ImageS3Key        *string        `json:"image_s3_key"`
	PresignedImageURL *string        `gorm:"-" json:"presigned_image_url,omitempty"`
	MaterialID        *uint          `gorm:"index" json:"material_id"` // nullable, material consumed per unit
	Material          *Material      `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
