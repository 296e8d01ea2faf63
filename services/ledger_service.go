package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/tally-hq/tally-api/models"
)

// ErrMaterialNotFound is returned when an inventory adjustment targets a
// material that does not exist for the calling user.
var ErrMaterialNotFound = errors.New("material not found")

// AdjustCurrentInventory applies delta to a material's on-hand stock.
// The adjustment is a single UPDATE with a clamped expression evaluated at
// the datastore, so concurrent adjustments cannot lose updates. Both
// inventory counters share the same floor: they never go below zero.
func AdjustCurrentInventory(db *gorm.DB, userID string, materialID uint, delta int) (*models.Material, error) {
	if err := adjustInventoryColumn(db, userID, materialID, "current_inventory", delta); err != nil {
		return nil, err
	}

	var material models.Material
	if err := db.Where("id = ? AND user_id = ?", materialID, userID).First(&material).Error; err != nil {
		return nil, fmt.Errorf("failed to reload material %d: %w", materialID, err)
	}
	return &material, nil
}

// AdjustNeededInventory applies delta to a material's accumulated demand,
// clamped at zero. Callers on the fulfillment path treat failures as
// best-effort: the primary fulfillment write is never rolled back.
func AdjustNeededInventory(db *gorm.DB, userID string, materialID uint, delta int) error {
	return adjustInventoryColumn(db, userID, materialID, "needed_inventory", delta)
}

// ApplyFulfillmentDelta resolves the fulfillment's product to its linked
// material and mirrors the quantity delta onto needed inventory. Errors are
// logged and swallowed so a failed counter update never fails the
// fulfillment operation that triggered it.
func ApplyFulfillmentDelta(db *gorm.DB, userID string, productID uint, delta int) {
	if delta == 0 {
		return
	}

	// Unscoped so demand released by deleting a fulfillment still reaches
	// the material even when its product has since been deleted.
	var product models.Product
	if err := db.Unscoped().Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		log.Printf("Failed to resolve product %d for inventory adjustment: %v", productID, err)
		return
	}

	if product.MaterialID == nil {
		// Product does not consume a material; nothing to adjust
		return
	}

	if err := AdjustNeededInventory(db, userID, *product.MaterialID, delta); err != nil {
		log.Printf("Failed to adjust needed inventory for material %d by %d: %v", *product.MaterialID, delta, err)
	}
}

// adjustInventoryColumn issues the clamped atomic update shared by both
// counters. The CASE expression works on PostgreSQL and SQLite alike.
func adjustInventoryColumn(db *gorm.DB, userID string, materialID uint, column string, delta int) error {
	expr := fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column)
	result := db.Model(&models.Material{}).
		Where("id = ? AND user_id = ?", materialID, userID).
		Update(column, gorm.Expr(expr, delta, delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust %s for material %d: %w", column, materialID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMaterialNotFound
	}
	return nil
}
