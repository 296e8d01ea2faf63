package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/utils"
)

// ErrNoShortfall is returned when a suggested order is accepted for a
// material whose demand is already covered by stock plus open orders.
var ErrNoShortfall = errors.New("material has no shortfall to order")

// SuggestedOrder is one reorder recommendation: an active material whose
// accumulated demand exceeds its effective inventory (on-hand stock plus
// quantity already on open order).
type SuggestedOrder struct {
	MaterialID           uint     `json:"material_id"`
	MaterialName         string   `json:"material_name"`
	CurrentInventory     int      `json:"current_inventory"`
	NeededInventory      int      `json:"needed_inventory"`
	PendingOrderQuantity int      `json:"pending_order_quantity"`
	EffectiveInventory   int      `json:"effective_inventory"`
	Shortfall            int      `json:"shortfall"`
	Unit                 string   `json:"unit"`
	Supplier             *string  `json:"supplier,omitempty"`
	UnitCost             *float64 `json:"unit_cost,omitempty"`
	EstimatedTotal       *float64 `json:"estimated_total,omitempty"`
}

// ComputeSuggestedOrders runs the suggestion computation over the user's
// current snapshot of active materials and open orders. The computation is
// pure and read-only: running it twice on unchanged data yields identical
// results. Suggestions come back sorted by material name.
func ComputeSuggestedOrders(db *gorm.DB, userID string) ([]SuggestedOrder, error) {
	var materials []models.Material
	if err := db.Where("user_id = ? AND status = ?", userID, models.MaterialStatusActive).
		Order("name").
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load active materials: %w", err)
	}

	pending, err := pendingQuantityByMaterial(db, userID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]SuggestedOrder, 0)
	for i := range materials {
		if s := suggestionFor(&materials[i], pending[materials[i].ID]); s != nil {
			suggestions = append(suggestions, *s)
		}
	}
	return suggestions, nil
}

// AcceptSuggestedOrder recomputes the suggestion for a single material and,
// when a shortfall exists, creates an order covering exactly that shortfall.
// The new order is open immediately, so the same material will not be
// suggested again until independent changes reopen a gap.
func AcceptSuggestedOrder(db *gorm.DB, userID string, materialID uint) (*models.Order, error) {
	var material models.Material
	if err := db.Where("id = ? AND user_id = ? AND status = ?", materialID, userID, models.MaterialStatusActive).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to load material %d: %w", materialID, err)
	}

	pending, err := pendingQuantityByMaterial(db, userID)
	if err != nil {
		return nil, err
	}

	suggestion := suggestionFor(&material, pending[material.ID])
	if suggestion == nil {
		return nil, ErrNoShortfall
	}

	expectedDelivery := time.Now().AddDate(0, 0, 7)
	notes := fmt.Sprintf("Auto-suggested order to meet inventory needs (%d %s)", suggestion.Shortfall, suggestion.Unit)

	order := models.Order{
		UserID:               userID,
		MaterialID:           material.ID,
		OrderNumber:          utils.GenerateOrderNumber(),
		Quantity:             suggestion.Shortfall,
		UnitPrice:            material.UnitCost,
		TotalAmount:          suggestion.EstimatedTotal,
		Supplier:             material.Supplier,
		ExpectedDeliveryDate: &expectedDelivery,
		Status:               models.OrderStatusOrdered,
		Notes:                &notes,
	}

	if err := db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create suggested order: %w", err)
	}

	if err := db.Preload("Material").First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order %d: %w", order.ID, err)
	}
	return &order, nil
}

// pendingQuantityByMaterial sums the quantities of the user's open orders,
// grouped by material. Only ordered, processing, and shipped orders count.
func pendingQuantityByMaterial(db *gorm.DB, userID string) (map[uint]int, error) {
	var orders []models.Order
	if err := db.Select("material_id", "quantity").
		Where("user_id = ? AND status IN ?", userID, models.OpenOrderStatuses).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load open orders: %w", err)
	}

	pending := make(map[uint]int, len(orders))
	for _, o := range orders {
		pending[o.MaterialID] += o.Quantity
	}
	return pending, nil
}

// suggestionFor qualifies one material against its pending order quantity.
// Returns nil when effective inventory already covers the accumulated need,
// so every emitted suggestion carries a strictly positive shortfall.
func suggestionFor(material *models.Material, pendingQuantity int) *SuggestedOrder {
	effectiveInventory := material.CurrentInventory + pendingQuantity
	if material.NeededInventory <= effectiveInventory {
		return nil
	}

	shortfall := material.NeededInventory - effectiveInventory

	var estimatedTotal *float64
	if material.UnitCost != nil {
		total, _ := decimal.NewFromFloat(*material.UnitCost).
			Mul(decimal.NewFromInt(int64(shortfall))).
			Round(2).
			Float64()
		estimatedTotal = &total
	}

	return &SuggestedOrder{
		MaterialID:           material.ID,
		MaterialName:         material.Name,
		CurrentInventory:     material.CurrentInventory,
		NeededInventory:      material.NeededInventory,
		PendingOrderQuantity: pendingQuantity,
		EffectiveInventory:   effectiveInventory,
		Shortfall:            shortfall,
		Unit:                 material.Unit,
		Supplier:             material.Supplier,
		UnitCost:             material.UnitCost,
		EstimatedTotal:       estimatedTotal,
	}
}
