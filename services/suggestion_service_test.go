package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tally-hq/tally-api/models"
	"github.com/tally-hq/tally-api/utils"
)

const suggestionTestUser = "auth0|suggestions"

func setupSuggestionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Material{}, &models.Product{}, &models.Order{}, &models.Fulfillment{}))
	return db
}

func createSuggestionMaterial(t *testing.T, db *gorm.DB, name string, current, needed int, unitCost *float64, status string) *models.Material {
	t.Helper()
	material := &models.Material{
		UserID:           suggestionTestUser,
		Name:             name,
		CurrentInventory: current,
		NeededInventory:  needed,
		Unit:             "units",
		UnitCost:         unitCost,
		Status:           status,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

func createOpenOrder(t *testing.T, db *gorm.DB, materialID uint, quantity int, status string) {
	t.Helper()
	order := &models.Order{
		UserID:      suggestionTestUser,
		MaterialID:  materialID,
		OrderNumber: utils.GenerateOrderNumber(),
		Quantity:    quantity,
		Status:      status,
	}
	require.NoError(t, db.Create(order).Error)
}

func TestComputeSuggestedOrdersShortfall(t *testing.T) {
	db := setupSuggestionTestDB(t)
	unitCost := 2.5
	material := createSuggestionMaterial(t, db, "Beeswax", 3, 10, &unitCost, models.MaterialStatusActive)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, material.ID, s.MaterialID)
	assert.Equal(t, "Beeswax", s.MaterialName)
	assert.Equal(t, 3, s.CurrentInventory)
	assert.Equal(t, 10, s.NeededInventory)
	assert.Equal(t, 0, s.PendingOrderQuantity)
	assert.Equal(t, 3, s.EffectiveInventory)
	assert.Equal(t, 7, s.Shortfall)
	require.NotNil(t, s.EstimatedTotal)
	assert.InDelta(t, 17.5, *s.EstimatedTotal, 0.001)
}

func TestComputeSuggestedOrdersCountsOpenOrders(t *testing.T) {
	db := setupSuggestionTestDB(t)
	material := createSuggestionMaterial(t, db, "Beeswax", 2, 20, nil, models.MaterialStatusActive)

	createOpenOrder(t, db, material.ID, 5, models.OrderStatusOrdered)
	createOpenOrder(t, db, material.ID, 4, models.OrderStatusProcessing)
	createOpenOrder(t, db, material.ID, 3, models.OrderStatusShipped)
	// Closed orders must not count
	createOpenOrder(t, db, material.ID, 100, models.OrderStatusDelivered)
	createOpenOrder(t, db, material.ID, 100, models.OrderStatusCancelled)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, 12, s.PendingOrderQuantity)
	assert.Equal(t, 14, s.EffectiveInventory)
	assert.Equal(t, 6, s.Shortfall)
	assert.Nil(t, s.EstimatedTotal, "no unit cost means no estimated total")
}

func TestComputeSuggestedOrdersSkipsCoveredMaterials(t *testing.T) {
	db := setupSuggestionTestDB(t)

	// Covered by stock alone
	createSuggestionMaterial(t, db, "Covered", 10, 10, nil, models.MaterialStatusActive)
	// Covered by stock plus an open order
	pending := createSuggestionMaterial(t, db, "Pending", 2, 8, nil, models.MaterialStatusActive)
	createOpenOrder(t, db, pending.ID, 6, models.OrderStatusOrdered)
	// No demand at all
	createSuggestionMaterial(t, db, "Quiet", 0, 0, nil, models.MaterialStatusActive)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestComputeSuggestedOrdersSkipsInactiveMaterials(t *testing.T) {
	db := setupSuggestionTestDB(t)
	createSuggestionMaterial(t, db, "Inactive", 0, 10, nil, models.MaterialStatusInactive)
	createSuggestionMaterial(t, db, "Discontinued", 0, 10, nil, models.MaterialStatusDiscontinued)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	assert.Empty(t, suggestions, "only active materials qualify for suggestions")
}

func TestComputeSuggestedOrdersSortedByName(t *testing.T) {
	db := setupSuggestionTestDB(t)
	createSuggestionMaterial(t, db, "Zinc Oxide", 0, 5, nil, models.MaterialStatusActive)
	createSuggestionMaterial(t, db, "Argan Oil", 0, 5, nil, models.MaterialStatusActive)
	createSuggestionMaterial(t, db, "Beeswax", 0, 5, nil, models.MaterialStatusActive)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	assert.Equal(t, "Argan Oil", suggestions[0].MaterialName)
	assert.Equal(t, "Beeswax", suggestions[1].MaterialName)
	assert.Equal(t, "Zinc Oxide", suggestions[2].MaterialName)
}

func TestComputeSuggestedOrdersIsReadOnly(t *testing.T) {
	db := setupSuggestionTestDB(t)
	createSuggestionMaterial(t, db, "Beeswax", 3, 10, nil, models.MaterialStatusActive)

	first, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	second, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)

	assert.Equal(t, first, second, "recomputing on unchanged data should be identical")

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount, "computing suggestions must not create orders")
}

func TestAcceptSuggestedOrder(t *testing.T) {
	db := setupSuggestionTestDB(t)
	unitCost := 4.0
	material := createSuggestionMaterial(t, db, "Beeswax", 3, 10, &unitCost, models.MaterialStatusActive)

	order, err := AcceptSuggestedOrder(db, suggestionTestUser, material.ID)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, material.ID, order.MaterialID)
	assert.Equal(t, 7, order.Quantity, "order quantity should equal the shortfall")
	assert.Equal(t, models.OrderStatusOrdered, order.Status)
	assert.Regexp(t, `^MO\d{6}[A-Z0-9]{4}$`, order.OrderNumber)
	require.NotNil(t, order.UnitPrice)
	assert.InDelta(t, 4.0, *order.UnitPrice, 0.001)
	require.NotNil(t, order.TotalAmount)
	assert.InDelta(t, 28.0, *order.TotalAmount, 0.001)
	require.NotNil(t, order.ExpectedDeliveryDate)
	require.NotNil(t, order.Notes)
	assert.Contains(t, *order.Notes, "Auto-suggested order")
	assert.Equal(t, "Beeswax", order.Material.Name, "accepted order should come back with its material preloaded")
}

func TestAcceptSuggestedOrderClearsSuggestion(t *testing.T) {
	db := setupSuggestionTestDB(t)
	material := createSuggestionMaterial(t, db, "Beeswax", 3, 10, nil, models.MaterialStatusActive)

	_, err := AcceptSuggestedOrder(db, suggestionTestUser, material.ID)
	require.NoError(t, err)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	assert.Empty(t, suggestions, "accepting a suggestion should cover the shortfall exactly")
}

func TestAcceptSuggestedOrderNoShortfall(t *testing.T) {
	db := setupSuggestionTestDB(t)
	material := createSuggestionMaterial(t, db, "Beeswax", 10, 5, nil, models.MaterialStatusActive)

	_, err := AcceptSuggestedOrder(db, suggestionTestUser, material.ID)
	assert.ErrorIs(t, err, ErrNoShortfall)
}

func TestAcceptSuggestedOrderMaterialNotFound(t *testing.T) {
	db := setupSuggestionTestDB(t)

	_, err := AcceptSuggestedOrder(db, suggestionTestUser, 9999)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestAcceptSuggestedOrderInactiveMaterial(t *testing.T) {
	db := setupSuggestionTestDB(t)
	material := createSuggestionMaterial(t, db, "Retired", 0, 10, nil, models.MaterialStatusInactive)

	_, err := AcceptSuggestedOrder(db, suggestionTestUser, material.ID)
	assert.ErrorIs(t, err, ErrMaterialNotFound, "inactive materials are not eligible for suggested orders")
}

func TestSuggestionsScopedToUser(t *testing.T) {
	db := setupSuggestionTestDB(t)

	other := &models.Material{
		UserID:           "auth0|someone-else",
		Name:             "Foreign",
		CurrentInventory: 0,
		NeededInventory:  10,
		Unit:             "units",
		Status:           models.MaterialStatusActive,
	}
	require.NoError(t, db.Create(other).Error)

	suggestions, err := ComputeSuggestedOrders(db, suggestionTestUser)
	require.NoError(t, err)
	assert.Empty(t, suggestions, "suggestions must not cross user boundaries")
}
