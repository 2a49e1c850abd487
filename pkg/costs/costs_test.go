package costs

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/rng"
)

func standardGroceryOrder() models.Transaction {
	return models.Transaction{
		ID:             "TXN-2023-000001",
		CustomerID:     "CUST-001",
		Category:       "Grocery",
		Amount:         400.00,
		Quantity:       10,
		LineItems:      4,
		IsStandard:     true,
		IntensityLevel: "Low",
		Multiplier:     1.0,
		PaymentTerms:   "Net-30",
	}
}

func urgentFreshOrder() models.Transaction {
	return models.Transaction{
		ID:             "TXN-2023-000002",
		CustomerID:     "CUST-002",
		Category:       "Fresh",
		Amount:         200.00,
		Quantity:       8,
		LineItems:      2,
		IsStandard:     false,
		IsUrgent:       true,
		IntensityLevel: "High",
		Multiplier:     1.8,
		PaymentTerms:   "Net-90",
	}
}

var testWeights = map[string]float64{"Grocery": 2.0, "Fresh": 1.5}

func TestAllocateWarehouseStandardGrocery(t *testing.T) {
	recs, err := AllocateWarehouse([]models.Transaction{standardGroceryOrder()}, testWeights)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.False(t, rec.IsCustom)
	assert.Equal(t, 20.0, rec.OrderWeightKg)
	// Pick/pack 6.00 x 4 lines, receiving 5, putaway 0.65 x 10.
	assert.Equal(t, 24.0, rec.PickPack)
	assert.Equal(t, 5.0, rec.Receiving)
	assert.Equal(t, 6.5, rec.Putaway)
	// 20kg x 0.10 EUR/kg/day x 1 day.
	assert.Equal(t, 2.0, rec.Storage)
	assert.Equal(t, csvio.Round2((24+5+6.5)*0.15), rec.IndirectLabor)
	assert.Equal(t, 10.0, rec.Inbound)
	// 1% shrinkage and 1% standard returns provision on 400.
	assert.Equal(t, 4.0, rec.Shrinkage)
	assert.Equal(t, 4.0, rec.ReturnsProvision)
	assert.Equal(t, 1.0, rec.ColdChain)
	assert.Equal(t, 1.0, rec.Multiplier)

	sum := rec.PickPack + rec.Receiving + rec.Putaway + rec.Storage +
		rec.IndirectLabor + rec.Inbound + rec.Shrinkage + rec.ReturnsProvision + rec.EquipmentTech
	assert.InDelta(t, sum, rec.Total, 0.05)
	assert.InDelta(t, rec.Total/10, rec.CostPerUnit, 0.01)
}

func TestAllocateWarehouseColdChainAndCustom(t *testing.T) {
	recs, err := AllocateWarehouse([]models.Transaction{urgentFreshOrder()}, testWeights)
	require.NoError(t, err)
	rec := recs[0]

	assert.True(t, rec.IsCustom)
	assert.Equal(t, 1.5, rec.ColdChain)
	assert.Equal(t, 1.8, rec.Multiplier)
	// Custom orders carry the higher returns provision: 8% of 200.
	assert.Equal(t, 16.0, rec.ReturnsProvision)
	// High intensity stores for two days: 12kg x 0.30 x 2.
	assert.Equal(t, 7.2, rec.Storage)
}

func TestAllocateWarehouseUnknownCategory(t *testing.T) {
	tx := standardGroceryOrder()
	tx.Category = "Hardware"
	_, err := AllocateWarehouse([]models.Transaction{tx}, testWeights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hardware")
}

func TestAllocateWarehouseUnknownIntensity(t *testing.T) {
	tx := standardGroceryOrder()
	tx.IntensityLevel = "Extreme"
	_, err := AllocateWarehouse([]models.Transaction{tx}, testWeights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Extreme")
}

func TestAllocateShippingStandardIsFree(t *testing.T) {
	recs, err := AllocateShipping([]models.Transaction{standardGroceryOrder()}, testWeights)
	require.NoError(t, err)
	rec := recs[0]
	assert.Zero(t, rec.Base)
	assert.Zero(t, rec.WeightSurcharge)
	assert.Zero(t, rec.ColdChain)
	assert.Zero(t, rec.Urgency)
	assert.Zero(t, rec.Total)
}

func TestAllocateShippingCustomUrgentFresh(t *testing.T) {
	recs, err := AllocateShipping([]models.Transaction{urgentFreshOrder()}, testWeights)
	require.NoError(t, err)
	rec := recs[0]

	assert.Equal(t, 20.0, rec.Base)
	// 12kg x 0.75.
	assert.Equal(t, 9.0, rec.WeightSurcharge)
	assert.Equal(t, 20.0, rec.ColdChain)
	assert.Equal(t, 20.0, rec.Urgency)
	assert.Equal(t, 69.0, rec.Total)
	assert.Equal(t, csvio.Round2(69.0/8), rec.PerUnit)
}

func TestAllocateReturnsDeterministicAndZeroFilled(t *testing.T) {
	txns := []models.Transaction{standardGroceryOrder(), urgentFreshOrder()}
	weights := map[string]float64{"TXN-2023-000001": 20.0, "TXN-2023-000002": 12.0}

	a, err := AllocateReturns(txns, weights, rng.New(42))
	require.NoError(t, err)
	b, err := AllocateReturns(txns, weights, rng.New(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, rec := range a {
		if rec.IsReturned {
			assert.Greater(t, rec.Total, 0.0)
			assert.Contains(t, []string{"OurError", "ShippingDamage", "CustomerComplaint", "QualityIssue"}, rec.Reason)
			handling := rec.ReverseShipping + rec.Receiving + rec.QC + rec.Restocking + rec.Disposal
			assert.InDelta(t, handling*rec.Responsibility+rec.DiscountedLoss+rec.ScrapLoss, rec.Total, 0.05)
		} else {
			assert.Zero(t, rec.Total)
			assert.Zero(t, rec.ReverseShipping)
			assert.Empty(t, rec.Reason)
		}
	}
}

func TestAllocateReturnsRateRoughlyMatchesCategory(t *testing.T) {
	var txns []models.Transaction
	weights := map[string]float64{}
	for i := 0; i < 500; i++ {
		tx := urgentFreshOrder()
		tx.ID = fmt.Sprintf("TXN-2023-%06d", i+1)
		txns = append(txns, tx)
		weights[tx.ID] = 12.0
	}

	recs, err := AllocateReturns(txns, weights, rng.New(42))
	require.NoError(t, err)

	returned := 0
	for _, rec := range recs {
		if rec.IsReturned {
			returned++
			// Custom cold-chain return: 20 base + 5 premium reverse shipping.
			assert.Equal(t, 25.0, rec.ReverseShipping)
			assert.Equal(t, 2.5, rec.Receiving)
			assert.Equal(t, 2.5, rec.QC)
		}
	}
	// Fresh returns at 12%; allow generous sampling slack.
	assert.Greater(t, returned, 25)
	assert.Less(t, returned, 120)
}

func TestAllocateReturnsMissingWarehouseRecord(t *testing.T) {
	_, err := AllocateReturns([]models.Transaction{standardGroceryOrder()}, map[string]float64{}, rng.New(42))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse")
}

func TestAllocateInterestNet30(t *testing.T) {
	recs, err := AllocateInterest([]models.Transaction{standardGroceryOrder()}, 0.05)
	require.NoError(t, err)
	rec := recs[0]

	assert.Equal(t, 30, rec.DSODays)
	daily := csvio.Round(400.0*0.05/365, 4)
	assert.Equal(t, daily, rec.Daily)
	assert.Equal(t, csvio.Round2(400.0*0.05/365*30), rec.Total)
}

func TestAllocateInterestUnknownTerms(t *testing.T) {
	tx := standardGroceryOrder()
	tx.PaymentTerms = "Net-45"
	_, err := AllocateInterest([]models.Transaction{tx}, 0.05)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Net-45")
}

func TestAllocateOverheadSegmentsAndFloor(t *testing.T) {
	txns := []models.Transaction{standardGroceryOrder(), urgentFreshOrder()}
	segments := map[string]string{"CUST-001": "SMB", "CUST-002": "Enterprise"}

	recs, err := AllocateOverhead(txns, segments, 200.0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Base share 100 each. SMB x0.85 - 5 (Grocery) = 80, Enterprise x1.4 + 10 (Fresh) = 150.
	assert.Equal(t, 80.0, recs[0].Total)
	assert.Equal(t, 150.0, recs[1].Total)

	// A tiny overhead pool hits the per-order floor.
	low, err := AllocateOverhead(txns, segments, 10.0)
	require.NoError(t, err)
	assert.Equal(t, 30.0, low[0].Total)
	assert.Equal(t, 30.0, low[1].Total)
}

func TestAllocateOverheadMissingCustomer(t *testing.T) {
	_, err := AllocateOverhead([]models.Transaction{standardGroceryOrder()}, map[string]string{}, 100.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUST-001")
}

func TestReadOrderWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warehouse.csv")
	err := csvio.WriteFile(path, []string{"TransactionID", "OrderWeight_kg"}, [][]string{
		{"TXN-2023-000001", "20.00"},
		{"TXN-2023-000002", "12.50"},
	})
	require.NoError(t, err)

	weights, err := ReadOrderWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, weights["TXN-2023-000001"])
	assert.Equal(t, 12.5, weights["TXN-2023-000002"])
}
