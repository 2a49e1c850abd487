// Package costs implements the per-order cost allocators: warehouse
// operations, outbound shipping, returns handling, payment-terms interest,
// and admin overhead.
package costs

import (
	"fmt"
	"math"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
)

// Warehouse labor and occupancy rates per category.
var (
	pickPackPerLineItem = map[string]float64{
		"Fresh": 7.50, "Milk": 6.50, "Grocery": 6.00,
		"Frozen": 6.50, "DetergentsPaper": 5.50, "Delicatessen": 7.00,
	}
	storagePerKgDay = map[string]float64{
		"Fresh": 0.30, "Milk": 0.35, "Grocery": 0.10,
		"Frozen": 0.40, "DetergentsPaper": 0.08, "Delicatessen": 0.32,
	}
	shrinkageRate = map[string]float64{
		"Fresh": 0.05, "Milk": 0.03, "Grocery": 0.01,
		"Frozen": 0.02, "DetergentsPaper": 0.005, "Delicatessen": 0.08,
	}
	returnsProvisionStandard = map[string]float64{
		"Fresh": 0.03, "Milk": 0.02, "Grocery": 0.01,
		"Frozen": 0.02, "DetergentsPaper": 0.005, "Delicatessen": 0.05,
	}
	returnsProvisionCustom = map[string]float64{
		"Fresh": 0.08, "Milk": 0.05, "Grocery": 0.03,
		"Frozen": 0.05, "DetergentsPaper": 0.01, "Delicatessen": 0.10,
	}
	storageDurationDays = map[string]float64{"Low": 1.0, "Medium": 1.5, "High": 2.0}
)

const (
	receivingPerOrder  = 5.00
	putawayPerUnit     = 0.65
	indirectLaborPct   = 0.15
	inboundFlat        = 10.00
	equipmentTechPct   = 0.05
	coldChainCap       = 1.5
)

// WarehouseColumns is the warehouse cost schema, in export order.
var WarehouseColumns = []string{
	"TransactionID", "CustomerID", "ProductCategory", "OrderIntensity", "IsCustomOrder",
	"Quantity", "NumberOfLineItems", "OrderWeight_kg", "TransactionAmount_EUR",
	"PickPackCost_EUR", "ReceivingCost_EUR", "PutawayCost_EUR", "StorageCost_EUR",
	"IndirectLaborCost_EUR", "InboundTransportCost_EUR", "ShrinkageCost_EUR",
	"ReturnsCost_EUR", "EquipmentTechCost_EUR", "ColdChainMultiplier",
	"ServiceCostMultiplier", "TotalWarehouseOperationsCost_EUR", "CostPerUnit_EUR",
}

type WarehouseCost struct {
	TransactionID    string
	CustomerID       string
	Category         string
	Intensity        string
	IsCustom         bool
	Quantity         int
	LineItems        int
	OrderWeightKg    float64
	Amount           float64
	PickPack         float64
	Receiving        float64
	Putaway          float64
	Storage          float64
	IndirectLabor    float64
	Inbound          float64
	Shrinkage        float64
	ReturnsProvision float64
	EquipmentTech    float64
	ColdChain        float64
	Multiplier       float64
	Total            float64
	CostPerUnit      float64
}

// AllocateWarehouse computes per-order warehouse operations cost. Order
// weight is estimated from the catalog's average product weight for the
// order's category. Unknown categories and intensities fail fast.
func AllocateWarehouse(txns []models.Transaction, avgWeight map[string]float64) ([]WarehouseCost, error) {
	out := make([]WarehouseCost, 0, len(txns))
	for _, tx := range txns {
		rate, ok := pickPackPerLineItem[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown product category %q", tx.ID, tx.Category)
		}
		duration, ok := storageDurationDays[tx.IntensityLevel]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown order intensity %q", tx.ID, tx.IntensityLevel)
		}
		weight, ok := avgWeight[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: no catalog weight for category %q", tx.ID, tx.Category)
		}

		isCustom := !tx.IsStandard
		orderWeight := weight * float64(tx.Quantity)

		pickPack := rate * float64(tx.LineItems)
		receiving := receivingPerOrder
		putaway := putawayPerUnit * float64(tx.Quantity)
		storage := orderWeight * storagePerKgDay[tx.Category] * duration
		directLabor := pickPack + receiving + putaway
		indirect := directLabor * indirectLaborPct
		inbound := inboundFlat
		shrinkage := tx.Amount * shrinkageRate[tx.Category]
		provisionRate := returnsProvisionStandard[tx.Category]
		if isCustom {
			provisionRate = returnsProvisionCustom[tx.Category]
		}
		provision := tx.Amount * provisionRate
		equipment := (directLabor + storage + indirect) * equipmentTechPct

		base := directLabor + storage + indirect + inbound + shrinkage + provision + equipment
		coldChain := 1.0
		if models.ColdChainCategories[tx.Category] {
			coldChain = coldChainCap
		}
		total := base * tx.Multiplier * coldChain

		out = append(out, WarehouseCost{
			TransactionID:    tx.ID,
			CustomerID:       tx.CustomerID,
			Category:         tx.Category,
			Intensity:        tx.IntensityLevel,
			IsCustom:         isCustom,
			Quantity:         tx.Quantity,
			LineItems:        tx.LineItems,
			OrderWeightKg:    csvio.Round2(orderWeight),
			Amount:           csvio.Round2(tx.Amount),
			PickPack:         csvio.Round2(pickPack),
			Receiving:        csvio.Round2(receiving),
			Putaway:          csvio.Round2(putaway),
			Storage:          csvio.Round2(storage),
			IndirectLabor:    csvio.Round2(indirect),
			Inbound:          csvio.Round2(inbound),
			Shrinkage:        csvio.Round2(shrinkage),
			ReturnsProvision: csvio.Round2(provision),
			EquipmentTech:    csvio.Round2(equipment),
			ColdChain:        coldChain,
			Multiplier:       tx.Multiplier,
			Total:            csvio.Round2(total),
			CostPerUnit:      csvio.Round2(total / math.Max(float64(tx.Quantity), 1)),
		})
	}
	return out, nil
}

func WriteWarehouseCosts(path string, records []WarehouseCost) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.TransactionID,
			rec.CustomerID,
			rec.Category,
			rec.Intensity,
			csvio.Bool(rec.IsCustom),
			csvio.Int(rec.Quantity),
			csvio.Int(rec.LineItems),
			csvio.Money(rec.OrderWeightKg),
			csvio.Money(rec.Amount),
			csvio.Money(rec.PickPack),
			csvio.Money(rec.Receiving),
			csvio.Money(rec.Putaway),
			csvio.Money(rec.Storage),
			csvio.Money(rec.IndirectLabor),
			csvio.Money(rec.Inbound),
			csvio.Money(rec.Shrinkage),
			csvio.Money(rec.ReturnsProvision),
			csvio.Money(rec.EquipmentTech),
			csvio.Float(rec.ColdChain),
			csvio.Float(rec.Multiplier),
			csvio.Money(rec.Total),
			csvio.Money(rec.CostPerUnit),
		})
	}
	return csvio.WriteFile(path, WarehouseColumns, rows)
}

// GenerateWarehouseCosts runs the warehouse-costs stage end to end.
func GenerateWarehouseCosts(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	products, err := models.ReadProducts(cfg.GeneratedPath("03_products_generated.csv"))
	if err != nil {
		return err
	}
	records, err := AllocateWarehouse(txns, models.AvgWeightByCategory(products))
	if err != nil {
		return err
	}
	return WriteWarehouseCosts(cfg.GeneratedPath("04_warehouse_costs_generated.csv"), records)
}
