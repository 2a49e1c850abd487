package costs

import (
	"fmt"
	"math"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
)

// Outbound shipping applies to custom orders only; standard orders are
// collected by the customer.
const (
	baseShipping        = 20.00
	weightSurchargePerKg = 0.75
	urgencyPremium      = 20.00
)

// coldChainShippingPremium by category; zero for ambient goods and for
// Frozen, whose cold transport is covered by the base rate.
var coldChainShippingPremium = map[string]float64{
	"Fresh": 20.00, "Milk": 15.00, "Delicatessen": 18.00,
	"Frozen": 0.00, "Grocery": 0.00, "DetergentsPaper": 0.00,
}

// ShippingColumns is the shipping cost schema, in export order.
var ShippingColumns = []string{
	"TransactionID", "CustomerID", "ProductCategory", "Quantity", "OrderWeight_kg",
	"TransactionAmount_EUR", "IsStandardOrder", "IsUrgent", "BaseShippingCost_EUR",
	"WeightSurchargeCost_EUR", "ColdChainPremium_EUR", "UrgencyPremium_EUR",
	"TotalShippingCost_EUR", "ShippingCostPerUnit_EUR",
}

type ShippingCost struct {
	TransactionID   string
	CustomerID      string
	Category        string
	Quantity        int
	OrderWeightKg   float64
	Amount          float64
	IsStandard      bool
	IsUrgent        bool
	Base            float64
	WeightSurcharge float64
	ColdChain       float64
	Urgency         float64
	Total           float64
	PerUnit         float64
}

// AllocateShipping computes outbound shipping cost per order. Standard
// orders carry zeroed components.
func AllocateShipping(txns []models.Transaction, avgWeight map[string]float64) ([]ShippingCost, error) {
	out := make([]ShippingCost, 0, len(txns))
	for _, tx := range txns {
		weight, ok := avgWeight[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: no catalog weight for category %q", tx.ID, tx.Category)
		}
		premium, ok := coldChainShippingPremium[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown product category %q", tx.ID, tx.Category)
		}
		orderWeight := weight * float64(tx.Quantity)

		rec := ShippingCost{
			TransactionID: tx.ID,
			CustomerID:    tx.CustomerID,
			Category:      tx.Category,
			Quantity:      tx.Quantity,
			OrderWeightKg: csvio.Round2(orderWeight),
			Amount:        csvio.Round2(tx.Amount),
			IsStandard:    tx.IsStandard,
			IsUrgent:      tx.IsUrgent,
		}
		if !tx.IsStandard {
			rec.Base = baseShipping
			rec.WeightSurcharge = csvio.Round2(orderWeight * weightSurchargePerKg)
			rec.ColdChain = premium
			if tx.IsUrgent {
				rec.Urgency = urgencyPremium
			}
			total := baseShipping + orderWeight*weightSurchargePerKg + premium + rec.Urgency
			rec.Total = csvio.Round2(total)
			rec.PerUnit = csvio.Round2(total / math.Max(float64(tx.Quantity), 1))
		}
		out = append(out, rec)
	}
	return out, nil
}

func WriteShippingCosts(path string, records []ShippingCost) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.TransactionID,
			rec.CustomerID,
			rec.Category,
			csvio.Int(rec.Quantity),
			csvio.Money(rec.OrderWeightKg),
			csvio.Money(rec.Amount),
			csvio.Bool(rec.IsStandard),
			csvio.Bool(rec.IsUrgent),
			csvio.Money(rec.Base),
			csvio.Money(rec.WeightSurcharge),
			csvio.Money(rec.ColdChain),
			csvio.Money(rec.Urgency),
			csvio.Money(rec.Total),
			csvio.Money(rec.PerUnit),
		})
	}
	return csvio.WriteFile(path, ShippingColumns, rows)
}

// GenerateShippingCosts runs the shipping-costs stage end to end.
func GenerateShippingCosts(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	products, err := models.ReadProducts(cfg.GeneratedPath("03_products_generated.csv"))
	if err != nil {
		return err
	}
	records, err := AllocateShipping(txns, models.AvgWeightByCategory(products))
	if err != nil {
		return err
	}
	return WriteShippingCosts(cfg.GeneratedPath("05_shipping_costs_generated.csv"), records)
}
