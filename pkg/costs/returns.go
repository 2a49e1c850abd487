package costs

import (
	"fmt"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/rng"
)

// Per-category probability that an order is returned.
var returnRates = map[string]float64{
	"Fresh": 0.12, "Milk": 0.08, "Delicatessen": 0.15,
	"Frozen": 0.04, "Grocery": 0.02, "DetergentsPaper": 0.01,
}

// Return disposition split: restocked, sold at discount, scrapped.
const (
	resellablePct   = 0.60
	discountedPct   = 0.20
	scrapPct        = 0.20
	discountLossPct = 0.40
)

// Share of the handling cost the distributor carries, by return reason.
var returnReasons = []string{"OurError", "ShippingDamage", "CustomerComplaint", "QualityIssue"}
var returnResponsibility = map[string]float64{
	"OurError": 1.0, "ShippingDamage": 0.5, "CustomerComplaint": 1.0, "QualityIssue": 1.0,
}

const (
	reverseBase          = 20.00
	reverseColdPremium   = 5.00
	returnReceivingCost  = 2.50
	returnQCCost         = 2.50
	restockingPerKg      = 0.33
	disposalPerKg        = 0.20
)

// ReturnsColumns is the returns handling schema, in export order.
var ReturnsColumns = []string{
	"TransactionID", "CustomerID", "ProductCategory", "Quantity", "OrderWeight_kg",
	"TransactionAmount_EUR", "IsStandardOrder", "IsReturned", "ReturnRate",
	"ReverseShippingCost_EUR", "ReceivingCost_EUR", "QCCost_EUR", "RestockingCost_EUR",
	"DisposalCost_EUR", "ResellableValue_EUR", "DiscountedLoss_EUR", "ScrapLoss_EUR",
	"TotalReturnExpense_EUR", "ReturnReason", "ResponsibilityPercentage",
}

type ReturnCost struct {
	TransactionID   string
	CustomerID      string
	Category        string
	Quantity        int
	OrderWeightKg   float64
	Amount          float64
	IsStandard      bool
	IsReturned      bool
	ReturnRate      float64
	ReverseShipping float64
	Receiving       float64
	QC              float64
	Restocking      float64
	Disposal        float64
	ResellableValue float64
	DiscountedLoss  float64
	ScrapLoss       float64
	Total           float64
	Reason          string
	Responsibility  float64
}

// AllocateReturns draws per-order return events and prices the reverse
// logistics. Order weight comes from the warehouse cost table; a transaction
// without a warehouse record fails fast.
func AllocateReturns(txns []models.Transaction, orderWeight map[string]float64, r *rng.Rand) ([]ReturnCost, error) {
	out := make([]ReturnCost, 0, len(txns))
	for _, tx := range txns {
		rate, ok := returnRates[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown product category %q", tx.ID, tx.Category)
		}
		weight, ok := orderWeight[tx.ID]
		if !ok {
			return nil, fmt.Errorf("transaction %s: no warehouse cost record", tx.ID)
		}

		rec := ReturnCost{
			TransactionID: tx.ID,
			CustomerID:    tx.CustomerID,
			Category:      tx.Category,
			Quantity:      tx.Quantity,
			OrderWeightKg: csvio.Round2(weight),
			Amount:        csvio.Round2(tx.Amount),
			IsStandard:    tx.IsStandard,
			ReturnRate:    rate,
		}

		if r.Bernoulli(rate) {
			rec.IsReturned = true

			// Custom orders come back on our trucks; standard orders are
			// returned by the customer.
			if !tx.IsStandard {
				rec.ReverseShipping = reverseBase
				if models.ColdChainCategories[tx.Category] {
					rec.ReverseShipping += reverseColdPremium
				}
			}
			rec.Receiving = returnReceivingCost
			rec.QC = returnQCCost
			rec.Restocking = csvio.Round2(weight / 2 * restockingPerKg)
			rec.Disposal = csvio.Round2(weight * scrapPct * disposalPerKg)

			rec.ResellableValue = csvio.Round2(tx.Amount * resellablePct)
			rec.DiscountedLoss = csvio.Round2(tx.Amount * discountedPct * discountLossPct)
			rec.ScrapLoss = csvio.Round2(tx.Amount * scrapPct)

			rec.Reason = returnReasons[r.IntBetween(0, len(returnReasons))]
			rec.Responsibility = returnResponsibility[rec.Reason]

			handling := rec.ReverseShipping + rec.Receiving + rec.QC + rec.Restocking + rec.Disposal
			rec.Total = csvio.Round2(handling*rec.Responsibility + rec.DiscountedLoss + rec.ScrapLoss)
		}

		out = append(out, rec)
	}
	return out, nil
}

func WriteReturnCosts(path string, records []ReturnCost) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		reason := ""
		responsibility := ""
		if rec.IsReturned {
			reason = rec.Reason
			responsibility = csvio.Float(rec.Responsibility)
		}
		rows = append(rows, []string{
			rec.TransactionID,
			rec.CustomerID,
			rec.Category,
			csvio.Int(rec.Quantity),
			csvio.Money(rec.OrderWeightKg),
			csvio.Money(rec.Amount),
			csvio.Bool(rec.IsStandard),
			csvio.Bool(rec.IsReturned),
			csvio.Float(rec.ReturnRate),
			csvio.Money(rec.ReverseShipping),
			csvio.Money(rec.Receiving),
			csvio.Money(rec.QC),
			csvio.Money(rec.Restocking),
			csvio.Money(rec.Disposal),
			csvio.Money(rec.ResellableValue),
			csvio.Money(rec.DiscountedLoss),
			csvio.Money(rec.ScrapLoss),
			csvio.Money(rec.Total),
			reason,
			responsibility,
		})
	}
	return csvio.WriteFile(path, ReturnsColumns, rows)
}

// ReadOrderWeights extracts OrderWeight_kg per transaction from the
// warehouse cost table.
func ReadOrderWeights(path string) (map[string]float64, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("TransactionID", "OrderWeight_kg"); err != nil {
		return nil, err
	}
	weights := make(map[string]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		w, err := t.Float(i, "OrderWeight_kg")
		if err != nil {
			return nil, err
		}
		weights[t.Value(i, "TransactionID")] = w
	}
	return weights, nil
}

// GenerateReturns runs the returns-handling stage end to end.
func GenerateReturns(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	weights, err := ReadOrderWeights(cfg.GeneratedPath("04_warehouse_costs_generated.csv"))
	if err != nil {
		return err
	}
	records, err := AllocateReturns(txns, weights, rng.New(cfg.Seed))
	if err != nil {
		return err
	}
	return WriteReturnCosts(cfg.GeneratedPath("06_returns_handling_generated.csv"), records)
}
