// Package pnl joins every cost table back onto the transactions and produces
// the order-level P&L plus its segment, product, matrix, and overall rollups.
package pnl

import (
	"fmt"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
)

// Profit thresholds for the four-bucket profitability classification.
const (
	highlyProfitableAbove = 50.0
	breakevenAbove        = -25.0
	costRatioReviewPct    = 95.0
)

// OrderColumns is the order-level P&L schema, in export order.
var OrderColumns = []string{
	"TransactionID", "CustomerID", "CustomerSegment", "ProductCategory",
	"OrderMonth", "PaymentTerms", "IsStandardOrder", "IsUrgent",
	"TransactionAmount", "COGS_EUR", "WarehouseCost_EUR", "ShippingCost_EUR",
	"ReturnsCost_EUR", "InterestCost_EUR", "OverheadCost_EUR", "TotalCost_EUR",
	"Profit_EUR", "ProfitMargin_Pct", "CostToRevenue_Pct",
	"ProfitabilityCategory", "ShouldRaisePrice", "ShouldReduceCost", "ShouldReviewCustomer",
}

type Row struct {
	TransactionID string
	CustomerID    string
	Segment       string
	Category      string
	Month         int
	PaymentTerms  string
	IsStandard    bool
	IsUrgent      bool

	Revenue   float64
	COGS      float64
	Warehouse float64
	Shipping  float64
	Returns   float64
	Interest  float64
	Overhead  float64
	TotalCost float64
	Profit    float64
	MarginPct float64
	CostPct   float64

	ProfitabilityCategory string
	RaisePrice            bool
	ReduceCost            bool
	ReviewCustomer        bool
}

// CostTotals carries the per-transaction totals of each cost table. A
// transaction absent from a table contributes zero (left-join semantics).
type CostTotals struct {
	Warehouse map[string]float64
	Shipping  map[string]float64
	Returns   map[string]float64
	Interest  map[string]float64
	Overhead  map[string]float64
}

// Build assembles the order P&L. COGS is a flat share of revenue; the five
// allocated costs join by transaction id.
func Build(txns []models.Transaction, segments map[string]string, costs CostTotals, cogsRate float64) ([]Row, error) {
	rows := make([]Row, 0, len(txns))
	for _, tx := range txns {
		segment, ok := segments[tx.CustomerID]
		if !ok {
			return nil, fmt.Errorf("transaction %s: customer %s not in customer master", tx.ID, tx.CustomerID)
		}
		row := Row{
			TransactionID: tx.ID,
			CustomerID:    tx.CustomerID,
			Segment:       segment,
			Category:      tx.Category,
			Month:         tx.Month,
			PaymentTerms:  tx.PaymentTerms,
			IsStandard:    tx.IsStandard,
			IsUrgent:      tx.IsUrgent,
			Revenue:       csvio.Round2(tx.Amount),
			COGS:          csvio.Round2(tx.Amount * cogsRate),
			Warehouse:     costs.Warehouse[tx.ID],
			Shipping:      costs.Shipping[tx.ID],
			Returns:       costs.Returns[tx.ID],
			Interest:      costs.Interest[tx.ID],
			Overhead:      costs.Overhead[tx.ID],
		}
		row.TotalCost = csvio.Round2(row.COGS + row.Warehouse + row.Shipping + row.Returns + row.Interest + row.Overhead)
		row.Profit = csvio.Round2(row.Revenue - row.TotalCost)
		row.MarginPct = csvio.Round2(row.Profit / row.Revenue * 100)
		row.CostPct = csvio.Round2(row.TotalCost / row.Revenue * 100)
		row.ProfitabilityCategory = profitability(row.Profit)
		row.RaisePrice = row.Profit < 0
		row.ReduceCost = row.CostPct > costRatioReviewPct
		row.ReviewCustomer = row.RaisePrice || row.ReduceCost
		rows = append(rows, row)
	}
	return rows, nil
}

func profitability(profit float64) string {
	switch {
	case profit > highlyProfitableAbove:
		return "Highly Profitable"
	case profit > 0:
		return "Profitable"
	case profit > breakevenAbove:
		return "Breakeven"
	default:
		return "Loss"
	}
}

func WriteOrders(path string, rows []Row) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.TransactionID,
			row.CustomerID,
			row.Segment,
			row.Category,
			csvio.Int(row.Month),
			row.PaymentTerms,
			csvio.Bool(row.IsStandard),
			csvio.Bool(row.IsUrgent),
			csvio.Money(row.Revenue),
			csvio.Money(row.COGS),
			csvio.Money(row.Warehouse),
			csvio.Money(row.Shipping),
			csvio.Money(row.Returns),
			csvio.Money(row.Interest),
			csvio.Money(row.Overhead),
			csvio.Money(row.TotalCost),
			csvio.Money(row.Profit),
			csvio.Money(row.MarginPct),
			csvio.Money(row.CostPct),
			row.ProfitabilityCategory,
			csvio.Bool(row.RaisePrice),
			csvio.Bool(row.ReduceCost),
			csvio.Bool(row.ReviewCustomer),
		})
	}
	return csvio.WriteFile(path, OrderColumns, records)
}

// ReadOrders loads the order-level P&L back for the CLV and scenario stages.
func ReadOrders(path string) ([]Row, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(OrderColumns...); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := Row{
			TransactionID:         t.Value(i, "TransactionID"),
			CustomerID:            t.Value(i, "CustomerID"),
			Segment:               t.Value(i, "CustomerSegment"),
			Category:              t.Value(i, "ProductCategory"),
			PaymentTerms:          t.Value(i, "PaymentTerms"),
			ProfitabilityCategory: t.Value(i, "ProfitabilityCategory"),
		}
		if row.Month, err = t.Int(i, "OrderMonth"); err != nil {
			return nil, err
		}
		if row.IsStandard, err = t.Bool(i, "IsStandardOrder"); err != nil {
			return nil, err
		}
		if row.IsUrgent, err = t.Bool(i, "IsUrgent"); err != nil {
			return nil, err
		}
		for col, dst := range map[string]*float64{
			"TransactionAmount": &row.Revenue,
			"COGS_EUR":          &row.COGS,
			"WarehouseCost_EUR": &row.Warehouse,
			"ShippingCost_EUR":  &row.Shipping,
			"ReturnsCost_EUR":   &row.Returns,
			"InterestCost_EUR":  &row.Interest,
			"OverheadCost_EUR":  &row.Overhead,
			"TotalCost_EUR":     &row.TotalCost,
			"Profit_EUR":        &row.Profit,
			"ProfitMargin_Pct":  &row.MarginPct,
			"CostToRevenue_Pct": &row.CostPct,
		} {
			if *dst, err = t.Float(i, col); err != nil {
				return nil, err
			}
		}
		if row.RaisePrice, err = t.Bool(i, "ShouldRaisePrice"); err != nil {
			return nil, err
		}
		if row.ReduceCost, err = t.Bool(i, "ShouldReduceCost"); err != nil {
			return nil, err
		}
		if row.ReviewCustomer, err = t.Bool(i, "ShouldReviewCustomer"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readTotals builds a TransactionID -> total map from one cost table.
func readTotals(path, totalColumn string) (map[string]float64, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("TransactionID", totalColumn); err != nil {
		return nil, err
	}
	out := make(map[string]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, err := t.Float(i, totalColumn)
		if err != nil {
			return nil, err
		}
		out[t.Value(i, "TransactionID")] = v
	}
	return out, nil
}

// Generate runs the financial-pnl stage end to end, writing the order P&L
// and all four rollups.
func Generate(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	customers, err := models.ReadCustomers(cfg.ProcessedPath("01_customer_master.csv"))
	if err != nil {
		return err
	}
	segments := make(map[string]string, len(customers))
	for _, c := range customers {
		segments[c.ID] = c.Segment
	}

	var costs CostTotals
	for _, src := range []struct {
		file   string
		column string
		dst    *map[string]float64
	}{
		{"04_warehouse_costs_generated.csv", "TotalWarehouseOperationsCost_EUR", &costs.Warehouse},
		{"05_shipping_costs_generated.csv", "TotalShippingCost_EUR", &costs.Shipping},
		{"06_returns_handling_generated.csv", "TotalReturnExpense_EUR", &costs.Returns},
		{"07_payment_terms_interest_generated.csv", "DSO_InterestCost_EUR", &costs.Interest},
		{"09_admin_overhead_generated.csv", "TotalAllocatedOverhead_EUR", &costs.Overhead},
	} {
		if *src.dst, err = readTotals(cfg.GeneratedPath(src.file), src.column); err != nil {
			return err
		}
	}

	rows, err := Build(txns, segments, costs, cfg.Finance.COGSRate)
	if err != nil {
		return err
	}
	if err := WriteOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"), rows); err != nil {
		return err
	}
	if err := WriteRollup(cfg.GeneratedPath("10_p_l_by_segment.csv"), "CustomerSegment", RollupBy(rows, func(r Row) string { return r.Segment })); err != nil {
		return err
	}
	if err := WriteRollup(cfg.GeneratedPath("10_p_l_by_product.csv"), "ProductCategory", RollupBy(rows, func(r Row) string { return r.Category })); err != nil {
		return err
	}
	if err := WriteMatrix(cfg.GeneratedPath("10_p_l_segment_product_matrix.csv"), MatrixBy(rows)); err != nil {
		return err
	}
	return WriteOverallSummary(cfg.GeneratedPath("10_p_l_overall_summary.csv"), rows)
}
