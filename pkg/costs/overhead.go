package costs

import (
	"fmt"
	"math"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
)

// Admin overhead is allocated per order: an equal base share of the annual
// overhead, scaled by customer segment and nudged by product handling
// complexity, with a floor so no order rides for free.
var segmentMultipliers = map[string]float64{
	"SMB": 0.85, "Mid-Market": 1.1, "Enterprise": 1.4,
}

var productAdjustments = map[string]float64{
	"Fresh": 10.00, "Delicatessen": 8.00, "Milk": 5.00,
	"Frozen": 0.00, "Grocery": -5.00, "DetergentsPaper": -5.00,
}

const overheadFloor = 30.00

// OverheadColumns is the admin overhead schema, in export order.
var OverheadColumns = []string{
	"TransactionID", "CustomerID", "CustomerSegment", "ProductCategory",
	"TransactionAmount_EUR", "BaseOverhead_EUR", "SegmentMultiplier",
	"SegmentAdjustedOverhead_EUR", "ProductAdjustment_EUR",
	"TotalAllocatedOverhead_EUR", "OverheadAsPercentOfRevenue",
}

type OverheadCost struct {
	TransactionID     string
	CustomerID        string
	Segment           string
	Category          string
	Amount            float64
	Base              float64
	SegmentMultiplier float64
	SegmentAdjusted   float64
	ProductAdjustment float64
	Total             float64
	PctOfRevenue      float64
}

// AllocateOverhead spreads annualOverhead over the year's transactions.
// Customer segment comes from the customer master; a transaction whose
// customer is missing fails fast.
func AllocateOverhead(txns []models.Transaction, segments map[string]string, annualOverhead float64) ([]OverheadCost, error) {
	if len(txns) == 0 {
		return nil, fmt.Errorf("no transactions to allocate overhead over")
	}
	base := annualOverhead / float64(len(txns))

	out := make([]OverheadCost, 0, len(txns))
	for _, tx := range txns {
		segment, ok := segments[tx.CustomerID]
		if !ok {
			return nil, fmt.Errorf("transaction %s: customer %s not in customer master", tx.ID, tx.CustomerID)
		}
		mult, ok := segmentMultipliers[segment]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown customer segment %q", tx.ID, segment)
		}
		adj, ok := productAdjustments[tx.Category]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown product category %q", tx.ID, tx.Category)
		}

		segmentAdjusted := base * mult
		total := math.Max(segmentAdjusted+adj, overheadFloor)

		out = append(out, OverheadCost{
			TransactionID:     tx.ID,
			CustomerID:        tx.CustomerID,
			Segment:           segment,
			Category:          tx.Category,
			Amount:            csvio.Round2(tx.Amount),
			Base:              csvio.Round2(base),
			SegmentMultiplier: mult,
			SegmentAdjusted:   csvio.Round2(segmentAdjusted),
			ProductAdjustment: csvio.Round2(adj),
			Total:             csvio.Round2(total),
			PctOfRevenue:      csvio.Round2(total / tx.Amount * 100),
		})
	}
	return out, nil
}

func WriteOverheadCosts(path string, records []OverheadCost) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.TransactionID,
			rec.CustomerID,
			rec.Segment,
			rec.Category,
			csvio.Money(rec.Amount),
			csvio.Money(rec.Base),
			csvio.Float(rec.SegmentMultiplier),
			csvio.Money(rec.SegmentAdjusted),
			csvio.Money(rec.ProductAdjustment),
			csvio.Money(rec.Total),
			csvio.Money(rec.PctOfRevenue),
		})
	}
	return csvio.WriteFile(path, OverheadColumns, rows)
}

// SegmentsByCustomer maps CustomerID -> CustomerSegment.
func SegmentsByCustomer(customers []models.Customer) map[string]string {
	out := make(map[string]string, len(customers))
	for _, c := range customers {
		out[c.ID] = c.Segment
	}
	return out
}

// GenerateOverhead runs the admin-overhead stage end to end.
func GenerateOverhead(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	customers, err := models.ReadCustomers(cfg.ProcessedPath("01_customer_master.csv"))
	if err != nil {
		return err
	}
	records, err := AllocateOverhead(txns, SegmentsByCustomer(customers), cfg.Finance.AnnualOverheadEUR)
	if err != nil {
		return err
	}
	return WriteOverheadCosts(cfg.GeneratedPath("09_admin_overhead_generated.csv"), records)
}
