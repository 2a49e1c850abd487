// Package clv scores every customer's lifetime value from the order P&L and
// recommends an account action per customer.
package clv

import (
	"math"
	"sort"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/pnl"
)

// Expected relationship length and one-time acquisition cost by segment.
var lifetimeYears = map[string]float64{
	"SMB": 2.5, "Mid-Market": 6.0, "Enterprise": 12.0,
}

var acquisitionCost = map[string]float64{
	"SMB": 300, "Mid-Market": 2000, "Enterprise": 10000,
}

// Columns is the per-customer CLV schema, in export order.
var Columns = []string{
	"CustomerID", "CustomerName", "CustomerSegment", "AnnualProfit_EUR",
	"OrderCount", "ExpectedLifetime_Years", "AcquisitionCost_EUR", "CLV_EUR",
	"CLV_NPV_EUR", "PaybackMultiple", "CLVMargin_Pct", "CLVSegment",
	"RecommendedAction",
}

type Score struct {
	CustomerID      string
	CustomerName    string
	Segment         string
	AnnualProfit    float64
	OrderCount      int
	LifetimeYears   float64
	AcquisitionCost float64
	CLV             float64
	CLVNPV          float64
	PaybackMultiple float64
	MarginPct       float64
	Tier            string
	Action          string
}

// Build scores every customer in the master, in master order. Customers with
// no orders score on zero annual profit.
func Build(customers []models.Customer, orders []pnl.Row, cfg config.CLVConfig) []Score {
	profit := make(map[string]float64, len(customers))
	orderCount := make(map[string]int, len(customers))
	for _, row := range orders {
		profit[row.CustomerID] += row.Profit
		orderCount[row.CustomerID]++
	}

	// The NPV loop runs over the longest lifetime in the book so every
	// customer is discounted over the same horizon.
	maxYears := 0
	for _, years := range lifetimeYears {
		if int(years) > maxYears {
			maxYears = int(years)
		}
	}

	out := make([]Score, 0, len(customers))
	for _, c := range customers {
		annual := profit[c.ID]
		lifetime := lifetimeYears[c.Segment]
		acq := acquisitionCost[c.Segment]

		clv := annual*lifetime - acq
		npv := clv
		if cfg.DiscountRate > 0 {
			npv = -acq
			for year := 1; year <= maxYears; year++ {
				npv += annual / math.Pow(1+cfg.DiscountRate, float64(year))
			}
		}

		lifetimeProfit := annual * lifetime
		if lifetimeProfit == 0 {
			lifetimeProfit = 1
		}

		s := Score{
			CustomerID:      c.ID,
			CustomerName:    c.Name,
			Segment:         c.Segment,
			AnnualProfit:    csvio.Round2(annual),
			OrderCount:      orderCount[c.ID],
			LifetimeYears:   lifetime,
			AcquisitionCost: acq,
			CLV:             csvio.Round2(clv),
			CLVNPV:          csvio.Round2(npv),
			PaybackMultiple: csvio.Round2(clv / acq),
			MarginPct:       csvio.Round2(clv / lifetimeProfit * 100),
		}
		s.Tier = tierFor(s.CLV, cfg.ATierMinEUR)
		s.Action = actionFor(s.Tier, s.CLV, cfg.ExitBelowEUR)
		out = append(out, s)
	}
	return out
}

func tierFor(clv, aTierMin float64) string {
	switch {
	case clv > aTierMin:
		return "A-Customer"
	case clv > 0:
		return "B-Customer"
	default:
		return "C-Customer"
	}
}

func actionFor(tier string, clv, exitBelow float64) string {
	switch {
	case tier == "A-Customer":
		return "INVEST & EXPAND"
	case tier == "B-Customer":
		return "MAINTAIN & MONITOR"
	case clv < exitBelow:
		return "EXIT IMMEDIATELY"
	default:
		return "RENEGOTIATE TERMS"
	}
}

func Write(path string, scores []Score) error {
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, []string{
			s.CustomerID,
			s.CustomerName,
			s.Segment,
			csvio.Money(s.AnnualProfit),
			csvio.Int(s.OrderCount),
			csvio.Float(s.LifetimeYears),
			csvio.Money(s.AcquisitionCost),
			csvio.Money(s.CLV),
			csvio.Money(s.CLVNPV),
			csvio.Money(s.PaybackMultiple),
			csvio.Money(s.MarginPct),
			s.Tier,
			s.Action,
		})
	}
	return csvio.WriteFile(path, Columns, rows)
}

type groupAgg struct {
	count       int
	profitTotal float64
	orderTotal  int
	clvTotal    float64
	clvMin      float64
	clvMax      float64
	aCustomers  int
}

func groupScores(scores []Score, key func(Score) string) (map[string]*groupAgg, []string) {
	groups := make(map[string]*groupAgg)
	for _, s := range scores {
		k := key(s)
		g, ok := groups[k]
		if !ok {
			g = &groupAgg{clvMin: math.Inf(1), clvMax: math.Inf(-1)}
			groups[k] = g
		}
		g.count++
		g.profitTotal += s.AnnualProfit
		g.orderTotal += s.OrderCount
		g.clvTotal += s.CLV
		g.clvMin = math.Min(g.clvMin, s.CLV)
		g.clvMax = math.Max(g.clvMax, s.CLV)
		if s.Tier == "A-Customer" {
			g.aCustomers++
		}
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys
}

// WriteSegmentSummary aggregates CLV by the original customer segment.
func WriteSegmentSummary(path string, scores []Score) error {
	groups, keys := groupScores(scores, func(s Score) string { return s.Segment })
	headers := []string{
		"CustomerSegment", "CustomerCount", "AnnualProfit_Total", "AnnualProfit_Avg",
		"OrderCount_Avg", "CLV_Total", "CLV_Avg", "CLV_Min", "CLV_Max", "ACustomerCount",
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		n := float64(g.count)
		rows = append(rows, []string{
			k,
			csvio.Int(g.count),
			csvio.Money(g.profitTotal),
			csvio.Money(g.profitTotal / n),
			csvio.Money(float64(g.orderTotal) / n),
			csvio.Money(g.clvTotal),
			csvio.Money(g.clvTotal / n),
			csvio.Money(g.clvMin),
			csvio.Money(g.clvMax),
			csvio.Int(g.aCustomers),
		})
	}
	return csvio.WriteFile(path, headers, rows)
}

// WriteTierSummary aggregates CLV by the A/B/C classification.
func WriteTierSummary(path string, scores []Score) error {
	groups, keys := groupScores(scores, func(s Score) string { return s.Tier })
	headers := []string{"CLVSegment", "CustomerCount", "CLV_Total", "CLV_Avg", "AnnualProfit_Total", "OrderCount_Avg"}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		n := float64(g.count)
		rows = append(rows, []string{
			k,
			csvio.Int(g.count),
			csvio.Money(g.clvTotal),
			csvio.Money(g.clvTotal / n),
			csvio.Money(g.profitTotal),
			csvio.Money(float64(g.orderTotal) / n),
		})
	}
	return csvio.WriteFile(path, headers, rows)
}

// WriteActionSummary aggregates CLV by recommended action.
func WriteActionSummary(path string, scores []Score) error {
	groups, keys := groupScores(scores, func(s Score) string { return s.Action })
	headers := []string{"RecommendedAction", "CustomerCount", "CLV_Total", "AnnualProfit_Total"}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, []string{
			k,
			csvio.Int(g.count),
			csvio.Money(g.clvTotal),
			csvio.Money(g.profitTotal),
		})
	}
	return csvio.WriteFile(path, headers, rows)
}

// Generate runs the customer-lifetime-value stage end to end.
func Generate(cfg *config.Config) error {
	customers, err := models.ReadCustomers(cfg.ProcessedPath("01_customer_master.csv"))
	if err != nil {
		return err
	}
	orders, err := pnl.ReadOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"))
	if err != nil {
		return err
	}
	scores := Build(customers, orders, cfg.CLV)
	if err := Write(cfg.GeneratedPath("11_customer_lifetime_value.csv"), scores); err != nil {
		return err
	}
	if err := WriteSegmentSummary(cfg.GeneratedPath("11_clv_by_segment_summary.csv"), scores); err != nil {
		return err
	}
	if err := WriteTierSummary(cfg.GeneratedPath("11_clv_segment_summary.csv"), scores); err != nil {
		return err
	}
	return WriteActionSummary(cfg.GeneratedPath("11_clv_action_summary.csv"), scores)
}
