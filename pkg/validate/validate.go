// Package validate runs consistency checks across the generated dataset and
// renders a markdown report.
package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"cost-to-serve/pkg/clv"
	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/pnl"
	"cost-to-serve/pkg/scenario"
)

const (
	revenueTolerance   = 0.03
	revenueMinPassRate = 0.95
	identityTolerance  = 0.02
	aggregateTolerance = 0.05
)

// Result is the outcome of one check.
type Result struct {
	Name    string
	Passed  bool
	Details []string
}

func (r *Result) failf(format string, args ...interface{}) {
	r.Passed = false
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

func (r *Result) notef(format string, args ...interface{}) {
	r.Details = append(r.Details, fmt.Sprintf(format, args...))
}

// RunAll executes every dataset check. A check that cannot read its inputs
// is reported as failed rather than aborting the run.
func RunAll(cfg *config.Config) []Result {
	checks := []struct {
		name string
		run  func(*config.Config, *Result)
	}{
		{"customer revenue reconciliation", checkRevenueReconciliation},
		{"transaction amount bounds", checkTransactionBounds},
		{"order P&L identities", checkPnLIdentities},
		{"segment rollup totals", checkSegmentRollup},
		{"CLV tier partition", checkTierPartition},
		{"status quo scenario baseline", checkStatusQuo},
	}

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		res := Result{Name: c.name, Passed: true}
		c.run(cfg, &res)
		results = append(results, res)
	}
	return results
}

// checkRevenueReconciliation verifies the transaction year adds back up to
// each customer's declared annual revenue.
func checkRevenueReconciliation(cfg *config.Config, res *Result) {
	customers, err := models.ReadCustomers(cfg.ProcessedPath("01_customer_master.csv"))
	if err != nil {
		res.failf("load customers: %v", err)
		return
	}
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		res.failf("load transactions: %v", err)
		return
	}

	byCustomer := make(map[string]float64, len(customers))
	for _, tx := range txns {
		byCustomer[tx.CustomerID] += tx.Amount
	}

	within := 0
	for _, c := range customers {
		declared := float64(c.TotalRevenue)
		if declared == 0 {
			continue
		}
		diff := math.Abs(byCustomer[c.ID]-declared) / declared
		if diff <= revenueTolerance {
			within++
		}
	}
	rate := float64(within) / float64(len(customers))
	res.notef("%d/%d customers reconcile within %.0f%%", within, len(customers), revenueTolerance*100)
	if rate < revenueMinPassRate {
		res.failf("reconciliation rate %.1f%% below the %.0f%% floor", rate*100, revenueMinPassRate*100)
	}
}

func checkTransactionBounds(cfg *config.Config, res *Result) {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		res.failf("load transactions: %v", err)
		return
	}
	// Amounts are drawn inside fixed bounds but the per-customer rescale to
	// exact annual revenue may stretch them, so only positivity is strict.
	bad := 0
	minAmount, maxAmount := math.Inf(1), math.Inf(-1)
	for _, tx := range txns {
		minAmount = math.Min(minAmount, tx.Amount)
		maxAmount = math.Max(maxAmount, tx.Amount)
		if tx.Amount <= 0 {
			bad++
			if bad <= 5 {
				res.failf("%s: non-positive amount %.2f", tx.ID, tx.Amount)
			}
		}
	}
	res.notef("%d transactions checked, amounts in [%.2f, %.2f], %d non-positive", len(txns), minAmount, maxAmount, bad)
	if bad > 0 {
		res.Passed = false
	}
}

// checkPnLIdentities verifies per order that the cost components sum to the
// total and that profit is revenue minus total cost.
func checkPnLIdentities(cfg *config.Config, res *Result) {
	orders, err := pnl.ReadOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"))
	if err != nil {
		res.failf("load order P&L: %v", err)
		return
	}
	bad := 0
	for _, row := range orders {
		sum := row.COGS + row.Warehouse + row.Shipping + row.Returns + row.Interest + row.Overhead
		if math.Abs(sum-row.TotalCost) > identityTolerance || math.Abs(row.Revenue-row.TotalCost-row.Profit) > identityTolerance {
			bad++
			if bad <= 5 {
				res.failf("%s: cost components %.2f vs total %.2f, profit %.2f", row.TransactionID, sum, row.TotalCost, row.Profit)
			}
		}
	}
	res.notef("%d orders checked, %d identity violations", len(orders), bad)
	if bad > 0 {
		res.Passed = false
	}
}

func checkSegmentRollup(cfg *config.Config, res *Result) {
	orders, err := pnl.ReadOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"))
	if err != nil {
		res.failf("load order P&L: %v", err)
		return
	}
	t, err := csvio.Load(cfg.GeneratedPath("10_p_l_by_segment.csv"))
	if err != nil {
		res.failf("load segment rollup: %v", err)
		return
	}
	if err := t.Require("CustomerSegment", "Revenue_Total", "Profit_Total", "Order_Count"); err != nil {
		res.failf("%v", err)
		return
	}

	revenue := map[string]float64{}
	profit := map[string]float64{}
	count := map[string]int{}
	for _, row := range orders {
		revenue[row.Segment] += row.Revenue
		profit[row.Segment] += row.Profit
		count[row.Segment]++
	}

	for i := 0; i < t.Len(); i++ {
		seg := t.Value(i, "CustomerSegment")
		rev, err := t.Float(i, "Revenue_Total")
		if err != nil {
			res.failf("%v", err)
			return
		}
		prof, err := t.Float(i, "Profit_Total")
		if err != nil {
			res.failf("%v", err)
			return
		}
		n, err := t.Int(i, "Order_Count")
		if err != nil {
			res.failf("%v", err)
			return
		}
		if math.Abs(rev-revenue[seg]) > aggregateTolerance {
			res.failf("%s: rollup revenue %.2f vs orders %.2f", seg, rev, revenue[seg])
		}
		if math.Abs(prof-profit[seg]) > aggregateTolerance {
			res.failf("%s: rollup profit %.2f vs orders %.2f", seg, prof, profit[seg])
		}
		if n != count[seg] {
			res.failf("%s: rollup order count %d vs orders %d", seg, n, count[seg])
		}
	}
	res.notef("%d segments reconciled against %d orders", t.Len(), len(orders))
}

// checkTierPartition verifies every customer lands in exactly one CLV tier
// and that the tier rules match the scores.
func checkTierPartition(cfg *config.Config, res *Result) {
	scores, err := readScores(cfg)
	if err != nil {
		res.failf("load CLV: %v", err)
		return
	}
	counts := map[string]int{}
	for _, s := range scores {
		counts[s.Tier]++
		switch s.Tier {
		case "A-Customer":
			if s.CLV <= cfg.CLV.ATierMinEUR {
				res.failf("%s: A tier with CLV %.2f", s.CustomerID, s.CLV)
			}
		case "B-Customer":
			if s.CLV <= 0 || s.CLV > cfg.CLV.ATierMinEUR {
				res.failf("%s: B tier with CLV %.2f", s.CustomerID, s.CLV)
			}
		case "C-Customer":
			if s.CLV > 0 {
				res.failf("%s: C tier with CLV %.2f", s.CustomerID, s.CLV)
			}
		default:
			res.failf("%s: unknown tier %q", s.CustomerID, s.Tier)
		}
	}
	total := counts["A-Customer"] + counts["B-Customer"] + counts["C-Customer"]
	if total != len(scores) {
		res.failf("tier counts sum to %d, want %d", total, len(scores))
	}
	tiers := make([]string, 0, len(counts))
	for tier := range counts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		res.notef("%s: %d customers", tier, counts[tier])
	}
}

func readScores(cfg *config.Config) ([]clv.Score, error) {
	t, err := csvio.Load(cfg.GeneratedPath("11_customer_lifetime_value.csv"))
	if err != nil {
		return nil, err
	}
	if err := t.Require("CustomerID", "CLV_EUR", "CLVSegment"); err != nil {
		return nil, err
	}
	scores := make([]clv.Score, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, err := t.Float(i, "CLV_EUR")
		if err != nil {
			return nil, err
		}
		scores = append(scores, clv.Score{
			CustomerID: t.Value(i, "CustomerID"),
			CLV:        v,
			Tier:       t.Value(i, "CLVSegment"),
		})
	}
	return scores, nil
}

// checkStatusQuo verifies the Status Quo scenario row equals a direct
// aggregation of the order P&L.
func checkStatusQuo(cfg *config.Config, res *Result) {
	orders, err := pnl.ReadOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"))
	if err != nil {
		res.failf("load order P&L: %v", err)
		return
	}
	t, err := csvio.Load(cfg.GeneratedPath("14_scenario_planning.csv"))
	if err != nil {
		res.failf("load scenarios: %v", err)
		return
	}
	if err := t.Require(scenario.Columns...); err != nil {
		res.failf("%v", err)
		return
	}

	row := -1
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, "Scenario") == "Status Quo" {
			row = i
			break
		}
	}
	if row < 0 {
		res.failf("no Status Quo row in scenario planning")
		return
	}

	var revenue, totalCost, profit float64
	customers := map[string]bool{}
	for _, o := range orders {
		revenue += o.Revenue
		totalCost += o.COGS + o.Warehouse + o.Shipping + o.Returns + o.Interest + o.Overhead
		profit += o.Revenue - (o.COGS + o.Warehouse + o.Shipping + o.Returns + o.Interest + o.Overhead)
		customers[o.CustomerID] = true
	}

	for _, want := range []struct {
		col   string
		value float64
	}{
		{"Revenue_EUR", revenue},
		{"TotalCost_EUR", totalCost},
		{"Profit_EUR", profit},
	} {
		got, err := t.Float(row, want.col)
		if err != nil {
			res.failf("%v", err)
			return
		}
		if math.Abs(got-want.value) > aggregateTolerance {
			res.failf("Status Quo %s: %.2f vs orders %.2f", want.col, got, want.value)
		}
	}
	kept, err := t.Int(row, "Customers_Kept")
	if err != nil {
		res.failf("%v", err)
		return
	}
	if kept != len(customers) {
		res.failf("Status Quo keeps %d customers, orders show %d", kept, len(customers))
	}
	res.notef("baseline reconciled over %d orders, %d customers", len(orders), len(customers))
}

// Report renders the check results as markdown.
func Report(results []Result) string {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	lines := []string{
		"# Dataset Validation Report",
		"",
		fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("Checks passed: %d/%d", passed, len(results)),
		"",
	}
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		lines = append(lines, fmt.Sprintf("## %s [%s]", r.Name, status))
		lines = append(lines, "")
		for _, d := range r.Details {
			lines = append(lines, "- "+d)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// AllPassed reports whether every check passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
