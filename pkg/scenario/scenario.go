// Package scenario models what-if customer portfolio decisions on top of the
// order P&L and the CLV tiers.
package scenario

import (
	"math"

	"cost-to-serve/pkg/clv"
	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/pnl"
	"cost-to-serve/pkg/rng"
)

// Columns is the scenario planning schema, in export order.
var Columns = []string{
	"Scenario", "Customers_Kept", "A_Customers", "B_Customers", "C_Customers",
	"Revenue_EUR", "COGS_EUR", "Warehouse_EUR", "Shipping_EUR", "Returns_EUR",
	"Interest_EUR", "Overhead_EUR", "TotalCost_EUR", "Profit_EUR", "Margin_Pct",
	"Risk_Level", "Success_Probability_Pct", "Timeline", "Recommendation",
}

type Result struct {
	Name           string
	CustomersKept  int
	ACustomers     int
	BCustomers     int
	CCustomers     int
	Revenue        float64
	COGS           float64
	Warehouse      float64
	Shipping       float64
	Returns        float64
	Interest       float64
	Overhead       float64
	TotalCost      float64
	Profit         float64
	MarginPct      float64
	Risk           string
	SuccessPct     int
	Timeline       string
	Recommendation string
}

// tiers splits customer ids by CLV classification and by original segment.
type tiers struct {
	a, b, c       map[string]bool
	smb, mid, ent map[string]bool
}

func tierSets(scores []clv.Score) tiers {
	t := tiers{
		a: map[string]bool{}, b: map[string]bool{}, c: map[string]bool{},
		smb: map[string]bool{}, mid: map[string]bool{}, ent: map[string]bool{},
	}
	for _, s := range scores {
		switch s.Tier {
		case "A-Customer":
			t.a[s.CustomerID] = true
		case "B-Customer":
			t.b[s.CustomerID] = true
		default:
			t.c[s.CustomerID] = true
		}
		switch s.Segment {
		case "SMB":
			t.smb[s.CustomerID] = true
		case "Mid-Market":
			t.mid[s.CustomerID] = true
		default:
			t.ent[s.CustomerID] = true
		}
	}
	return t
}

type aggregate struct {
	revenue, cogs, warehouse, shipping, returns, interest, overhead float64
	customers                                                       map[string]bool
}

func sumOrders(orders []pnl.Row, keep func(pnl.Row) bool) aggregate {
	agg := aggregate{customers: map[string]bool{}}
	for _, row := range orders {
		if keep != nil && !keep(row) {
			continue
		}
		agg.revenue += row.Revenue
		agg.cogs += row.COGS
		agg.warehouse += row.Warehouse
		agg.shipping += row.Shipping
		agg.returns += row.Returns
		agg.interest += row.Interest
		agg.overhead += row.Overhead
		agg.customers[row.CustomerID] = true
	}
	return agg
}

func countIn(customers map[string]bool, set map[string]bool) int {
	n := 0
	for id := range customers {
		if set[id] {
			n++
		}
	}
	return n
}

func finish(r Result, agg aggregate, revenueScale, overheadScale float64) Result {
	r.Revenue = csvio.Round2(agg.revenue * revenueScale)
	r.COGS = csvio.Round2(agg.cogs)
	r.Warehouse = csvio.Round2(agg.warehouse)
	r.Shipping = csvio.Round2(agg.shipping)
	r.Returns = csvio.Round2(agg.returns)
	r.Interest = csvio.Round2(agg.interest)
	r.Overhead = csvio.Round2(agg.overhead * overheadScale)
	r.TotalCost = csvio.Round2(r.COGS + r.Warehouse + r.Shipping + r.Returns + r.Interest + r.Overhead)
	r.Profit = csvio.Round2(r.Revenue - r.TotalCost)
	if r.Revenue != 0 {
		r.MarginPct = csvio.Round2(r.Profit / r.Revenue * 100)
	}
	return r
}

// Build evaluates the five portfolio scenarios. The renegotiation scenario
// samples which C-customer orders survive the volume loss, so it takes the
// stage rng.
func Build(orders []pnl.Row, scores []clv.Score, r *rng.Rand) []Result {
	t := tierSets(scores)

	results := make([]Result, 0, 5)

	// Status Quo: keep everything.
	agg := sumOrders(orders, nil)
	results = append(results, finish(Result{
		Name:           "Status Quo",
		CustomersKept:  len(agg.customers),
		ACustomers:     countIn(agg.customers, t.a),
		BCustomers:     countIn(agg.customers, t.b),
		CCustomers:     countIn(agg.customers, t.c),
		Risk:           "VERY HIGH",
		SuccessPct:     0,
		Timeline:       "Current",
		Recommendation: "UNSUSTAINABLE",
	}, agg, 1, 1))

	// Exit C-Customers: keep A and B, overhead shrinks 30%.
	agg = sumOrders(orders, func(row pnl.Row) bool {
		return t.a[row.CustomerID] || t.b[row.CustomerID]
	})
	results = append(results, finish(Result{
		Name:           "Exit C-Customers",
		CustomersKept:  len(t.a) + len(t.b),
		ACustomers:     len(t.a),
		BCustomers:     len(t.b),
		CCustomers:     0,
		Risk:           "MEDIUM",
		SuccessPct:     85,
		Timeline:       "3-6 months",
		Recommendation: "OPTIMAL",
	}, agg, 1, 0.7))

	// Renegotiate C: price up 20%, a quarter of C volume walks away,
	// overhead shrinks 15%.
	cOrderIdx := make([]int, 0)
	for i, row := range orders {
		if t.c[row.CustomerID] {
			cOrderIdx = append(cOrderIdx, i)
		}
	}
	r.Shuffle(len(cOrderIdx), func(i, j int) {
		cOrderIdx[i], cOrderIdx[j] = cOrderIdx[j], cOrderIdx[i]
	})
	keptC := make(map[int]bool, len(cOrderIdx))
	for _, i := range cOrderIdx[:int(math.Round(0.75*float64(len(cOrderIdx))))] {
		keptC[i] = true
	}
	kept := make(map[string]bool, len(orders))
	for i, row := range orders {
		if !t.c[row.CustomerID] || keptC[i] {
			kept[row.TransactionID] = true
		}
	}
	agg = sumOrders(orders, func(row pnl.Row) bool { return kept[row.TransactionID] })
	results = append(results, finish(Result{
		Name:           "Renegotiate C",
		CustomersKept:  len(agg.customers),
		ACustomers:     countIn(agg.customers, t.a),
		BCustomers:     countIn(agg.customers, t.b),
		CCustomers:     countIn(agg.customers, t.c),
		Risk:           "MEDIUM-HIGH",
		SuccessPct:     50,
		Timeline:       "1-2 months",
		Recommendation: "RISKY",
	}, agg, 1.20, 0.85))

	// Exit SMB: keep Mid-Market and Enterprise, overhead shrinks 10%.
	agg = sumOrders(orders, func(row pnl.Row) bool {
		return t.mid[row.CustomerID] || t.ent[row.CustomerID]
	})
	smbKept := map[string]bool{}
	for id := range t.mid {
		smbKept[id] = true
	}
	for id := range t.ent {
		smbKept[id] = true
	}
	results = append(results, finish(Result{
		Name:           "Exit SMB",
		CustomersKept:  len(smbKept),
		ACustomers:     countIn(smbKept, t.a),
		BCustomers:     countIn(smbKept, t.b),
		CCustomers:     countIn(smbKept, t.c),
		Risk:           "LOW-MEDIUM",
		SuccessPct:     80,
		Timeline:       "2-3 months",
		Recommendation: "SAFE",
	}, agg, 1, 0.9))

	// Enterprise Only: overhead halves.
	agg = sumOrders(orders, func(row pnl.Row) bool { return t.ent[row.CustomerID] })
	results = append(results, finish(Result{
		Name:           "Enterprise Only",
		CustomersKept:  len(t.ent),
		ACustomers:     countIn(t.ent, t.a),
		BCustomers:     countIn(t.ent, t.b),
		CCustomers:     countIn(t.ent, t.c),
		Risk:           "VERY HIGH",
		SuccessPct:     25,
		Timeline:       "6-12 months",
		Recommendation: "EXTREME",
	}, agg, 1, 0.5))

	return results
}

func Write(path string, results []Result) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.Name,
			csvio.Int(res.CustomersKept),
			csvio.Int(res.ACustomers),
			csvio.Int(res.BCustomers),
			csvio.Int(res.CCustomers),
			csvio.Money(res.Revenue),
			csvio.Money(res.COGS),
			csvio.Money(res.Warehouse),
			csvio.Money(res.Shipping),
			csvio.Money(res.Returns),
			csvio.Money(res.Interest),
			csvio.Money(res.Overhead),
			csvio.Money(res.TotalCost),
			csvio.Money(res.Profit),
			csvio.Money(res.MarginPct),
			res.Risk,
			csvio.Int(res.SuccessPct),
			res.Timeline,
			res.Recommendation,
		})
	}
	return csvio.WriteFile(path, Columns, rows)
}

// ReadScores loads the CLV table back for scenario planning.
func ReadScores(path string) ([]clv.Score, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require("CustomerID", "CustomerSegment", "CLVSegment"); err != nil {
		return nil, err
	}
	scores := make([]clv.Score, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		scores = append(scores, clv.Score{
			CustomerID: t.Value(i, "CustomerID"),
			Segment:    t.Value(i, "CustomerSegment"),
			Tier:       t.Value(i, "CLVSegment"),
		})
	}
	return scores, nil
}

// Generate runs the scenario-planning stage end to end.
func Generate(cfg *config.Config) error {
	orders, err := pnl.ReadOrders(cfg.GeneratedPath("10_financial_p_l_orders.csv"))
	if err != nil {
		return err
	}
	scores, err := ReadScores(cfg.GeneratedPath("11_customer_lifetime_value.csv"))
	if err != nil {
		return err
	}
	results := Build(orders, scores, rng.New(cfg.Seed))
	return Write(cfg.GeneratedPath("14_scenario_planning.csv"), results)
}
