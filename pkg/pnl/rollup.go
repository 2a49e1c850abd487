package pnl

import (
	"sort"

	"cost-to-serve/pkg/csvio"
)

// Rollup aggregates the order P&L over one grouping key.
type Rollup struct {
	Key          string
	RevenueTotal float64
	RevenueAvg   float64
	OrderCount   int
	COGS         float64
	Warehouse    float64
	Shipping     float64
	Returns      float64
	Interest     float64
	Overhead     float64
	TotalCost    float64
	ProfitTotal  float64
	ProfitAvg    float64
	MarginAvgPct float64
}

var rollupMetricColumns = []string{
	"Revenue_Total", "Revenue_Avg", "Order_Count", "COGS_Total",
	"Warehouse_Total", "Shipping_Total", "Returns_Total", "Interest_Total",
	"Overhead_Total", "TotalCost_Total", "Profit_Total", "Profit_Avg",
	"ProfitMargin_Avg_Pct",
}

// RollupBy groups rows by key and aggregates, keys sorted ascending.
func RollupBy(rows []Row, key func(Row) string) []Rollup {
	groups := make(map[string]*Rollup)
	margins := make(map[string]float64)
	for _, row := range rows {
		k := key(row)
		g, ok := groups[k]
		if !ok {
			g = &Rollup{Key: k}
			groups[k] = g
		}
		g.OrderCount++
		g.RevenueTotal += row.Revenue
		g.COGS += row.COGS
		g.Warehouse += row.Warehouse
		g.Shipping += row.Shipping
		g.Returns += row.Returns
		g.Interest += row.Interest
		g.Overhead += row.Overhead
		g.TotalCost += row.TotalCost
		g.ProfitTotal += row.Profit
		margins[k] += row.MarginPct
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Rollup, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		n := float64(g.OrderCount)
		g.RevenueTotal = csvio.Round2(g.RevenueTotal)
		g.RevenueAvg = csvio.Round2(g.RevenueTotal / n)
		g.COGS = csvio.Round2(g.COGS)
		g.Warehouse = csvio.Round2(g.Warehouse)
		g.Shipping = csvio.Round2(g.Shipping)
		g.Returns = csvio.Round2(g.Returns)
		g.Interest = csvio.Round2(g.Interest)
		g.Overhead = csvio.Round2(g.Overhead)
		g.TotalCost = csvio.Round2(g.TotalCost)
		g.ProfitTotal = csvio.Round2(g.ProfitTotal)
		g.ProfitAvg = csvio.Round2(g.ProfitTotal / n)
		g.MarginAvgPct = csvio.Round2(margins[k] / n)
		out = append(out, *g)
	}
	return out
}

// WriteRollup exports one grouped P&L table; keyColumn names the group
// dimension, for example CustomerSegment or ProductCategory.
func WriteRollup(path, keyColumn string, rollups []Rollup) error {
	headers := append([]string{keyColumn}, rollupMetricColumns...)
	rows := make([][]string, 0, len(rollups))
	for _, g := range rollups {
		rows = append(rows, []string{
			g.Key,
			csvio.Money(g.RevenueTotal),
			csvio.Money(g.RevenueAvg),
			csvio.Int(g.OrderCount),
			csvio.Money(g.COGS),
			csvio.Money(g.Warehouse),
			csvio.Money(g.Shipping),
			csvio.Money(g.Returns),
			csvio.Money(g.Interest),
			csvio.Money(g.Overhead),
			csvio.Money(g.TotalCost),
			csvio.Money(g.ProfitTotal),
			csvio.Money(g.ProfitAvg),
			csvio.Money(g.MarginAvgPct),
		})
	}
	return csvio.WriteFile(path, headers, rows)
}

// MatrixCell is one segment x category intersection of the P&L.
type MatrixCell struct {
	Segment      string
	Category     string
	ProfitTotal  float64
	ProfitAvg    float64
	OrderCount   int
	MarginAvgPct float64
	RevenueTotal float64
}

var matrixColumns = []string{
	"CustomerSegment", "ProductCategory", "Profit_Total", "Profit_Avg",
	"Order_Count", "ProfitMargin_Avg_Pct", "Revenue_Total",
}

// MatrixBy crosses customer segment with product category, sorted by
// segment then category.
func MatrixBy(rows []Row) []MatrixCell {
	type cellKey struct{ segment, category string }
	type acc struct {
		profit, margin, revenue float64
		count                   int
	}
	groups := make(map[cellKey]*acc)
	for _, row := range rows {
		k := cellKey{row.Segment, row.Category}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.profit += row.Profit
		a.margin += row.MarginPct
		a.revenue += row.Revenue
		a.count++
	}

	keys := make([]cellKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].segment != keys[j].segment {
			return keys[i].segment < keys[j].segment
		}
		return keys[i].category < keys[j].category
	})

	out := make([]MatrixCell, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		n := float64(a.count)
		out = append(out, MatrixCell{
			Segment:      k.segment,
			Category:     k.category,
			ProfitTotal:  csvio.Round2(a.profit),
			ProfitAvg:    csvio.Round2(a.profit / n),
			OrderCount:   a.count,
			MarginAvgPct: csvio.Round2(a.margin / n),
			RevenueTotal: csvio.Round2(a.revenue),
		})
	}
	return out
}

func WriteMatrix(path string, cells []MatrixCell) error {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, []string{
			c.Segment,
			c.Category,
			csvio.Money(c.ProfitTotal),
			csvio.Money(c.ProfitAvg),
			csvio.Int(c.OrderCount),
			csvio.Money(c.MarginAvgPct),
			csvio.Money(c.RevenueTotal),
		})
	}
	return csvio.WriteFile(path, matrixColumns, rows)
}

// WriteOverallSummary exports the company-wide totals as a two-column
// metric/amount table.
func WriteOverallSummary(path string, rows []Row) error {
	var revenue, cogs, warehouse, shipping, returns, interest, overhead, totalCost, profit float64
	for _, row := range rows {
		revenue += row.Revenue
		cogs += row.COGS
		warehouse += row.Warehouse
		shipping += row.Shipping
		returns += row.Returns
		interest += row.Interest
		overhead += row.Overhead
		totalCost += row.TotalCost
		profit += row.Profit
	}
	margin := 0.0
	if revenue != 0 {
		margin = profit / revenue * 100
	}
	records := [][]string{
		{"Total Revenue", csvio.Money(revenue)},
		{"Total COGS", csvio.Money(cogs)},
		{"Total Warehouse", csvio.Money(warehouse)},
		{"Total Shipping", csvio.Money(shipping)},
		{"Total Returns", csvio.Money(returns)},
		{"Total Interest", csvio.Money(interest)},
		{"Total Overhead", csvio.Money(overhead)},
		{"Total Cost-to-Serve", csvio.Money(totalCost)},
		{"Total Profit", csvio.Money(profit)},
		{"Overall Margin %", csvio.Money(margin)},
	}
	return csvio.WriteFile(path, []string{"Metric", "Amount"}, records)
}
