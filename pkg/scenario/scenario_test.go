package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-to-serve/pkg/clv"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/pnl"
	"cost-to-serve/pkg/rng"
)

func testScores() []clv.Score {
	return []clv.Score{
		{CustomerID: "C1", Segment: "Enterprise", Tier: "A-Customer"},
		{CustomerID: "C2", Segment: "Mid-Market", Tier: "B-Customer"},
		{CustomerID: "C3", Segment: "SMB", Tier: "C-Customer"},
	}
}

func testOrders() []pnl.Row {
	return []pnl.Row{
		{TransactionID: "T1", CustomerID: "C1", Revenue: 1000, COGS: 600, Warehouse: 50, Shipping: 20, Returns: 5, Interest: 4, Overhead: 60},
		{TransactionID: "T2", CustomerID: "C2", Revenue: 500, COGS: 300, Warehouse: 30, Shipping: 0, Returns: 0, Interest: 2, Overhead: 40},
		{TransactionID: "T3", CustomerID: "C3", Revenue: 100, COGS: 60, Warehouse: 25, Shipping: 15, Returns: 10, Interest: 1, Overhead: 35},
		{TransactionID: "T4", CustomerID: "C3", Revenue: 120, COGS: 72, Warehouse: 20, Shipping: 0, Returns: 0, Interest: 1, Overhead: 35},
	}
}

func TestBuildFiveScenariosInOrder(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))
	require.Len(t, results, 5)
	names := []string{"Status Quo", "Exit C-Customers", "Renegotiate C", "Exit SMB", "Enterprise Only"}
	for i, want := range names {
		assert.Equal(t, want, results[i].Name)
	}
}

func TestStatusQuoMatchesDirectAggregate(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))
	sq := results[0]

	assert.Equal(t, 3, sq.CustomersKept)
	assert.Equal(t, 1, sq.ACustomers)
	assert.Equal(t, 1, sq.BCustomers)
	assert.Equal(t, 1, sq.CCustomers)
	assert.InDelta(t, 1720.0, sq.Revenue, 0.01)
	assert.InDelta(t, 1032.0, sq.COGS, 0.01)
	assert.InDelta(t, 170.0, sq.Overhead, 0.01)
	assert.InDelta(t, sq.Revenue-sq.TotalCost, sq.Profit, 0.01)
	assert.Equal(t, "UNSUSTAINABLE", sq.Recommendation)
	assert.Equal(t, 0, sq.SuccessPct)
}

func TestExitCDropsCOrdersAndTrimsOverhead(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))
	exitC := results[1]

	assert.Equal(t, 2, exitC.CustomersKept)
	assert.Equal(t, 0, exitC.CCustomers)
	// Only T1 and T2 survive.
	assert.InDelta(t, 1500.0, exitC.Revenue, 0.01)
	assert.InDelta(t, 900.0, exitC.COGS, 0.01)
	// Overhead 100 shrinks by 30%.
	assert.InDelta(t, 70.0, exitC.Overhead, 0.01)
	assert.Equal(t, "OPTIMAL", exitC.Recommendation)
}

func TestRenegotiateRaisesPriceOnKeptOrders(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))
	reneg := results[2]

	// Both C orders came from the same customer; 75% of 2 orders rounds to 2,
	// so every order survives and revenue is the full book at +20%.
	assert.InDelta(t, 1720.0*1.20, reneg.Revenue, 0.01)
	assert.InDelta(t, 170.0*0.85, reneg.Overhead, 0.01)
	assert.Equal(t, 3, reneg.CustomersKept)
	assert.Equal(t, "RISKY", reneg.Recommendation)
}

func TestSegmentExitScenarios(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))

	exitSMB := results[3]
	assert.Equal(t, 2, exitSMB.CustomersKept)
	assert.InDelta(t, 1500.0, exitSMB.Revenue, 0.01)
	assert.InDelta(t, 90.0, exitSMB.Overhead, 0.01)
	assert.Equal(t, "SAFE", exitSMB.Recommendation)

	entOnly := results[4]
	assert.Equal(t, 1, entOnly.CustomersKept)
	assert.Equal(t, 1, entOnly.ACustomers)
	assert.InDelta(t, 1000.0, entOnly.Revenue, 0.01)
	assert.InDelta(t, 30.0, entOnly.Overhead, 0.01)
	assert.Equal(t, "EXTREME", entOnly.Recommendation)
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(testOrders(), testScores(), rng.New(42))
	b := Build(testOrders(), testScores(), rng.New(42))
	assert.Equal(t, a, b)
}

func TestWriteSchema(t *testing.T) {
	results := Build(testOrders(), testScores(), rng.New(42))
	path := t.TempDir() + "/scenarios.csv"
	require.NoError(t, Write(path, results))

	tab, err := csvio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, Columns, tab.Headers)
	assert.Equal(t, 5, tab.Len())
	assert.Equal(t, "Status Quo", tab.Value(0, "Scenario"))
	assert.Equal(t, "VERY HIGH", tab.Value(0, "Risk_Level"))
}
