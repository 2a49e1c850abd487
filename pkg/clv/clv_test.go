package clv

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/pnl"
)

var testCLVConfig = config.CLVConfig{ATierMinEUR: 5000, ExitBelowEUR: -1000}

func testCustomers() []models.Customer {
	return []models.Customer{
		{ID: "C1", Name: "Douro Catering Lda", Segment: "Enterprise"},
		{ID: "C2", Name: "Tejo Foods SA", Segment: "SMB"},
		{ID: "C3", Name: "Minho Distribution", Segment: "Mid-Market"},
	}
}

func testOrders() []pnl.Row {
	return []pnl.Row{
		{CustomerID: "C1", Profit: 1500},
		{CustomerID: "C1", Profit: 500},
		{CustomerID: "C2", Profit: -200},
	}
}

func TestBuildFormula(t *testing.T) {
	scores := Build(testCustomers(), testOrders(), testCLVConfig)
	require.Len(t, scores, 3)

	ent := scores[0]
	// 2000 annual profit over 12 years minus 10000 acquisition.
	assert.Equal(t, 2000.0, ent.AnnualProfit)
	assert.Equal(t, 2, ent.OrderCount)
	assert.Equal(t, 12.0, ent.LifetimeYears)
	assert.Equal(t, 14000.0, ent.CLV)
	assert.Equal(t, ent.CLV, ent.CLVNPV)
	assert.Equal(t, 1.4, ent.PaybackMultiple)
	assert.Equal(t, "A-Customer", ent.Tier)
	assert.Equal(t, "INVEST & EXPAND", ent.Action)

	smb := scores[1]
	// -200 x 2.5 - 300 = -800: C tier but above the exit line.
	assert.Equal(t, -800.0, smb.CLV)
	assert.Equal(t, "C-Customer", smb.Tier)
	assert.Equal(t, "RENEGOTIATE TERMS", smb.Action)
}

func TestBuildNoOrdersCustomer(t *testing.T) {
	scores := Build(testCustomers(), testOrders(), testCLVConfig)
	mid := scores[2]
	assert.Zero(t, mid.AnnualProfit)
	assert.Zero(t, mid.OrderCount)
	// Pure acquisition cost: -2000 CLV, deep enough to exit.
	assert.Equal(t, -2000.0, mid.CLV)
	assert.Equal(t, "C-Customer", mid.Tier)
	assert.Equal(t, "EXIT IMMEDIATELY", mid.Action)
}

func TestBuildNPVWithDiscount(t *testing.T) {
	cfg := testCLVConfig
	cfg.DiscountRate = 0.05
	scores := Build(testCustomers(), testOrders(), cfg)

	ent := scores[0]
	want := -10000.0
	for year := 1; year <= 12; year++ {
		want += 2000 / math.Pow(1.05, float64(year))
	}
	assert.InDelta(t, csvio.Round2(want), ent.CLVNPV, 0.01)
	assert.NotEqual(t, ent.CLV, ent.CLVNPV)
}

func TestTierBoundaries(t *testing.T) {
	assert.Equal(t, "A-Customer", tierFor(5000.01, 5000))
	assert.Equal(t, "B-Customer", tierFor(5000, 5000))
	assert.Equal(t, "B-Customer", tierFor(0.01, 5000))
	assert.Equal(t, "C-Customer", tierFor(0, 5000))
}

func TestActionBoundaries(t *testing.T) {
	assert.Equal(t, "RENEGOTIATE TERMS", actionFor("C-Customer", -1000, -1000))
	assert.Equal(t, "EXIT IMMEDIATELY", actionFor("C-Customer", -1000.01, -1000))
}

func TestWriteAndSummaries(t *testing.T) {
	dir := t.TempDir()
	scores := Build(testCustomers(), testOrders(), testCLVConfig)

	main := filepath.Join(dir, "clv.csv")
	require.NoError(t, Write(main, scores))
	tab, err := csvio.Load(main)
	require.NoError(t, err)
	assert.Equal(t, Columns, tab.Headers)
	assert.Equal(t, 3, tab.Len())

	seg := filepath.Join(dir, "by_segment.csv")
	require.NoError(t, WriteSegmentSummary(seg, scores))
	tab, err = csvio.Load(seg)
	require.NoError(t, err)
	require.Equal(t, 3, tab.Len())
	// Groups sort alphabetically.
	assert.Equal(t, "Enterprise", tab.Value(0, "CustomerSegment"))
	assert.Equal(t, "Mid-Market", tab.Value(1, "CustomerSegment"))
	assert.Equal(t, "SMB", tab.Value(2, "CustomerSegment"))
	assert.Equal(t, "1", tab.Value(0, "ACustomerCount"))

	tier := filepath.Join(dir, "by_tier.csv")
	require.NoError(t, WriteTierSummary(tier, scores))
	tab, err = csvio.Load(tier)
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())

	action := filepath.Join(dir, "by_action.csv")
	require.NoError(t, WriteActionSummary(action, scores))
	tab, err = csvio.Load(action)
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Len())
}
