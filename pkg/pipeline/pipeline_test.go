package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-to-serve/pkg/config"
)

func stageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name
	}
	return names
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestSortProducersBeforeConsumers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.RawDir = "raw"
	cfg.Data.ProcessedDir = "proc"
	cfg.Data.GeneratedDir = "gen"
	cfg.Data.SeedFile = "seed.csv"

	order, err := Sort(Stages(cfg))
	require.NoError(t, err)
	names := stageNames(order)
	require.Len(t, names, 11)

	deps := map[string][]string{
		"transactions":            {"customer-master"},
		"warehouse-costs":         {"transactions", "product-catalog"},
		"shipping-costs":          {"transactions", "product-catalog"},
		"returns-handling":        {"warehouse-costs"},
		"payment-interest":        {"transactions"},
		"admin-overhead":          {"customer-master", "transactions"},
		"financial-pnl":           {"warehouse-costs", "shipping-costs", "returns-handling", "payment-interest", "admin-overhead"},
		"customer-lifetime-value": {"financial-pnl"},
		"scenario-planning":       {"financial-pnl", "customer-lifetime-value"},
	}
	for consumer, producers := range deps {
		for _, producer := range producers {
			assert.Less(t, indexOf(names, producer), indexOf(names, consumer),
				"%s must run before %s", producer, consumer)
		}
	}
}

func TestSortDetectsCycle(t *testing.T) {
	stages := []Stage{
		{Name: "a", Inputs: []string{"y"}, Outputs: []string{"x"}},
		{Name: "b", Inputs: []string{"x"}, Outputs: []string{"y"}},
	}
	_, err := Sort(stages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestSortRejectsDuplicateProducers(t *testing.T) {
	stages := []Stage{
		{Name: "a", Outputs: []string{"x"}},
		{Name: "b", Outputs: []string{"x"}},
	}
	_, err := Sort(stages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both produce")
}

func TestRunFailsOnMissingInputNamingProducer(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "upstream.csv")
	cfg := &config.Config{}

	ran := false
	stages := []Stage{
		{
			Name:    "producer",
			Outputs: []string{missing},
			// The producer "succeeds" without writing its output.
			Run: func(*config.Config) error { return nil },
		},
		{
			Name:   "consumer",
			Inputs: []string{missing},
			Run:    func(*config.Config) error { ran = true; return nil },
		},
	}

	err := Run(cfg, stages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream.csv")
	assert.Contains(t, err.Error(), "producer")
	assert.False(t, ran)
}

func TestRunExecutesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	cfg := &config.Config{}

	var ran []string
	stages := []Stage{
		{
			Name:   "consumer",
			Inputs: []string{first},
			Run:    func(*config.Config) error { ran = append(ran, "consumer"); return nil },
		},
		{
			Name:    "producer",
			Outputs: []string{first},
			Run: func(*config.Config) error {
				ran = append(ran, "producer")
				return os.WriteFile(first, []byte("x\n"), 0o644)
			},
		},
	}

	require.NoError(t, Run(cfg, stages))
	assert.Equal(t, []string{"producer", "consumer"}, ran)
}
