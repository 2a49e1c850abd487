package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/pipeline"
	"cost-to-serve/pkg/rng"
)

// writeSeedFile fabricates a small raw wholesale customers file spanning all
// three segments and both channels.
func writeSeedFile(t *testing.T, path string) {
	t.Helper()
	r := rng.New(7)
	headers := []string{"Channel", "Region", "Fresh", "Milk", "Grocery", "Frozen", "Detergents_Paper", "Delicassen"}
	var rows [][]string
	for i := 0; i < 24; i++ {
		channel := 1 + i%2
		region := 1 + i%3
		base := 1500 + i*3000
		rows = append(rows, []string{
			fmt.Sprint(channel),
			fmt.Sprint(region),
			fmt.Sprint(base + r.IntBetween(0, 2000)),
			fmt.Sprint(base/2 + r.IntBetween(0, 1000)),
			fmt.Sprint(base + r.IntBetween(0, 3000)),
			fmt.Sprint(base/4 + r.IntBetween(0, 500)),
			fmt.Sprint(base/5 + r.IntBetween(0, 400)),
			fmt.Sprint(base/6 + r.IntBetween(0, 300)),
		})
	}
	require.NoError(t, csvio.WriteFile(path, headers, rows))
}

func generatedDataset(t *testing.T) *config.Config {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := config.Load("")
	require.NoError(t, err)

	writeSeedFile(t, cfg.SeedPath())
	require.NoError(t, pipeline.Run(cfg, pipeline.Stages(cfg)))
	return cfg
}

func TestGeneratedDatasetPassesAllChecks(t *testing.T) {
	cfg := generatedDataset(t)

	results := RunAll(cfg)
	require.Len(t, results, 6)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Details)
	}
	assert.True(t, AllPassed(results))
}

func TestChecksFailOnMissingFiles(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := config.Load("")
	require.NoError(t, err)

	results := RunAll(cfg)
	assert.False(t, AllPassed(results))
}

func TestReportFormat(t *testing.T) {
	results := []Result{
		{Name: "alpha", Passed: true, Details: []string{"all good"}},
		{Name: "beta", Passed: false, Details: []string{"broken"}},
	}
	report := Report(results)
	assert.Contains(t, report, "# Dataset Validation Report")
	assert.Contains(t, report, "Checks passed: 1/2")
	assert.Contains(t, report, "## alpha [PASS]")
	assert.Contains(t, report, "## beta [FAIL]")
	assert.Contains(t, report, "- broken")
}

func TestReportWritesCleanMarkdownPath(t *testing.T) {
	report := Report(nil)
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte(report), 0o644))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Checks passed: 0/0")
}
