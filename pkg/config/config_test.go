package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "data/processed", cfg.Data.ProcessedDir)
	assert.Equal(t, "data/generated", cfg.Data.GeneratedDir)
	assert.Equal(t, 0.05, cfg.Finance.AnnualInterestRate)
	assert.Equal(t, 0.60, cfg.Finance.COGSRate)
	assert.Equal(t, 1180000.0, cfg.Finance.AnnualOverheadEUR)
	assert.Equal(t, 0.0, cfg.CLV.DiscountRate)
	assert.Equal(t, 5000.0, cfg.CLV.ATierMinEUR)
	assert.Equal(t, -1000.0, cfg.CLV.ExitBelowEUR)
	assert.Equal(t, "data/warehouse.db", cfg.Warehouse.DSN)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yaml := `
seed: 7
data:
  generated_dir: out/generated
finance:
  cogs_rate: 0.55
clv:
  discount_rate: 0.05
warehouse:
  dsn: postgres://localhost/warehouse
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "out/generated", cfg.Data.GeneratedDir)
	assert.Equal(t, 0.55, cfg.Finance.COGSRate)
	assert.Equal(t, 0.05, cfg.CLV.DiscountRate)
	assert.Equal(t, "postgres://localhost/warehouse", cfg.Warehouse.DSN)
	// Untouched values keep their defaults.
	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, 5000.0, cfg.CLV.ATierMinEUR)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestPathHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.Data.RawDir = "raw"
	cfg.Data.ProcessedDir = "proc"
	cfg.Data.GeneratedDir = "gen"
	cfg.Data.SeedFile = "seed.csv"

	assert.Equal(t, filepath.Join("raw", "seed.csv"), cfg.SeedPath())
	assert.Equal(t, filepath.Join("proc", "a.csv"), cfg.ProcessedPath("a.csv"))
	assert.Equal(t, filepath.Join("gen", "b.csv"), cfg.GeneratedPath("b.csv"))
}
