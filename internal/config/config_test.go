package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacheck/domain/tabular"
	"datacheck/internal/integrity"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DATA_FILE", "")
	t.Setenv("THRESHOLDS_FILE", "")
	t.Setenv("AUDIT_PARALLEL", "")

	cfg := Load()
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Audit.DataFile)
	assert.False(t, cfg.Audit.Parallel)

	require.Error(t, cfg.RequireDatabase())
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrInvalid)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/datacheck")
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_FILE", "tournament_data.csv")
	t.Setenv("AUDIT_PARALLEL", "true")

	cfg := Load()
	assert.Equal(t, "postgres://localhost/datacheck", cfg.Database.URL)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "tournament_data.csv", cfg.Audit.DataFile)
	assert.True(t, cfg.Audit.Parallel)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoadThresholdsDefaultsOnly(t *testing.T) {
	th, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, integrity.DefaultThresholds(), th)
}

func TestLoadThresholdsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	doc := `
logloss: [0.5, 0.9]
eras_per_region:
  train: 12
feature_std:
  low: 0.05
  high: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	th, err := LoadThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, integrity.Interval{Low: 0.5, High: 0.9}, th.LogLoss)
	assert.Equal(t, integrity.Interval{Low: 0.05, High: 0.2}, th.FeatureStd)
	assert.Equal(t, 12, th.ErasPerRegion[tabular.RegionTrain])

	// untouched keys keep their defaults
	defaults := integrity.DefaultThresholds()
	assert.Equal(t, defaults.Consistency, th.Consistency)
	assert.Equal(t, defaults.ErasPerRegion[tabular.RegionValidation], th.ErasPerRegion[tabular.RegionValidation])
	assert.Equal(t, defaults.LivePlaceholderEra, th.LivePlaceholderEra)
}

func TestLoadThresholdsRejectsBadFile(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logloss: [1, 2, 3]"), 0o600))
	_, err = LoadThresholds(path)
	require.Error(t, err)

	path = filepath.Join(t.TempDir(), "empty-interval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logloss: [0.9, 0.1]"), 0o600))
	_, err = LoadThresholds(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logloss")
}
