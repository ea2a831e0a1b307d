package testkit

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"datacheck/domain/tabular"
	"datacheck/internal/integrity"
	"datacheck/internal/logging"
)

func TestGeneratorShape(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	table, err := NewGenerator(cfg).Table()
	require.NoError(t, err)

	wantRows := (cfg.TrainEras+cfg.ValidationEras+1)*cfg.RowsPerEra + cfg.LiveRows
	assert.Equal(t, wantRows, table.Rows())
	assert.Equal(t, cfg.FeatureCount, table.FeatureCount())

	groups := table.EraRows()
	require.Len(t, groups, cfg.TrainEras+cfg.ValidationEras+2)
	assert.Equal(t, "era1", groups[0].Era)
	assert.Equal(t, "eraX", groups[len(groups)-1].Era)
	assert.Len(t, groups[len(groups)-1].Rows, cfg.LiveRows)

	assert.Len(t, table.RegionRows(tabular.RegionTrain), cfg.TrainEras*cfg.RowsPerEra)
	assert.Len(t, table.RegionRows(tabular.RegionValidation), cfg.ValidationEras*cfg.RowsPerEra)
	assert.Len(t, table.RegionRows(tabular.RegionTest), cfg.RowsPerEra)
	assert.Len(t, table.RegionRows(tabular.RegionLive), cfg.LiveRows)

	labels := table.Labels()
	for _, i := range table.RegionRows(tabular.RegionTest) {
		assert.True(t, math.IsNaN(labels[i]), "test labels are unresolved")
	}
	for _, i := range table.RegionRows(tabular.RegionLive) {
		assert.True(t, math.IsNaN(labels[i]), "live labels are unresolved")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	first, err := NewGenerator(cfg).Table()
	require.NoError(t, err)
	second, err := NewGenerator(cfg).Table()
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, first.Labels(), second.Labels())
	assert.True(t, mat.Equal(first.Features(), second.Features()))

	cfg.Seed = 7
	reseeded, err := NewGenerator(cfg).Table()
	require.NoError(t, err)
	assert.False(t, mat.Equal(first.Features(), reseeded.Features()))
}

func TestGeneratorBalancesLabels(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	table, err := NewGenerator(cfg).Table()
	require.NoError(t, err)

	half := float64(cfg.RowsPerEra/2) / float64(cfg.RowsPerEra)
	tilt := 1.0 / float64(cfg.RowsPerEra)
	below := 0
	labeled := 0
	for _, group := range table.EraRows() {
		y := table.LabelsAt(group.Rows)
		if math.IsNaN(y[0]) {
			continue
		}
		labeled++
		sum := 0.0
		for _, v := range y {
			sum += v
		}
		m := sum / float64(len(y))
		assert.InDelta(t, half, m, tilt+1e-12)
		if m < 0.5 {
			below++
		}
	}
	assert.Equal(t, cfg.TrainEras+cfg.ValidationEras, labeled)
	assert.Equal(t, labeled/2, below, "half the labeled eras tilt below one half")
}

func TestGeneratedTablePassesMatchedThresholds(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	table, err := NewGenerator(cfg).Table()
	require.NoError(t, err)

	sink := logging.NewCaptureSink()
	report, err := integrity.New(cfg.Thresholds(), sink).Run(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, report.Clean(), "unexpected findings: %v", report.Findings)
	assert.Len(t, sink.Lines(), 6, "a clean audit emits only the six section markers")
}
