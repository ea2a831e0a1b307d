package datafile

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datacheck/domain/tabular"
	"datacheck/internal/logging"
	"datacheck/internal/testkit"
)

func testLoader() *Loader {
	return NewLoader(logging.NewLogger(logging.LogLevelError))
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const fixtureCSV = `id,era,data_type,feature1,feature2,target
id1,era1,train,0.25,0.5,0
id2,era1,train,0.75,0.5,1
id3,era2,validation,0.5,0.25,1
id4,eraX,live,0.5,0.75,NA
`

func TestLoadCSV(t *testing.T) {
	path := writeFixture(t, "tournament.csv", fixtureCSV)
	table, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "tournament", table.Name())
	assert.Equal(t, 4, table.Rows())
	assert.Equal(t, 2, table.FeatureCount())
	assert.Equal(t, []string{"id1", "id2", "id3", "id4"}, table.IDs())
	assert.Equal(t, tabular.RegionLive, table.RegionAt(3))
	assert.Equal(t, 0.25, table.Features().At(0, 0))
	assert.True(t, math.IsNaN(table.Labels()[3]), "NA target becomes a missing label")
	assert.Equal(t, 1.0, table.Labels()[2])
}

func TestLoadIgnoresUnknownColumns(t *testing.T) {
	doc := `id,era,data_type,notes,feature1,target
id1,era1,train,irrelevant,0.5,0
id2,era1,train,,0.6,1
`
	path := writeFixture(t, "extra.csv", doc)
	table, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.FeatureCount())
	assert.Equal(t, 0.6, table.Features().At(1, 0))
}

func TestLoadMapsMissingFeatureToNaN(t *testing.T) {
	doc := `id,era,data_type,feature1,target
id1,era1,train,,0
`
	path := writeFixture(t, "gap.csv", doc)
	table, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(table.Features().At(0, 0)))
}

func TestLoadRejectsBadFiles(t *testing.T) {
	loader := testLoader()
	ctx := context.Background()

	_, err := loader.Load(ctx, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)

	_, err = loader.Load(ctx, writeFixture(t, "data.txt", "whatever"))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = loader.Load(ctx, writeFixture(t, "headeronly.csv", "id,era,data_type,feature1,target\n"))
	require.ErrorIs(t, err, ErrMalformed)

	_, err = loader.Load(ctx, writeFixture(t, "nocols.csv", "id,era,feature1\nid1,era1,0.5\n"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "data_type")
	assert.Contains(t, err.Error(), "target")

	_, err = loader.Load(ctx, writeFixture(t, "nofeatures.csv", "id,era,data_type,target\nid1,era1,train,0\n"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "feature")

	doc := "id,era,data_type,feature1,target\nid1,era1,train,oops,0\n"
	_, err = loader.Load(ctx, writeFixture(t, "badcell.csv", doc))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "feature1")
}

func TestLoadHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testLoader().Load(ctx, writeFixture(t, "tournament.csv", fixtureCSV))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVRoundTrip(t *testing.T) {
	cfg := testkit.GeneratorConfig{
		TrainEras:      2,
		ValidationEras: 1,
		RowsPerEra:     10,
		LiveRows:       5,
		FeatureCount:   3,
		Seed:           1,
	}
	original, err := testkit.NewGenerator(cfg).Table()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roundtrip.csv")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteCSV(original, file))
	require.NoError(t, file.Close())

	loaded, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, original.Rows(), loaded.Rows())
	require.Equal(t, original.FeatureCount(), loaded.FeatureCount())
	assert.Equal(t, original.IDs(), loaded.IDs())
	for i := 0; i < original.Rows(); i++ {
		assert.Equal(t, original.EraAt(i), loaded.EraAt(i))
		assert.Equal(t, original.RegionAt(i), loaded.RegionAt(i))
		for j := 0; j < original.FeatureCount(); j++ {
			assert.Equal(t, original.Features().At(i, j), loaded.Features().At(i, j))
		}
		want := original.Labels()[i]
		got := loaded.Labels()[i]
		if math.IsNaN(want) {
			assert.True(t, math.IsNaN(got), "row %d label", i)
		} else {
			assert.Equal(t, want, got, "row %d label", i)
		}
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"id", "era", "data_type", "feature1", "target"},
		{"id1", "era1", "train", 0.25, 0},
		{"id2", "era1", "train", 0.75, 1},
		{"id3", "eraX", "live", 0.5, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "tournament.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Rows())
	assert.Equal(t, 1, table.FeatureCount())
	assert.Equal(t, 0.75, table.Features().At(1, 0))
	assert.Equal(t, tabular.RegionLive, table.RegionAt(2))
	assert.True(t, math.IsNaN(table.Labels()[2]), "trailing empty target pads to a missing label")
}

func TestWriteCSVHeader(t *testing.T) {
	cfg := testkit.GeneratorConfig{
		TrainEras:      1,
		ValidationEras: 1,
		RowsPerEra:     4,
		LiveRows:       2,
		FeatureCount:   2,
		Seed:           3,
	}
	table, err := testkit.NewGenerator(cfg).Table()
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, WriteCSV(table, &b))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, "id,era,data_type,feature1,feature2,target", lines[0])
	assert.Len(t, lines, table.Rows()+1)
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], ",NA"), "live labels write as NA")
}
