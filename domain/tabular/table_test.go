package tabular

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"datacheck/domain/core"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()

	ids := []string{"a", "b", "c", "d", "e", "f"}
	eras := []string{"era1", "era1", "era2", "era2", "era3", "eraX"}
	regions := []Region{
		RegionTrain, RegionTrain,
		RegionValidation, RegionValidation,
		RegionTest, RegionLive,
	}
	x := mat.NewDense(6, 2, []float64{
		0.1, 0.9,
		0.2, 0.8,
		0.3, 0.7,
		0.4, 0.6,
		0.5, 0.5,
		0.6, 0.4,
	})
	y := []float64{0, 1, 0, 1, 1, math.NaN()}

	table, err := New("sample", ids, eras, regions, x, y)
	if err != nil {
		t.Fatalf("Unexpected error building table: %v", err)
	}
	return table
}

func TestNewRejectsMisalignedColumns(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0.1, 0.2})

	tests := []struct {
		name    string
		ids     []string
		eras    []string
		regions []Region
		y       []float64
	}{
		{"short eras", []string{"a", "b"}, []string{"era1"}, []Region{RegionTrain, RegionTrain}, []float64{0, 1}},
		{"short regions", []string{"a", "b"}, []string{"era1", "era1"}, []Region{RegionTrain}, []float64{0, 1}},
		{"short labels", []string{"a", "b"}, []string{"era1", "era1"}, []Region{RegionTrain, RegionTrain}, []float64{0}},
		{"short features", []string{"a", "b", "c"}, []string{"era1", "era1", "era1"}, []Region{RegionTrain, RegionTrain, RegionTrain}, []float64{0, 1, 0}},
	}

	for _, test := range tests {
		_, err := New("bad", test.ids, test.eras, test.regions, x, test.y)
		if err == nil {
			t.Errorf("%s: expected alignment error, got none", test.name)
			continue
		}
		if !core.IsAlignmentError(err) {
			t.Errorf("%s: expected ErrMisaligned, got %v", test.name, err)
		}
	}
}

func TestNewRejectsEmptyTable(t *testing.T) {
	_, err := New("empty", nil, nil, nil, mat.NewDense(1, 1, nil), nil)
	if !core.IsAlignmentError(err) {
		t.Errorf("Expected empty-table error, got %v", err)
	}
}

func TestErasFirstAppearanceOrder(t *testing.T) {
	table := sampleTable(t)

	expected := []string{"era1", "era2", "era3", "eraX"}
	eras := table.Eras()
	if len(eras) != len(expected) {
		t.Fatalf("Expected %d distinct eras, got %d", len(expected), len(eras))
	}
	for i, era := range expected {
		if eras[i] != era {
			t.Errorf("Expected era %s at position %d, got %s", era, i, eras[i])
		}
	}
}

func TestEraRowsCoverEveryRowOnce(t *testing.T) {
	table := sampleTable(t)

	covered := make(map[int]int)
	for _, group := range table.EraRows() {
		for _, row := range group.Rows {
			covered[row]++
			if table.EraAt(row) != group.Era {
				t.Errorf("Row %d grouped under era %s but carries era %s", row, group.Era, table.EraAt(row))
			}
		}
	}

	if len(covered) != table.Rows() {
		t.Errorf("Expected %d rows covered, got %d", table.Rows(), len(covered))
	}
	for row, count := range covered {
		if count != 1 {
			t.Errorf("Row %d appears %d times across era groups", row, count)
		}
	}
}

func TestRegionRows(t *testing.T) {
	table := sampleTable(t)

	tests := []struct {
		region   Region
		expected []int
	}{
		{RegionTrain, []int{0, 1}},
		{RegionValidation, []int{2, 3}},
		{RegionTest, []int{4}},
		{RegionLive, []int{5}},
		{Region("hold"), nil},
	}

	for _, test := range tests {
		rows := table.RegionRows(test.region)
		if len(rows) != len(test.expected) {
			t.Errorf("Region %s: expected %d rows, got %d", test.region, len(test.expected), len(rows))
			continue
		}
		for i, row := range test.expected {
			if rows[i] != row {
				t.Errorf("Region %s: expected row %d at position %d, got %d", test.region, row, i, rows[i])
			}
		}
	}
}

func TestNonMissingLabelRowsSkipsNaN(t *testing.T) {
	table := sampleTable(t)

	rows := table.NonMissingLabelRows()
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows with labels, got %d", len(rows))
	}
	for _, row := range rows {
		if math.IsNaN(table.Labels()[row]) {
			t.Errorf("Row %d reported non-missing but label is NaN", row)
		}
	}
}

func TestFeatureColumnCopies(t *testing.T) {
	table := sampleTable(t)

	col := table.FeatureColumn(1, []int{0, 2, 4})
	expected := []float64{0.9, 0.7, 0.5}
	for i, v := range expected {
		if col[i] != v {
			t.Errorf("Expected %v at position %d, got %v", v, i, col[i])
		}
	}

	// Mutating the copy must not touch the table
	col[0] = 99
	if table.Features().At(0, 1) != 0.9 {
		t.Error("FeatureColumn should return a copy, not a view")
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	a := sampleTable(t)
	b := sampleTable(t)

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Expected identical tables to share a fingerprint")
	}
}
