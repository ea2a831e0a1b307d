package tabular

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"datacheck/domain/core"
)

// Table is the object under audit: a read-only, row-aligned view of a
// tabular dataset. Index i refers to the same record in IDs, eras, regions,
// the feature matrix and the label vector; New enforces that invariant and
// nothing mutates the table afterwards. Missing labels are represented as
// NaN.
//
// Accessors return the backing slices and matrix for efficiency. Callers
// must treat them as read-only.
type Table struct {
	name    string
	ids     []string
	eras    []string
	regions []Region
	x       *mat.Dense
	y       []float64

	eraOrder []string
	eraRows  map[string][]int
}

// EraGroup pairs one era label with the indices of its rows
type EraGroup struct {
	Era  string
	Rows []int
}

// New builds a Table after validating row alignment across all columns
func New(name string, ids, eras []string, regions []Region, x *mat.Dense, y []float64) (*Table, error) {
	n := len(ids)
	if n == 0 {
		return nil, core.ErrEmptyTable
	}
	if len(eras) != n || len(regions) != n || len(y) != n {
		return nil, fmt.Errorf("%w: ids=%d eras=%d regions=%d labels=%d",
			core.ErrMisaligned, n, len(eras), len(regions), len(y))
	}
	if x == nil {
		return nil, fmt.Errorf("%w: feature matrix is nil", core.ErrMisaligned)
	}
	rows, _ := x.Dims()
	if rows != n {
		return nil, fmt.Errorf("%w: feature rows=%d ids=%d", core.ErrMisaligned, rows, n)
	}

	t := &Table{
		name:    name,
		ids:     ids,
		eras:    eras,
		regions: regions,
		x:       x,
		y:       y,
		eraRows: make(map[string][]int),
	}
	for i, era := range eras {
		if _, seen := t.eraRows[era]; !seen {
			t.eraOrder = append(t.eraOrder, era)
		}
		t.eraRows[era] = append(t.eraRows[era], i)
	}
	return t, nil
}

// Name returns the dataset name the table was loaded under
func (t *Table) Name() string {
	return t.name
}

// Rows returns the number of records
func (t *Table) Rows() int {
	return len(t.ids)
}

// FeatureCount returns the number of feature columns
func (t *Table) FeatureCount() int {
	_, cols := t.x.Dims()
	return cols
}

// IDs returns the row identifiers
func (t *Table) IDs() []string {
	return t.ids
}

// EraAt returns the era label of row i
func (t *Table) EraAt(i int) string {
	return t.eras[i]
}

// RegionAt returns the region of row i
func (t *Table) RegionAt(i int) Region {
	return t.regions[i]
}

// Features returns the feature matrix, rows aligned with IDs
func (t *Table) Features() *mat.Dense {
	return t.x
}

// Labels returns the label vector, NaN marking missing values
func (t *Table) Labels() []float64 {
	return t.y
}

// Eras returns the distinct era labels in first-appearance order
func (t *Table) Eras() []string {
	return t.eraOrder
}

// EraRows returns one group per distinct era, in first-appearance order,
// together covering every row exactly once
func (t *Table) EraRows() []EraGroup {
	groups := make([]EraGroup, len(t.eraOrder))
	for i, era := range t.eraOrder {
		groups[i] = EraGroup{Era: era, Rows: t.eraRows[era]}
	}
	return groups
}

// Regions returns the distinct region labels in first-appearance order
func (t *Table) Regions() []Region {
	var order []Region
	seen := make(map[Region]bool)
	for _, region := range t.regions {
		if !seen[region] {
			seen[region] = true
			order = append(order, region)
		}
	}
	return order
}

// RegionRows returns the indices of rows belonging to the region
func (t *Table) RegionRows(region Region) []int {
	var rows []int
	for i, r := range t.regions {
		if r == region {
			rows = append(rows, i)
		}
	}
	return rows
}

// NonMissingLabelRows returns the indices of rows whose label is present
func (t *Table) NonMissingLabelRows() []int {
	var rows []int
	for i, v := range t.y {
		if !math.IsNaN(v) {
			rows = append(rows, i)
		}
	}
	return rows
}

// FeatureColumn copies feature column j restricted to the given rows.
// Column numbering is zero-based here; human-facing messages add one.
func (t *Table) FeatureColumn(j int, rows []int) []float64 {
	out := make([]float64, len(rows))
	for k, i := range rows {
		out[k] = t.x.At(i, j)
	}
	return out
}

// FeatureRows copies the feature matrix restricted to the given rows.
// rows must not be empty.
func (t *Table) FeatureRows(rows []int) *mat.Dense {
	_, cols := t.x.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for k, i := range rows {
		out.SetRow(k, t.x.RawRowView(i))
	}
	return out
}

// LabelsAt copies the labels of the given rows
func (t *Table) LabelsAt(rows []int) []float64 {
	out := make([]float64, len(rows))
	for k, i := range rows {
		out[k] = t.y[i]
	}
	return out
}

// Fingerprint hashes the table's identity for traceable audit runs
func (t *Table) Fingerprint() core.DatasetHash {
	return core.ComputeDatasetHash(t.name, t.Rows(), t.FeatureCount(), t.ids)
}
