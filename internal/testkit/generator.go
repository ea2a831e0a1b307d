package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"datacheck/domain/tabular"
	"datacheck/internal/integrity"
)

// GeneratorConfig configures the synthetic tournament generator
type GeneratorConfig struct {
	TrainEras      int   `json:"train_eras"`
	ValidationEras int   `json:"validation_eras"`
	RowsPerEra     int   `json:"rows_per_era"`
	LiveRows       int   `json:"live_rows"`
	FeatureCount   int   `json:"feature_count"`
	Seed           int64 `json:"seed"`
}

// DefaultGeneratorConfig returns a dataset shape small enough for tests and
// demos while keeping the statistical structure of the real tournament data
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		TrainEras:      12,
		ValidationEras: 4,
		RowsPerEra:     120,
		LiveRows:       300,
		FeatureCount:   8,
		Seed:           42,
	}
}

// Thresholds returns acceptance bounds matched to the generated shape. The
// distribution bounds are widened relative to the production defaults
// because small eras carry more sampling noise.
func (c GeneratorConfig) Thresholds() integrity.Thresholds {
	th := integrity.DefaultThresholds()
	th.ErasPerRegion = map[tabular.Region]int{
		tabular.RegionTrain:      c.TrainEras,
		tabular.RegionValidation: c.ValidationEras,
		tabular.RegionTest:       1,
		tabular.RegionLive:       1,
	}
	th.MeanAbsCorr = integrity.Interval{Low: 0.1, High: 0.25}
	th.MaxAbsCorr = integrity.Interval{Low: 0.55, High: 0.75}
	th.FeatureStd = integrity.Interval{Low: 0.08, High: 0.16}
	th.FeatureSkewness = integrity.Interval{Low: -1, High: 1}
	th.FeatureKurtosis = integrity.Interval{Low: 1, High: 6}
	th.LabelMean = integrity.Interval{Low: 0.49, High: 0.51}
	th.EraSize = integrity.Interval{Low: float64(c.RowsPerEra), High: float64(c.RowsPerEra)}
	th.LiveEraSize = integrity.Interval{Low: float64(c.LiveRows), High: float64(c.LiveRows)}
	th.LogLoss = integrity.Interval{Low: 0.5, High: 0.69}
	th.Consistency = integrity.Interval{Low: 0.25, High: 1}
	return th
}

// Generator builds deterministic synthetic tournament tables. Features are
// equicorrelated Gaussians with one engineered high-correlation pair, the
// first feature carries a weak label signal, and labels are balanced within
// each era with an alternating one-row tilt so roughly half the eras sit
// just under a 0.5 mean.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator seeded from the config
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

const (
	featureScale      = 0.115 // target per-era standard deviation in x units
	commonFactor      = 0.15  // pairwise correlation shared by all features
	pairedCorr        = 0.65  // engineered correlation between features 1 and 2
	labelSignal       = 0.5   // label shift of the first feature, in z units
	outOfSampleShrink = 0.9   // deviation shrink for test and live rows
)

// Table generates the full synthetic dataset: contiguous train eras, then
// validation eras, one test era, and the live placeholder era
func (g *Generator) Table() (*tabular.Table, error) {
	c := g.config
	labeledEras := c.TrainEras + c.ValidationEras
	totalRows := (labeledEras+1)*c.RowsPerEra + c.LiveRows

	ids := make([]string, 0, totalRows)
	eras := make([]string, 0, totalRows)
	regions := make([]tabular.Region, 0, totalRows)
	y := make([]float64, 0, totalRows)
	x := mat.NewDense(totalRows, c.FeatureCount, nil)

	row := 0
	for ordinal := 1; ordinal <= labeledEras; ordinal++ {
		region := tabular.RegionTrain
		if ordinal > c.TrainEras {
			region = tabular.RegionValidation
		}
		era := fmt.Sprintf("era%d", ordinal)
		labels := g.eraLabels(ordinal)
		for _, label := range labels {
			ids = append(ids, g.rowID(row))
			eras = append(eras, era)
			regions = append(regions, region)
			y = append(y, label)
			x.SetRow(row, g.featureRow(label, 1))
			row++
		}
	}

	testEra := fmt.Sprintf("era%d", labeledEras+1)
	for i := 0; i < c.RowsPerEra; i++ {
		ids = append(ids, g.rowID(row))
		eras = append(eras, testEra)
		regions = append(regions, tabular.RegionTest)
		y = append(y, math.NaN())
		x.SetRow(row, g.featureRow(math.NaN(), outOfSampleShrink))
		row++
	}

	for i := 0; i < c.LiveRows; i++ {
		ids = append(ids, g.rowID(row))
		eras = append(eras, "eraX")
		regions = append(regions, tabular.RegionLive)
		y = append(y, math.NaN())
		x.SetRow(row, g.featureRow(math.NaN(), outOfSampleShrink))
		row++
	}

	return tabular.New("synthetic tournament", ids, eras, regions, x, y)
}

func (g *Generator) rowID(row int) string {
	return fmt.Sprintf("id_%06d", row+1)
}

// eraLabels returns a shuffled balanced label set with a one-row tilt whose
// direction alternates by era ordinal
func (g *Generator) eraLabels(ordinal int) []float64 {
	n := g.config.RowsPerEra
	zeros := n / 2
	if ordinal%2 == 1 {
		zeros++ // era mean dips just below one half
	} else {
		zeros--
	}

	labels := make([]float64, n)
	for i := zeros; i < n; i++ {
		labels[i] = 1
	}
	g.rng.Shuffle(n, func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	return labels
}

// featureRow draws one correlated feature vector. A NaN label means an
// unresolved row and contributes no signal; shrink pulls out-of-sample rows
// slightly toward the center so their predictions stay inside the train
// prediction range.
func (g *Generator) featureRow(label float64, shrink float64) []float64 {
	c := g.config
	common := g.rng.NormFloat64()
	loadCommon := math.Sqrt(commonFactor)
	loadOwn := math.Sqrt(1 - commonFactor)
	loadPair := math.Sqrt(1 - pairedCorr*pairedCorr)

	z := make([]float64, c.FeatureCount)
	for j := range z {
		z[j] = loadCommon*common + loadOwn*g.rng.NormFloat64()
	}
	if c.FeatureCount >= 2 {
		z[1] = pairedCorr*z[0] + loadPair*g.rng.NormFloat64()
	}
	if !math.IsNaN(label) {
		z[0] += labelSignal * (label - 0.5)
	}

	row := make([]float64, c.FeatureCount)
	for j := range row {
		row[j] = clamp01(0.5 + featureScale*shrink*z[j])
	}
	return row
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
