package integrity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"datacheck/domain/audit"
	"datacheck/domain/tabular"
)

// checkFeatures audits the feature matrix: every value finite, pairwise
// redundancy inside the reference band, and each feature's distribution
// stable within every era
func (c *Checker) checkFeatures(rep *reporter, table *tabular.Table) error {
	x := table.Features()
	rows, cols := x.Dims()

	nonFinite := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				nonFinite++
			}
		}
	}
	rep.equal("nonfinite feature values", float64(nonFinite), 0, audit.SeverityWarn)

	c.checkFeatureCorrelation(rep, x, cols)

	for _, group := range table.EraRows() {
		for j := 0; j < cols; j++ {
			c.checkFeatureDistribution(rep, group, j, table.FeatureColumn(j, group.Rows))
		}
	}
	return nil
}

// checkFeatureCorrelation summarizes the strict upper triangle of the
// absolute Pearson correlation matrix over feature columns
func (c *Checker) checkFeatureCorrelation(rep *reporter, x *mat.Dense, cols int) {
	if cols < 2 {
		return
	}
	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, x, nil)

	var sum, maxAbs float64
	maxAbs = math.Inf(-1)
	pairs := 0
	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			v := math.Abs(corr.At(i, j))
			sum += v
			maxAbs = math.Max(maxAbs, v)
			pairs++
		}
	}
	rep.interval("mean abs corr of features", sum/float64(pairs), c.thresholds.MeanAbsCorr, audit.SeverityWarn)
	rep.interval("max  abs corr of features", maxAbs, c.thresholds.MaxAbsCorr, audit.SeverityWarn)
}

// checkFeatureDistribution audits one feature within one era. Feature
// numbering is one-based in messages and era names pad to a fixed width so
// the lines column up.
func (c *Checker) checkFeatureDistribution(rep *reporter, group tabular.EraGroup, j int, x []float64) {
	t := c.thresholds
	num := j + 1
	era := group.Era

	rep.arrayInterval(fmt.Sprintf("range of feature %2d in %-6s", num, era), x, t.FeatureRange, audit.SeverityWarn)

	m := mean(x)
	sd := stdPop(x)
	rep.interval(fmt.Sprintf("mean  of feature %2d in %-6s", num, era), m, t.FeatureMean, audit.SeverityWarn)
	rep.interval(fmt.Sprintf("std   of feature %2d in %-6s", num, era), sd, t.FeatureStd, audit.SeverityWarn)
	rep.interval(fmt.Sprintf("skewn of feature %2d in %-6s", num, era), skewness(x, m, sd), t.FeatureSkewness, audit.SeverityWarn)
	rep.interval(fmt.Sprintf("kurto of feature %2d in %-6s", num, era), kurtosis(x, m, sd), t.FeatureKurtosis, audit.SeverityWarn)
}
