package integrity

import (
	"fmt"
	"math"

	"datacheck/domain/audit"
	"datacheck/domain/core"
	"datacheck/domain/tabular"
	"datacheck/internal/logit"
)

// checkPredictions fits a logistic model on the train region and audits its
// predictions: logloss and per-era consistency on train and validation, and
// the test and live predictions staying inside the train prediction range.
// A model that cannot be fit is an infrastructure failure, not a finding.
func (c *Checker) checkPredictions(rep *reporter, table *tabular.Table) error {
	t := c.thresholds

	trainRows := table.RegionRows(tabular.RegionTrain)
	if len(trainRows) == 0 {
		return fmt.Errorf("train region has no rows: %w", core.ErrEmptyFit)
	}
	ytrain := table.LabelsAt(trainRows)

	model, err := logit.Train(table.FeatureRows(trainRows), ytrain, c.fit)
	if err != nil {
		return fmt.Errorf("fit on train region: %w", err)
	}

	trainProba, err := model.PredictProba(table.FeatureRows(trainRows))
	if err != nil {
		return fmt.Errorf("predict on train region: %w", err)
	}
	rep.interval("train logloss", logit.LogLoss(ytrain, trainProba), t.LogLoss, audit.SeverityWarn)
	rep.interval("train consistency", eraConsistency(table, trainRows, ytrain, trainProba), t.Consistency, audit.SeverityWarn)

	validRows := table.RegionRows(tabular.RegionValidation)
	if len(validRows) > 0 {
		yvalid := table.LabelsAt(validRows)
		validProba, err := model.PredictProba(table.FeatureRows(validRows))
		if err != nil {
			return fmt.Errorf("predict on validation region: %w", err)
		}
		rep.interval("validation logloss", logit.LogLoss(yvalid, validProba), t.LogLoss, audit.SeverityWarn)
		rep.interval("validation consistency", eraConsistency(table, validRows, yvalid, validProba), t.Consistency, audit.SeverityWarn)
	}

	return c.checkPredictionBand(rep, table, model, trainProba)
}

// checkPredictionBand verifies that predictions on the unlabeled regions
// stay inside the train prediction range widened by the configured margin.
// Probabilities far outside what the model produced in training point at a
// feature distribution shift.
func (c *Checker) checkPredictionBand(rep *reporter, table *tabular.Table, model *logit.Model, trainProba []float64) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range trainProba {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	margin := c.thresholds.PredictionMargin * (hi - lo)
	band := Interval{Low: lo - margin, High: hi + margin}

	for _, target := range []struct {
		region  tabular.Region
		message string
	}{
		{tabular.RegionTest, "test yhat range"},
		{tabular.RegionLive, "live yhat range"},
	} {
		rows := table.RegionRows(target.region)
		if len(rows) == 0 {
			continue
		}
		proba, err := model.PredictProba(table.FeatureRows(rows))
		if err != nil {
			return fmt.Errorf("predict on %s region: %w", target.region, err)
		}
		rep.arrayInterval(target.message, proba, band, audit.SeverityWarn)
	}
	return nil
}

// eraConsistency is the fraction of distinct eras within the given rows
// whose logloss stays under ln 2, the loss of always predicting one half
func eraConsistency(table *tabular.Table, rows []int, y, proba []float64) float64 {
	positions := make(map[string][]int)
	var order []string
	for pos, i := range rows {
		era := table.EraAt(i)
		if _, ok := positions[era]; !ok {
			order = append(order, era)
		}
		positions[era] = append(positions[era], pos)
	}

	below := 0
	for _, era := range order {
		idx := positions[era]
		yi := make([]float64, len(idx))
		pi := make([]float64, len(idx))
		for k, pos := range idx {
			yi[k] = y[pos]
			pi[k] = proba[pos]
		}
		if logit.LogLoss(yi, pi) < math.Ln2 {
			below++
		}
	}
	return float64(below) / float64(len(order))
}
