package integrity

import (
	"fmt"

	"datacheck/domain/audit"
	"datacheck/domain/tabular"
)

// checkLabels audits the label column: binary values only, per-era mean and
// count inside the reference bands, and no directional bias across eras
func (c *Checker) checkLabels(rep *reporter, table *tabular.Table) error {
	t := c.thresholds

	labels := table.LabelsAt(table.NonMissingLabelRows())
	nonBinary := 0
	for _, v := range labels {
		if v != 0 && v != 1 {
			nonBinary++
		}
	}
	rep.equal("number of non 0, 1 labels", float64(nonBinary), 0, audit.SeverityWarn)

	// Era means include missing labels, so the placeholder live era shows
	// up as NaN and passes both the mean check and the bias count below.
	below := 0
	total := 0
	for _, group := range table.EraRows() {
		y := table.LabelsAt(group.Rows)
		m := mean(y)

		rep.interval(fmt.Sprintf("mean of labels in %-6s", group.Era), m, t.LabelMean, audit.SeverityWarn)

		limit := t.EraSize
		if group.Era == t.LivePlaceholderEra {
			limit = t.LiveEraSize
		}
		rep.interval(fmt.Sprintf("num  of labels in %-6s", group.Era), float64(len(y)), limit, audit.SeverityWarn)

		if m < 0.5 {
			below++
		}
		total++
	}

	bias := float64(below) / float64(total)
	rep.interval("fraction of eras with label mean less than half", bias, t.LabelBias, audit.SeverityWarn)
	return nil
}
