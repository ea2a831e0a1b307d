package integrity

import (
	"fmt"
	"math"

	"datacheck/domain/audit"
	"datacheck/ports"
)

// tab indents check lines under their section marker
const tab = "  "

// reporter pairs a sink with the report under construction. Section markers
// go to the sink only; every failed check becomes both an indented sink line
// and a report finding.
type reporter struct {
	sink    ports.AuditSinkPort
	report  *audit.Report
	section audit.Section
}

func (r *reporter) marker(section audit.Section) {
	r.section = section
	r.sink.Emit(audit.SeverityInfo, string(section))
}

func (r *reporter) fail(severity audit.Severity, body string) {
	r.sink.Emit(severity, tab+body)
	r.report.Add(audit.Finding{Section: r.section, Severity: severity, Message: body})
}

// note records a group-level line without the check indent
func (r *reporter) note(severity audit.Severity, body string) {
	r.sink.Emit(severity, body)
	r.report.Add(audit.Finding{Section: r.section, Severity: severity, Message: body})
}

// equal records a finding when value differs from target
func (r *reporter) equal(message string, value, target float64, severity audit.Severity) {
	if value != target {
		r.fail(severity, fmt.Sprintf("%s %7.4f != %v", message, value, target))
	}
}

// interval records a finding when value falls outside the bound. NaN never
// fails: a statistic that could not be computed is not evidence against the
// dataset.
func (r *reporter) interval(message string, value float64, bound Interval, severity audit.Severity) {
	if !bound.Contains(value) {
		r.fail(severity, fmt.Sprintf("%s %7.4f not in %s", message, value, bound))
	}
}

// arrayInterval records a finding when any element falls outside the bound,
// reporting the observed extrema. Empty input passes, and NaN elements
// poison the extrema into NaN, which also passes.
func (r *reporter) arrayInterval(message string, values []float64, bound Interval, severity audit.Severity) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !bound.Contains(lo) || !bound.Contains(hi) {
		r.fail(severity, fmt.Sprintf("%s [%7.4f, %7.4f] not in %s", message, lo, hi, bound))
	}
}
