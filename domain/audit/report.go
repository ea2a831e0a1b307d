package audit

import (
	"fmt"
	"strings"
	"time"

	"datacheck/domain/core"
)

// Report aggregates everything a single audit run produced. The emitted log
// lines remain the primary contract; the report is the structured mirror of
// them, suitable for persistence and rendering.
type Report struct {
	RunID       core.RunID       `json:"run_id"`
	Dataset     string           `json:"dataset"`
	Fingerprint core.DatasetHash `json:"fingerprint"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Findings    []Finding        `json:"findings"`
	FailedWith  string           `json:"failed_with,omitempty"`
}

// NewReport starts a report for the named dataset
func NewReport(dataset string) *Report {
	return &Report{
		RunID:     core.NewRunID(),
		Dataset:   dataset,
		StartedAt: time.Now().UTC(),
	}
}

// Add appends one finding
func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// Finish stamps the completion time. A non-nil err records the hard failure
// that aborted the run.
func (r *Report) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.FailedWith = err.Error()
	}
}

// Clean reports whether the run completed with zero findings
func (r *Report) Clean() bool {
	return len(r.Findings) == 0 && r.FailedWith == ""
}

// Duration returns the wall time of the run
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CountBySection tallies findings per check group
func (r *Report) CountBySection() map[Section]int {
	counts := make(map[Section]int, len(Sections()))
	for _, f := range r.Findings {
		counts[f.Section]++
	}
	return counts
}

// WorstSeverity returns the highest severity among findings, SeverityInfo
// when the report is clean
func (r *Report) WorstSeverity() Severity {
	worst := SeverityInfo
	for _, f := range r.Findings {
		if f.Severity > worst {
			worst = f.Severity
		}
	}
	return worst
}

// Markdown renders the report as a Markdown document: one section per check
// group in canonical order, one line per finding
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Dataset Integrity Report\n\n")
	fmt.Fprintf(&b, "- Dataset: `%s`\n", r.Dataset)
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	if !core.Hash(r.Fingerprint).IsEmpty() {
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", r.Fingerprint)
	}
	if !r.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	}
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- Duration: %s\n", r.Duration().Round(time.Millisecond))
	}
	if r.Clean() {
		b.WriteString("- Result: clean\n")
	} else if r.FailedWith != "" {
		fmt.Fprintf(&b, "- Result: **aborted** (%s)\n", r.FailedWith)
	} else {
		fmt.Fprintf(&b, "- Result: %d findings\n", len(r.Findings))
	}

	counts := r.CountBySection()
	for _, section := range Sections() {
		fmt.Fprintf(&b, "\n## %s\n\n", section)
		if counts[section] == 0 {
			b.WriteString("clean\n")
			continue
		}
		for _, f := range r.Findings {
			if f.Section != section {
				continue
			}
			fmt.Fprintf(&b, "- **%s** %s\n", f.Severity, f.Message)
		}
	}

	return b.String()
}
