package integrity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"datacheck/domain/audit"
	"datacheck/domain/tabular"
	"datacheck/internal/logit"
	"datacheck/ports"
)

// Checker audits a table against a set of thresholds. Findings flow to the
// sink as they are discovered and accumulate in the returned report; only
// infrastructure failures such as a model fit that cannot produce
// predictions surface as errors.
type Checker struct {
	thresholds Thresholds
	sink       ports.AuditSinkPort
	fit        logit.Config
}

func New(thresholds Thresholds, sink ports.AuditSinkPort) *Checker {
	return &Checker{
		thresholds: thresholds,
		sink:       sink,
		fit:        logit.DefaultConfig(),
	}
}

type checkGroup struct {
	section audit.Section
	run     func(*reporter, *tabular.Table) error
}

// groups returns the check groups in canonical order
func (c *Checker) groups() []checkGroup {
	return []checkGroup{
		{audit.SectionIDs, c.checkIDs},
		{audit.SectionEras, c.checkEras},
		{audit.SectionRegions, c.checkRegions},
		{audit.SectionFeatures, c.checkFeatures},
		{audit.SectionLabels, c.checkLabels},
		{audit.SectionPredictions, c.checkPredictions},
	}
}

// Run executes every check group in order. The report is returned even when
// a group fails hard, carrying the findings gathered up to that point.
func (c *Checker) Run(ctx context.Context, table *tabular.Table) (*audit.Report, error) {
	report := audit.NewReport(table.Name())
	report.Fingerprint = table.Fingerprint()

	rep := &reporter{sink: c.sink, report: report}
	var runErr error
	for _, group := range c.groups() {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("audit interrupted before %s: %w", group.section, err)
			break
		}
		rep.marker(group.section)
		if err := group.run(rep, table); err != nil {
			runErr = fmt.Errorf("%s checks failed: %w", group.section, err)
			break
		}
	}

	report.Finish(runErr)
	return report, runErr
}

// RunConcurrent executes the check groups in parallel while preserving the
// sequential run's observable order: each group emits into its own buffer,
// and once every group is done the buffers flush to the sink and the
// findings merge into the report, both in canonical order.
func (c *Checker) RunConcurrent(ctx context.Context, table *tabular.Table) (*audit.Report, error) {
	report := audit.NewReport(table.Name())
	report.Fingerprint = table.Fingerprint()

	groups := c.groups()
	buffers := make([]*bufferedSink, len(groups))
	partials := make([]*audit.Report, len(groups))

	// A failing group must not cancel its siblings: the groups are
	// independent, and letting them finish keeps the flushed output
	// deterministic. Only the caller's context interrupts them.
	var eg errgroup.Group
	for i, group := range groups {
		i, group := i, group
		buffers[i] = &bufferedSink{}
		partials[i] = audit.NewReport(table.Name())

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("audit interrupted before %s: %w", group.section, err)
			}
			rep := &reporter{sink: buffers[i], report: partials[i]}
			rep.marker(group.section)
			if err := group.run(rep, table); err != nil {
				return fmt.Errorf("%s checks failed: %w", group.section, err)
			}
			return nil
		})
	}
	runErr := eg.Wait()

	// Flush even on failure so the sink shows how far the audit got.
	for i := range groups {
		buffers[i].flushTo(c.sink)
		for _, finding := range partials[i].Findings {
			report.Add(finding)
		}
	}

	report.Finish(runErr)
	return report, runErr
}

type bufferedLine struct {
	severity audit.Severity
	line     string
}

// bufferedSink queues emissions for ordered flushing. Each instance is
// owned by a single check goroutine until the errgroup completes, so no
// locking is needed.
type bufferedSink struct {
	lines []bufferedLine
}

func (b *bufferedSink) Emit(severity audit.Severity, line string) {
	b.lines = append(b.lines, bufferedLine{severity: severity, line: line})
}

func (b *bufferedSink) flushTo(sink ports.AuditSinkPort) {
	for _, entry := range b.lines {
		sink.Emit(entry.severity, entry.line)
	}
}
