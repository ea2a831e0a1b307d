package logging

import (
	"fmt"
	"io"
	"sync"

	"datacheck/domain/audit"
)

// SinkAdapter bridges the audit sink port onto the leveled logger, mapping
// each finding severity to the matching log level
type SinkAdapter struct {
	logger *Logger
}

// NewSinkAdapter wraps a logger as an audit sink
func NewSinkAdapter(logger *Logger) *SinkAdapter {
	return &SinkAdapter{logger: logger}
}

// Emit writes one audit line at the given severity. It panics on a severity
// outside the defined set; that is a programmer error, never a data signal.
func (s *SinkAdapter) Emit(severity audit.Severity, line string) {
	switch severity {
	case audit.SeverityInfo:
		s.logger.Info("%s", line)
	case audit.SeverityWarn:
		s.logger.Warn("%s", line)
	case audit.SeverityError:
		s.logger.Error("%s", line)
	case audit.SeverityCritical:
		s.logger.Critical("%s", line)
	default:
		panic(fmt.Sprintf("invalid severity value: %d", int(severity)))
	}
}

// WriterSink prints audit lines verbatim to a writer, one per line. The CLI
// uses it so check output keeps its plain two-space indented shape.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps a writer as an audit sink
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes one line
func (s *WriterSink) Emit(severity audit.Severity, line string) {
	_ = severity.String()
	fmt.Fprintln(s.w, line)
}

// CaptureEntry is one recorded emission
type CaptureEntry struct {
	Severity audit.Severity
	Line     string
}

// CaptureSink records emissions in memory so tests can assert on the exact
// audit line sequence
type CaptureSink struct {
	mu      sync.Mutex
	entries []CaptureEntry
}

// NewCaptureSink creates an empty capture sink
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Emit records one line
func (c *CaptureSink) Emit(severity audit.Severity, line string) {
	// Force the panic contract even though nothing is rendered here
	_ = severity.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, CaptureEntry{Severity: severity, Line: line})
}

// Entries returns a copy of everything recorded so far
func (c *CaptureSink) Entries() []CaptureEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CaptureEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lines returns just the recorded line text, in emission order
func (c *CaptureSink) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, len(c.entries))
	for i, e := range c.entries {
		lines[i] = e.Line
	}
	return lines
}

// Reset clears the recording
func (c *CaptureSink) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
