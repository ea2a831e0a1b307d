package audit

import (
	"fmt"
	"strings"

	"datacheck/domain/core"
)

// Severity classifies how seriously a reader should take an audit line.
// The set is closed: construct values through the constants or ParseSeverity.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
	SeverityCritical
)

var severityNames = [...]string{"info", "warn", "error", "critical"}

// String returns the level name. It panics for a value outside the defined
// constants: a forged Severity is a programmer error, not a data signal.
func (s Severity) String() string {
	if s < SeverityInfo || s > SeverityCritical {
		panic(fmt.Sprintf("invalid severity value: %d", int(s)))
	}
	return severityNames[s]
}

// ParseSeverity converts a level name into a Severity
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	}
	return SeverityInfo, fmt.Errorf("%w: %q", core.ErrBadSeverity, name)
}

// MarshalText implements encoding.TextMarshaler so findings serialize with
// level names rather than bare integers
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
