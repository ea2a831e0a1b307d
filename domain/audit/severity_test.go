package audit

import (
	"errors"
	"testing"

	"datacheck/domain/core"
)

// TestParseSeverityRoundTrip tests that every defined level parses back to itself
func TestParseSeverityRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SeverityInfo, SeverityWarn, SeverityError, SeverityCritical} {
		parsed, err := ParseSeverity(sev.String())
		if err != nil {
			t.Fatalf("Unexpected error parsing %q: %v", sev.String(), err)
		}
		if parsed != sev {
			t.Errorf("Expected %v to round-trip, got %v", sev, parsed)
		}
	}
}

// TestParseSeverityAliases tests accepted spellings
func TestParseSeverityAliases(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
	}{
		{"info", SeverityInfo},
		{"WARN", SeverityWarn},
		{"warning", SeverityWarn},
		{" error ", SeverityError},
		{"Critical", SeverityCritical},
	}

	for _, test := range tests {
		result, err := ParseSeverity(test.input)
		if err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %v for input '%s', got %v", test.expected, test.input, result)
		}
	}
}

// TestParseSeverityUnknown tests that unrecognized names fail at construction
func TestParseSeverityUnknown(t *testing.T) {
	for _, input := range []string{"", "fatal", "debug", "WARNINGS"} {
		_, err := ParseSeverity(input)
		if err == nil {
			t.Errorf("Expected error for input '%s', but got none", input)
		}
		if !errors.Is(err, core.ErrBadSeverity) {
			t.Errorf("Expected ErrBadSeverity for input '%s', got %v", input, err)
		}
	}
}

// TestSeverityStringPanicsOnForgedValue tests the closed-enum contract
func TestSeverityStringPanicsOnForgedValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected String() to panic for a forged severity value")
		}
	}()
	_ = Severity(42).String()
}

// TestSeverityOrdering tests that levels compare in escalation order
func TestSeverityOrdering(t *testing.T) {
	if !(SeverityInfo < SeverityWarn && SeverityWarn < SeverityError && SeverityError < SeverityCritical) {
		t.Error("Expected severities to order info < warn < error < critical")
	}
}
