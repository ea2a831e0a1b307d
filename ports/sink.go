package ports

import "datacheck/domain/audit"

// AuditSinkPort receives every line the integrity checks produce: one info
// marker per check group plus one line per out-of-tolerance finding. Sinks
// are injected rather than global so callers decide where audit output goes.
//
// Emit must not block indefinitely; the checks call it synchronously.
type AuditSinkPort interface {
	Emit(severity audit.Severity, line string)
}
