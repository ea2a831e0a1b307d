package ports

import (
	"context"

	"datacheck/domain/audit"
	"datacheck/domain/core"
)

// RunRepositoryPort persists completed audit runs and their findings
type RunRepositoryPort interface {
	// Save stores one finished report
	Save(ctx context.Context, report *audit.Report) error

	// GetByID retrieves a stored report with its findings
	GetByID(ctx context.Context, id core.RunID) (*audit.Report, error)

	// List returns recent runs, newest first, without their findings
	List(ctx context.Context, limit, offset int) ([]*audit.Report, error)
}
