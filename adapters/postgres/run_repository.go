package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"datacheck/domain/audit"
	"datacheck/domain/core"
	"datacheck/ports"
)

// Connect opens a postgres connection pool and verifies it
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the audit run tables when they do not exist yet
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_runs (
			id UUID PRIMARY KEY,
			dataset VARCHAR(255) NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
			failed_with TEXT,
			findings JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_runs table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_audit_runs_started_at
		ON audit_runs (started_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_runs index: %w", err)
	}
	return nil
}

// runRepository implements the run repository port on postgres
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new audit run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepositoryPort {
	return &runRepository{db: db}
}

// Save stores one finished report together with its findings
func (r *runRepository) Save(ctx context.Context, report *audit.Report) error {
	if report == nil {
		return errors.New("cannot save a nil report")
	}
	findingsJSON, err := json.Marshal(report.Findings)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}

	query := `INSERT INTO audit_runs (
		id, dataset, fingerprint, started_at, finished_at, failed_with, findings
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`

	_, err = r.db.ExecContext(ctx, query,
		string(report.RunID), report.Dataset, string(report.Fingerprint),
		report.StartedAt, report.FinishedAt, report.FailedWith, findingsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit run: %w", err)
	}
	return nil
}

// GetByID retrieves a stored report with its findings
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*audit.Report, error) {
	query := `SELECT
		id, dataset, fingerprint, started_at, finished_at,
		COALESCE(failed_with, '') AS failed_with, findings
	FROM audit_runs WHERE id = $1`

	var report audit.Report
	var findingsJSON []byte

	err := r.db.QueryRowContext(ctx, query, string(id)).Scan(
		&report.RunID, &report.Dataset, &report.Fingerprint,
		&report.StartedAt, &report.FinishedAt, &report.FailedWith, &findingsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get audit run: %w", err)
	}

	if len(findingsJSON) > 0 {
		if err := json.Unmarshal(findingsJSON, &report.Findings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal findings: %w", err)
		}
	}
	return &report, nil
}

// List returns recent runs, newest first. Findings stay unloaded; callers
// fetch a single run when they need the details.
func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*audit.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT
		id, dataset, fingerprint, started_at, finished_at,
		COALESCE(failed_with, '') AS failed_with
	FROM audit_runs
	ORDER BY started_at DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit runs: %w", err)
	}
	defer rows.Close()

	var reports []*audit.Report
	for rows.Next() {
		var report audit.Report
		if err := rows.Scan(
			&report.RunID, &report.Dataset, &report.Fingerprint,
			&report.StartedAt, &report.FinishedAt, &report.FailedWith,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit runs: %w", err)
	}
	return reports, nil
}
