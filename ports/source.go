package ports

import (
	"context"

	"datacheck/domain/tabular"
)

// TableSourcePort loads a dataset into the row-aligned table the integrity
// checks run against
type TableSourcePort interface {
	Load(ctx context.Context, path string) (*tabular.Table, error)
}
