package ports

import (
	"context"

	"radonlab/domain/dataset"
)

// TableLoaderPort loads and validates a measurement table from an
// external source. Malformed input fails here, before any model is
// built.
type TableLoaderPort interface {
	Load(ctx context.Context, path string) (*dataset.Table, error)
}
