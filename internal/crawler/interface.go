package crawler

import (
	"context"
	"io"
)

// Fetcher loads a dashboard page. This allows for mock implementations to
// be used in tests.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}
