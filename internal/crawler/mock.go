package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MockFetcher serves pages from memory. It is safe for concurrent use.
type MockFetcher struct {
	mu sync.Mutex

	Pages map[string]string

	// Call records
	FetchCalls []string
}

// NewMockFetcher creates a new mock instance.
func NewMockFetcher(pages map[string]string) *MockFetcher {
	return &MockFetcher{Pages: pages}
}

func (m *MockFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls = append(m.FetchCalls, location)
	page, ok := m.Pages[location]
	if !ok {
		return nil, fmt.Errorf("no page for %s", location)
	}
	return io.NopCloser(strings.NewReader(page)), nil
}
