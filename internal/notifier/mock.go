package notifier

import (
	"sync"

	"github.com/mauv0809/ndv-elo/internal/league"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendRatingSummaryFunc func(report RatingReport, dryRun bool) error
	SendLeaderboardFunc   func(competition league.Competition, entries []league.LeaderboardEntry, dryRun bool) error

	// Call records
	SendRatingSummaryCalls []struct {
		Report RatingReport
		DryRun bool
	}
	SendLeaderboardCalls []struct {
		Competition league.Competition
		Entries     []league.LeaderboardEntry
		DryRun      bool
	}
	LastLeaderboardResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingSummaryCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendRatingSummary(report RatingReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingSummaryCalls = append(m.SendRatingSummaryCalls, struct {
		Report RatingReport
		DryRun bool
	}{report, dryRun})
	if m.SendRatingSummaryFunc != nil {
		return m.SendRatingSummaryFunc(report, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(competition league.Competition, entries []league.LeaderboardEntry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		Competition league.Competition
		Entries     []league.LeaderboardEntry
		DryRun      bool
	}{competition, entries, dryRun})
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(competition, entries, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(competition league.Competition, entries []league.LeaderboardEntry) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	response := map[string]any{"competition": competition, "entries": entries}
	m.LastLeaderboardResponse = response
	return response, nil
}
