package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	ratingPasses      int
	teamMatchesRated  int
	subMatchesRated   map[string]int
	subMatchesSkipped map[string]int
	ratingsBackfilled int
	matchDurations    []float64
	lastPassDuration  float64
	slackNotifSent    int
	slackNotifFailed  int
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		subMatchesRated:   make(map[string]int),
		subMatchesSkipped: make(map[string]int),
		matchDurations:    make([]float64, 0),
	}
}

func (m *Mock) IncRatingPasses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingPasses++
}

func (m *Mock) IncTeamMatchesRated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teamMatchesRated++
}

func (m *Mock) IncSubMatchesRated(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subMatchesRated[kind]++
}

func (m *Mock) IncSubMatchesSkipped(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subMatchesSkipped[kind]++
}

func (m *Mock) AddRatingsBackfilled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingsBackfilled += n
}

func (m *Mock) ObserveMatchDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchDurations = append(m.matchDurations, seconds)
}

func (m *Mock) SetLastPassDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPassDuration = seconds
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RatingPasses returns the number of times IncRatingPasses was called.
func (m *Mock) RatingPasses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingPasses
}

// TeamMatchesRated returns the number of times IncTeamMatchesRated was called.
func (m *Mock) TeamMatchesRated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamMatchesRated
}

// SubMatchesRated returns the rated count for a sub-match kind.
func (m *Mock) SubMatchesRated(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subMatchesRated[kind]
}

// SubMatchesSkipped returns the skipped count for a sub-match kind.
func (m *Mock) SubMatchesSkipped(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subMatchesSkipped[kind]
}

// RatingsBackfilled returns the sum passed to AddRatingsBackfilled.
func (m *Mock) RatingsBackfilled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingsBackfilled
}

// MatchDurations returns every observed team match duration.
func (m *Mock) MatchDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.matchDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
