package league

import (
	"context"
	"sync"
	"time"
)

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UnratedTeamMatchesFunc          func(season string) ([]TeamMatch, error)
	BeginMatchFunc                  func() (MatchTx, error)
	PlayersMissingDefaultRatingFunc func() ([]Player, error)
	PlayersWithoutContextFunc       func() ([]Player, error)
	CreateRatingIfAbsentFunc        func(rating SkillRating) (bool, error)
	LatestMatchDateFunc             func(competitionID int64) (time.Time, bool, error)
	ResetRatingsFunc                func(rerate bool) (int64, error)
	CompetitionsFunc                func() ([]Competition, error)
	GetCompetitionFunc              func(id int64) (Competition, error)
	GetPlayerFunc                   func(id int64) (Player, error)
	LeaderboardFunc                 func(competitionID int64) ([]LeaderboardEntry, error)
	PlayerRatingsFunc               func(playerID int64) ([]SkillRating, error)
	RatingsFunc                     func(competitionID int64, playerIDs []int64) (map[int64]SkillRating, error)
	HeadToHeadFunc                  func(playerA, playerB int64) ([]SinglesGame, error)
	BeginImportFunc                 func() (ImportTx, error)

	// Call records
	UnratedTeamMatchesCalls   []string
	BeginMatchCalls           int
	CreateRatingIfAbsentCalls []SkillRating
	ResetRatingsCalls         []bool
	LeaderboardCalls          []int64
	RatingsCalls              []struct {
		CompetitionID int64
		PlayerIDs     []int64
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UnratedTeamMatches(ctx context.Context, season string) ([]TeamMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnratedTeamMatchesCalls = append(m.UnratedTeamMatchesCalls, season)
	if m.UnratedTeamMatchesFunc != nil {
		return m.UnratedTeamMatchesFunc(season)
	}
	return nil, nil
}

func (m *MockStore) BeginMatch(ctx context.Context) (MatchTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BeginMatchCalls++
	if m.BeginMatchFunc != nil {
		return m.BeginMatchFunc()
	}
	return NewMockMatchTx(), nil
}

func (m *MockStore) PlayersMissingDefaultRating(ctx context.Context) ([]Player, error) {
	if m.PlayersMissingDefaultRatingFunc != nil {
		return m.PlayersMissingDefaultRatingFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayersWithoutContext(ctx context.Context) ([]Player, error) {
	if m.PlayersWithoutContextFunc != nil {
		return m.PlayersWithoutContextFunc()
	}
	return nil, nil
}

func (m *MockStore) CreateRatingIfAbsent(ctx context.Context, rating SkillRating) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateRatingIfAbsentCalls = append(m.CreateRatingIfAbsentCalls, rating)
	if m.CreateRatingIfAbsentFunc != nil {
		return m.CreateRatingIfAbsentFunc(rating)
	}
	return true, nil
}

func (m *MockStore) LatestMatchDate(ctx context.Context, competitionID int64) (time.Time, bool, error) {
	if m.LatestMatchDateFunc != nil {
		return m.LatestMatchDateFunc(competitionID)
	}
	return time.Time{}, false, nil
}

func (m *MockStore) ResetRatings(ctx context.Context, rerate bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetRatingsCalls = append(m.ResetRatingsCalls, rerate)
	if m.ResetRatingsFunc != nil {
		return m.ResetRatingsFunc(rerate)
	}
	return 0, nil
}

func (m *MockStore) Competitions(ctx context.Context) ([]Competition, error) {
	if m.CompetitionsFunc != nil {
		return m.CompetitionsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetCompetition(ctx context.Context, id int64) (Competition, error) {
	if m.GetCompetitionFunc != nil {
		return m.GetCompetitionFunc(id)
	}
	return Competition{}, ErrNotFound
}

func (m *MockStore) GetPlayer(ctx context.Context, id int64) (Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return Player{}, ErrNotFound
}

func (m *MockStore) Leaderboard(ctx context.Context, competitionID int64) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaderboardCalls = append(m.LeaderboardCalls, competitionID)
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(competitionID)
	}
	return nil, nil
}

func (m *MockStore) PlayerRatings(ctx context.Context, playerID int64) ([]SkillRating, error) {
	if m.PlayerRatingsFunc != nil {
		return m.PlayerRatingsFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) Ratings(ctx context.Context, competitionID int64, playerIDs []int64) (map[int64]SkillRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingsCalls = append(m.RatingsCalls, struct {
		CompetitionID int64
		PlayerIDs     []int64
	}{competitionID, playerIDs})
	if m.RatingsFunc != nil {
		return m.RatingsFunc(competitionID, playerIDs)
	}
	return map[int64]SkillRating{}, nil
}

func (m *MockStore) HeadToHead(ctx context.Context, playerA, playerB int64) ([]SinglesGame, error) {
	if m.HeadToHeadFunc != nil {
		return m.HeadToHeadFunc(playerA, playerB)
	}
	return nil, nil
}

func (m *MockStore) BeginImport(ctx context.Context) (ImportTx, error) {
	if m.BeginImportFunc != nil {
		return m.BeginImportFunc()
	}
	return nil, ErrNotFound
}

// MockMatchTx is a mock implementation of MatchTx that records writes.
type MockMatchTx struct {
	SinglesMatchesFunc func(teamMatchID int64) ([]SinglesMatch, error)
	DoublesMatchesFunc func(teamMatchID int64) ([]DoublesMatch, error)
	GetRatingFunc      func(playerID, competitionID int64) (SkillRating, bool, error)
	SaveRatingFunc     func(rating *SkillRating) error
	MarkRatedFunc      func(teamMatchID int64) (bool, error)
	CommitFunc         func() error

	SaveRatingCalls []SkillRating
	MarkRatedCalls  []int64
	Committed       bool
	RolledBack      bool
}

// NewMockMatchTx creates a new mock transaction.
func NewMockMatchTx() *MockMatchTx {
	return &MockMatchTx{}
}

func (t *MockMatchTx) SinglesMatches(teamMatchID int64) ([]SinglesMatch, error) {
	if t.SinglesMatchesFunc != nil {
		return t.SinglesMatchesFunc(teamMatchID)
	}
	return nil, nil
}

func (t *MockMatchTx) DoublesMatches(teamMatchID int64) ([]DoublesMatch, error) {
	if t.DoublesMatchesFunc != nil {
		return t.DoublesMatchesFunc(teamMatchID)
	}
	return nil, nil
}

func (t *MockMatchTx) GetRating(playerID, competitionID int64) (SkillRating, bool, error) {
	if t.GetRatingFunc != nil {
		return t.GetRatingFunc(playerID, competitionID)
	}
	return SkillRating{}, false, nil
}

func (t *MockMatchTx) SaveRating(rating *SkillRating) error {
	t.SaveRatingCalls = append(t.SaveRatingCalls, *rating)
	if t.SaveRatingFunc != nil {
		return t.SaveRatingFunc(rating)
	}
	return nil
}

func (t *MockMatchTx) MarkRated(teamMatchID int64) (bool, error) {
	t.MarkRatedCalls = append(t.MarkRatedCalls, teamMatchID)
	if t.MarkRatedFunc != nil {
		return t.MarkRatedFunc(teamMatchID)
	}
	return true, nil
}

func (t *MockMatchTx) Commit() error {
	if t.CommitFunc != nil {
		if err := t.CommitFunc(); err != nil {
			return err
		}
	}
	t.Committed = true
	return nil
}

func (t *MockMatchTx) Rollback() error {
	t.RolledBack = true
	return nil
}
