package league

import (
	"database/sql"
	"sync"
	"time"
)

// DateLayout is the storage format of team match dates.
const DateLayout = "2006-01-02"

// store handles all database operations of the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Competition is a league of one association in one season.
type Competition struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Association string `json:"association"`
	Season      string `json:"season"`
}

// Club fields one or more teams.
type Club struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Team is the rank-th team of a club in a season.
type Team struct {
	ID            int64  `json:"id"`
	ClubID        int64  `json:"club_id"`
	Rank          string `json:"rank"`
	Season        string `json:"season"`
	CompetitionID *int64 `json:"competition_id,omitempty"`
}

// Player is a rostered darts player. AssociationID and
// DefaultCompetitionID are nil when unknown.
type Player struct {
	ID                   int64   `json:"id"`
	HumanID              string  `json:"human_id"`
	Name                 string  `json:"name"`
	ClubID               int64   `json:"club_id"`
	TeamID               *int64  `json:"team_id,omitempty"`
	AssociationID        *string `json:"association_id,omitempty"`
	DefaultCompetitionID *int64  `json:"default_competition_id,omitempty"`
}

// TeamMatch is a fixture between two teams, made up of singles and doubles.
type TeamMatch struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	CompetitionID int64     `json:"competition_id"`
	HomeTeamID    int64     `json:"home_team_id"`
	AwayTeamID    int64     `json:"away_team_id"`
	Result        string    `json:"result"`
	Legs          string    `json:"legs"`
	UsedForRating bool      `json:"used_for_rating"`
}

// SinglesMatch is a 1v1 game within a team match. Result reads "H:A".
type SinglesMatch struct {
	ID           int64  `json:"id"`
	TeamMatchID  int64  `json:"team_match_id"`
	HomePlayerID int64  `json:"home_player_id"`
	AwayPlayerID int64  `json:"away_player_id"`
	Result       string `json:"result"`
	MatchNumber  int    `json:"match_number"`
}

// DoublesMatch is a 2v2 game within a team match.
type DoublesMatch struct {
	ID            int64  `json:"id"`
	TeamMatchID   int64  `json:"team_match_id"`
	HomePlayer1ID int64  `json:"home_player1_id"`
	HomePlayer2ID int64  `json:"home_player2_id"`
	AwayPlayer1ID int64  `json:"away_player1_id"`
	AwayPlayer2ID int64  `json:"away_player2_id"`
	Result        string `json:"result"`
	MatchNumber   int    `json:"match_number"`
}

// SkillRating is the current skill belief of a player in a competition.
type SkillRating struct {
	ID            int64     `json:"id"`
	PlayerID      int64     `json:"player_id"`
	CompetitionID int64     `json:"competition_id"`
	Mu            float64   `json:"mu"`
	Sigma         float64   `json:"sigma"`
	LastUpdate    time.Time `json:"last_update"`
}

// LeaderboardEntry is one row of a competition ranking.
type LeaderboardEntry struct {
	PlayerID   int64     `json:"player_id"`
	PlayerName string    `json:"player_name"`
	ClubName   string    `json:"club_name"`
	Mu         float64   `json:"mu"`
	Sigma      float64   `json:"sigma"`
	Exposure   float64   `json:"exposure"`
	LastUpdate time.Time `json:"last_update"`
}

// SinglesGame is a singles match together with the date and competition of
// its team match.
type SinglesGame struct {
	SinglesMatch
	Date          time.Time `json:"date"`
	CompetitionID int64     `json:"competition_id"`
}
