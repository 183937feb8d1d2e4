package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Payload is one crawl of the association dashboard.
type Payload struct {
	Season       string            `json:"season"`
	CrawledAt    time.Time         `json:"crawled_at"`
	FromDate     time.Time         `json:"from_date"`
	Competitions []CompetitionData `json:"competitions"`
}

// CompetitionData holds everything crawled for one competition.
type CompetitionData struct {
	Association string              `json:"association"`
	Name        string              `json:"name"`
	ClubsTeams  map[string][]string `json:"clubs_teams"`
	Players     []PlayerEntry       `json:"players"`
	TeamMatches []TeamMatchEntry    `json:"team_matches"`
}

// PlayerEntry is a rostered player. Team is the rank letter within the club.
type PlayerEntry struct {
	AssociationID string `json:"association_id"`
	Name          string `json:"name"`
	Club          string `json:"club"`
	Team          string `json:"team"`
}

// TeamMatchEntry is a fixture as listed in the game plan. Team names carry
// the rank letter, e.g. "DC Bullseye A".
type TeamMatchEntry struct {
	Date     time.Time   `json:"date"`
	HomeTeam string      `json:"home_team"`
	AwayTeam string      `json:"away_team"`
	Result   string      `json:"result"`
	Legs     string      `json:"legs"`
	Matches  []GameEntry `json:"matches"`
}

// GameEntry is one row of a match report. Doubles list both players of a
// side separated by "/".
type GameEntry struct {
	HomePlayer  string `json:"home_player"`
	AwayPlayer  string `json:"away_player"`
	Result      string `json:"result"`
	MatchNumber int    `json:"match_number"`
}

// Decode reads a payload from JSON and validates it.
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate reports every structural problem of the payload at once.
func (p Payload) Validate() error {
	var errs []error
	if p.Season == "" {
		errs = append(errs, errors.New("season is required"))
	}
	for i, c := range p.Competitions {
		if c.Name == "" || c.Association == "" {
			errs = append(errs, fmt.Errorf("competition %d: name and association are required", i))
		}
		for j, m := range c.TeamMatches {
			if m.Date.IsZero() {
				errs = append(errs, fmt.Errorf("competition %q match %d: date is required", c.Name, j))
			}
			if m.HomeTeam == "" || m.AwayTeam == "" {
				errs = append(errs, fmt.Errorf("competition %q match %d: both teams are required", c.Name, j))
			}
		}
	}
	return errors.Join(errs...)
}
