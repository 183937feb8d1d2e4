package league

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type scanner interface{ Scan(...any) error }

func scanTeamMatch(row scanner) (TeamMatch, error) {
	var m TeamMatch
	var date string
	if err := row.Scan(&m.ID, &date, &m.CompetitionID, &m.HomeTeamID, &m.AwayTeamID, &m.Result, &m.Legs, &m.UsedForRating); err != nil {
		return TeamMatch{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return TeamMatch{}, fmt.Errorf("team match %d: %w", m.ID, err)
	}
	m.Date = d
	return m, nil
}

func scanPlayer(row scanner) (Player, error) {
	var p Player
	var clubID, teamID, defaultCompetitionID sql.NullInt64
	var associationID sql.NullString
	if err := row.Scan(&p.ID, &p.HumanID, &p.Name, &clubID, &teamID, &associationID, &defaultCompetitionID); err != nil {
		return Player{}, err
	}
	p.ClubID = clubID.Int64
	if teamID.Valid {
		p.TeamID = &teamID.Int64
	}
	if associationID.Valid {
		p.AssociationID = &associationID.String
	}
	if defaultCompetitionID.Valid {
		p.DefaultCompetitionID = &defaultCompetitionID.Int64
	}
	return p, nil
}

func scanRating(row scanner) (SkillRating, error) {
	var r SkillRating
	var lastUpdate string
	if err := row.Scan(&r.ID, &r.PlayerID, &r.CompetitionID, &r.Mu, &r.Sigma, &lastUpdate); err != nil {
		return SkillRating{}, err
	}
	r.LastUpdate = parseTimestamp(lastUpdate)
	return r, nil
}

func scanRatings(rows *sql.Rows) ([]SkillRating, error) {
	var ratings []SkillRating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	// Dates written by other tools may carry a time part.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if d, derr := parseDate(s); derr == nil {
			return d
		}
		log.Warn("Unparsable rating timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
