package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// matchTx implements MatchTx on top of a database transaction.
type matchTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (m *matchTx) SinglesMatches(teamMatchID int64) ([]SinglesMatch, error) {
	rows, err := m.tx.QueryContext(m.ctx, `
		SELECT id, team_match_id, home_player_id, away_player_id, result, match_number
		FROM singles_matches WHERE team_match_id = ?
		ORDER BY match_number ASC, id ASC
	`, teamMatchID)
	if err != nil {
		return nil, fmt.Errorf("query singles of team match %d: %w", teamMatchID, err)
	}
	defer rows.Close()

	var matches []SinglesMatch
	for rows.Next() {
		var s SinglesMatch
		if err := rows.Scan(&s.ID, &s.TeamMatchID, &s.HomePlayerID, &s.AwayPlayerID, &s.Result, &s.MatchNumber); err != nil {
			return nil, err
		}
		matches = append(matches, s)
	}
	return matches, rows.Err()
}

func (m *matchTx) DoublesMatches(teamMatchID int64) ([]DoublesMatch, error) {
	rows, err := m.tx.QueryContext(m.ctx, `
		SELECT id, team_match_id, home_player1_id, home_player2_id, away_player1_id, away_player2_id, result, match_number
		FROM doubles_matches WHERE team_match_id = ?
		ORDER BY match_number ASC, id ASC
	`, teamMatchID)
	if err != nil {
		return nil, fmt.Errorf("query doubles of team match %d: %w", teamMatchID, err)
	}
	defer rows.Close()

	var matches []DoublesMatch
	for rows.Next() {
		var d DoublesMatch
		if err := rows.Scan(&d.ID, &d.TeamMatchID, &d.HomePlayer1ID, &d.HomePlayer2ID, &d.AwayPlayer1ID, &d.AwayPlayer2ID, &d.Result, &d.MatchNumber); err != nil {
			return nil, err
		}
		matches = append(matches, d)
	}
	return matches, rows.Err()
}

func (m *matchTx) GetRating(playerID, competitionID int64) (SkillRating, bool, error) {
	rows, err := m.tx.QueryContext(m.ctx, `
		SELECT `+ratingColumns+` FROM skill_ratings
		WHERE player_id = ? AND competition_id = ?
		LIMIT 2
	`, playerID, competitionID)
	if err != nil {
		return SkillRating{}, false, fmt.Errorf("query rating of player %d: %w", playerID, err)
	}
	defer rows.Close()

	ratings, err := scanRatings(rows)
	if err != nil {
		return SkillRating{}, false, err
	}
	switch len(ratings) {
	case 0:
		return SkillRating{}, false, nil
	case 1:
		return ratings[0], true, nil
	default:
		return SkillRating{}, false, fmt.Errorf("player %d in competition %d: %w", playerID, competitionID, ErrDuplicateRating)
	}
}

func (m *matchTx) SaveRating(r *SkillRating) error {
	if r.ID != 0 {
		_, err := m.tx.ExecContext(m.ctx, `UPDATE skill_ratings SET mu = ?, sigma = ?, last_update = ? WHERE id = ?`,
			r.Mu, r.Sigma, formatTimestamp(r.LastUpdate), r.ID)
		if err != nil {
			return fmt.Errorf("update rating %d: %w", r.ID, err)
		}
		return nil
	}

	err := m.tx.QueryRowContext(m.ctx, `
		INSERT INTO skill_ratings (player_id, competition_id, mu, sigma, last_update)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id, competition_id) DO UPDATE SET
			mu = excluded.mu,
			sigma = excluded.sigma,
			last_update = excluded.last_update
		RETURNING id
	`, r.PlayerID, r.CompetitionID, r.Mu, r.Sigma, formatTimestamp(r.LastUpdate)).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert rating of player %d: %w", r.PlayerID, err)
	}
	return nil
}

func (m *matchTx) MarkRated(teamMatchID int64) (bool, error) {
	res, err := m.tx.ExecContext(m.ctx, `UPDATE team_matches SET used_for_rating = 1 WHERE id = ? AND used_for_rating = 0`, teamMatchID)
	if err != nil {
		return false, fmt.Errorf("mark team match %d rated: %w", teamMatchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark team match %d rated: %w", teamMatchID, err)
	}
	if n > 0 {
		return true, nil
	}

	var exists bool
	err = m.tx.QueryRowContext(m.ctx, `SELECT 1 FROM team_matches WHERE id = ?`, teamMatchID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("team match %d: %w", teamMatchID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("look up team match %d: %w", teamMatchID, err)
	}
	return false, nil
}

func (m *matchTx) Commit() error   { return m.tx.Commit() }
func (m *matchTx) Rollback() error { return m.tx.Rollback() }

// importTx implements ImportTx on top of a database transaction.
type importTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (i *importTx) UpsertCompetition(c Competition) (int64, error) {
	var id int64
	err := i.tx.QueryRowContext(i.ctx, `
		INSERT INTO competitions (name, association, season) VALUES (?, ?, ?)
		ON CONFLICT(name, association, season) DO UPDATE SET name = excluded.name
		RETURNING id
	`, c.Name, c.Association, c.Season).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert competition %q: %w", c.Name, err)
	}
	return id, nil
}

func (i *importTx) UpsertClub(name string) (int64, error) {
	var id int64
	err := i.tx.QueryRowContext(i.ctx, `
		INSERT INTO clubs (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert club %q: %w", name, err)
	}
	return id, nil
}

func (i *importTx) UpsertTeam(t Team) (int64, error) {
	var id int64
	err := i.tx.QueryRowContext(i.ctx, `
		INSERT INTO teams (club_id, rank, season, competition_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(club_id, rank, season) DO UPDATE SET
			competition_id = COALESCE(excluded.competition_id, teams.competition_id)
		RETURNING id
	`, t.ClubID, t.Rank, t.Season, nullInt(t.CompetitionID)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert team %d/%s: %w", t.ClubID, t.Rank, err)
	}
	return id, nil
}

func (i *importTx) UpsertPlayer(p Player) (int64, error) {
	var id int64
	err := i.tx.QueryRowContext(i.ctx, `SELECT id FROM players WHERE name = ? AND club_id IS ? LIMIT 1`, p.Name, nullID(p.ClubID)).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		humanID := p.HumanID
		if humanID == "" {
			humanID = uuid.NewString()
		}
		err = i.tx.QueryRowContext(i.ctx, `
			INSERT INTO players (human_id, name, club_id, team_id, association_id, default_competition_id)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`, humanID, p.Name, nullID(p.ClubID), nullInt(p.TeamID), nullString(p.AssociationID), nullInt(p.DefaultCompetitionID)).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert player %q: %w", p.Name, err)
		}
		return id, nil
	case err != nil:
		return 0, fmt.Errorf("look up player %q: %w", p.Name, err)
	}

	_, err = i.tx.ExecContext(i.ctx, `
		UPDATE players SET
			team_id = COALESCE(team_id, ?),
			association_id = COALESCE(association_id, ?),
			default_competition_id = COALESCE(default_competition_id, ?)
		WHERE id = ?
	`, nullInt(p.TeamID), nullString(p.AssociationID), nullInt(p.DefaultCompetitionID), id)
	if err != nil {
		return 0, fmt.Errorf("update player %q: %w", p.Name, err)
	}
	return id, nil
}

func (i *importTx) UpsertTeamMatch(m TeamMatch) (int64, bool, error) {
	var id int64
	err := i.tx.QueryRowContext(i.ctx, `
		SELECT id FROM team_matches
		WHERE date = ? AND competition_id = ? AND home_team_id = ? AND away_team_id = ?
	`, formatDate(m.Date), m.CompetitionID, m.HomeTeamID, m.AwayTeamID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = i.tx.QueryRowContext(i.ctx, `
			INSERT INTO team_matches (date, competition_id, home_team_id, away_team_id, result, legs)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`, formatDate(m.Date), m.CompetitionID, m.HomeTeamID, m.AwayTeamID, m.Result, m.Legs).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("insert team match: %w", err)
		}
		return id, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("look up team match: %w", err)
	}

	if _, err := i.tx.ExecContext(i.ctx, `UPDATE team_matches SET result = ?, legs = ? WHERE id = ?`, m.Result, m.Legs, id); err != nil {
		return 0, false, fmt.Errorf("update team match %d: %w", id, err)
	}
	return id, false, nil
}

func (i *importTx) AddSinglesMatch(m SinglesMatch) (bool, error) {
	var exists int
	err := i.tx.QueryRowContext(i.ctx, `
		SELECT COUNT(*) FROM singles_matches
		WHERE team_match_id = ? AND home_player_id = ? AND away_player_id = ? AND match_number = ?
	`, m.TeamMatchID, m.HomePlayerID, m.AwayPlayerID, m.MatchNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("look up singles match: %w", err)
	}
	if exists > 0 {
		return false, nil
	}
	_, err = i.tx.ExecContext(i.ctx, `
		INSERT INTO singles_matches (team_match_id, home_player_id, away_player_id, result, match_number)
		VALUES (?, ?, ?, ?, ?)
	`, m.TeamMatchID, m.HomePlayerID, m.AwayPlayerID, m.Result, m.MatchNumber)
	if err != nil {
		return false, fmt.Errorf("insert singles match: %w", err)
	}
	return true, nil
}

func (i *importTx) AddDoublesMatch(m DoublesMatch) (bool, error) {
	var exists int
	err := i.tx.QueryRowContext(i.ctx, `
		SELECT COUNT(*) FROM doubles_matches
		WHERE team_match_id = ? AND home_player1_id = ? AND home_player2_id = ?
		AND away_player1_id = ? AND away_player2_id = ? AND match_number = ?
	`, m.TeamMatchID, m.HomePlayer1ID, m.HomePlayer2ID, m.AwayPlayer1ID, m.AwayPlayer2ID, m.MatchNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("look up doubles match: %w", err)
	}
	if exists > 0 {
		return false, nil
	}
	_, err = i.tx.ExecContext(i.ctx, `
		INSERT INTO doubles_matches (team_match_id, home_player1_id, home_player2_id, away_player1_id, away_player2_id, result, match_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.TeamMatchID, m.HomePlayer1ID, m.HomePlayer2ID, m.AwayPlayer1ID, m.AwayPlayer2ID, m.Result, m.MatchNumber)
	if err != nil {
		return false, fmt.Errorf("insert doubles match: %w", err)
	}
	return true, nil
}

func (i *importTx) Commit() error   { return i.tx.Commit() }
func (i *importTx) Rollback() error { return i.tx.Rollback() }
