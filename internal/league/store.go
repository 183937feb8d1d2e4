package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/trueskill"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

const teamMatchColumns = `tm.id, tm.date, tm.competition_id, tm.home_team_id, tm.away_team_id, tm.result, tm.legs, tm.used_for_rating`

const playerColumns = `p.id, p.human_id, p.name, p.club_id, p.team_id, p.association_id, p.default_competition_id`

const ratingColumns = `id, player_id, competition_id, mu, sigma, last_update`

// UnratedTeamMatches returns the team matches not yet applied to ratings in
// date order, ties broken by id. An empty season selects every season.
func (s *store) UnratedTeamMatches(ctx context.Context, season string) ([]TeamMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamMatchColumns+`
		FROM team_matches tm
		JOIN competitions c ON c.id = tm.competition_id
		WHERE tm.used_for_rating = 0 AND (? = '' OR c.season = ?)
		ORDER BY tm.date ASC, tm.id ASC
	`, season, season)
	if err != nil {
		return nil, fmt.Errorf("query unrated team matches: %w", err)
	}
	defer rows.Close()

	var matches []TeamMatch
	for rows.Next() {
		m, err := scanTeamMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// BeginMatch starts the transaction in which one team match is rated.
func (s *store) BeginMatch(ctx context.Context) (MatchTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin match transaction: %w", err)
	}
	return &matchTx{ctx: ctx, tx: tx}, nil
}

// PlayersMissingDefaultRating returns players with a default competition
// but no rating in it.
func (s *store) PlayersMissingDefaultRating(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+`
		FROM players p
		WHERE p.default_competition_id IS NOT NULL
		AND NOT EXISTS (
			SELECT 1 FROM skill_ratings r
			WHERE r.player_id = p.id AND r.competition_id = p.default_competition_id
		)
		ORDER BY p.id
	`)
}

// PlayersWithoutContext returns players that have neither a rating nor a
// default competition, so no competition can be derived for them.
func (s *store) PlayersWithoutContext(ctx context.Context) ([]Player, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+`
		FROM players p
		WHERE p.default_competition_id IS NULL
		AND NOT EXISTS (SELECT 1 FROM skill_ratings r WHERE r.player_id = p.id)
		ORDER BY p.id
	`)
}

func (s *store) queryPlayers(ctx context.Context, query string, args ...any) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// CreateRatingIfAbsent inserts the rating unless the player already has one
// in the competition. It reports whether a row was created.
func (s *store) CreateRatingIfAbsent(ctx context.Context, rating SkillRating) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO skill_ratings (player_id, competition_id, mu, sigma, last_update)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id, competition_id) DO NOTHING
	`, rating.PlayerID, rating.CompetitionID, rating.Mu, rating.Sigma, formatTimestamp(rating.LastUpdate))
	if err != nil {
		return false, fmt.Errorf("create rating for player %d: %w", rating.PlayerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LatestMatchDate returns the date of the latest team match of the
// competition, found=false if it has none.
func (s *store) LatestMatchDate(ctx context.Context, competitionID int64) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM team_matches WHERE competition_id = ?`, competitionID).Scan(&date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query latest match date: %w", err)
	}
	if !date.Valid || date.String == "" {
		return time.Time{}, false, nil
	}
	t, err := parseDate(date.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// ResetRatings restores every rating to the default prior. With rerate all
// team matches are also marked unrated so the next pass rebuilds ratings
// from scratch. It returns the number of ratings reset.
func (s *store) ResetRatings(ctx context.Context, rerate bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE skill_ratings SET mu = ?, sigma = ?, last_update = ?`,
		trueskill.DefaultMu, trueskill.DefaultSigma, formatTimestamp(time.Now()))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("reset ratings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if rerate {
		if _, err := tx.ExecContext(ctx, `UPDATE team_matches SET used_for_rating = 0`); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("clear rating flags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("Ratings reset", "count", n, "rerate", rerate)
	return n, nil
}

// Competitions returns all competitions, newest season first.
func (s *store) Competitions(ctx context.Context) ([]Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, association, season FROM competitions
		ORDER BY season DESC, association, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query competitions: %w", err)
	}
	defer rows.Close()

	var competitions []Competition
	for rows.Next() {
		var c Competition
		if err := rows.Scan(&c.ID, &c.Name, &c.Association, &c.Season); err != nil {
			return nil, err
		}
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

func (s *store) GetCompetition(ctx context.Context, id int64) (Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Competition
	err := s.db.QueryRowContext(ctx, `SELECT id, name, association, season FROM competitions WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Association, &c.Season)
	if errors.Is(err, sql.ErrNoRows) {
		return Competition{}, fmt.Errorf("competition %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Competition{}, fmt.Errorf("query competition %d: %w", id, err)
	}
	return c, nil
}

func (s *store) GetPlayer(ctx context.Context, id int64) (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPlayer(s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("player %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Player{}, fmt.Errorf("query player %d: %w", id, err)
	}
	return p, nil
}

// Leaderboard ranks the rated players of a competition by exposure.
func (s *store) Leaderboard(ctx context.Context, competitionID int64) ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(c.name, ''), r.mu, r.sigma, r.last_update
		FROM skill_ratings r
		JOIN players p ON p.id = r.player_id
		LEFT JOIN clubs c ON c.id = p.club_id
		WHERE r.competition_id = ?
		ORDER BY (r.mu - 3 * r.sigma) DESC, p.id ASC
	`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var lastUpdate string
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.ClubName, &e.Mu, &e.Sigma, &lastUpdate); err != nil {
			return nil, err
		}
		e.LastUpdate = parseTimestamp(lastUpdate)
		e.Exposure = e.Mu - 3*e.Sigma
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PlayerRatings returns every rating of a player.
func (s *store) PlayerRatings(ctx context.Context, playerID int64) ([]SkillRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+ratingColumns+` FROM skill_ratings WHERE player_id = ? ORDER BY competition_id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query player ratings: %w", err)
	}
	defer rows.Close()
	return scanRatings(rows)
}

// Ratings returns the ratings of the given players in a competition keyed by
// player id. Unrated players are absent from the map.
func (s *store) Ratings(ctx context.Context, competitionID int64, playerIDs []int64) (map[int64]SkillRating, error) {
	ratings := make(map[int64]SkillRating)
	if len(playerIDs) == 0 {
		return ratings, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	args := []any{competitionID}
	for _, id := range playerIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ratingColumns+` FROM skill_ratings
		WHERE competition_id = ? AND player_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	list, err := scanRatings(rows)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		ratings[r.PlayerID] = r
	}
	return ratings, nil
}

// HeadToHead lists the singles two players played against each other,
// oldest first.
func (s *store) HeadToHead(ctx context.Context, playerA, playerB int64) ([]SinglesGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.team_match_id, s.home_player_id, s.away_player_id, s.result, s.match_number, tm.date, tm.competition_id
		FROM singles_matches s
		JOIN team_matches tm ON tm.id = s.team_match_id
		WHERE (s.home_player_id = ? AND s.away_player_id = ?)
		OR (s.home_player_id = ? AND s.away_player_id = ?)
		ORDER BY tm.date ASC, s.id ASC
	`, playerA, playerB, playerB, playerA)
	if err != nil {
		return nil, fmt.Errorf("query head to head: %w", err)
	}
	defer rows.Close()

	var games []SinglesGame
	for rows.Next() {
		var g SinglesGame
		var date string
		if err := rows.Scan(&g.ID, &g.TeamMatchID, &g.HomePlayerID, &g.AwayPlayerID, &g.Result, &g.MatchNumber, &date, &g.CompetitionID); err != nil {
			return nil, err
		}
		if g.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// BeginImport starts an ingestion transaction.
func (s *store) BeginImport(ctx context.Context) (ImportTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	return &importTx{ctx: ctx, tx: tx}, nil
}
