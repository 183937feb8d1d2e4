package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/league"
)

// Store is the part of the league store the importer writes through.
type Store interface {
	BeginImport(ctx context.Context) (league.ImportTx, error)
}

// Importer loads crawled payloads into the league store.
type Importer struct {
	store Store
}

// ImportSummary counts what an import created or skipped.
type ImportSummary struct {
	Competitions  int `json:"competitions"`
	Teams         int `json:"teams"`
	Players       int `json:"players"`
	TeamMatches   int `json:"team_matches"`
	NewMatches    int `json:"new_team_matches"`
	SinglesAdded  int `json:"singles_added"`
	DoublesAdded  int `json:"doubles_added"`
	SkippedGames  int `json:"skipped_games"`
	SkippedByes   int `json:"skipped_byes"`
	SkippedRoster int `json:"skipped_roster"`
}

func New(store Store) *Importer {
	return &Importer{store: store}
}

// Import writes the payload, one transaction per competition. A failing
// competition is rolled back and aborts the import; earlier ones stay.
func (im *Importer) Import(ctx context.Context, p Payload) (ImportSummary, error) {
	var summary ImportSummary
	if err := p.Validate(); err != nil {
		return summary, fmt.Errorf("invalid payload: %w", err)
	}
	for _, c := range p.Competitions {
		if err := im.importCompetition(ctx, p.Season, c, &summary); err != nil {
			return summary, fmt.Errorf("import competition %q (%s): %w", c.Name, c.Association, err)
		}
		summary.Competitions++
	}
	log.Info("Import finished", "season", p.Season, "competitions", summary.Competitions, "teamMatches", summary.TeamMatches, "new", summary.NewMatches)
	return summary, nil
}

// competitionImport carries the lookups of one competition's transaction.
type competitionImport struct {
	tx      league.ImportTx
	season  string
	compID  int64
	clubs   map[string]int64
	teams   map[string]league.Team
	summary *ImportSummary
}

func (im *Importer) importCompetition(ctx context.Context, season string, c CompetitionData, summary *ImportSummary) (err error) {
	tx, err := im.store.BeginImport(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to roll back import", "competition", c.Name, "error", rbErr)
			}
		}
	}()

	compID, err := tx.UpsertCompetition(league.Competition{Name: c.Name, Association: c.Association, Season: season})
	if err != nil {
		return err
	}
	ci := &competitionImport{
		tx:      tx,
		season:  season,
		compID:  compID,
		clubs:   make(map[string]int64),
		teams:   make(map[string]league.Team),
		summary: summary,
	}

	for club, ranks := range c.ClubsTeams {
		for _, rank := range ranks {
			if _, err := ci.team(club, rank); err != nil {
				return err
			}
		}
	}
	for _, pe := range c.Players {
		if err := ci.rosterPlayer(pe); err != nil {
			return err
		}
	}
	for _, m := range c.TeamMatches {
		if err := ci.teamMatch(m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (ci *competitionImport) club(name string) (int64, error) {
	if id, ok := ci.clubs[name]; ok {
		return id, nil
	}
	id, err := ci.tx.UpsertClub(name)
	if err != nil {
		return 0, err
	}
	ci.clubs[name] = id
	return id, nil
}

func (ci *competitionImport) team(club, rank string) (league.Team, error) {
	club = strings.TrimSpace(club)
	key := TeamName(club, rank)
	if t, ok := ci.teams[key]; ok {
		return t, nil
	}
	clubID, err := ci.club(club)
	if err != nil {
		return league.Team{}, err
	}
	compID := ci.compID
	t := league.Team{ClubID: clubID, Rank: rank, Season: ci.season, CompetitionID: &compID}
	if t.ID, err = ci.tx.UpsertTeam(t); err != nil {
		return league.Team{}, err
	}
	ci.teams[key] = t
	ci.summary.Teams++
	return t, nil
}

func (ci *competitionImport) teamByName(name string) (league.Team, error) {
	club, rank, ok := SplitTeamName(name)
	if !ok {
		return league.Team{}, fmt.Errorf("team name %q has no rank", name)
	}
	return ci.team(club, rank)
}

func (ci *competitionImport) rosterPlayer(pe PlayerEntry) error {
	name := ReorderName(pe.Name)
	if skipPlayerName(name) || strings.Contains(pe.AssociationID, inactiveEntry) {
		log.Debug("Skipping roster entry", "name", pe.Name, "associationID", pe.AssociationID)
		ci.summary.SkippedRoster++
		return nil
	}
	p := league.Player{Name: name, DefaultCompetitionID: &ci.compID}
	if pe.Team != "" {
		t, err := ci.team(pe.Club, pe.Team)
		if err != nil {
			return err
		}
		p.ClubID, p.TeamID = t.ClubID, &t.ID
	} else {
		clubID, err := ci.club(strings.TrimSpace(pe.Club))
		if err != nil {
			return err
		}
		p.ClubID = clubID
	}
	if id := strings.TrimSpace(pe.AssociationID); id != "" {
		p.AssociationID = &id
	}
	if _, err := ci.tx.UpsertPlayer(p); err != nil {
		return err
	}
	ci.summary.Players++
	return nil
}

func (ci *competitionImport) teamMatch(m TeamMatchEntry) error {
	if isBye(m.HomeTeam) || isBye(m.AwayTeam) {
		log.Debug("Skipping bye", "home", m.HomeTeam, "away", m.AwayTeam)
		ci.summary.SkippedByes++
		return nil
	}
	home, err := ci.teamByName(m.HomeTeam)
	if err != nil {
		return err
	}
	away, err := ci.teamByName(m.AwayTeam)
	if err != nil {
		return err
	}
	id, created, err := ci.tx.UpsertTeamMatch(league.TeamMatch{
		Date:          m.Date,
		CompetitionID: ci.compID,
		HomeTeamID:    home.ID,
		AwayTeamID:    away.ID,
		Result:        strings.TrimSpace(m.Result),
		Legs:          strings.TrimSpace(m.Legs),
	})
	if err != nil {
		return err
	}
	ci.summary.TeamMatches++
	if created {
		ci.summary.NewMatches++
	}

	for _, g := range m.Matches {
		if strings.Contains(g.HomePlayer, "/") {
			err = ci.doubles(id, home, away, g)
		} else {
			err = ci.singles(id, home, away, g)
		}
		if err != nil {
			return fmt.Errorf("team match %s vs %s: %w", m.HomeTeam, m.AwayTeam, err)
		}
	}
	return nil
}

// player looks a sub-match player up by name within the team's club,
// creating it when unknown.
func (ci *competitionImport) player(name string, team league.Team) (int64, error) {
	return ci.tx.UpsertPlayer(league.Player{Name: name, ClubID: team.ClubID})
}

func (ci *competitionImport) singles(teamMatchID int64, home, away league.Team, g GameEntry) error {
	homeName, awayName := ReorderName(g.HomePlayer), ReorderName(g.AwayPlayer)
	if skipPlayerName(homeName) || skipPlayerName(awayName) {
		log.Info("Skipping singles without players", "home", g.HomePlayer, "away", g.AwayPlayer)
		ci.summary.SkippedGames++
		return nil
	}
	homeID, err := ci.player(homeName, home)
	if err != nil {
		return err
	}
	awayID, err := ci.player(awayName, away)
	if err != nil {
		return err
	}
	added, err := ci.tx.AddSinglesMatch(league.SinglesMatch{
		TeamMatchID:  teamMatchID,
		HomePlayerID: homeID,
		AwayPlayerID: awayID,
		Result:       strings.TrimSpace(g.Result),
		MatchNumber:  g.MatchNumber,
	})
	if err != nil {
		return err
	}
	if added {
		ci.summary.SinglesAdded++
	}
	return nil
}

func (ci *competitionImport) doubles(teamMatchID int64, home, away league.Team, g GameEntry) error {
	h1, h2, okHome := splitDoubles(g.HomePlayer)
	a1, a2, okAway := splitDoubles(g.AwayPlayer)
	if !okHome || !okAway {
		log.Info("No valid doubles", "home", g.HomePlayer, "away", g.AwayPlayer)
		ci.summary.SkippedGames++
		return nil
	}
	for _, n := range []string{h1, h2, a1, a2} {
		if skipPlayerName(n) {
			log.Info("Skipping doubles without players", "home", g.HomePlayer, "away", g.AwayPlayer)
			ci.summary.SkippedGames++
			return nil
		}
	}

	ids := make([]int64, 4)
	for i, n := range []string{h1, h2, a1, a2} {
		team := home
		if i >= 2 {
			team = away
		}
		id, err := ci.player(n, team)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	added, err := ci.tx.AddDoublesMatch(league.DoublesMatch{
		TeamMatchID:   teamMatchID,
		HomePlayer1ID: ids[0],
		HomePlayer2ID: ids[1],
		AwayPlayer1ID: ids[2],
		AwayPlayer2ID: ids[3],
		Result:        strings.TrimSpace(g.Result),
		MatchNumber:   g.MatchNumber,
	})
	if err != nil {
		return err
	}
	if added {
		ci.summary.DoublesAdded++
	}
	return nil
}
