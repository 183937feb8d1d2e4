package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ndv-elo/internal/config"
	"github.com/mauv0809/ndv-elo/internal/crawler"
	"github.com/mauv0809/ndv-elo/internal/database"
	"github.com/mauv0809/ndv-elo/internal/ingest"
	"github.com/mauv0809/ndv-elo/internal/league"
)

const (
	numClubs       = 8
	playersPerTeam = 6
	legsToWin      = 3
)

var firstNames = []string{"Anna", "Bernd", "Carla", "Dirk", "Erik", "Frieda", "Gerd", "Hanna", "Ingo", "Jana", "Klaus", "Lena"}
var lastNames = []string{"Schmidt", "Meyer", "Vogt", "Krause", "Lang", "Becker", "Wolf", "Hoffmann", "Koch", "Richter"}

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()
	cfg.ApplyLogLevel()

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	season := cfg.Season
	if season == "" {
		season = fmt.Sprint(time.Now().Year())
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	payload := buildPayload(rng, season, time.Date(time.Now().Year(), 9, 1, 19, 30, 0, 0, time.UTC))

	startTime := time.Now()
	summary, err := ingest.New(league.New(db)).Import(context.Background(), payload)
	if err != nil {
		log.Fatalf("Failed to import synthetic league: %s", err)
	}
	log.Info("Successfully seeded synthetic league.",
		"competition", payload.Competitions[0].Name,
		"teamMatches", summary.TeamMatches,
		"singles", summary.SinglesAdded,
		"doubles", summary.DoublesAdded,
		"duration", time.Since(startTime),
	)
}

// buildPayload creates a double round robin between numClubs single-team
// clubs, one matchday per week starting at start.
func buildPayload(rng *rand.Rand, season string, start time.Time) ingest.Payload {
	// A random suffix keeps repeated runs in separate competitions.
	data := ingest.CompetitionData{
		Association: "SEED",
		Name:        "Seeded League " + uuid.NewString()[:8],
		ClubsTeams:  make(map[string][]string),
	}

	rosters := make([][]string, numClubs)
	clubs := make([]string, numClubs)
	for c := range clubs {
		clubs[c] = fmt.Sprintf("DC Seed %02d", c+1)
		data.ClubsTeams[clubs[c]] = []string{"A"}
		for p := 0; p < playersPerTeam; p++ {
			last := lastNames[rng.Intn(len(lastNames))]
			first := firstNames[rng.Intn(len(firstNames))]
			// Dashboard style "Last, First", unique per club.
			name := fmt.Sprintf("%s%d, %s", last, c*playersPerTeam+p, first)
			rosters[c] = append(rosters[c], name)
			data.Players = append(data.Players, ingest.PlayerEntry{
				AssociationID: uuid.NewString(),
				Name:          name,
				Club:          clubs[c],
				Team:          "A",
			})
		}
	}

	date := start
	for round := 0; round < 2; round++ {
		for h := range clubs {
			for a := range clubs {
				if h == a || (round == 0) != (h < a) {
					continue
				}
				data.TeamMatches = append(data.TeamMatches, fixture(rng, date, clubs[h], clubs[a], rosters[h], rosters[a]))
				date = date.AddDate(0, 0, 7)
			}
		}
	}

	return ingest.Payload{
		Season:       season,
		CrawledAt:    time.Now().UTC(),
		FromDate:     start,
		Competitions: []ingest.CompetitionData{data},
	}
}

// fixture plays a full match report: four singles, two doubles, four
// singles, two doubles.
func fixture(rng *rand.Rand, date time.Time, homeClub, awayClub string, home, away []string) ingest.TeamMatchEntry {
	m := ingest.TeamMatchEntry{
		Date:     date,
		HomeTeam: ingest.TeamName(homeClub, "A"),
		AwayTeam: ingest.TeamName(awayClub, "A"),
	}
	var homeGames, awayGames int
	for row := 0; row < 12; row++ {
		var h, a string
		if doubles := row == 4 || row == 5 || row == 10 || row == 11; doubles {
			hp, ap := rng.Perm(len(home)), rng.Perm(len(away))
			h = home[hp[0]] + "/" + home[hp[1]]
			a = away[ap[0]] + "/" + away[ap[1]]
		} else {
			h, a = home[rng.Intn(len(home))], away[rng.Intn(len(away))]
		}
		result := legs(rng)
		if result[0] == '3' {
			homeGames++
		} else {
			awayGames++
		}
		m.Matches = append(m.Matches, ingest.GameEntry{
			HomePlayer:  h,
			AwayPlayer:  a,
			Result:      result,
			MatchNumber: crawler.MatchNumber(row),
		})
	}
	m.Result = fmt.Sprintf("%d:%d", homeGames, awayGames)
	return m
}

func legs(rng *rand.Rand) string {
	loser := rng.Intn(legsToWin)
	if rng.Intn(2) == 0 {
		return fmt.Sprintf("%d:%d", legsToWin, loser)
	}
	return fmt.Sprintf("%d:%d", loser, legsToWin)
}
