package crawler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/ingest"
)

const (
	noResult     = "-:-"
	trainerMark  = "TC"
	dateLayout   = "02.01.06 15:04"
	reportButton = ".ligameplBtnLigameplgameExist"
)

// ParseSquad reads the club teams and their rosters from the squad tab.
func ParseSquad(r io.Reader) (Squad, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Squad{}, fmt.Errorf("error parsing squad HTML: %w", err)
	}

	squad := Squad{Teams: make(map[string][]string)}
	doc.Find("#showPlayerSquadAreaData .panel-heading").Each(func(_ int, heading *goquery.Selection) {
		id, _ := heading.Attr("id")
		id = strings.TrimPrefix(id, "teamTopic")
		club, rank, ok := ingest.SplitTeamName(heading.Text())
		if !ok {
			log.Warn("Skipping squad heading without rank", "heading", strings.TrimSpace(heading.Text()))
			return
		}
		squad.Teams[club] = appendUnique(squad.Teams[club], rank)

		doc.Find("#teamData" + id + " .form-control-static").Each(func(_ int, s *goquery.Selection) {
			entry := strings.TrimSpace(strings.ReplaceAll(s.Text(), trainerMark, ""))
			name, associationID := splitRosterEntry(entry)
			if name == "" || strings.Contains(name, "Spieler ist nicht") {
				return
			}
			squad.Players = append(squad.Players, ingest.PlayerEntry{
				AssociationID: associationID,
				Name:          name,
				Club:          club,
				Team:          rank,
			})
		})
	})
	log.Debug("Parsed squad", "clubs", len(squad.Teams), "players", len(squad.Players))
	return squad, nil
}

// splitRosterEntry reads "van Hooff, Jens (100405)".
func splitRosterEntry(entry string) (name, associationID string) {
	parts := strings.Split(entry, "(")
	name = ingest.ReorderName(parts[0])
	if len(parts) > 1 {
		associationID = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[len(parts)-1]), ")"))
	}
	return name, associationID
}

// ParseGameplan reads the fixtures of the game plan tab played on or after
// from. Fixtures without a result are kept, their report is not.
func ParseGameplan(r io.Reader, from time.Time) ([]Fixture, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing game plan HTML: %w", err)
	}

	var fixtures []Fixture
	doc.Find("#showGameplanAreaData tbody tr").Each(func(_ int, row *goquery.Selection) {
		if id, ok := row.Attr("id"); ok && id != "" {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		date, ok := parseFixtureDate(cells.Eq(0).Text())
		if !ok {
			return
		}
		if date.Before(from) {
			log.Debug("Skipping fixture before start date", "date", date, "from", from)
			return
		}

		f := Fixture{TeamMatchEntry: ingest.TeamMatchEntry{
			Date:     date,
			HomeTeam: strings.TrimSpace(cells.Eq(1).Text()),
			AwayTeam: strings.TrimSpace(cells.Eq(2).Text()),
			Result:   strings.TrimSpace(cells.Eq(3).Text()),
			Legs:     strings.TrimSpace(cells.Eq(4).Text()),
		}}
		if f.Result != noResult {
			button := cells.Last().Find(reportButton).First()
			if href, ok := button.Attr("href"); ok {
				f.ReportURL = href
			} else if href, ok := button.Attr("data-href"); ok {
				f.ReportURL = href
			}
		}
		fixtures = append(fixtures, f)
	})
	log.Debug("Parsed game plan", "fixtures", len(fixtures))
	return fixtures, nil
}

// parseFixtureDate reads "Sa 01.10.22 19:30". Cells without a date, such as
// matchday headers, report false.
func parseFixtureDate(text string) (time.Time, bool) {
	if !strings.Contains(text, ".") {
		return time.Time{}, false
	}
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, fields[1]+" "+fields[2])
	if err != nil {
		log.Warn("Skipping fixture with unreadable date", "date", text, "error", err)
		return time.Time{}, false
	}
	return date, true
}

// ParseMatchReport reads the singles and doubles of a match report.
func ParseMatchReport(r io.Reader) ([]ingest.GameEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing match report HTML: %w", err)
	}

	var games []ingest.GameEntry
	doc.Find("#ligameplgame table .resultTable").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		games = append(games, ingest.GameEntry{
			HomePlayer:  strings.TrimSpace(cells.Eq(2).Text()),
			Result:      strings.TrimSpace(cells.Eq(3).Text()),
			AwayPlayer:  strings.TrimSpace(cells.Eq(4).Text()),
			MatchNumber: MatchNumber(i),
		})
	})
	return games, nil
}

// MatchNumber maps a report row to its number within the block: four
// singles, two doubles, four singles, two doubles.
func MatchNumber(row int) int {
	switch {
	case row < 4:
		return row + 1
	case row < 6:
		return row - 3
	case row < 10:
		return row - 5
	default:
		return row - 9
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
