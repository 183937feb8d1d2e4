package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, samplePayload().Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		p := Payload{Competitions: []CompetitionData{{
			Name:        "Bezirksliga",
			TeamMatches: []TeamMatchEntry{{HomeTeam: "DC Hamburg A"}},
		}}}
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "season is required")
		assert.Contains(t, err.Error(), "name and association are required")
		assert.Contains(t, err.Error(), "date is required")
		assert.Contains(t, err.Error(), "both teams are required")
	})
}

func TestDecode(t *testing.T) {
	raw := `{
		"season": "2023",
		"crawled_at": "2023-03-01T10:00:00Z",
		"from_date": "2022-08-01T00:00:00Z",
		"competitions": [{
			"association": "NDV",
			"name": "Bezirksliga",
			"clubs_teams": {"DC Hamburg": ["A"]},
			"players": [{"association_id": "100405", "name": "Anna Schmidt", "club": "DC Hamburg", "team": "A"}],
			"team_matches": [{
				"date": "2023-02-01T19:30:00Z",
				"home_team": "DC Hamburg A",
				"away_team": "SV Lurup A",
				"result": "8:4",
				"legs": "26:15",
				"matches": [{"home_player": "Schmidt, Anna", "away_player": "Meyer, Bernd", "result": "3:1", "match_number": 1}]
			}]
		}]
	}`
	p, err := Decode(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "2023", p.Season)
	require.Len(t, p.Competitions, 1)
	c := p.Competitions[0]
	assert.Equal(t, []string{"A"}, c.ClubsTeams["DC Hamburg"])
	require.Len(t, c.TeamMatches, 1)
	assert.Equal(t, time.Date(2023, 2, 1, 19, 30, 0, 0, time.UTC), c.TeamMatches[0].Date)
	assert.Equal(t, 1, c.TeamMatches[0].Matches[0].MatchNumber)

	_, err = Decode(strings.NewReader(`{"competitions": []}`))
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(`not json`))
	assert.Error(t, err)
}

// samplePayload is a small crawl with one fixture, a bye, and the
// dashboard's placeholder rows.
func samplePayload() Payload {
	return Payload{
		Season:   "2023",
		FromDate: time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC),
		Competitions: []CompetitionData{{
			Association: "NDV",
			Name:        "Bezirksliga",
			ClubsTeams: map[string][]string{
				"DC Hamburg": {"A"},
				"SV Lurup":   {"A"},
			},
			Players: []PlayerEntry{
				{AssociationID: "100405", Name: "Anna Schmidt", Club: "DC Hamburg", Team: "A"},
				{AssociationID: "100406", Name: "Carla Vogt", Club: "DC Hamburg", Team: "A"},
				{AssociationID: "200100", Name: "Bernd Meyer", Club: "SV Lurup", Team: "A"},
				{AssociationID: "Spieler ist nicht aktiv", Name: "Gast, Peter", Club: "SV Lurup", Team: "A"},
				{Name: "---", Club: "SV Lurup", Team: "A"},
			},
			TeamMatches: []TeamMatchEntry{
				{
					Date:     time.Date(2023, 2, 1, 19, 30, 0, 0, time.UTC),
					HomeTeam: "DC Hamburg A",
					AwayTeam: "SV Lurup (Jgd.) A",
					Result:   "8:4",
					Legs:     "26:15",
					Matches: []GameEntry{
						{HomePlayer: "Schmidt, Anna", AwayPlayer: "Meyer, Bernd", Result: "3:1", MatchNumber: 1},
						{HomePlayer: "Vogt, Carla", AwayPlayer: "Krause, Dirk", Result: "1:3", MatchNumber: 2},
						{HomePlayer: "KEIN EINTRAG", AwayPlayer: "Meyer, Bernd", Result: "0:3", MatchNumber: 3},
						{HomePlayer: "Schmidt, Anna/Vogt, Carla", AwayPlayer: "Meyer, Bernd/Krause, Dirk", Result: "3:0", MatchNumber: 1},
						{HomePlayer: "Schmidt, Anna/", AwayPlayer: "Meyer, Bernd", Result: "3:0", MatchNumber: 2},
					},
				},
				{
					Date:     time.Date(2023, 2, 8, 19, 30, 0, 0, time.UTC),
					HomeTeam: "Spielfrei",
					AwayTeam: "DC Hamburg A",
				},
			},
		}},
	}
}
