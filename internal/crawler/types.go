package crawler

import (
	"github.com/mauv0809/ndv-elo/internal/ingest"
)

// Squad is the roster tab of a competition.
type Squad struct {
	// Teams maps a club to the rank letters it fields.
	Teams   map[string][]string
	Players []ingest.PlayerEntry
}

// Fixture is one row of the game plan. ReportURL is empty when the
// dashboard offers no match report.
type Fixture struct {
	ingest.TeamMatchEntry
	ReportURL string `json:"report_url,omitempty"`
}

// Source locates the pages of one competition.
type Source struct {
	Association string
	Competition string
	SquadURL    string
	GameplanURL string
}
