package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/ingest"
)

// Client fetches dashboard pages over HTTP or from saved files.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new dashboard client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Ensure Client implements the Fetcher interface.
var _ Fetcher = (*Client)(nil)

// Fetch opens location. Anything that is not an http(s) URL is read from disk.
func (c *Client) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("error opening page: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", location, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status code for %s: %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}

// Crawler assembles competition data from dashboard pages.
type Crawler struct {
	fetcher Fetcher
}

// New creates a crawler reading pages through fetcher.
func New(fetcher Fetcher) *Crawler {
	return &Crawler{fetcher: fetcher}
}

// Competition reads the squad, the game plan from the given date, and the
// report of every played fixture of one competition.
func (c *Crawler) Competition(ctx context.Context, src Source, from time.Time) (ingest.CompetitionData, error) {
	data := ingest.CompetitionData{Association: src.Association, Name: src.Competition}

	if src.SquadURL != "" {
		body, err := c.fetcher.Fetch(ctx, src.SquadURL)
		if err != nil {
			return data, err
		}
		squad, err := ParseSquad(body)
		body.Close()
		if err != nil {
			return data, err
		}
		data.ClubsTeams, data.Players = squad.Teams, squad.Players
	}

	if src.GameplanURL == "" {
		return data, nil
	}
	body, err := c.fetcher.Fetch(ctx, src.GameplanURL)
	if err != nil {
		return data, err
	}
	fixtures, err := ParseGameplan(body, from)
	body.Close()
	if err != nil {
		return data, err
	}

	for _, f := range fixtures {
		m := f.TeamMatchEntry
		if f.ReportURL != "" {
			games, err := c.report(ctx, resolve(src.GameplanURL, f.ReportURL))
			if err != nil {
				return data, fmt.Errorf("report %s vs %s: %w", m.HomeTeam, m.AwayTeam, err)
			}
			m.Matches = games
		}
		data.TeamMatches = append(data.TeamMatches, m)
	}
	log.Info("Crawled competition", "association", src.Association, "competition", src.Competition, "fixtures", len(data.TeamMatches), "players", len(data.Players))
	return data, nil
}

func (c *Crawler) report(ctx context.Context, location string) ([]ingest.GameEntry, error) {
	body, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseMatchReport(body)
}

// resolve makes a report link absolute against the game plan page.
func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
