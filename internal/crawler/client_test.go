package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	client := &Client{httpClient: server.Client()}
	ctx := context.Background()

	t.Run("http page", func(t *testing.T) {
		body, err := client.Fetch(ctx, server.URL+"/plan")
		require.NoError(t, err)
		defer body.Close()
		b, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", string(b))
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := client.Fetch(ctx, server.URL+"/missing")
		assert.ErrorContains(t, err, "bad status code")
	})

	t.Run("saved file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "squad.html")
		require.NoError(t, os.WriteFile(path, []byte(squadHTML), 0o600))
		body, err := client.Fetch(ctx, path)
		require.NoError(t, err)
		defer body.Close()
		squad, err := ParseSquad(body)
		require.NoError(t, err)
		assert.Len(t, squad.Players, 3)
	})
}

func TestCrawlerCompetition(t *testing.T) {
	fetcher := NewMockFetcher(map[string]string{
		"https://dash.example/squad":       squadHTML,
		"https://dash.example/plan":        gameplanHTML,
		"https://dash.example/report?id=7": reportHTML(),
	})
	from := time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC)

	data, err := New(fetcher).Competition(context.Background(), Source{
		Association: "NDV",
		Competition: "Bezirksliga",
		SquadURL:    "https://dash.example/squad",
		GameplanURL: "https://dash.example/plan",
	}, from)
	require.NoError(t, err)

	assert.Equal(t, "NDV", data.Association)
	assert.Equal(t, "Bezirksliga", data.Name)
	assert.Len(t, data.Players, 3)
	require.Len(t, data.TeamMatches, 2)
	assert.Len(t, data.TeamMatches[0].Matches, 12)
	assert.Empty(t, data.TeamMatches[1].Matches)
	assert.Equal(t, []string{
		"https://dash.example/squad",
		"https://dash.example/plan",
		"https://dash.example/report?id=7",
	}, fetcher.FetchCalls)
}

func TestCrawlerMissingReport(t *testing.T) {
	fetcher := NewMockFetcher(map[string]string{"https://dash.example/plan": gameplanHTML})
	_, err := New(fetcher).Competition(context.Background(), Source{GameplanURL: "https://dash.example/plan"}, time.Time{})
	assert.ErrorContains(t, err, "no page for https://dash.example/report?id=7")
}
