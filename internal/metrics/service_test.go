package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncRatingPasses()
	s.IncTeamMatchesRated()
	s.IncTeamMatchesRated()
	s.IncSubMatchesRated(KindSingles)
	s.IncSubMatchesSkipped(KindDoubles)
	s.AddRatingsBackfilled(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.RatingPasses))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.TeamMatchesRated))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SubMatchesRated.WithLabelValues(KindSingles)))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.SubMatchesRated.WithLabelValues(KindDoubles)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SubMatchesSkipped.WithLabelValues(KindDoubles)))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.RatingsBackfilled))

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "darts_team_matches_rated_total 2")
}
