package metrics

import (
	"path/filepath"
	"testing"

	"github.com/mauv0809/ndv-elo/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary file database for testing.
func setupTestDB(t *testing.T) (MetricsStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(filepath.Join(t.TempDir(), "metrics.db"), "", "")
	require.NoError(t, err)

	return NewStore(db), teardown
}

func TestAddAndGetAll(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	counters, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, counters)

	store.Add("rating_passes", 1)
	counters, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"rating_passes": 1}, counters)

	store.Add("rating_passes", 1)
	store.Add("team_matches_rated", 12)
	counters, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"rating_passes":      2,
		"team_matches_rated": 12,
	}, counters)
}
