package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{
		"competitions", "clubs", "teams", "players",
		"team_matches", "singles_matches", "doubles_matches", "skill_ratings",
	} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_IsRepeatable(t *testing.T) {
	path := t.TempDir() + "/ratings.db"

	db, teardown, err := InitDB(path, "", "")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO clubs (name) VALUES ('DC Bullseye')`)
	require.NoError(t, err)
	teardown()

	db, teardown, err = InitDB(path, "", "")
	require.NoError(t, err, "migrating an up-to-date database should be a no-op")
	defer teardown()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM clubs").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInitDB_RatingsAreUniquePerPlayerAndCompetition(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec(`INSERT INTO competitions (id, name, association, season) VALUES (1, 'Bezirksliga 2', 'DBH', '2023')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO players (id, human_id, name) VALUES (1, 'hans1234', 'Hans Meier')`)
	require.NoError(t, err)

	insert := `INSERT INTO skill_ratings (player_id, competition_id, mu, sigma, last_update) VALUES (1, 1, 25, 8.3, '2023-01-01')`
	_, err = db.Exec(insert)
	require.NoError(t, err)
	_, err = db.Exec(insert)
	assert.Error(t, err, "a second rating for the same player and competition must be rejected")
}
