package trueskill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func TestRate1vs1_EqualPriors(t *testing.T) {
	env := Default()
	winner, loser := env.Rate1vs1(env.NewRating(), env.NewRating())

	// Reference values of the standard TrueSkill implementation.
	assert.InDelta(t, 29.395832, winner.Mu, 1e-5)
	assert.InDelta(t, 20.604168, loser.Mu, 1e-5)
	assert.InDelta(t, 7.171476, winner.Sigma, 1e-5)
	assert.InDelta(t, 7.171476, loser.Sigma, 1e-5)

	t.Run("moves are equal and opposite", func(t *testing.T) {
		assert.InDelta(t, winner.Mu-DefaultMu, DefaultMu-loser.Mu, tolerance)
	})
}

func TestRate1vs1_Upset(t *testing.T) {
	env := Default()
	favourite := Rating{Mu: 32, Sigma: 4}
	underdog := Rating{Mu: 20, Sigma: 4}

	expectedWinner, expectedLoser := env.Rate1vs1(favourite, underdog)
	upsetWinner, upsetLoser := env.Rate1vs1(underdog, favourite)

	expectedGain := expectedWinner.Mu - favourite.Mu
	upsetGain := upsetWinner.Mu - underdog.Mu
	assert.Greater(t, upsetGain, expectedGain, "an upset must move ratings more than an expected win")
	assert.Less(t, upsetLoser.Mu, favourite.Mu)
	assert.Less(t, expectedLoser.Mu, underdog.Mu)
}

func TestRateTeams_SigmaNeverIncreases(t *testing.T) {
	env := Default()
	cases := []struct {
		name    string
		winners []Rating
		losers  []Rating
	}{
		{"fresh players", []Rating{env.NewRating()}, []Rating{env.NewRating()}},
		{"near-certain outcome", []Rating{{Mu: 30, Sigma: 1}}, []Rating{{Mu: 10, Sigma: 1}}},
		{"upset", []Rating{{Mu: 10, Sigma: 2}}, []Rating{{Mu: 30, Sigma: 2}}},
		{"doubles", []Rating{{Mu: 25, Sigma: 3}, {Mu: 28, Sigma: 8}}, []Rating{{Mu: 22, Sigma: 0.5}, {Mu: 30, Sigma: 6}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winners, losers, err := env.RateTeams(tc.winners, tc.losers)
			require.NoError(t, err)
			for i := range winners {
				assert.LessOrEqual(t, winners[i].Sigma, tc.winners[i].Sigma+tolerance)
				assert.Greater(t, winners[i].Mu, tc.winners[i].Mu)
			}
			for i := range losers {
				assert.LessOrEqual(t, losers[i].Sigma, tc.losers[i].Sigma+tolerance)
				assert.Less(t, losers[i].Mu, tc.losers[i].Mu)
			}
		})
	}
}

func TestRateTeams_SigmaApproachesFloor(t *testing.T) {
	env := Default()
	a, b := env.NewRating(), env.NewRating()
	previous := a.Sigma
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			a, b = env.Rate1vs1(a, b)
		} else {
			b, a = env.Rate1vs1(b, a)
		}
		assert.LessOrEqual(t, a.Sigma, previous+tolerance)
		previous = a.Sigma
	}
	assert.Greater(t, a.Sigma, 0.0, "uncertainty must stay above zero")
}

func TestRateTeams_Doubles(t *testing.T) {
	env := Default()
	prior := env.NewRating()
	winners, losers, err := env.RateTeams([]Rating{prior, prior}, []Rating{prior, prior})
	require.NoError(t, err)

	assert.InDelta(t, 28.108322, winners[0].Mu, 1e-5)
	assert.InDelta(t, 21.891678, losers[1].Mu, 1e-5)
	assert.InDelta(t, 7.774363, winners[1].Sigma, 1e-5)

	t.Run("uncertain members absorb more of the shift", func(t *testing.T) {
		settled := Rating{Mu: 25, Sigma: 2}
		winners, _, err := env.RateTeams([]Rating{settled, prior}, []Rating{prior, prior})
		require.NoError(t, err)
		assert.Greater(t, winners[1].Mu-prior.Mu, winners[0].Mu-settled.Mu)
	})
}

func TestRateTeams_EmptyTeam(t *testing.T) {
	_, _, err := Default().RateTeams(nil, []Rating{Default().NewRating()})
	assert.ErrorIs(t, err, ErrEmptyTeam)
}

func TestWinProbabilityAndQuality(t *testing.T) {
	env := Default()
	prior := env.NewRating()

	assert.InDelta(t, 0.5, env.WinProbability([]Rating{prior}, []Rating{prior}), tolerance)
	assert.InDelta(t, 0.447214, env.Quality([]Rating{prior}, []Rating{prior}), 1e-5)

	strong := Rating{Mu: 35, Sigma: 2}
	weak := Rating{Mu: 15, Sigma: 2}
	p := env.WinProbability([]Rating{strong}, []Rating{weak})
	assert.Greater(t, p, 0.9)
	assert.InDelta(t, 1, p+env.WinProbability([]Rating{weak}, []Rating{strong}), tolerance)
	assert.Less(t, env.Quality([]Rating{strong}, []Rating{weak}), env.Quality([]Rating{prior}, []Rating{prior}))
}

func TestExposure(t *testing.T) {
	env := Default()
	assert.InDelta(t, 0, env.Exposure(env.NewRating()), tolerance)
	assert.InDelta(t, 19, env.Exposure(Rating{Mu: 25, Sigma: 2}), tolerance)
}
