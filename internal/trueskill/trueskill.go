// Package trueskill implements the two-team TrueSkill update used to rate
// singles (1v1) and doubles (2v2) games without draws.
//
// Each player's skill is a Gaussian belief N(Mu, Sigma^2). A team performs
// as the sum of its members' performances, each drawn around the member's
// skill with deviation Beta. Before every game Tau is added to each prior
// deviation so ratings can drift over time.
package trueskill

import (
	"errors"
	"math"
)

// Library-standard defaults of the TrueSkill family.
const (
	DefaultMu              = 25.0
	DefaultSigma           = DefaultMu / 3
	DefaultBeta            = DefaultSigma / 2
	DefaultTau             = DefaultSigma / 100
	DefaultDrawProbability = 0.10
)

// ErrEmptyTeam is returned when a side of a game has no players.
var ErrEmptyTeam = errors.New("trueskill: team without players")

// Rating is a player's skill belief.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Env holds the model parameters.
type Env struct {
	Mu              float64
	Sigma           float64
	Beta            float64
	Tau             float64
	DrawProbability float64
}

// Default returns the environment with the library-standard parameters.
func Default() Env {
	return Env{
		Mu:              DefaultMu,
		Sigma:           DefaultSigma,
		Beta:            DefaultBeta,
		Tau:             DefaultTau,
		DrawProbability: DefaultDrawProbability,
	}
}

// NewRating returns the prior of a player that has never been rated.
func (e Env) NewRating() Rating {
	return Rating{Mu: e.Mu, Sigma: e.Sigma}
}

// Exposure is the conservative skill estimate used for leaderboards.
func (e Env) Exposure(r Rating) float64 {
	return r.Mu - 3*r.Sigma
}

// DrawMargin converts the draw probability into a performance margin for a
// game between size players in total.
func (e Env) DrawMargin(size int) float64 {
	return ppf((e.DrawProbability+1)/2) * math.Sqrt(float64(size)) * e.Beta
}

// Rate1vs1 updates the ratings of the winner and the loser of a singles game.
func (e Env) Rate1vs1(winner, loser Rating) (Rating, Rating) {
	w, l, _ := e.RateTeams([]Rating{winner}, []Rating{loser})
	return w[0], l[0]
}

// RateTeams updates every member of the winning and the losing team. The
// team-level shift is shared out in proportion to each member's variance.
// Returned slices are new and in input order.
func (e Env) RateTeams(winners, losers []Rating) ([]Rating, []Rating, error) {
	if len(winners) == 0 || len(losers) == 0 {
		return nil, nil, ErrEmptyTeam
	}

	size := len(winners) + len(losers)
	tau2 := e.Tau * e.Tau

	c2 := float64(size) * e.Beta * e.Beta
	var deltaMu float64
	for _, r := range winners {
		c2 += r.Sigma*r.Sigma + tau2
		deltaMu += r.Mu
	}
	for _, r := range losers {
		c2 += r.Sigma*r.Sigma + tau2
		deltaMu -= r.Mu
	}
	c := math.Sqrt(c2)

	margin := e.DrawMargin(size) / c
	v := vWin(deltaMu/c, margin)
	w := wWin(deltaMu/c, margin)

	update := func(r Rating, sign float64) Rating {
		prior2 := r.Sigma*r.Sigma + tau2
		mu := r.Mu + sign*prior2/c*v
		sigma := math.Sqrt(prior2 * (1 - prior2/c2*w))
		// The dynamics term can outweigh a near-certain result; beliefs only sharpen.
		if sigma > r.Sigma {
			sigma = r.Sigma
		}
		return Rating{Mu: mu, Sigma: sigma}
	}

	newWinners := make([]Rating, len(winners))
	for i, r := range winners {
		newWinners[i] = update(r, 1)
	}
	newLosers := make([]Rating, len(losers))
	for i, r := range losers {
		newLosers[i] = update(r, -1)
	}
	return newWinners, newLosers, nil
}

// WinProbability is the probability that team a beats team b.
func (e Env) WinProbability(a, b []Rating) float64 {
	var deltaMu, sumSigma2 float64
	for _, r := range a {
		deltaMu += r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	for _, r := range b {
		deltaMu -= r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	size := float64(len(a) + len(b))
	denom := math.Sqrt(size*e.Beta*e.Beta + sumSigma2)
	if denom == 0 {
		return 0.5
	}
	return cdf(deltaMu / denom)
}

// Quality is the draw likelihood of a game between a and b, in (0, 1].
// Values near 1 indicate an even pairing.
func (e Env) Quality(a, b []Rating) float64 {
	var deltaMu, sumSigma2 float64
	for _, r := range a {
		deltaMu += r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	for _, r := range b {
		deltaMu -= r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	beta2 := float64(len(a)+len(b)) * e.Beta * e.Beta
	denom := beta2 + sumSigma2
	return math.Sqrt(beta2/denom) * math.Exp(-deltaMu*deltaMu/(2*denom))
}
