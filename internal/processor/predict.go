package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/mauv0809/ndv-elo/internal/trueskill"
)

// ErrInvalidLineup is returned for sides that are empty or share a player.
var ErrInvalidLineup = errors.New("invalid lineup")

// Predict estimates the outcome of a game between two sides from their
// current ratings in a competition. Unrated players count with the default
// prior.
func (p *Processor) Predict(ctx context.Context, competitionID int64, home, away []int64) (Prediction, error) {
	if len(home) == 0 || len(away) == 0 {
		return Prediction{}, fmt.Errorf("%w: both sides need players", ErrInvalidLineup)
	}
	all := append(append([]int64{}, home...), away...)
	if hasDuplicate(all) {
		return Prediction{}, fmt.Errorf("%w: a player is listed twice", ErrInvalidLineup)
	}

	ratings, err := p.store.Ratings(ctx, competitionID, all)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to load ratings: %w", err)
	}

	var prediction Prediction
	side := func(ids []int64) []trueskill.Rating {
		out := make([]trueskill.Rating, 0, len(ids))
		for _, id := range ids {
			r, ok := ratings[id]
			if !ok {
				prediction.Unrated = append(prediction.Unrated, id)
				out = append(out, p.env.NewRating())
				continue
			}
			out = append(out, toTrueSkill(r))
		}
		return out
	}
	homeSide, awaySide := side(home), side(away)

	prediction.HomeWinProbability = p.env.WinProbability(homeSide, awaySide)
	prediction.AwayWinProbability = 1 - prediction.HomeWinProbability
	prediction.Quality = p.env.Quality(homeSide, awaySide)
	return prediction, nil
}
