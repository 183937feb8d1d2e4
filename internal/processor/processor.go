package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/metrics"
	"github.com/mauv0809/ndv-elo/internal/notifier"
	"github.com/mauv0809/ndv-elo/internal/pubsub"
	"github.com/mauv0809/ndv-elo/internal/trueskill"
)

// ErrMissingContext marks a player that has neither a rating nor a default
// competition, so no competition can be chosen to rate them in.
var ErrMissingContext = errors.New("player has no rating and no default competition")

// New creates a new Processor with the default TrueSkill environment.
// notifier and pubsub may be nil when those integrations are disabled.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		env:      trueskill.Default(),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for ratings of players whose
// competition has no matches yet.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// WithEnv replaces the TrueSkill parameters.
func (p *Processor) WithEnv(env trueskill.Env) *Processor {
	p.env = env
	return p
}

// ComputeRatings applies every unrated team match to the skill ratings in
// date order, one transaction per team match, and then gives every player a
// starting rating in their default competition.
//
// A store failure aborts the pass; team matches committed before it stay
// rated. Players without any competition are reported in the returned
// error, joined from ErrMissingContext errors, after the pass completed.
func (p *Processor) ComputeRatings(ctx context.Context, opts Options) (summary Summary, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	summary = Summary{RunID: uuid.NewString(), DryRun: opts.DryRun}
	log.Info("Starting rating pass", "runID", summary.RunID, "season", opts.Season, "dryRun", opts.DryRun)
	p.metrics.IncRatingPasses()
	defer func() {
		summary.Duration = time.Since(start)
		p.metrics.SetLastPassDuration(summary.Duration.Seconds())
	}()

	matches, err := p.store.UnratedTeamMatches(ctx, opts.Season)
	if err != nil {
		return summary, fmt.Errorf("failed to load unrated team matches: %w", err)
	}
	log.Info("Found team matches to rate", "count", len(matches))

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		matchStart := time.Now()
		counts, err := p.rateTeamMatch(ctx, match, opts.DryRun)
		if err != nil {
			log.Error("Failed to rate team match", "error", err, "matchID", match.ID, "date", match.Date.Format(league.DateLayout))
			return summary, fmt.Errorf("team match %d of %s: %w", match.ID, match.Date.Format(league.DateLayout), err)
		}
		if counts.alreadyRated {
			continue
		}
		summary.MatchesRated++
		summary.SinglesRated += counts.singles
		summary.DoublesRated += counts.doubles
		summary.Skipped += counts.skipped
		summary.LastMatchDate = match.Date
		if !opts.DryRun {
			p.metrics.IncTeamMatchesRated()
			p.metrics.ObserveMatchDuration(time.Since(matchStart).Seconds())
		}
	}

	if opts.DryRun {
		log.Info("[Dry Run] Skipping default rating backfill")
	} else {
		n, err := p.backfillDefaults(ctx)
		summary.Backfilled = n
		if err != nil {
			return summary, err
		}
	}

	missing, err := p.missingContext(ctx)
	if err != nil {
		return summary, err
	}
	var errs []error
	for _, player := range missing {
		summary.MissingContext = append(summary.MissingContext, player.ID)
		errs = append(errs, fmt.Errorf("player %d (%s): %w", player.ID, player.Name, ErrMissingContext))
	}

	log.Info("Rating pass finished",
		"runID", summary.RunID,
		"matches", summary.MatchesRated,
		"singles", summary.SinglesRated,
		"doubles", summary.DoublesRated,
		"skipped", summary.Skipped,
		"backfilled", summary.Backfilled,
		"missingContext", len(summary.MissingContext),
	)
	return summary, errors.Join(errs...)
}

// rateTeamMatch rates the sub-matches of one team match and flags it.
// Nothing is written unless every step succeeded.
func (p *Processor) rateTeamMatch(ctx context.Context, match league.TeamMatch, dryRun bool) (matchCounts, error) {
	var counts matchCounts
	log.Debug("Rating team match", "matchID", match.ID, "date", match.Date.Format(league.DateLayout))

	tx, err := p.store.BeginMatch(ctx)
	if err != nil {
		return counts, err
	}

	// Flag first, so a pass working from a stale list of unrated matches
	// finds the match taken before it applies any game.
	claimed, err := tx.MarkRated(match.ID)
	if err != nil {
		tx.Rollback()
		return counts, err
	}
	if !claimed {
		log.Info("Team match already rated, skipping", "matchID", match.ID)
		counts.alreadyRated = true
		return counts, tx.Rollback()
	}

	singles, err := tx.SinglesMatches(match.ID)
	if err != nil {
		tx.Rollback()
		return counts, err
	}
	for _, s := range singles {
		rated, err := p.rateSingles(tx, match, s)
		if err != nil {
			tx.Rollback()
			return counts, err
		}
		if rated {
			counts.singles++
		} else {
			counts.skipped++
		}
		if !dryRun {
			if rated {
				p.metrics.IncSubMatchesRated(metrics.KindSingles)
			} else {
				p.metrics.IncSubMatchesSkipped(metrics.KindSingles)
			}
		}
	}

	doubles, err := tx.DoublesMatches(match.ID)
	if err != nil {
		tx.Rollback()
		return counts, err
	}
	for _, d := range doubles {
		rated, err := p.rateDoubles(tx, match, d)
		if err != nil {
			tx.Rollback()
			return counts, err
		}
		if rated {
			counts.doubles++
		} else {
			counts.skipped++
		}
		if !dryRun {
			if rated {
				p.metrics.IncSubMatchesRated(metrics.KindDoubles)
			} else {
				p.metrics.IncSubMatchesSkipped(metrics.KindDoubles)
			}
		}
	}

	if dryRun {
		log.Info("[Dry Run] Would commit team match", "matchID", match.ID, "singles", counts.singles, "doubles", counts.doubles)
		return counts, tx.Rollback()
	}
	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}

// rateSingles applies one singles game. It reports false for a game that
// was skipped.
func (p *Processor) rateSingles(tx MatchTx, match league.TeamMatch, s league.SinglesMatch) (bool, error) {
	homeWins, err := ParseResult(s.Result)
	if err != nil {
		log.Info("Skipping singles with unusable result", "matchID", match.ID, "singlesID", s.ID, "result", s.Result)
		return false, nil
	}
	if s.HomePlayerID == s.AwayPlayerID {
		log.Info("Skipping singles against oneself", "matchID", match.ID, "singlesID", s.ID, "playerID", s.HomePlayerID)
		return false, nil
	}

	ratings, err := p.loadRatings(tx, match, s.HomePlayerID, s.AwayPlayerID)
	if err != nil {
		return false, err
	}
	home, away := ratings[0], ratings[1]

	if homeWins {
		home, away = p.rate1vs1(home, away)
	} else {
		away, home = p.rate1vs1(away, home)
	}
	return true, p.saveRatings(tx, match, home, away)
}

// rateDoubles applies one doubles game as a two against two team game.
func (p *Processor) rateDoubles(tx MatchTx, match league.TeamMatch, d league.DoublesMatch) (bool, error) {
	homeWins, err := ParseResult(d.Result)
	if err != nil {
		log.Info("Skipping doubles with unusable result", "matchID", match.ID, "doublesID", d.ID, "result", d.Result)
		return false, nil
	}
	ids := []int64{d.HomePlayer1ID, d.HomePlayer2ID, d.AwayPlayer1ID, d.AwayPlayer2ID}
	if hasDuplicate(ids) {
		log.Info("Skipping doubles listing a player twice", "matchID", match.ID, "doublesID", d.ID, "players", ids)
		return false, nil
	}

	ratings, err := p.loadRatings(tx, match, ids...)
	if err != nil {
		return false, err
	}
	home, away := ratings[:2], ratings[2:]

	winners, losers := home, away
	if !homeWins {
		winners, losers = away, home
	}
	newWinners, newLosers, err := p.rateTeams(winners, losers)
	if err != nil {
		return false, err
	}
	return true, p.saveRatings(tx, match, append(newWinners, newLosers...)...)
}

// loadRatings gets the rating of every player in the competition of the
// match, falling back to the default prior for unrated players.
func (p *Processor) loadRatings(tx MatchTx, match league.TeamMatch, playerIDs ...int64) ([]league.SkillRating, error) {
	ratings := make([]league.SkillRating, 0, len(playerIDs))
	for _, id := range playerIDs {
		r, found, err := tx.GetRating(id, match.CompetitionID)
		if err != nil {
			return nil, err
		}
		if !found {
			prior := p.env.NewRating()
			r = league.SkillRating{PlayerID: id, CompetitionID: match.CompetitionID, Mu: prior.Mu, Sigma: prior.Sigma}
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

func (p *Processor) saveRatings(tx MatchTx, match league.TeamMatch, ratings ...league.SkillRating) error {
	for i := range ratings {
		ratings[i].LastUpdate = match.Date
		if err := tx.SaveRating(&ratings[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) rate1vs1(winner, loser league.SkillRating) (league.SkillRating, league.SkillRating) {
	w, l := p.env.Rate1vs1(toTrueSkill(winner), toTrueSkill(loser))
	return withBelief(winner, w), withBelief(loser, l)
}

// rateTeams returns the winners and the losers in their input order.
func (p *Processor) rateTeams(winners, losers []league.SkillRating) ([]league.SkillRating, []league.SkillRating, error) {
	w, l, err := p.env.RateTeams(beliefs(winners), beliefs(losers))
	if err != nil {
		return nil, nil, err
	}
	newWinners := make([]league.SkillRating, len(winners))
	for i := range winners {
		newWinners[i] = withBelief(winners[i], w[i])
	}
	newLosers := make([]league.SkillRating, len(losers))
	for i := range losers {
		newLosers[i] = withBelief(losers[i], l[i])
	}
	return newWinners, newLosers, nil
}

// backfillDefaults gives every player a starting rating in their default
// competition. The rating is dated at the latest team match of that
// competition, or now if it has none.
func (p *Processor) backfillDefaults(ctx context.Context) (int, error) {
	players, err := p.store.PlayersMissingDefaultRating(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load players without default rating: %w", err)
	}

	created := 0
	latest := make(map[int64]time.Time)
	for _, player := range players {
		competitionID := *player.DefaultCompetitionID
		date, ok := latest[competitionID]
		if !ok {
			d, found, err := p.store.LatestMatchDate(ctx, competitionID)
			if err != nil {
				return created, fmt.Errorf("failed to load latest match date of competition %d: %w", competitionID, err)
			}
			date = d
			if !found {
				date = p.now()
			}
			latest[competitionID] = date
		}

		prior := p.env.NewRating()
		inserted, err := p.store.CreateRatingIfAbsent(ctx, league.SkillRating{
			PlayerID:      player.ID,
			CompetitionID: competitionID,
			Mu:            prior.Mu,
			Sigma:         prior.Sigma,
			LastUpdate:    date,
		})
		if err != nil {
			return created, fmt.Errorf("failed to create default rating for player %d: %w", player.ID, err)
		}
		if inserted {
			created++
			log.Debug("Created default rating", "playerID", player.ID, "competitionID", competitionID)
		}
	}
	if created > 0 {
		p.metrics.AddRatingsBackfilled(created)
		log.Info("Created default ratings", "count", created)
	}
	return created, nil
}

func (p *Processor) missingContext(ctx context.Context) ([]league.Player, error) {
	players, err := p.store.PlayersWithoutContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players without competition: %w", err)
	}
	for _, player := range players {
		log.Error("Player has no rating and no default competition", "playerID", player.ID, "name", player.Name)
	}
	return players, nil
}

// Publish reports a finished pass to Slack and to Pub/Sub subscribers. A
// pass that changed nothing is not published to Pub/Sub.
func (p *Processor) Publish(summary Summary, dryRun bool) {
	if p.notifier != nil {
		if err := p.notifier.SendRatingSummary(summary.Report(), dryRun); err != nil {
			log.Error("Failed to send rating summary", "error", err, "runID", summary.RunID)
		}
	}
	if p.pubsub == nil || summary.MatchesRated+summary.Backfilled == 0 {
		return
	}
	if dryRun {
		log.Info("[Dry Run] Would publish ratings update", "runID", summary.RunID)
		return
	}
	event := pubsub.RatingsUpdated{
		RunID:         summary.RunID,
		MatchesRated:  summary.MatchesRated,
		SinglesRated:  summary.SinglesRated,
		DoublesRated:  summary.DoublesRated,
		Backfilled:    summary.Backfilled,
		LastMatchDate: summary.LastMatchDate,
		CompletedAt:   p.now(),
	}
	if err := p.pubsub.SendMessage(pubsub.EventRatingsUpdated, event); err != nil {
		log.Error("Failed to publish ratings update", "error", err, "runID", summary.RunID)
	}
}

// Report converts the summary into a notification.
func (s Summary) Report() notifier.RatingReport {
	return notifier.RatingReport{
		RunID:          s.RunID,
		MatchesRated:   s.MatchesRated,
		SinglesRated:   s.SinglesRated,
		DoublesRated:   s.DoublesRated,
		Skipped:        s.Skipped,
		Backfilled:     s.Backfilled,
		MissingContext: len(s.MissingContext),
		LastMatchDate:  s.LastMatchDate,
		Duration:       s.Duration,
	}
}

// Counters returns the summary as persistent counter increments.
func (s Summary) Counters() map[string]int {
	return map[string]int{
		"rating_passes":       1,
		"team_matches_rated":  s.MatchesRated,
		"singles_rated":       s.SinglesRated,
		"doubles_rated":       s.DoublesRated,
		"sub_matches_skipped": s.Skipped,
		"ratings_backfilled":  s.Backfilled,
	}
}

func toTrueSkill(r league.SkillRating) trueskill.Rating {
	return trueskill.Rating{Mu: r.Mu, Sigma: r.Sigma}
}

func beliefs(ratings []league.SkillRating) []trueskill.Rating {
	out := make([]trueskill.Rating, len(ratings))
	for i, r := range ratings {
		out[i] = toTrueSkill(r)
	}
	return out
}

func withBelief(r league.SkillRating, b trueskill.Rating) league.SkillRating {
	r.Mu = b.Mu
	r.Sigma = b.Sigma
	return r
}

func hasDuplicate(ids []int64) bool {
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
