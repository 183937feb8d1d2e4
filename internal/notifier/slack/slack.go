package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/metrics"
	"github.com/mauv0809/ndv-elo/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// leaderboardSize caps the ranks posted to a channel.
const leaderboardSize = 10

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendRatingSummary(report notifier.RatingReport, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatRatingSummary(report), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(competition league.Competition, entries []league.LeaderboardEntry, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatLeaderboard(competition, entries), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a response body.
func (s *Notifier) FormatLeaderboardResponse(competition league.Competition, entries []league.LeaderboardEntry) (any, error) {
	return s.formatLeaderboard(competition, entries), nil
}

// formatRatingSummary creates the Slack message posted after a rating pass.
func (s *Notifier) formatRatingSummary(report notifier.RatingReport) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎯 Ratings updated 🎯", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if report.MatchesRated == 0 {
		text := "No new team matches to rate."
		if report.Backfilled > 0 {
			text = fmt.Sprintf("No new team matches to rate. %d players received a starting rating.", report.Backfilled)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))
	} else {
		fields := []*slack.TextBlockObject{
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Team matches*\n%d", report.MatchesRated), false, false),
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Latest match*\n%s", report.LastMatchDate.Format("02.01.2006")), false, false),
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Singles*\n%d", report.SinglesRated), false, false),
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Doubles*\n%d", report.DoublesRated), false, false),
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}

	var notes []slack.MixedElement
	if report.Skipped > 0 {
		notes = append(notes, slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("⚠️ %d games skipped for an unusable result", report.Skipped), false, false))
	}
	if report.MissingContext > 0 {
		notes = append(notes, slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("❗ %d players without a competition", report.MissingContext), false, false))
	}
	notes = append(notes, slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Run %s in %s", report.RunID, report.Duration.Round(time.Millisecond)), false, false))
	blocks = append(blocks, slack.NewContextBlock("", notes...))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message ranking a competition by exposure.
func (s *Notifier) formatLeaderboard(competition league.Competition, entries []league.LeaderboardEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s %s (%s) 🏆", competition.Name, competition.Season, competition.Association), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No ratings available yet. Go throw some darts!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, entry := range entries {
		if i == leaderboardSize {
			break
		}
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s (%s)\n> *Skill*: %.2f | μ %.2f σ %.2f",
			rank,
			medal,
			entry.PlayerName,
			entry.ClubName,
			entry.Exposure,
			entry.Mu,
			entry.Sigma,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
