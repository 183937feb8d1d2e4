package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/database"
	"github.com/mauv0809/ndv-elo/internal/ingest"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/metrics"
	"github.com/mauv0809/ndv-elo/internal/notifier/slack"
	"github.com/mauv0809/ndv-elo/internal/processor"
	"github.com/mauv0809/ndv-elo/internal/pubsub"
	"github.com/spf13/cobra"
)

var (
	dryRun      bool
	rerate      bool
	notify      bool
	competition int64
	home        string
	away        string
)

// Commands working on the database directly.
func init() {
	computeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Rate without writing anything")
	computeCmd.Flags().BoolVar(&notify, "notify", false, "Post the summary to Slack and Pub/Sub when configured")
	remoteComputeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Rate without writing anything")
	resetCmd.Flags().BoolVar(&rerate, "rerate", false, "Also mark every team match as unrated")
	leaderboardCmd.Flags().Int64Var(&competition, "competition", 0, "Competition id, defaults to the newest competition")
	leaderboardCmd.Flags().BoolVar(&notify, "notify", false, "Post the leaderboard to Slack")
	predictCmd.Flags().Int64Var(&competition, "competition", 0, "Competition id")
	predictCmd.Flags().StringVar(&home, "home", "", "Comma separated player ids of the home side")
	predictCmd.Flags().StringVar(&away, "away", "", "Comma separated player ids of the away side")
	_ = predictCmd.MarkFlagRequired("competition")
	_ = predictCmd.MarkFlagRequired("home")
	_ = predictCmd.MarkFlagRequired("away")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(predictCmd)
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Rate every unrated team match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, db *sql.DB, store league.LeagueStore) error {
			metricsSvc := metrics.NewService()
			proc, closeProc := newProcessor(ctx, store, metricsSvc)
			defer closeProc()

			summary, err := proc.ComputeRatings(ctx, processor.Options{Season: season, DryRun: dryRun})
			if err != nil && !errors.Is(err, processor.ErrMissingContext) {
				return err
			}
			if notify {
				proc.Publish(summary, dryRun)
			}
			if !dryRun {
				counters := metrics.NewStore(db)
				for key, delta := range summary.Counters() {
					counters.Add(key, delta)
				}
			}
			printJSON(summary)
			return err
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every rating to the default belief",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, _ *sql.DB, store league.LeagueStore) error {
			n, err := store.ResetRatings(ctx, rerate)
			if err != nil {
				return err
			}
			log.Info("Ratings reset", "ratings", n, "rerate", rerate)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <payload.json>...",
	Short: "Import crawled league data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, _ *sql.DB, store league.LeagueStore) error {
			importer := ingest.New(store)
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				payload, err := ingest.Decode(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				summary, err := importer.Import(ctx, payload)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				log.Info("Imported payload", "file", path, "teamMatches", summary.TeamMatches, "new", summary.NewMatches, "singles", summary.SinglesAdded, "doubles", summary.DoublesAdded)
			}
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the ranking of a competition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, _ *sql.DB, store league.LeagueStore) error {
			comp, err := pickCompetition(ctx, store, competition)
			if err != nil {
				return err
			}
			entries, err := store.Leaderboard(ctx, comp.ID)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("#", "Player", "Club", "Skill", "μ", "σ", "Last game")
			for i, e := range entries {
				t.Row(
					strconv.Itoa(i+1),
					e.PlayerName,
					e.ClubName,
					fmt.Sprintf("%.2f", e.Exposure),
					fmt.Sprintf("%.2f", e.Mu),
					fmt.Sprintf("%.2f", e.Sigma),
					e.LastUpdate.Format(league.DateLayout),
				)
			}
			fmt.Printf("%s %s (%s)\n", comp.Name, comp.Season, comp.Association)
			fmt.Println(t.Render())

			if notify && cfg.Slack.Enabled() {
				n := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metrics.NewService())
				return n.SendLeaderboard(comp, entries, false)
			}
			return nil
		})
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate the outcome of a game between two lineups",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeIDs, err := parseIDs(home)
		if err != nil {
			return err
		}
		awayIDs, err := parseIDs(away)
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, _ *sql.DB, store league.LeagueStore) error {
			proc := processor.New(store, nil, metrics.NewService(), nil)
			prediction, err := proc.Predict(ctx, competition, homeIDs, awayIDs)
			if err != nil {
				return err
			}
			printJSON(prediction)
			return nil
		})
	},
}

// withStore opens the configured database for the duration of fn.
func withStore(ctx context.Context, fn func(ctx context.Context, db *sql.DB, store league.LeagueStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, teardown, err := database.InitDB(dbPath, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer teardown()
	return fn(ctx, db, league.New(db))
}

// newProcessor wires the optional Slack and Pub/Sub integrations. The returned
// func releases the Pub/Sub client.
func newProcessor(ctx context.Context, store league.LeagueStore, metricsSvc metrics.Metrics) (*processor.Processor, func()) {
	var n processor.Notifier
	if cfg.Slack.Enabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	}
	var ps pubsub.PubSubClient
	closeFn := func() {}
	if cfg.ProjectID != "" {
		client, err := pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Warn("Pub/Sub disabled", "error", err)
		} else {
			ps = client
			closeFn = func() { client.Close() }
		}
	}
	return processor.New(store, n, metricsSvc, ps), closeFn
}

func pickCompetition(ctx context.Context, store league.LeagueStore, id int64) (league.Competition, error) {
	if id != 0 {
		return store.GetCompetition(ctx, id)
	}
	competitions, err := store.Competitions(ctx)
	if err != nil {
		return league.Competition{}, err
	}
	if len(competitions) == 0 {
		return league.Competition{}, fmt.Errorf("no competitions: %w", league.ErrNotFound)
	}
	return competitions[0], nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error("Failed to print result", "error", err)
	}
}
