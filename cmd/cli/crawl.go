package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/crawler"
	"github.com/mauv0809/ndv-elo/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	source   crawler.Source
	fromDate string
	outPath  string
)

func init() {
	crawlCmd.Flags().StringVar(&source.Association, "association", "", "Association of the competition")
	crawlCmd.Flags().StringVar(&source.Competition, "competition", "", "Name of the competition")
	crawlCmd.Flags().StringVar(&source.SquadURL, "squad", "", "URL or saved file of the squad page")
	crawlCmd.Flags().StringVar(&source.GameplanURL, "gameplan", "", "URL or saved file of the game plan page")
	crawlCmd.Flags().StringVar(&fromDate, "from", "", "Skip fixtures before this date (YYYY-MM-DD)")
	crawlCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the payload to this file instead of stdout")
	_ = crawlCmd.MarkFlagRequired("association")
	_ = crawlCmd.MarkFlagRequired("competition")

	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a competition into an import payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		if season == "" {
			return fmt.Errorf("--season is required")
		}
		var from time.Time
		if fromDate != "" {
			var err error
			if from, err = time.Parse("2006-01-02", fromDate); err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
		}

		data, err := crawler.New(crawler.NewClient()).Competition(cmd.Context(), source, from)
		if err != nil {
			return err
		}
		payload := ingest.Payload{
			Season:       season,
			CrawledAt:    time.Now().UTC(),
			FromDate:     from,
			Competitions: []ingest.CompetitionData{data},
		}
		if err := payload.Validate(); err != nil {
			return err
		}

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("failed to write payload: %w", err)
		}
		log.Info("Payload written", "fixtures", len(data.TeamMatches), "players", len(data.Players), "out", outPath)
		return nil
	},
}
