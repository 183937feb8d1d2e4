package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ndv-elo/internal/config"
	"github.com/spf13/cobra"
)

var (
	host    string
	dbPath  string
	season  string
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ndv-elo",
	Short: "Rate darts league players with TrueSkill",
	Long: `A command-line interface to import crawled league data, compute
player ratings and query the ranking, either against a local database or
against a running ndv-elo server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg.ApplyLogLevel()
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func init() {
	cfg = config.Load()
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:"+cfg.Port, "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBName, "Path of the sqlite database")
	rootCmd.PersistentFlags().StringVar(&season, "season", cfg.Season, "Restrict to one season")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
