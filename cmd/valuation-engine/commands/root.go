// Package commands wires the valuation-engine CLI together: persistent
// flags, terminal-aware logging setup, and the run/version subcommands.
package commands

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	verbose bool
	log     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "valuation-engine",
	Short: "valuation-engine computes stochastic NPV distributions for life-insurance portfolios",
	Long: `valuation-engine runs a deterministic Monte Carlo valuation of a life-insurance
portfolio: it projects year-by-year cashflows under randomly generated economic
scenarios and reports aggregate statistics (mean, stddev, percentiles, CTE95)
across the simulated distribution.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal,
		}).Level(level).With().Timestamp().Logger()
	},
}

// Execute runs the CLI; it is the sole entry point called from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
