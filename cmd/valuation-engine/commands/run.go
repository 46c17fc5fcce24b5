package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpgo/valuation-engine/internal/calculation"
	"github.com/rpgo/valuation-engine/internal/config"
	"github.com/rpgo/valuation-engine/internal/output"
)

var (
	jobConfigPath string
	reportFormat  string
	reportToFile  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a valuation job described by a YAML config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadJobConfig(jobConfigPath)
		if err != nil {
			return err
		}

		log.Info().Str("config", jobConfigPath).Msg("loaded job config")

		policies, err := config.LoadPolicies(cfg.DataFiles.Policies)
		if err != nil {
			return fmt.Errorf("failed to load policies: %w", err)
		}
		mortality, err := config.LoadMortalityTable(cfg.DataFiles.Mortality)
		if err != nil {
			return fmt.Errorf("failed to load mortality table: %w", err)
		}
		lapse, err := config.LoadLapseTable(cfg.DataFiles.Lapse)
		if err != nil {
			return fmt.Errorf("failed to load lapse table: %w", err)
		}
		expense, err := config.LoadExpenseRecord(cfg.DataFiles.Expense)
		if err != nil {
			return fmt.Errorf("failed to load expense record: %w", err)
		}

		tables := &calculation.AssumptionTables{
			Mortality: mortality,
			Lapse:     lapse,
			Expense:   expense,
		}

		opts := calculation.NewOptions()
		if cfg.Options.WorkerCount > 0 {
			opts.WorkerCount = cfg.Options.WorkerCount
		}
		if cfg.Options.ChunkSize > 0 {
			opts.ChunkSize = cfg.Options.ChunkSize
		}
		opts.RetainDistribution = cfg.Options.RetainDistribution
		if cfg.Options.ReproducibleMode != nil {
			opts.ReproducibleMode = *cfg.Options.ReproducibleMode
		}
		if cfg.Options.ProgressReportIntervalTasks > 0 {
			opts.ProgressReportIntervalTasks = cfg.Options.ProgressReportIntervalTasks
		}
		opts.ProgressCallback = func(percent int) {
			log.Debug().Int("percent", percent).Msg("valuation progress")
		}

		driver := calculation.NewValuationDriver()
		driver.SetLogger(calculation.NewZerologLogger(log))

		result, err := driver.RunValuation(policies, tables, cfg.ScenarioParams, cfg.ResolvedMultipliers(), cfg.MasterSeed, cfg.ScenarioCount, opts)
		if err != nil {
			return fmt.Errorf("valuation run failed: %w", err)
		}

		return output.GenerateReport(result, reportFormat, reportToFile)
	},
}

func init() {
	runCmd.Flags().StringVarP(&jobConfigPath, "config", "c", "", "path to the job YAML config (required)")
	runCmd.Flags().StringVarP(&reportFormat, "format", "f", "console", "report format: console, json, csv, html")
	runCmd.Flags().BoolVar(&reportToFile, "to-file", false, "write the report to a timestamped file instead of stdout")
	_ = runCmd.MarkFlagRequired("config")
}
