// Package config loads a valuation job from disk: a YAML job description
// (scenario economic parameters, multipliers, driver options, and paths to
// the policy/assumption-table data files) plus the binary or CSV data files
// themselves.
package config

import (
	"fmt"
	"os"

	"github.com/rpgo/valuation-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// JobConfig is the top-level YAML document driving a CLI valuation run.
type JobConfig struct {
	MasterSeed     uint64                `yaml:"master_seed"`
	ScenarioCount  int                   `yaml:"scenario_count"`
	ScenarioParams domain.ScenarioParams `yaml:"scenario_params"`
	Multipliers    domain.Multipliers    `yaml:"multipliers"`
	Options        OptionsConfig         `yaml:"options"`
	DataFiles      DataFiles             `yaml:"data_files"`
}

// OptionsConfig mirrors calculation.Options in a YAML-friendly shape.
type OptionsConfig struct {
	WorkerCount                 int   `yaml:"worker_count"`
	ChunkSize                   int   `yaml:"chunk_size"`
	RetainDistribution          bool  `yaml:"retain_distribution"`
	ReproducibleMode            *bool `yaml:"reproducible_mode"`
	ProgressReportIntervalTasks int   `yaml:"progress_report_interval_tasks"`
}

// DataFiles names the policy and assumption-table inputs. Each accepts
// either a .csv or a .bin path; the loader in tables.go and policies.go
// dispatches on extension so binary and CSV variants produce identical
// in-memory state.
type DataFiles struct {
	Policies  string `yaml:"policies"`
	Mortality string `yaml:"mortality"`
	Lapse     string `yaml:"lapse"`
	Expense   string `yaml:"expense"`
}

// LoadJobConfig reads a YAML job description from disk and validates it
// before calculation begins.
func LoadJobConfig(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job config %s: %w", path, err)
	}

	var cfg JobConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse job config YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("job config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *JobConfig) validate() error {
	if c.ScenarioCount <= 0 {
		return fmt.Errorf("scenario_count must be positive, got %d", c.ScenarioCount)
	}
	if c.DataFiles.Policies == "" {
		return fmt.Errorf("data_files.policies is required")
	}
	if c.DataFiles.Mortality == "" {
		return fmt.Errorf("data_files.mortality is required")
	}
	if c.DataFiles.Lapse == "" {
		return fmt.Errorf("data_files.lapse is required")
	}
	if c.DataFiles.Expense == "" {
		return fmt.Errorf("data_files.expense is required")
	}
	return nil
}

// ResolvedMultipliers returns the configured multipliers, defaulting any
// unset (zero-value) field to 1.0
func (c *JobConfig) ResolvedMultipliers() domain.Multipliers {
	m := c.Multipliers
	if m.Mortality == 0 {
		m.Mortality = 1.0
	}
	if m.Lapse == 0 {
		m.Lapse = 1.0
	}
	if m.Expense == 0 {
		m.Expense = 1.0
	}
	return m
}
