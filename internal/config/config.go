// Package config provides unified configuration loading for sirsweep.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/sirsweep/internal/epidemic"
	"github.com/nvandessel/sirsweep/internal/netlib"
	"github.com/nvandessel/sirsweep/internal/network"
	"github.com/nvandessel/sirsweep/internal/sweep"
)

// Library storage formats.
const (
	FormatFile = "file"
	FormatBolt = "bolt"
)

// Config contains all sirsweep configuration settings.
type Config struct {
	// Library locates and shapes the network library.
	Library LibraryConfig `json:"library" yaml:"library"`

	// Results locates the sweep output.
	Results ResultsConfig `json:"results" yaml:"results"`

	// Workers is the pool size for generation and sweeps. 0 means half the CPUs.
	Workers int `json:"workers" yaml:"workers"`

	// Sweep is the parameter grid.
	Sweep SweepConfig `json:"sweep" yaml:"sweep"`

	// Logging contains settings for operational and progress logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LibraryConfig configures the network library.
type LibraryConfig struct {
	// Dir is the library root directory.
	Dir string `json:"dir" yaml:"dir"`

	// Format is the storage backend: "file" (one snapshot per batch) or "bolt".
	Format string `json:"format" yaml:"format"`

	// Seed drives network generation.
	Seed uint64 `json:"seed" yaml:"seed"`

	Nodes     int `json:"nodes" yaml:"nodes"`
	Degree    int `json:"degree" yaml:"degree"`
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Tries bounds connected-graph retries. 0 means one per node.
	Tries int `json:"tries" yaml:"tries"`
}

// ResultsConfig configures where sweep output is written.
type ResultsConfig struct {
	// Dir receives artifacts, the catalog and the progress log.
	Dir string `json:"dir" yaml:"dir"`
}

// SweepConfig is the sweep grid. Every list field accepts a scalar.
type SweepConfig struct {
	// Seed drives the simulation random streams.
	Seed uint64 `json:"seed" yaml:"seed"`

	// MaxSteps is the per-run timestep ceiling.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	P        FloatList    `json:"p" yaml:"p"`
	Batches  IntList      `json:"batches" yaml:"batches"`
	Beta     FloatList    `json:"beta" yaml:"beta"`
	Gamma    FloatList    `json:"gamma" yaml:"gamma"`
	Rho      FloatList    `json:"rho" yaml:"rho"`
	Chi      FloatList    `json:"chi" yaml:"chi"`
	Strategy StrategyList `json:"strategy" yaml:"strategy"`
	Mutation BoolList     `json:"mutation" yaml:"mutation"`
}

// LoggingConfig configures sirsweep's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the progress log in the results directory.
	// "trace" additionally logs every simulation run.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config for the reference campaign: every ladder point,
// batches 4 to 7, and the thesis parameter grid.
func Default() *Config {
	rho := make(FloatList, 10)
	for i := range rho {
		rho[i] = float64(i) / 10
	}
	return &Config{
		Library: LibraryConfig{
			Dir:       "network_library",
			Format:    FormatFile,
			Seed:      network.LibrarySeed,
			Nodes:     network.Nodes,
			Degree:    network.Degree,
			BatchSize: network.BatchSize,
		},
		Results: ResultsConfig{
			Dir: "simulation_results",
		},
		Sweep: SweepConfig{
			Seed:     1,
			MaxSteps: epidemic.DefaultConfig().MaxSteps,
			P:        network.Ladder(),
			Batches:  IntList{4, 5, 6, 7},
			Beta:     FloatList{0.45},
			Gamma:    FloatList{1},
			Rho:      rho,
			Chi:      FloatList{0.004},
			Strategy: epidemic.Strategies(),
			Mutation: BoolList{true, false},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration.
// Order: defaults -> path (if non-empty) -> environment variables -> Validate.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file omits keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Library.Dir = expandEnvVars(config.Library.Dir)
	config.Results.Dir = expandEnvVars(config.Results.Dir)
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Library.Dir == "" {
		return fmt.Errorf("library.dir must be set")
	}
	if c.Library.Format != FormatFile && c.Library.Format != FormatBolt {
		return fmt.Errorf("invalid library format: %s (valid: %s, %s)", c.Library.Format, FormatFile, FormatBolt)
	}
	if c.Results.Dir == "" {
		return fmt.Errorf("results.dir must be set")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.Sweep.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.Sweep.MaxSteps)
	}
	if _, err := c.LibrarySpec(nil, nil); err != nil {
		return err
	}
	if err := c.SweepOptions().Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}
	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}
	return nil
}

// SweepOptions converts the sweep grid to orchestrator options.
func (c *Config) SweepOptions() sweep.Options {
	return sweep.Options{
		P:          c.Sweep.P,
		Batches:    c.Sweep.Batches,
		Beta:       c.Sweep.Beta,
		Gamma:      c.Sweep.Gamma,
		Rho:        c.Sweep.Rho,
		Chi:        c.Sweep.Chi,
		Strategies: c.Sweep.Strategy,
		Mutation:   c.Sweep.Mutation,
	}
}

// OrchestratorConfig returns the orchestrator settings.
func (c *Config) OrchestratorConfig() sweep.Config {
	return sweep.Config{
		Workers: c.Workers,
		Seed:    c.Sweep.Seed,
		Engine:  epidemic.Config{MaxSteps: c.Sweep.MaxSteps},
	}
}

// LibrarySpec returns the generation spec for the given ladder indices and
// batches (empty means all).
func (c *Config) LibrarySpec(indices, batches []int) (netlib.LibrarySpec, error) {
	spec := netlib.LibrarySpec{
		Nodes:     c.Library.Nodes,
		Degree:    c.Library.Degree,
		BatchSize: c.Library.BatchSize,
		Indices:   indices,
		Batches:   batches,
		Tries:     c.Library.Tries,
		Seed:      c.Library.Seed,
		Workers:   c.Workers,
	}
	if err := spec.Validate(); err != nil {
		return netlib.LibrarySpec{}, err
	}
	return spec, nil
}

// OpenLibrary opens the configured batch store.
func (c *Config) OpenLibrary() (netlib.BatchStore, error) {
	switch c.Library.Format {
	case FormatBolt:
		store, err := netlib.NewBoltStore(c.Library.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case FormatFile:
		return netlib.NewFileStore(c.Library.Dir), nil
	default:
		return nil, fmt.Errorf("invalid library format: %s", c.Library.Format)
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("SIRSWEEP_LIBRARY_DIR"); v != "" {
		config.Library.Dir = v
	}
	if v := os.Getenv("SIRSWEEP_LIBRARY_FORMAT"); v != "" {
		config.Library.Format = v
	}
	if v := os.Getenv("SIRSWEEP_RESULTS_DIR"); v != "" {
		config.Results.Dir = v
	}
	if v := os.Getenv("SIRSWEEP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIRSWEEP_WORKERS: %w", err)
		}
		config.Workers = n
	}
	if v := os.Getenv("SIRSWEEP_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SIRSWEEP_SEED: %w", err)
		}
		config.Sweep.Seed = n
	}
	if v := os.Getenv("SIRSWEEP_BATCHES"); v != "" {
		batches, err := parseIntList(v)
		if err != nil {
			return fmt.Errorf("SIRSWEEP_BATCHES: %w", err)
		}
		config.Sweep.Batches = batches
	}
	if v := os.Getenv("SIRSWEEP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("SIRSWEEP_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	return nil
}

// parseIntList parses a comma-separated list of ints.
func parseIntList(s string) (IntList, error) {
	var out IntList
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
