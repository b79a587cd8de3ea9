// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/schedule"
)

// Config holds all LogForge configuration.
type Config struct {
	Version int `yaml:"version"`

	Generator  GeneratorConfig  `yaml:"generator"`
	Simulation SimulationConfig `yaml:"simulation"`
	Labeler    LabelerConfig    `yaml:"labeler"`
	Pool       PoolConfig       `yaml:"pool"`
	Output     OutputConfig     `yaml:"output"`
	Publish    PublishConfig    `yaml:"publish"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GeneratorConfig bounds the random process graphs.
type GeneratorConfig struct {
	MinNodes     int `yaml:"min_nodes"`
	MaxNodes     int `yaml:"max_nodes"`
	MinOutDegree int `yaml:"min_out_degree"`
	MaxOutDegree int `yaml:"max_out_degree"`
}

// SimulationConfig controls case generation.
type SimulationConfig struct {
	Cases       int    `yaml:"cases"`
	StartDate   string `yaml:"start_date"` // YYYY-MM-DD
	EndDate     string `yaml:"end_date"`   // YYYY-MM-DD
	OpeningHour int    `yaml:"opening_hour"`
	ClosingHour int    `yaml:"closing_hour"`
}

// DateRange parses the configured window.
func (s SimulationConfig) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, errors.CodeInvalidDateRange, "invalid start date").
			WithContext("start_date", s.StartDate)
	}
	end, err := time.Parse("2006-01-02", s.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, errors.CodeInvalidDateRange, "invalid end date").
			WithContext("end_date", s.EndDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New(errors.CodeInvalidDateRange, "end date before start date").
			WithContext("start_date", s.StartDate).
			WithContext("end_date", s.EndDate)
	}
	return start, end, nil
}

// Week returns the working window for timestamps.
func (s SimulationConfig) Week() schedule.WorkWeek {
	return schedule.New(s.OpeningHour, s.ClosingHour)
}

// LabelerConfig controls the external naming service.
type LabelerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PoolConfig controls the worker pool.
type PoolConfig struct {
	Workers int   `yaml:"workers"`
	Seed    int64 `yaml:"seed"` // 0 = derive from current time
}

// OutputConfig controls where and how datasets are written.
type OutputConfig struct {
	Dir         string   `yaml:"dir"`
	Formats     []string `yaml:"formats"` // csv | xlsx | parquet | duckdb
	Diagrams    bool     `yaml:"diagrams"`
	Compression string   `yaml:"compression"` // parquet only
}

// PublishConfig controls the optional S3 upload of run artifacts.
type PublishConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // custom endpoint for MinIO etc.
	Prefix          string `yaml:"prefix"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// TelemetryConfig for optional trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Generator: GeneratorConfig{
			MinNodes:     5,
			MaxNodes:     10,
			MinOutDegree: 1,
			MaxOutDegree: 3,
		},
		Simulation: SimulationConfig{
			Cases:       500,
			StartDate:   "2023-01-01",
			EndDate:     "2023-12-31",
			OpeningHour: 9,
			ClosingHour: 18,
		},
		Labeler: LabelerConfig{
			Enabled:     true,
			Endpoint:    "http://localhost:1234/v1/chat/completions",
			Temperature: 0.7,
			MaxTokens:   -1,
			Timeout:     120 * time.Second,
		},
		Pool: PoolConfig{
			Workers: 10,
		},
		Output: OutputConfig{
			Dir:         "./output",
			Formats:     []string{"csv"},
			Diagrams:    true,
			Compression: "snappy",
		},
		Publish: PublishConfig{
			Enabled: false,
			Region:  "us-east-1",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the numeric and date bounds a run depends on.
func (c *Config) Validate() error {
	if c.Generator.MinNodes < 1 {
		return errors.New(errors.CodeInvalidParameter, "generator.min_nodes must be at least 1")
	}
	if c.Generator.MaxNodes < c.Generator.MinNodes {
		return errors.New(errors.CodeInvalidParameter, "generator.max_nodes below generator.min_nodes").
			WithContext("min_nodes", c.Generator.MinNodes).
			WithContext("max_nodes", c.Generator.MaxNodes)
	}
	if c.Generator.MinOutDegree < 1 {
		return errors.New(errors.CodeInvalidParameter, "generator.min_out_degree must be at least 1")
	}
	if c.Generator.MaxOutDegree < c.Generator.MinOutDegree {
		return errors.New(errors.CodeInvalidParameter, "generator.max_out_degree below generator.min_out_degree")
	}
	if c.Simulation.Cases < 1 {
		return errors.New(errors.CodeInvalidParameter, "simulation.cases must be at least 1")
	}
	if c.Pool.Workers < 1 {
		return errors.New(errors.CodeInvalidParameter, "pool.workers must be at least 1")
	}
	if _, _, err := c.Simulation.DateRange(); err != nil {
		return err
	}
	if len(c.Output.Formats) == 0 {
		return errors.New(errors.CodeInvalidParameter, "output.formats must name at least one format")
	}
	return nil
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but report errors for existing files
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	// Ensure directories exist
	m.ensureDirs()

	return nil
}

// LoadFile merges an explicitly named config file, e.g. from a --config
// flag. Unlike Load, a missing file is an error.
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(err, errors.CodeConfigRead, "config file not found").
				WithContext("path", path)
		}
		return err
	}
	m.paths = append(m.paths, path)
	m.ensureDirs()
	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/logforge/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".logforge", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".logforge.yaml"))
	}

	return paths
}

// loadFile merges a single config file into the live configuration.
// Decoding straight into the current value keeps every key the file does
// not mention, including booleans a zero-value merge could not preserve.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, m.config); err != nil {
		return errors.Wrap(err, errors.CodeConfigRead, "failed to parse config file").
			WithContext("path", path)
	}
	return nil
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("LOGFORGE_ENDPOINT"); v != "" {
		m.config.Labeler.Endpoint = v
	}

	if v := os.Getenv("LOGFORGE_MODEL"); v != "" {
		m.config.Labeler.Model = v
	}

	if v := os.Getenv("LOGFORGE_WORKERS"); v != "" {
		var workers int
		if _, err := fmt.Sscanf(v, "%d", &workers); err == nil {
			m.config.Pool.Workers = workers
		}
	}

	if v := os.Getenv("LOGFORGE_SEED"); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			m.config.Pool.Seed = seed
		}
	}

	if v := os.Getenv("LOGFORGE_CASES"); v != "" {
		var cases int
		if _, err := fmt.Sscanf(v, "%d", &cases); err == nil {
			m.config.Simulation.Cases = cases
		}
	}

	if v := os.Getenv("LOGFORGE_OUTPUT_DIR"); v != "" {
		m.config.Output.Dir = v
	}

	if v := os.Getenv("LOGFORGE_LOG_LEVEL"); v != "" {
		m.config.Logging.Level = v
	}

	if v := os.Getenv("LOGFORGE_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Endpoint = v
	}
}

// ensureDirs creates necessary directories.
func (m *Manager) ensureDirs() {
	if m.config.Output.Dir != "" {
		os.MkdirAll(m.config.Output.Dir, 0755)
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".logforge")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
