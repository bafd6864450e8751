package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tadapt/internal/discovery"
)

// Config holds all configuration for the application
type Config struct {
	// Report settings
	ReportPath string `yaml:"report"`
	Format     string `yaml:"format"`

	// Run settings
	FailFast     bool `yaml:"fail_fast"`
	RequireMatch bool `yaml:"require_match"`
	Progress     bool `yaml:"progress"`

	// History database, empty disables history
	HistoryDSN   string `yaml:"history"`
	HistoryLimit int    `yaml:"history_limit"`

	LogLevel string `yaml:"log_level"`

	// External adapter driven by cmd/tadapt
	Exec Exec `yaml:"exec"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Exec describes an external adapter binary.
type Exec struct {
	Path       string   `yaml:"path"`
	Args       []string `yaml:"args"`
	Dir        string   `yaml:"dir"`
	ReportFile string   `yaml:"report"` // empty follows the vocabulary
	Vocabulary string   `yaml:"vocabulary"`
}

// Flags holds the mode selected on the command line
type Flags struct {
	ListTests  bool
	Test       string
	Failed     bool
	Quiet      bool
	ConfigFile string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		ReportPath:   DefaultReportPath,
		Format:       DefaultFormat,
		HistoryLimit: DefaultHistoryLimit,
		LogLevel:     DefaultLogLevel,
		Exec: Exec{
			Vocabulary: DefaultVocabulary,
		},
	}
}

// Load builds the configuration from defaults, the YAML file, the dotenv
// file and the environment, in increasing order of precedence. An empty
// configFile falls back to DefaultConfigFile when that file exists.
func Load(configFile, envFile string) (*Config, error) {
	cfg := New()
	if err := cfg.LoadInto(configFile, envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto is Load layered over the values already in c instead of the
// package defaults.
func (c *Config) LoadInto(configFile, envFile string) error {
	path := configFile
	if path == "" {
		path = DefaultConfigFile
	}
	if err := c.LoadFile(path); err != nil {
		if configFile != "" || !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if envFile != "" {
		// .env file might not exist, that's okay - use environment variables
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return c.ApplyEnv(os.LookupEnv)
}

// LoadFile merges a YAML configuration file into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file at path %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from TADAPT_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("REPORT", &c.ReportPath)
	str("FORMAT", &c.Format)
	str("HISTORY", &c.HistoryDSN)
	str("LOG_LEVEL", &c.LogLevel)
	str("EXEC", &c.Exec.Path)
	str("EXEC_DIR", &c.Exec.Dir)
	str("EXEC_REPORT", &c.Exec.ReportFile)
	str("VOCABULARY", &c.Exec.Vocabulary)
	if err := boolean("FAIL_FAST", &c.FailFast); err != nil {
		return err
	}
	if err := boolean("REQUIRE_MATCH", &c.RequireMatch); err != nil {
		return err
	}
	return boolean("PROGRESS", &c.Progress)
}

// Validate checks settings that cannot be checked while parsing.
func (c *Config) Validate() error {
	if c.ReportPath == "" {
		return fmt.Errorf("report path must not be empty")
	}
	switch strings.ToLower(c.Format) {
	case "xml", "json":
	default:
		return fmt.Errorf("invalid format %q: must be xml or json", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Flags.ListTests && c.Flags.Test != "" {
		return fmt.Errorf("--list-tests and --test are mutually exclusive")
	}
	if c.Flags.Failed && c.Flags.Test != "" {
		return fmt.Errorf("--failed and --test are mutually exclusive")
	}
	return nil
}

// CheckReportCollision fails when a run's report would be the file the
// external adapter rewrites on every invocation. Only run modes write a
// report, so only they need the check.
func (c *Config) CheckReportCollision() error {
	if c.Exec.Path != "" && samePath(c.ReportPath, c.ExecReportPath()) {
		return fmt.Errorf("report %s would be overwritten by the adapter's own report; choose another --report", c.ReportPath)
	}
	return nil
}

// Level returns the configured diagnostics level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
}

// ExecReportFile returns the report file name of the external adapter,
// defaulting to the one its vocabulary writes.
func (c *Config) ExecReportFile() string {
	if c.Exec.ReportFile != "" {
		return c.Exec.ReportFile
	}
	vocab, err := discovery.VocabularyByName(c.Exec.Vocabulary)
	if err != nil {
		return discovery.UnitTestPPReport
	}
	return vocab.ReportFile
}

// ExecReportPath returns where the external adapter writes its report.
func (c *Config) ExecReportPath() string {
	file := c.ExecReportFile()
	if filepath.IsAbs(file) || c.Exec.Dir == "" {
		return file
	}
	return filepath.Join(c.Exec.Dir, file)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
