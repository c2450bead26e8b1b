package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Tracker configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Database (session journal) configuration
	Database DatabaseConfig `yaml:"database"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Log configuration
	Log LogConfig `yaml:"log"`
}

// TrackerConfig holds polling behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" split_words:"true"`
	MinPollInterval time.Duration `yaml:"-" ignored:"true"`
	MaxPollInterval time.Duration `yaml:"-" ignored:"true"`

	// Simulate selects the simulation provider instead of the host OS one
	Simulate         bool  `yaml:"simulate"`
	SimulationSeed   int64 `yaml:"simulation_seed" split_words:"true"`
	SimulationPeople int   `yaml:"simulation_people" split_words:"true"` // 0 picks a seeded count

	// ExcludeTitles are extra window titles never tracked
	ExcludeTitles []string `yaml:"exclude_titles" split_words:"true"`
}

// DatabaseConfig holds session journal configuration
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty means ~/.config/openbob/openbob.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file" split_words:"true"`
	LogFile string `yaml:"log_file" split_words:"true"`
}

// WebConfig holds web server configuration
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// SimulationMaxPeople is the size of the simulated household roster
const SimulationMaxPeople = 9

// Default returns a Config with sensible default values
func Default() *Config {
	uid := os.Getuid()
	if uid < 0 {
		uid = 0
	}

	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    1 * time.Second,
			MinPollInterval: 100 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			SimulationSeed:  1,
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    "",
		},
		Daemon: DaemonConfig{
			PIDFile: filepath.Join(os.TempDir(), fmt.Sprintf("openbob-%d.pid", uid)),
			LogFile: filepath.Join(os.TempDir(), fmt.Sprintf("openbob-%d.log", uid)),
		},
		Web: WebConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    10000 + uid%50000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if p := c.Tracker.SimulationPeople; p != 0 && (p < 2 || p > SimulationMaxPeople) {
		return fmt.Errorf("simulation people must be between 2 and %d, got %d", SimulationMaxPeople, p)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Tracker:
    Poll Interval: %v
    Simulate: %v
    Simulation Seed: %d
    Excluded Titles: %v
  Database:
    Enabled: %v
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Enabled: %v
    Host: %s
    Port: %d
  Log:
    Level: %s`,
		c.Tracker.PollInterval,
		c.Tracker.Simulate,
		c.Tracker.SimulationSeed,
		c.Tracker.ExcludeTitles,
		c.Database.Enabled,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Enabled,
		c.Web.Host,
		c.Web.Port,
		c.Log.Level,
	)
}
