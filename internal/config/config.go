// internal/config/config.go
//
// This package handles configuration and the .claimdesk directory structure.
// Every directory claimdesk runs in gets a .claimdesk/ folder holding the
// config file and the logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DataDir is the name of the directory we create in the working directory
	DataDir = ".claimdesk"

	// DefaultLandingClaim is the claim opened after an upload completes.
	DefaultLandingClaim = "0001"
	// DefaultAPIHost is the loopback interface used by `claimdesk serve`.
	DefaultAPIHost = "127.0.0.1"
	// DefaultAPIPort is the default TCP port for the read-only API.
	DefaultAPIPort = 8787
	// DefaultRatePerSecond is the sustained request rate allowed per client.
	DefaultRatePerSecond = 5.0
	// DefaultBurst is the request burst allowed per client.
	DefaultBurst = 10
	// DefaultCacheTTL bounds how long repository reads are memoized.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

const defaultProjectConfigYAML = `# claimdesk configuration
version: 1

# Claim data. Leave empty to use the built-in demo fixture.
fixture: ""

review:
  # Claim opened once a customer upload finishes.
  landing_claim: "0001"

upload:
  tick: 200ms
  complete: 2500ms
  redirect: 1s

api:
  host: 127.0.0.1
  port: 8787
  rate_per_second: 5
  burst: 10

cache:
  ttl: 5m

logging:
  level: info
`

// ReviewConfig holds review screen preferences.
type ReviewConfig struct {
	LandingClaim string `yaml:"landing_claim"`
}

// UploadConfig holds the simulated upload timers. Zero values fall back to
// the defaults of the upload package.
type UploadConfig struct {
	Tick     time.Duration `yaml:"tick"`
	Complete time.Duration `yaml:"complete"`
	Redirect time.Duration `yaml:"redirect"`
}

// APIConfig configures the read-only HTTP API.
type APIConfig struct {
	Enabled       *bool   `yaml:"enabled,omitempty"`
	Host          string  `yaml:"host"`
	Port          int     `yaml:"port"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// CacheConfig configures repository caching.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig configures the diagnostics logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .claimdesk/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Fixture string        `yaml:"fixture"`
	Review  ReviewConfig  `yaml:"review"`
	Upload  UploadConfig  `yaml:"upload"`
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// Config holds the runtime configuration for claimdesk.
type Config struct {
	// ProjectDir is the directory where the user ran `claimdesk` from
	ProjectDir string

	// DataProjectDir is ProjectDir/.claimdesk
	DataProjectDir string

	Project ProjectConfig
}

// InitDataDir creates the .claimdesk directory structure in the given directory.
//
// Structure created:
// .claimdesk/
// ├── config.yaml
// └── logs/      <- diagnostics and system log
func InitDataDir(projectDir string) error {
	dataDir := filepath.Join(projectDir, DataDir)
	if err := os.MkdirAll(filepath.Join(dataDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig creates a new Config populated from .claimdesk/config.yaml when present.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		DataProjectDir: filepath.Join(projectDir, DataDir),
		Project:        DefaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataProjectDir, "logs")
}

// LogPath returns the diagnostics log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "claimdesk.log")
}

// SystemLogPath returns the user-visible activity log file.
func (c *Config) SystemLogPath() string {
	return filepath.Join(c.LogsDir(), "system.log")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DataProjectDir, "config.yaml")
}

// FixturePath returns the claim fixture override, or "" for the built-in one.
func (c *Config) FixturePath() string {
	return c.Project.Fixture
}

// LandingClaim returns the claim opened after an upload.
func (c *Config) LandingClaim() string {
	return c.Project.Review.LandingClaim
}

// APIEnabled reports whether `serve` may start the API.
func (c *Config) APIEnabled() bool {
	return c.Project.API.Enabled == nil || *c.Project.API.Enabled
}

// APIAddress returns the API bind address in host:port form.
func (c *Config) APIAddress() string {
	return net.JoinHostPort(c.Project.API.Host, strconv.Itoa(c.Project.API.Port))
}

// Revalidate normalizes and validates the project config after in-memory
// overrides were applied.
func (c *Config) Revalidate() error {
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// YAML renders the effective config.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return nil, fmt.Errorf("config: encode config: %w", err)
	}
	return data, nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// DefaultProjectConfig returns the settings used when no config file exists.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Review:  ReviewConfig{LandingClaim: DefaultLandingClaim},
		API: APIConfig{
			Host:          DefaultAPIHost,
			Port:          DefaultAPIPort,
			RatePerSecond: DefaultRatePerSecond,
			Burst:         DefaultBurst,
		},
		Cache:   CacheConfig{TTL: DefaultCacheTTL},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.API.Port == 0 {
		pc.API.Port = DefaultAPIPort
	}
	if pc.API.RatePerSecond == 0 {
		pc.API.RatePerSecond = DefaultRatePerSecond
	}
	if pc.API.Burst == 0 {
		pc.API.Burst = DefaultBurst
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Fixture = resolvePath(base, pc.Fixture)
	pc.Review.LandingClaim = strings.TrimSpace(pc.Review.LandingClaim)
	if pc.Review.LandingClaim == "" {
		pc.Review.LandingClaim = DefaultLandingClaim
	}
	pc.API.Host = strings.TrimSpace(pc.API.Host)
	if pc.API.Host == "" {
		pc.API.Host = DefaultAPIHost
	}
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	if pc.Logging.Level == "" {
		pc.Logging.Level = DefaultLogLevel
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version != 1 {
		return fmt.Errorf("config version %d not supported", pc.Version)
	}
	if pc.API.Port < 0 || pc.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", pc.API.Port)
	}
	if pc.API.RatePerSecond < 0 {
		return fmt.Errorf("api.rate_per_second must be positive")
	}
	if pc.API.Burst < 0 {
		return fmt.Errorf("api.burst must be positive")
	}
	if pc.Upload.Tick < 0 || pc.Upload.Complete < 0 || pc.Upload.Redirect < 0 {
		return fmt.Errorf("upload timers must not be negative")
	}
	if pc.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
