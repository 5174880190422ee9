package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.LandingClaim() != DefaultLandingClaim {
		t.Fatalf("expected landing claim %q, got %q", DefaultLandingClaim, c.LandingClaim())
	}
	if c.FixturePath() != "" {
		t.Fatalf("expected built-in fixture, got %q", c.FixturePath())
	}
	if !c.APIEnabled() || c.APIAddress() != "127.0.0.1:8787" {
		t.Fatalf("unexpected api defaults: %s", c.APIAddress())
	}
}

func TestInitDataDirWritesLoadableConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDataDir(projectDir); err != nil {
		t.Fatalf("InitDataDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, DataDir, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if c.Project.Upload.Complete != 2500*time.Millisecond || c.Project.Upload.Tick != 200*time.Millisecond {
		t.Fatalf("unexpected upload timers: %+v", c.Project.Upload)
	}
	if c.Project.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", c.Project.Cache.TTL)
	}
	// A second init keeps the existing file.
	path := c.ProjectConfigPath()
	if err := os.WriteFile(path, []byte("version: 1\nreview:\n  landing_claim: \"0006\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitDataDir(projectDir); err != nil {
		t.Fatalf("second InitDataDir: %v", err)
	}
	c, err = NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c.LandingClaim() != "0006" {
		t.Fatalf("init overwrote existing config")
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	dataDir := filepath.Join(projectDir, DataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
fixture: data/claims.yaml
upload:
  tick: 50ms
api:
  enabled: false
  host: " 0.0.0.0 "
  port: 9001
logging:
  level: DEBUG
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if !strings.HasPrefix(c.FixturePath(), projectDir) {
		t.Fatalf("expected fixture path to be resolved, got %s", c.FixturePath())
	}
	if c.Project.Upload.Tick != 50*time.Millisecond {
		t.Fatalf("tick = %v", c.Project.Upload.Tick)
	}
	if c.APIEnabled() || c.APIAddress() != "0.0.0.0:9001" {
		t.Fatalf("api = %+v", c.Project.API)
	}
	if c.Project.Logging.Level != "debug" {
		t.Fatalf("level = %s", c.Project.Logging.Level)
	}
	if c.Project.API.Burst != DefaultBurst {
		t.Fatalf("burst default not applied")
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	tests := map[string]string{
		"version":  "version: 2\n",
		"level":    "version: 1\nlogging:\n  level: loud\n",
		"port":     "version: 1\napi:\n  port: 70000\n",
		"timers":   "version: 1\nupload:\n  tick: -1s\n",
		"bad yaml": "version: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			dataDir := filepath.Join(projectDir, DataDir)
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestRevalidateAfterOverride(t *testing.T) {
	c, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c.Project.Logging.Level = "verbose"
	if err := c.Revalidate(); err == nil {
		t.Fatalf("expected invalid level to be rejected")
	}
	c.Project.Logging.Level = " WARN "
	if err := c.Revalidate(); err != nil {
		t.Fatalf("revalidate: %v", err)
	}
	data, err := c.YAML()
	if err != nil || !strings.Contains(string(data), "level: warn") {
		t.Fatalf("yaml = %s, err = %v", data, err)
	}
}
