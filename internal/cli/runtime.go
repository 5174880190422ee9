package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/config"
	"github.com/kingrea/claimdesk/internal/logbook"
	"github.com/kingrea/claimdesk/internal/logging"
)

// workspace bundles what every command needs after startup.
type workspace struct {
	cfg     *config.Config
	repo    claims.Repository
	logger  *logging.Logger
	logbook *logbook.Logbook
}

// loadRuntime reads the config, applies flag and env overrides and loads the
// claim fixture. When initDir is set the .claimdesk directory is created and
// the log files are opened; otherwise logging is discarded.
func loadRuntime(initDir bool) (*workspace, error) {
	dir, err := workingDir()
	if err != nil {
		return nil, err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if initDir {
		if err := config.InitDataDir(dir); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", config.DataDir, err)
		}
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, viper.GetViper()); err != nil {
		return nil, err
	}

	rt := &workspace{cfg: cfg, logger: logging.Discard()}
	if initDir {
		logger, err := logging.New(cfg.LogPath(), cfg.Project.Logging.Level)
		if err != nil {
			return nil, err
		}
		rt.logger = logger
		lb, err := logbook.New(cfg.SystemLogPath())
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("open system log: %w", err)
		}
		rt.logbook = lb
	}

	repo, err := openRepository(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.repo = repo
	rt.logger.Debug("runtime ready", "fixture", cfg.FixturePath(), "cache_ttl", cfg.Project.Cache.TTL)
	return rt, nil
}

func openRepository(cfg *config.Config) (claims.Repository, error) {
	var (
		base *claims.FixtureRepository
		err  error
	)
	if path := cfg.FixturePath(); path != "" {
		base, err = claims.LoadFixtureFile(path)
	} else {
		base, err = claims.DefaultFixture()
	}
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	ttl := cfg.Project.Cache.TTL
	return claims.NewCachedRepository(base, ttl, 2*ttl), nil
}

// applyOverrides copies values set through flags or CLAIMDESK_* variables
// onto the file config, then validates the result.
func applyOverrides(cfg *config.Config, v *viper.Viper) error {
	if v.IsSet("fixture") {
		cfg.Project.Fixture = v.GetString("fixture")
	}
	if v.IsSet("review.landing_claim") {
		cfg.Project.Review.LandingClaim = v.GetString("review.landing_claim")
	}
	if v.IsSet("logging.level") {
		cfg.Project.Logging.Level = v.GetString("logging.level")
	}
	if v.GetBool("verbose") {
		cfg.Project.Logging.Level = "debug"
	}
	if v.IsSet("api.host") {
		cfg.Project.API.Host = v.GetString("api.host")
	}
	if v.IsSet("api.port") {
		cfg.Project.API.Port = v.GetInt("api.port")
	}
	if v.IsSet("api.rate_per_second") {
		cfg.Project.API.RatePerSecond = v.GetFloat64("api.rate_per_second")
	}
	if v.IsSet("api.burst") {
		cfg.Project.API.Burst = v.GetInt("api.burst")
	}
	if v.IsSet("cache.ttl") {
		cfg.Project.Cache.TTL = v.GetDuration("cache.ttl")
	}
	return cfg.Revalidate()
}

// Close releases the log files.
func (r *workspace) Close() {
	if r == nil {
		return
	}
	_ = r.logger.Close()
}
