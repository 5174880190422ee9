package api

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/claimdesk/internal/config"
)

const (
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the HTTP API server.
type Settings struct {
	Enabled       bool
	Host          string
	Port          int
	RatePerSecond float64
	Burst         int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

// SettingsFromConfig builds Settings from the project's .claimdesk config.
// Flag and environment overrides are already folded into cfg by the CLI.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		Enabled:       true,
		Host:          config.DefaultAPIHost,
		Port:          config.DefaultAPIPort,
		RatePerSecond: config.DefaultRatePerSecond,
		Burst:         config.DefaultBurst,
	}
	if cfg != nil {
		raw := cfg.Project.API
		settings.Enabled = cfg.APIEnabled()
		if host := strings.TrimSpace(raw.Host); host != "" {
			settings.Host = host
		}
		if isValidPort(raw.Port) {
			settings.Port = raw.Port
		}
		if raw.RatePerSecond > 0 {
			settings.RatePerSecond = raw.RatePerSecond
		}
		if raw.Burst > 0 {
			settings.Burst = raw.Burst
		}
	}
	settings.normalize()
	return settings
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = config.DefaultAPIHost
	}
	if s.Port < 0 || s.Port > 65535 {
		s.Port = config.DefaultAPIPort
	}
	if s.RatePerSecond <= 0 {
		s.RatePerSecond = config.DefaultRatePerSecond
	}
	if s.Burst <= 0 {
		s.Burst = config.DefaultBurst
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
