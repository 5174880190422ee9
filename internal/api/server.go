package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kingrea/claimdesk/internal/claims"
)

// ServerStatus is where the server is in its lifecycle.
type ServerStatus string

const (
	StatusIdle     ServerStatus = "idle"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

const shutdownGrace = 2 * time.Second

// ErrServerDisabled is returned by Start when the API is switched off.
var ErrServerDisabled = errors.New("api: server disabled")

// Logger records server status information.
type Logger interface {
	Printf(format string, args ...any)
}

// Server exposes the claim repository and dashboard figures as read-only JSON.
type Server struct {
	settings Settings
	repo     claims.Repository
	logger   Logger
	clock    func() time.Time
	version  string
	limiter  *clientLimiter

	mu      sync.RWMutex
	current *serving
	status  ServerStatus
	started time.Time
}

// serving is one bound listener and the goroutine serving it.
type serving struct {
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger sets where lifecycle messages go. Without it they are dropped.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for uptime reporting.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// NewServer prepares an API server reading from repo.
func NewServer(settings Settings, repo claims.Repository, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		repo:     repo,
		logger:   nopLogger{},
		clock:    time.Now,
		version:  "dev",
		status:   StatusIdle,
		limiter:  newClientLimiter(settings.RatePerSecond, settings.Burst),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed, rate limited handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /claims", s.handleListClaims)
	mux.HandleFunc("GET /claims/{id}", s.handleGetClaim)
	mux.HandleFunc("GET /dashboards/{role}", s.handleDashboard)
	return s.limiter.middleware(mux)
}

// Start listens on the configured address and serves in the background.
// Cancelling ctx shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("api: nil server")
	}
	if !s.settings.Enabled {
		return ErrServerDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return errors.New("api: server already running")
	}
	ln, err := net.Listen("tcp", s.settings.Address())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("api: listen %s: %w", s.settings.Address(), err)
	}
	r := &serving{
		httpServer: &http.Server{
			Handler:      s.Handler(),
			ReadTimeout:  s.settings.ReadTimeout,
			WriteTimeout: s.settings.WriteTimeout,
			IdleTimeout:  s.settings.IdleTimeout,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		},
		listener: ln,
		done:     make(chan struct{}),
	}
	s.current = r
	s.status = StatusReady
	s.started = s.clock()
	s.mu.Unlock()

	go func() {
		defer close(r.done)
		if err := r.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("api: serve: %v", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			drain, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = s.Shutdown(drain)
		case <-r.done:
		}
	}()
	s.logger.Printf("api: serving on %s", ln.Addr())
	return nil
}

// Shutdown drains in-flight requests. A nil ctx waits at most shutdownGrace.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	r := s.current
	if r == nil {
		s.mu.Unlock()
		return nil
	}
	s.current = nil
	s.status = StatusDraining
	s.mu.Unlock()

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
	}
	if err := r.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	<-r.done
	s.mu.Lock()
	if s.current == nil {
		s.status = StatusIdle
	}
	s.mu.Unlock()
	s.logger.Printf("api: stopped")
	return nil
}

// Addr is the bound address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.listener.Addr().String()
}

// BaseURL is the http:// URL of the bound address, falling back to the
// configured one before Start.
func (s *Server) BaseURL() string {
	if addr := s.Addr(); addr != "" {
		return "http://" + addr
	}
	return s.settings.URL()
}

// Status returns the lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0
	}
	return s.clock().Sub(s.started)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
