package api

import (
	"context"
	"net/http"

	"github.com/cuemby/syncd/pkg/auth"
	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/fanout"
	"github.com/cuemby/syncd/pkg/health"
	"github.com/cuemby/syncd/pkg/metrics"
	"github.com/cuemby/syncd/pkg/rbac"
	"github.com/cuemby/syncd/pkg/session"
	"github.com/cuemby/syncd/pkg/store"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Config assembles the dependencies the upgrade handler and the audit
// read endpoints need.
type Config struct {
	Store      store.Store
	Registry   *fanout.Registry
	Resolver   *rbac.Resolver
	Verifier   *auth.Verifier
	DocFactory crdt.Factory
	Metrics    session.Metrics
	Logger     zerolog.Logger
}

// Server is the process's one net/http.Server: the sync upgrade endpoint,
// the audit read endpoints, and the ambient healthz/metrics mounts.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer builds a Server. checkers are wired into GET /healthz.
func NewServer(cfg Config, checkers ...health.Checker) *Server {
	if cfg.Metrics == nil {
		cfg.Metrics = session.NopMetrics{}
	}

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The core has no browser-facing origin policy of its own;
			// the documented collaborators (auth, vault membership) are
			// the actual gate, not Origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", s.handleUpgrade)
	mux.HandleFunc("/documents/", s.handleAuditRead)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", health.Handler(checkers...))

	s.http = &http.Server{Handler: mux}
	return s
}

// Start listens on addr and serves until Stop is called.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	s.cfg.Logger.Info().Str("addr", addr).Msg("api listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down: it stops accepting connections and
// waits, until ctx is done, for in-flight plain HTTP requests. Upgraded
// websocket connections are hijacked from the server, so Stop neither waits
// for nor closes open sessions.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
