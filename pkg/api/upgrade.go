package api

import (
	"net/http"
	"strings"

	"github.com/cuemby/syncd/pkg/session"
	"github.com/google/uuid"
)

// handleUpgrade implements GET /ws/{doc}: it authenticates the bearer
// token, validates vaultId, resolves the caller's capability, and upgrades
// the connection. A None capability is never surfaced as an HTTP status —
// the session closes the connection immediately after upgrade instead.
func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	doc := strings.TrimPrefix(r.URL.Path, "/ws/")
	if doc == "" {
		doc = r.URL.Query().Get("doc")
	}

	vaultID := r.URL.Query().Get("vaultId")
	if _, err := uuid.Parse(vaultID); err != nil {
		http.Error(w, "missing or invalid vaultId", http.StatusBadRequest)
		return
	}

	principal, err := s.cfg.Verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	capability, err := s.cfg.Resolver.Resolve(vaultID, principal.ID)
	if err != nil {
		s.cfg.Logger.Error().Err(err).Msg("capability resolution failed during upgrade")
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := session.New(session.Config{
		Transport:  conn,
		Principal:  principal,
		VaultID:    vaultID,
		PathGUID:   doc,
		Capability: capability,
		Store:      s.cfg.Store,
		Registry:   s.cfg.Registry,
		DocFactory: s.cfg.DocFactory,
		Metrics:    s.cfg.Metrics,
		Logger:     s.cfg.Logger,
	})

	sess.Run(r.Context())
}
