package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultLimit  = 50
	defaultOffset = 0
)

// handleAuditRead implements GET /documents/{guid}/edits and
// GET /documents/{guid}/snapshots. Both require a bearer token and a
// vaultId query parameter (the same shape as the upgrade endpoint) so the
// role resolver can gate the read: capability None -> 403, otherwise the
// rows are returned newest-first, paginated.
func (s *Server) handleAuditRead(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/documents/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	guid, kind := parts[0], parts[1]

	vaultID := r.URL.Query().Get("vaultId")
	if _, err := uuid.Parse(vaultID); err != nil {
		http.Error(w, "missing or invalid vaultId", http.StatusBadRequest)
		return
	}

	principal, err := s.cfg.Verifier.Verify(bearerToken(r))
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	capability, err := s.cfg.Resolver.Resolve(vaultID, principal.ID)
	if err != nil {
		s.cfg.Logger.Error().Err(err).Msg("capability resolution failed during audit read")
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}
	if !capability.CanRead() {
		http.Error(w, "permission denied", http.StatusForbidden)
		return
	}

	limit, offset := paginationParams(r)

	switch kind {
	case "edits":
		edits, err := s.cfg.Store.ListEdits(guid, limit, offset)
		if err != nil {
			s.cfg.Logger.Error().Err(err).Str("doc_guid", guid).Msg("list edits failed")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, edits)
	case "snapshots":
		snapshots, err := s.cfg.Store.ListSnapshots(guid, limit, offset)
		if err != nil {
			s.cfg.Logger.Error().Err(err).Str("doc_guid", guid).Msg("list snapshots failed")
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snapshots)
	default:
		http.NotFound(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimPrefix(auth, prefix)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit, offset = defaultLimit, defaultOffset
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
