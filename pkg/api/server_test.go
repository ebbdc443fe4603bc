package api

import (
	"database/sql"
	"testing"
	"time"

	"github.com/cuemby/syncd/pkg/auth"
	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/fanout"
	"github.com/cuemby/syncd/pkg/rbac"
	"github.com/cuemby/syncd/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, store.Store, *sql.DB) {
	t.Helper()
	path := t.TempDir() + "/test.db"

	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	seed, err := sql.Open("sqlite", "file:"+path+"?_time_format=sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { seed.Close() })

	srv := NewServer(Config{
		Store:      s,
		Registry:   fanout.NewRegistry(),
		Resolver:   rbac.NewResolver(s),
		Verifier:   auth.NewVerifier(testSecret),
		DocFactory: crdt.New,
		Logger:     zerolog.Nop(),
	})
	return srv, s, seed
}

func seedVault(t *testing.T, seed *sql.DB, vaultID, ownerUser string) {
	t.Helper()
	_, err := seed.Exec(`INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES (?, ?, 'user', 'v', ?)`,
		vaultID, ownerUser, time.Now())
	require.NoError(t, err)
}
