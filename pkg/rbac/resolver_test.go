package rbac

import (
	"database/sql"
	"testing"
	"time"

	"github.com/cuemby/syncd/pkg/store"
	"github.com/cuemby/syncd/pkg/types"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fixture bundles a Store under test with a second raw connection onto the
// same on-disk database, used only to seed rows (vaults, membership) the
// Store interface has no write path for.
type fixture struct {
	store *store.SQLiteStore
	seed  *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := t.TempDir() + "/rbac.db"

	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	seedDB, err := sql.Open("sqlite", "file:"+path+"?_time_format=sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { seedDB.Close() })

	return &fixture{store: s, seed: seedDB}
}

func (f *fixture) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	_, err := f.seed.Exec(query, args...)
	require.NoError(t, err)
}

func TestResolveVaultNotFoundIsNone(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.store)

	cap, err := r.Resolve("missing-vault", "user-1")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityNone, cap)
}

func TestResolvePersonalOwnerIsOwner(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES ('v1','user-1','user','mine',?)`, time.Now())

	r := NewResolver(f.store)
	cap, err := r.Resolve("v1", "user-1")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityOwner, cap)
}

func TestResolvePersonalOwnerIsOwnerRegardlessOfVaultType(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES ('v1','user-1','shared','mine',?)`, time.Now())

	r := NewResolver(f.store)
	cap, err := r.Resolve("v1", "user-1")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityOwner, cap, "user_id ownership outranks the vault_type tag")
}

func TestResolveOrgAdminIsOwnerEvenWithViewerRow(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, org_id, vault_type, name, created_at) VALUES ('v1','org-1','org','team',?)`, time.Now())
	f.exec(t, `INSERT INTO organization_members (org_id, user_id, role, joined_at, created_at) VALUES ('org-1','user-1','admin',?,?)`, time.Now(), time.Now())
	f.exec(t, `INSERT INTO vault_members (vault_id, user_id, role, joined_at, created_at) VALUES ('v1','user-1','viewer',?,?)`, time.Now(), time.Now())

	r := NewResolver(f.store)
	cap, err := r.Resolve("v1", "user-1")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityOwner, cap, "org admin must never be demoted by a stale vault_members row")
}

func TestResolveExplicitVaultMembership(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES ('v1','owner-1','user','mine',?)`, time.Now())
	f.exec(t, `INSERT INTO vault_members (vault_id, user_id, role, joined_at, created_at) VALUES ('v1','user-2','editor',?,?)`, time.Now(), time.Now())

	r := NewResolver(f.store)
	cap, err := r.Resolve("v1", "user-2")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityEditor, cap)
}

func TestResolveOrgMemberFallback(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, org_id, vault_type, name, created_at) VALUES ('v1','org-1','org','team',?)`, time.Now())
	f.exec(t, `INSERT INTO organization_members (org_id, user_id, role, joined_at, created_at) VALUES ('org-1','user-3','member',?,?)`, time.Now(), time.Now())

	r := NewResolver(f.store)
	cap, err := r.Resolve("v1", "user-3")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityEditor, cap)
}

// TestCapabilityMonotonicity is testable property #2: raising a
// vault_members role from viewer to editor never reduces the resolved
// capability.
func TestCapabilityMonotonicity(t *testing.T) {
	f := newFixture(t)
	f.exec(t, `INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES ('v1','owner-1','user','mine',?)`, time.Now())
	f.exec(t, `INSERT INTO vault_members (vault_id, user_id, role, joined_at, created_at) VALUES ('v1','user-4','viewer',?,?)`, time.Now(), time.Now())

	r := NewResolver(f.store)
	before, err := r.Resolve("v1", "user-4")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityViewer, before)

	f.exec(t, `UPDATE vault_members SET role = 'editor' WHERE vault_id = 'v1' AND user_id = 'user-4'`)

	after, err := r.Resolve("v1", "user-4")
	require.NoError(t, err)
	require.Equal(t, types.CapabilityEditor, after)
	require.GreaterOrEqual(t, int(after), int(before))
}
