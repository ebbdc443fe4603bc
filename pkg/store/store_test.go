package store

import (
	"testing"
	"time"

	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedVault(t *testing.T, s *SQLiteStore, id, ownerUser string) {
	t.Helper()
	_, err := s.db.Exec(`INSERT INTO vaults (id, user_id, vault_type, name, created_at) VALUES (?, ?, 'user', 'v', ?)`,
		id, ownerUser, time.Now())
	require.NoError(t, err)
}

func TestLoadOrCreateFreshDocument(t *testing.T) {
	s := newTestStore(t)
	seedVault(t, s, "vault-1", "user-1")

	doc, meta, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.Equal(t, "Untitled", meta.Title)
	require.Equal(t, types.DocTypeDocument, meta.DocType)
	require.NotNil(t, doc)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	s := newTestStore(t)
	seedVault(t, s, "vault-1", "user-1")

	doc, _, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.NoError(t, doc.Apply(crdt.NewUpdate(1, 1, "prosemirror", "hello")))
	require.NoError(t, s.Save("doc-1", "vault-1", doc))

	reloaded, meta, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.Equal(t, "Untitled", meta.Title)
	sample, ok := reloaded.TextSample("prosemirror", 500)
	require.True(t, ok)
	require.Equal(t, "hello", sample)
}

// TestCrossVaultIsolation exercises testable property #3: loading a GUID
// that exists but under a different vault must look identical to a
// document that never existed, regardless of caller.
func TestCrossVaultIsolation(t *testing.T) {
	s := newTestStore(t)
	seedVault(t, s, "vault-1", "user-1")
	seedVault(t, s, "vault-2", "user-2")

	doc, _, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.NoError(t, doc.Apply(crdt.NewUpdate(1, 1, "prosemirror", "secret")))
	require.NoError(t, s.Save("doc-1", "vault-1", doc))

	foreign, meta, err := s.LoadOrCreate("doc-1", "vault-2", crdt.New)
	require.NoError(t, err)
	require.Equal(t, "Untitled", meta.Title)
	_, ok := foreign.TextSample("prosemirror", 500)
	require.False(t, ok, "cross-vault load must not observe the other vault's content")
}

func TestSaveRejectsVaultMismatch(t *testing.T) {
	s := newTestStore(t)
	seedVault(t, s, "vault-1", "user-1")
	seedVault(t, s, "vault-2", "user-2")

	doc, _, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.NoError(t, s.Save("doc-1", "vault-1", doc))

	err = s.Save("doc-1", "vault-2", doc)
	require.ErrorIs(t, err, ErrVaultMismatch)
}

func TestRecordAndListEdits(t *testing.T) {
	s := newTestStore(t)
	seedVault(t, s, "vault-1", "user-1")
	doc, _, err := s.LoadOrCreate("doc-1", "vault-1", crdt.New)
	require.NoError(t, err)
	require.NoError(t, s.Save("doc-1", "vault-1", doc))

	before, after := "hi", "hi there"
	err = s.RecordEdit(&types.EditRecord{
		DocumentGUID:  "doc-1",
		PrincipalID:   "user-1",
		SessionID:     "sess-1",
		RawUpdate:     []byte{1, 2, 3},
		EditType:      types.EditTypeInsert,
		BlockType:     "prosemirror",
		ContentBefore: &before,
		ContentAfter:  &after,
	})
	require.NoError(t, err)

	edits, err := s.ListEdits("doc-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	require.Equal(t, types.EditTypeInsert, edits[0].EditType)
	require.Equal(t, "sess-1", edits[0].SessionID)
}

func TestGetVaultReturnsNilForSoftDeleted(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO vaults (id, user_id, vault_type, name, created_at, deleted_at) VALUES (?, ?, 'user', 'v', ?, ?)`,
		"vault-gone", "user-1", time.Now(), time.Now())
	require.NoError(t, err)

	v, err := s.GetVault("vault-gone")
	require.NoError(t, err)
	require.Nil(t, v)
}
