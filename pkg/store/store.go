// Package store implements the relational persistence layer (C3): vaults,
// membership rows the role resolver reads, per-document CRDT state and
// metadata, and the append-only edit-audit trail.
//
// See SPEC_FULL.md ("Persistence engine") for why SQLite (modernc.org/sqlite, pure Go) stands in for
// the Postgres engine this schema was designed against — the table and
// column shapes are unchanged, only the engine differs.
package store

import (
	"context"
	"errors"

	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/types"
)

// ErrUnavailable wraps any underlying database failure. A failed save
// aborts the enclosing update but never crashes the session.
var ErrUnavailable = errors.New("store: unavailable")

// ErrVaultMismatch is returned by Save when the document's persisted
// vault_id disagrees with the caller's vault_id — documents never
// silently rebind to a different vault.
var ErrVaultMismatch = errors.New("store: vault mismatch on save")

// Store is the persistence interface the role resolver, session state
// machine, and audit read endpoints depend on.
type Store interface {
	// GetVault returns nil, nil if the vault does not exist or is
	// soft-deleted (not an error — callers treat absence as None capability).
	GetVault(id string) (*types.Vault, error)
	GetVaultMembership(vaultID, principalID string) (*types.VaultMembership, error)
	GetOrgMembership(orgID, principalID string) (*types.OrgMembership, error)

	// LoadOrCreate returns the document's CRDT replica (built via factory
	// from persisted state, or fresh if absent/cross-vault) and its
	// metadata (synthesized with defaults if absent).
	LoadOrCreate(guid, vaultID string, factory crdt.Factory) (crdt.Doc, *types.DocumentMetadata, error)
	// Save upserts state, state_vector, and modified_at; on first insert
	// it also seeds default metadata.
	Save(guid, vaultID string, doc crdt.Doc) error

	RecordEdit(edit *types.EditRecord) error
	ListEdits(guid string, limit, offset int) ([]*types.EditRecord, error)
	ListSnapshots(guid string, limit, offset int) ([]*types.DocumentSnapshot, error)

	// Ping verifies the underlying connection pool is reachable, for use by
	// the healthcheck endpoint.
	Ping(ctx context.Context) error

	Close() error
}
