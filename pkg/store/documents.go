package store

import (
	"database/sql"
	"fmt"

	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/types"
)

// LoadOrCreate loads the document state for (guid, vaultID), or starts a
// fresh document if none exists. A row whose vault_id disagrees with the
// caller's vaultID, or that is soft-deleted or absent, is treated
// identically to "no such document" — cross-vault probes cannot
// distinguish "wrong vault" from "never existed".
func (s *SQLiteStore) LoadOrCreate(guid, vaultID string, factory crdt.Factory) (crdt.Doc, *types.DocumentMetadata, error) {
	row := s.db.QueryRow(`
		SELECT yjs_state FROM subdocs
		WHERE guid = ? AND vault_id = ? AND deleted_at IS NULL`, guid, vaultID)

	var state []byte
	err := row.Scan(&state)
	switch {
	case err == sql.ErrNoRows:
		doc, ferr := factory(nil)
		if ferr != nil {
			return nil, nil, fmt.Errorf("build fresh document: %w", ferr)
		}
		return doc, types.DefaultMetadata(types.DocTypeDocument, timeNow()), nil
	case err != nil:
		return nil, nil, fmt.Errorf("%w: load document: %v", ErrUnavailable, err)
	}

	doc, ferr := factory(state)
	if ferr != nil {
		return nil, nil, fmt.Errorf("decode persisted state: %w", ferr)
	}

	meta, merr := s.getMetadata(guid)
	if merr != nil {
		return nil, nil, merr
	}
	if meta == nil {
		meta = types.DefaultMetadata(types.DocTypeDocument, timeNow())
	}
	return doc, meta, nil
}

func (s *SQLiteStore) getMetadata(guid string) (*types.DocumentMetadata, error) {
	row := s.db.QueryRow(`
		SELECT title, icon, description, tags, modified_at
		FROM subdoc_metadata WHERE subdoc_guid = ?`, guid)

	var m types.DocumentMetadata
	var icon, description sql.NullString
	var tagsJSON string
	if err := row.Scan(&m.Title, &icon, &description, &tagsJSON, &m.ModifiedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get metadata: %v", ErrUnavailable, err)
	}
	m.Icon = icon.String
	m.Description = description.String
	m.DocType = types.DocTypeDocument
	m.Tags = decodeTags(tagsJSON)
	return &m, nil
}

// Save persists doc's current state. An existing row's vault_id must
// match, or the caller gets ErrVaultMismatch rather than a silent rebind
// (see DESIGN.md).
func (s *SQLiteStore) Save(guid, vaultID string, doc crdt.Doc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin save: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	var existingVault string
	err = tx.QueryRow(`SELECT vault_id FROM subdocs WHERE guid = ?`, guid).Scan(&existingVault)
	switch {
	case err == sql.ErrNoRows:
		now := timeNow()
		if _, err := tx.Exec(`
			INSERT INTO subdocs (guid, vault_id, doc_type, yjs_state, state_vector, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			guid, vaultID, string(types.DocTypeDocument), doc.Encode(), doc.StateVector(), now, now); err != nil {
			return fmt.Errorf("%w: insert document: %v", ErrUnavailable, err)
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO subdoc_metadata (subdoc_guid, title, tags, modified_at)
			VALUES (?, 'Untitled', '[]', ?)`, guid, now); err != nil {
			return fmt.Errorf("%w: seed metadata: %v", ErrUnavailable, err)
		}
	case err != nil:
		return fmt.Errorf("%w: check existing document: %v", ErrUnavailable, err)
	case existingVault != vaultID:
		return ErrVaultMismatch
	default:
		if _, err := tx.Exec(`
			UPDATE subdocs SET yjs_state = ?, state_vector = ?, modified_at = ?
			WHERE guid = ?`, doc.Encode(), doc.StateVector(), timeNow(), guid); err != nil {
			return fmt.Errorf("%w: update document: %v", ErrUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit save: %v", ErrUnavailable, err)
	}
	return nil
}
