package store

import (
	"database/sql"
	"fmt"

	"github.com/cuemby/syncd/pkg/types"
)

func (s *SQLiteStore) RecordEdit(edit *types.EditRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO document_edits
			(subdoc_guid, user_id, session_id, yjs_update, edit_type, block_type, block_position, content_before, content_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		edit.DocumentGUID, edit.PrincipalID, edit.SessionID, edit.RawUpdate, string(edit.EditType),
		edit.BlockType, edit.BlockPosition, edit.ContentBefore, edit.ContentAfter, timeNow())
	if err != nil {
		return fmt.Errorf("%w: record edit: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) ListEdits(guid string, limit, offset int) ([]*types.EditRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, subdoc_guid, user_id, session_id, yjs_update, edit_type, block_type, block_position, content_before, content_after, created_at
		FROM document_edits
		WHERE subdoc_guid = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, guid, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list edits: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []*types.EditRecord
	for rows.Next() {
		var e types.EditRecord
		var editType string
		var blockType, before, after sql.NullString
		var blockPosition sql.NullInt64
		if err := rows.Scan(&e.ID, &e.DocumentGUID, &e.PrincipalID, &e.SessionID, &e.RawUpdate,
			&editType, &blockType, &blockPosition, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan edit: %v", ErrUnavailable, err)
		}
		e.EditType = types.EditType(editType)
		e.BlockType = blockType.String
		if blockPosition.Valid {
			v := int(blockPosition.Int64)
			e.BlockPosition = &v
		}
		if before.Valid {
			v := before.String
			e.ContentBefore = &v
		}
		if after.Valid {
			v := after.String
			e.ContentAfter = &v
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSnapshots(guid string, limit, offset int) ([]*types.DocumentSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, subdoc_guid, yjs_state, created_by, snapshot_type, description, created_at
		FROM document_snapshots
		WHERE subdoc_guid = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, guid, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list snapshots: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []*types.DocumentSnapshot
	for rows.Next() {
		var sn types.DocumentSnapshot
		var snapshotType string
		var description sql.NullString
		if err := rows.Scan(&sn.ID, &sn.DocumentGUID, &sn.State, &sn.CreatedBy, &snapshotType, &description, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan snapshot: %v", ErrUnavailable, err)
		}
		sn.SnapshotType = types.SnapshotType(snapshotType)
		sn.Description = description.String
		out = append(out, &sn)
	}
	return out, rows.Err()
}
