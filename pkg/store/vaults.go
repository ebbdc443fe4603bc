package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cuemby/syncd/pkg/types"
)

func (s *SQLiteStore) GetVault(id string) (*types.Vault, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, org_id, vault_type, name, created_at, deleted_at
		FROM vaults WHERE id = ?`, id)

	var v types.Vault
	var userID, orgID sql.NullString
	var deletedAt sql.NullTime
	if err := row.Scan(&v.ID, &userID, &orgID, &v.Type, &v.Name, &v.CreatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get vault: %v", ErrUnavailable, err)
	}
	v.OwnerPrincipal = userID.String
	v.OwnerOrg = orgID.String
	if deletedAt.Valid {
		t := deletedAt.Time
		v.DeletedAt = &t
	}
	if v.Deleted() {
		return nil, nil
	}
	return &v, nil
}

func (s *SQLiteStore) GetVaultMembership(vaultID, principalID string) (*types.VaultMembership, error) {
	row := s.db.QueryRow(`
		SELECT vault_id, user_id, role FROM vault_members
		WHERE vault_id = ? AND user_id = ?`, vaultID, principalID)

	var m types.VaultMembership
	if err := row.Scan(&m.VaultID, &m.PrincipalID, &m.Role); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get vault membership: %v", ErrUnavailable, err)
	}
	return &m, nil
}

func (s *SQLiteStore) GetOrgMembership(orgID, principalID string) (*types.OrgMembership, error) {
	row := s.db.QueryRow(`
		SELECT org_id, user_id, role FROM organization_members
		WHERE org_id = ? AND user_id = ?`, orgID, principalID)

	var m types.OrgMembership
	if err := row.Scan(&m.OrgID, &m.PrincipalID, &m.Role); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get org membership: %v", ErrUnavailable, err)
	}
	return &m, nil
}

// timeNow is a var so tests can pin it.
var timeNow = time.Now
