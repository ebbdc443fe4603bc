// Package rbac implements the role-resolution engine (C2): it maps a
// (vault, principal) pair to the effective capability the sync hub uses to
// gate reads, writes, and subscription.
package rbac

import (
	"fmt"

	"github.com/cuemby/syncd/pkg/store"
	"github.com/cuemby/syncd/pkg/types"
)

// Resolver computes effective capability against a Store.
type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve applies the precedence ladder below, first match wins:
//
//  1. vault missing/deleted                              -> None
//  2. personally-owned vault, principal is the owner      -> Owner
//  3. org-owned vault, principal is org admin             -> Owner
//  4. explicit vault_members row                          -> its role
//  5. org-owned vault, principal is org member/guest      -> member mapping
//  6. otherwise                                           -> None
//
// Org-admin at step 3 deliberately outranks an explicit viewer row at step
// 4 — org admins are never demoted by a stale membership row.
func (r *Resolver) Resolve(vaultID, principalID string) (types.Capability, error) {
	vault, err := r.store.GetVault(vaultID)
	if err != nil {
		return types.CapabilityNone, fmt.Errorf("resolve capability: %w", err)
	}
	if vault == nil {
		return types.CapabilityNone, nil
	}

	if vault.OwnerPrincipal != "" && vault.OwnerPrincipal == principalID {
		return types.CapabilityOwner, nil
	}

	if vault.OwnerOrg != "" {
		orgMember, err := r.store.GetOrgMembership(vault.OwnerOrg, principalID)
		if err != nil {
			return types.CapabilityNone, fmt.Errorf("resolve capability: %w", err)
		}
		if orgMember != nil && orgMember.Role == types.OrgRoleAdmin {
			return types.CapabilityOwner, nil
		}
	}

	vaultMember, err := r.store.GetVaultMembership(vaultID, principalID)
	if err != nil {
		return types.CapabilityNone, fmt.Errorf("resolve capability: %w", err)
	}
	if vaultMember != nil {
		return vaultRoleCapability(vaultMember.Role), nil
	}

	if vault.OwnerOrg != "" {
		orgMember, err := r.store.GetOrgMembership(vault.OwnerOrg, principalID)
		if err != nil {
			return types.CapabilityNone, fmt.Errorf("resolve capability: %w", err)
		}
		if orgMember != nil {
			return orgRoleCapability(orgMember.Role), nil
		}
	}

	return types.CapabilityNone, nil
}

func vaultRoleCapability(role types.VaultRole) types.Capability {
	switch role {
	case types.VaultRoleOwner:
		return types.CapabilityOwner
	case types.VaultRoleEditor:
		return types.CapabilityEditor
	case types.VaultRoleViewer:
		return types.CapabilityViewer
	default:
		return types.CapabilityNone
	}
}

func orgRoleCapability(role types.OrgRole) types.Capability {
	switch role {
	case types.OrgRoleMember:
		return types.CapabilityEditor
	case types.OrgRoleGuest:
		return types.CapabilityViewer
	default:
		return types.CapabilityNone
	}
}
