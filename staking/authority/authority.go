// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority answers permission checks for the administrative
// staking operations. The builtin Registry is a plain role grant book; a
// deployment may substitute any other Authority implementation.
package authority

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

// Roles understood by the staking ledger.
const (
	RoleAdmin     = "admin"     // validator registry and parameter control
	RoleRewardOp  = "reward-op" // reward token listing, rates and funding
	RoleTreasurer = "treasurer" // reward fund deposits
)

// Authority is the permission collaborator consulted by admin operations.
type Authority interface {
	// Check reports whether caller holds the role.
	Check(role string, caller mesh.Address) (bool, error)
}

var slotGrants = mesh.BytesToBytes32([]byte("role-grants"))

type grantKey struct {
	role   string
	caller mesh.Address
}

func (k grantKey) Bytes() []byte {
	return append([]byte(k.role), k.caller.Bytes()...)
}

// Registry is the builtin Authority, a persistent role grant book.
type Registry struct {
	grants *record.Mapping[grantKey, bool]
}

// NewRegistry creates a role registry over the given storage context.
func NewRegistry(ctx *record.Context) *Registry {
	return &Registry{
		grants: record.NewMapping[grantKey, bool](ctx, slotGrants),
	}
}

// Grant gives caller the role.
func (r *Registry) Grant(role string, caller mesh.Address) error {
	if caller.IsZero() {
		return errors.New("cannot grant a role to the zero address")
	}
	return r.grants.Set(grantKey{role, caller}, true)
}

// Revoke removes the role from caller.
func (r *Registry) Revoke(role string, caller mesh.Address) error {
	return r.grants.Set(grantKey{role, caller}, false)
}

// Check implements Authority.
func (r *Registry) Check(role string, caller mesh.Address) (bool, error) {
	return r.grants.Get(grantKey{role, caller})
}
