// Package roles holds the fixed role assignments for the ledger: one admin
// plus exactly one holder each for the minter, pauser and upgrader roles.
// Assignments are made once at initialization; there is deliberately no
// revoke or regrant path.
package roles

import (
	"colonx/internal/ledger"
	dErrors "colonx/pkg/domain-errors"
)

// Role is a named capability bound to exactly one holder.
type Role string

const (
	Minter   Role = "minter"
	Pauser   Role = "pauser"
	Upgrader Role = "upgrader"
)

// Valid reports whether the role name is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case Minter, Pauser, Upgrader:
		return true
	}
	return false
}

// Registry owns the admin record and role grants. Like ledger.State it is
// serialized by the orchestration layer.
type Registry struct {
	admin  ledger.Address
	grants map[Role]ledger.Address
}

func NewRegistry() *Registry {
	return &Registry{grants: make(map[Role]ledger.Address)}
}

// Initialized reports whether the admin record has been set.
func (r *Registry) Initialized() bool { return r.admin != "" }

// Initialize sets the admin and all role holders in one shot.
func (r *Registry) Initialize(admin, pauser, upgrader, minter ledger.Address) {
	r.admin = admin
	r.grants[Pauser] = pauser
	r.grants[Upgrader] = upgrader
	r.grants[Minter] = minter
}

// EnsureRole fails unless the caller is the role's holder.
func (r *Registry) EnsureRole(caller ledger.Address, role Role) error {
	if !role.Valid() {
		return dErrors.New(dErrors.CodeInvalidRole, "invalid or unrecognized role")
	}
	if r.grants[role] != caller || caller == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "caller does not hold the "+string(role)+" role")
	}
	return nil
}

// HasRole is the pure predicate form of EnsureRole.
func (r *Registry) HasRole(addr ledger.Address, role Role) bool {
	return addr != "" && r.grants[role] == addr
}

// Admin returns the admin address and whether one has been set.
func (r *Registry) Admin() (ledger.Address, bool) {
	return r.admin, r.admin != ""
}
