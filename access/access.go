// Package access implements the administrative gate shared by all ledger
// engines: a single owner, a freezable set of minters, and a pause switch.
//
// Every check is ordered so that authorization failures surface before
// state failures: a non-owner calling an owner-only operation always gets
// ErrUnauthorized, even when the operation would also have failed because
// the target attribute is frozen.
package access

import (
	"errors"

	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/id"
)

// Sentinel errors for governance checks.
var (
	ErrUnauthorized  = errors.New("access: caller is not authorized")
	ErrPaused        = errors.New("access: ledger is paused")
	ErrAlreadyPaused = errors.New("access: ledger is already paused")
	ErrNotPaused     = errors.New("access: ledger is not paused")
	ErrMintersFrozen = errors.New("access: minter set is frozen")
	ErrInvalidMinter = errors.New("access: minter identity is nil")
	ErrAlreadyMinter = errors.New("access: identity is already a minter")
	ErrNotAMinter    = errors.New("access: identity is not a minter")
)

// Governor holds the administrative state of one ledger instance.
// A new Governor starts paused: no balance-changing operation is allowed
// until the owner explicitly unpauses.
//
// Governor is not safe for concurrent use on its own; the owning engine
// serializes access under its mutation lock.
type Governor struct {
	owner   id.ID
	minters freeze.Attr[map[string]bool]
	paused  bool
}

// NewGovernor creates a Governor owned by owner, in the paused state,
// with an empty minter set.
func NewGovernor(owner id.ID) *Governor {
	return &Governor{
		owner:   owner,
		minters: freeze.NewAttr(map[string]bool{}),
		paused:  true,
	}
}

// Owner returns the current owner identity.
func (g *Governor) Owner() id.ID {
	return g.owner
}

// TransferOwnership hands the owner role to newOwner. Only the current
// owner may call it, and the new owner must be a real identity.
func (g *Governor) TransferOwnership(caller, newOwner id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsNil() {
		return ErrInvalidMinter
	}

	g.owner = newOwner

	return nil
}

// ──────────────────────────────────────────────────
// Pause lifecycle
// ──────────────────────────────────────────────────

// Paused reports whether the ledger is paused.
func (g *Governor) Paused() bool {
	return g.paused
}

// Pause suspends all balance-changing operations. Owner-only.
func (g *Governor) Pause(caller id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if g.paused {
		return ErrAlreadyPaused
	}

	g.paused = true

	return nil
}

// Unpause resumes balance-changing operations. Owner-only.
func (g *Governor) Unpause(caller id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if !g.paused {
		return ErrNotPaused
	}

	g.paused = false

	return nil
}

// ──────────────────────────────────────────────────
// Minter set
// ──────────────────────────────────────────────────

// IsMinter reports whether a may mint. The owner always may.
func (g *Governor) IsMinter(a id.ID) bool {
	if a == g.owner {
		return true
	}

	return g.minters.Get()[a.String()]
}

// Minters returns the explicit minter set, excluding the implicit owner.
func (g *Governor) Minters() []id.ID {
	set := g.minters.Get()
	out := make([]id.ID, 0, len(set))
	for s := range set {
		m, err := id.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, m)
	}

	return out
}

// AddMinter grants minting rights to m. Owner-only; fails once the minter
// set is frozen.
func (g *Governor) AddMinter(caller, m id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if m.IsNil() {
		return ErrInvalidMinter
	}
	if g.minters.Frozen() {
		return ErrMintersFrozen
	}
	if g.minters.Get()[m.String()] {
		return ErrAlreadyMinter
	}

	return g.minters.Update(func(set map[string]bool) map[string]bool {
		set[m.String()] = true
		return set
	})
}

// RemoveMinter revokes minting rights from m. Owner-only; fails once the
// minter set is frozen.
func (g *Governor) RemoveMinter(caller, m id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if g.minters.Frozen() {
		return ErrMintersFrozen
	}
	if !g.minters.Get()[m.String()] {
		return ErrNotAMinter
	}

	return g.minters.Update(func(set map[string]bool) map[string]bool {
		delete(set, m.String())
		return set
	})
}

// FreezeMinters permanently locks the minter set. Owner-only, one-way.
func (g *Governor) FreezeMinters(caller id.ID) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if g.minters.Frozen() {
		return ErrMintersFrozen
	}

	return g.minters.Freeze()
}

// MintersFrozen reports whether the minter set has been frozen.
func (g *Governor) MintersFrozen() bool {
	return g.minters.Frozen()
}

// ──────────────────────────────────────────────────
// Guard checks
// ──────────────────────────────────────────────────

// RequireOwner returns ErrUnauthorized unless caller is the owner.
func (g *Governor) RequireOwner(caller id.ID) error {
	if caller != g.owner {
		return ErrUnauthorized
	}

	return nil
}

// RequireNotPaused returns ErrPaused while the ledger is paused.
func (g *Governor) RequireNotPaused() error {
	if g.paused {
		return ErrPaused
	}

	return nil
}

// RequireMinter returns ErrUnauthorized unless caller may mint.
func (g *Governor) RequireMinter(caller id.ID) error {
	if !g.IsMinter(caller) {
		return ErrUnauthorized
	}

	return nil
}
