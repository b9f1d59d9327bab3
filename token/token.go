// Package token defines the domain types shared by the ledger engines:
// unique-token ownership records, freezable supply caps, raise-only type
// ranges, and per-identity registrations.
package token

import (
	"errors"
	"time"

	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

// Sentinel errors for token configuration.
var (
	ErrInvalidRange   = errors.New("token: range max is below min")
	ErrMaxNotRaised   = errors.New("token: new range max does not raise the current max")
	ErrCapBelowSupply = errors.New("token: cap is below the outstanding supply")
)

// Record is the ownership record of one unique token. FirstOwner is set
// at mint and never changes; LastTransferAt moves only on real ownership
// changes (mint, and transfers where the destination differs from the
// source).
type Record struct {
	Owner          id.ID
	FirstOwner     id.ID
	Type           uint64
	MintedAt       time.Time
	LastTransferAt time.Time
}

// ──────────────────────────────────────────────────
// TypeRange
// ──────────────────────────────────────────────────

// TypeRange is the closed interval of valid token types for a unique
// collection. The lower bound is fixed at construction; the upper bound
// can only be raised, and can be frozen.
type TypeRange struct {
	min uint64
	max freeze.Attr[uint64]
}

// NewTypeRange builds a range covering [min, max].
func NewTypeRange(min, max uint64) (*TypeRange, error) {
	if max < min {
		return nil, ErrInvalidRange
	}

	return &TypeRange{min: min, max: freeze.NewAttr(max)}, nil
}

// Min returns the fixed lower bound.
func (r *TypeRange) Min() uint64 { return r.min }

// Max returns the current upper bound.
func (r *TypeRange) Max() uint64 { return r.max.Get() }

// Contains reports whether t is a valid type.
func (r *TypeRange) Contains(t uint64) bool {
	return t >= r.min && t <= r.max.Get()
}

// RaiseMax extends the upper bound to newMax. The new bound must be
// strictly greater than the current one.
func (r *TypeRange) RaiseMax(newMax uint64) error {
	if r.max.Frozen() {
		return freeze.ErrFrozen
	}
	if newMax <= r.max.Get() {
		return ErrMaxNotRaised
	}

	return r.max.Set(newMax)
}

// Freeze permanently locks the upper bound.
func (r *TypeRange) Freeze() error { return r.max.Freeze() }

// Frozen reports whether the upper bound is locked.
func (r *TypeRange) Frozen() bool { return r.max.Frozen() }

// ──────────────────────────────────────────────────
// SupplyCap
// ──────────────────────────────────────────────────

// SupplyCap is a freezable limit on total supply. A cap of zero means
// unlimited.
type SupplyCap struct {
	attr freeze.Attr[types.Amount]
}

// NewSupplyCap returns a cap initialized to limit (zero = unlimited).
func NewSupplyCap(limit types.Amount) SupplyCap {
	return SupplyCap{attr: freeze.NewAttr(limit)}
}

// Limit returns the current cap (zero = unlimited).
func (c *SupplyCap) Limit() types.Amount { return c.attr.Get() }

// Allows reports whether minting delta on top of current stays within
// the cap. Addition is overflow-checked; an overflowing total is never
// allowed.
func (c *SupplyCap) Allows(current, delta types.Amount) bool {
	total, ok := current.AddChecked(delta)
	if !ok {
		return false
	}

	limit := c.attr.Get()

	return limit == 0 || total <= limit
}

// Set replaces the cap. A non-zero cap below the outstanding supply is
// rejected, so the cap invariant (supply never exceeds a non-zero cap)
// holds from the moment the cap is set.
func (c *SupplyCap) Set(limit, current types.Amount) error {
	if c.attr.Frozen() {
		return freeze.ErrFrozen
	}
	if limit != 0 && limit < current {
		return ErrCapBelowSupply
	}

	return c.attr.Set(limit)
}

// Freeze permanently locks the cap.
func (c *SupplyCap) Freeze() error { return c.attr.Freeze() }

// Frozen reports whether the cap is locked.
func (c *SupplyCap) Frozen() bool { return c.attr.Frozen() }

// ──────────────────────────────────────────────────
// Registration
// ──────────────────────────────────────────────────

// Registration is the one-shot configuration of a token identity in a
// per-identity ledger: its metadata location, the balance threshold at
// which tenure accrues, and an optional supply cap. The metadata
// location can be changed until it is frozen; threshold and cap identity
// are fixed at registration.
type Registration struct {
	uri       freeze.Attr[string]
	threshold types.Amount
	cap       SupplyCap
}

// NewRegistration builds a registration with the given metadata
// location, tenure threshold, and cap (zero = unlimited).
func NewRegistration(uri string, threshold, cap types.Amount) *Registration {
	return &Registration{
		uri:       freeze.NewAttr(uri),
		threshold: threshold,
		cap:       NewSupplyCap(cap),
	}
}

// URI returns the current metadata location.
func (g *Registration) URI() string { return g.uri.Get() }

// SetURI replaces the metadata location; fails once frozen.
func (g *Registration) SetURI(uri string) error { return g.uri.Set(uri) }

// FreezeURI permanently locks the metadata location.
func (g *Registration) FreezeURI() error { return g.uri.Freeze() }

// URIFrozen reports whether the metadata location is locked.
func (g *Registration) URIFrozen() bool { return g.uri.Frozen() }

// Threshold returns the tenure threshold for this identity.
func (g *Registration) Threshold() types.Amount { return g.threshold }

// Cap returns the identity's supply cap.
func (g *Registration) Cap() *SupplyCap { return &g.cap }
