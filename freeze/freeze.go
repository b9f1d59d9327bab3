// Package freeze provides a generic attribute that can be permanently
// locked. Once frozen, an attribute rejects every further write; there is
// no thaw operation.
//
// The ledger engines build all of their lockable configuration on this one
// type: minter sets, supply caps, holding thresholds, metadata locations,
// royalty settings, and type-range maxima.
package freeze

import "errors"

// ErrFrozen is returned when a write is attempted on a frozen attribute.
var ErrFrozen = errors.New("freeze: attribute is frozen")

// Attr holds a value of type T together with a one-way frozen flag.
// The zero value is an unfrozen attribute holding the zero value of T.
type Attr[T any] struct {
	value  T
	frozen bool
}

// NewAttr returns an unfrozen attribute holding initial.
func NewAttr[T any](initial T) Attr[T] {
	return Attr[T]{value: initial}
}

// Get returns the current value. Reads are always allowed, frozen or not.
func (a *Attr[T]) Get() T {
	return a.value
}

// Set replaces the value. Returns ErrFrozen if the attribute is frozen;
// the value is unchanged in that case.
func (a *Attr[T]) Set(v T) error {
	if a.frozen {
		return ErrFrozen
	}

	a.value = v

	return nil
}

// Update applies fn to the current value and stores the result. Returns
// ErrFrozen without calling fn if the attribute is frozen. Engines use
// this for read-modify-write changes such as adding a minter.
func (a *Attr[T]) Update(fn func(T) T) error {
	if a.frozen {
		return ErrFrozen
	}

	a.value = fn(a.value)

	return nil
}

// Freeze permanently locks the attribute. Freezing an already-frozen
// attribute returns ErrFrozen.
func (a *Attr[T]) Freeze() error {
	if a.frozen {
		return ErrFrozen
	}

	a.frozen = true

	return nil
}

// Frozen reports whether the attribute has been frozen.
func (a *Attr[T]) Frozen() bool {
	return a.frozen
}
