// Package royalty implements a freezable royalty setting for unique
// collections: a receiver identity and a fee expressed in basis points
// of the sale price.
package royalty

import (
	"errors"

	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

// FeeDenominator is the basis-point scale: a fee of 250 is 2.5%.
const FeeDenominator = 10_000

// Sentinel errors for royalty configuration.
var (
	ErrInvalidFee      = errors.New("royalty: fee exceeds the denominator")
	ErrInvalidReceiver = errors.New("royalty: receiver identity is nil")
)

// Config is one royalty assignment.
type Config struct {
	Receiver id.ID
	FeeBasis uint16
}

// Setting is a freezable royalty configuration. The zero value has no
// receiver and a zero fee, meaning no royalty is due.
type Setting struct {
	attr freeze.Attr[Config]
}

// Set replaces the royalty configuration. The fee must not exceed
// FeeDenominator and the receiver must be a real identity; fails once
// frozen.
func (s *Setting) Set(receiver id.ID, feeBasis uint16) error {
	if s.attr.Frozen() {
		return freeze.ErrFrozen
	}
	if receiver.IsNil() {
		return ErrInvalidReceiver
	}
	if feeBasis > FeeDenominator {
		return ErrInvalidFee
	}

	return s.attr.Set(Config{Receiver: receiver, FeeBasis: feeBasis})
}

// Freeze permanently locks the configuration.
func (s *Setting) Freeze() error { return s.attr.Freeze() }

// Frozen reports whether the configuration is locked.
func (s *Setting) Frozen() bool { return s.attr.Frozen() }

// Config returns the current configuration.
func (s *Setting) Config() Config { return s.attr.Get() }

// Info computes the royalty due on salePrice: the receiver and
// price × fee / FeeDenominator, rounded down. A nil receiver or an
// overflowing product yields no royalty.
func (s *Setting) Info(salePrice types.Amount) (id.ID, types.Amount) {
	cfg := s.attr.Get()
	if cfg.Receiver.IsNil() || cfg.FeeBasis == 0 {
		return id.Nil, 0
	}

	product, ok := salePrice.MulChecked(types.Amount(cfg.FeeBasis))
	if !ok {
		return id.Nil, 0
	}

	return cfg.Receiver, product / FeeDenominator
}
