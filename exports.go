package tenure

import "github.com/xraph/tenure/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Clock is re-exported from types package.
type Clock = types.Clock

// Re-export Amount helpers
var (
	SumChecked = types.SumChecked
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
