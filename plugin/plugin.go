// Package plugin provides an extensible plugin system for Tenure.
// Plugins can hook into ledger lifecycle events to extend functionality:
// enumeration indexes, metadata formatters, audit sinks, and metrics all
// attach here.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// TransferEvent describes one balance movement. From is nil for mints,
// To is nil for burns.
type TransferEvent struct {
	Ledger  id.ID
	Caller  id.ID
	From    id.ID
	To      id.ID
	TokenID uint64
	Amount  types.Amount
	At      time.Time
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Balance movement hooks
// ──────────────────────────────────────────────────

// OnMint is called after tokens are created.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, ev TransferEvent) error
}

// OnTransfer is called after tokens move between holders. Self-transfers
// are legal no-ops and do not emit this event.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, ev TransferEvent) error
}

// OnTransferBatch is called once per batch operation with every movement
// the batch performed.
type OnTransferBatch interface {
	Plugin
	OnTransferBatch(ctx context.Context, evs []TransferEvent) error
}

// OnBurn is called after tokens are destroyed.
type OnBurn interface {
	Plugin
	OnBurn(ctx context.Context, ev TransferEvent) error
}

// ──────────────────────────────────────────────────
// Metadata and configuration hooks
// ──────────────────────────────────────────────────

// OnMetadataChanged is called when one token's metadata may have changed:
// its location was rewritten, or a unique token changed hands.
type OnMetadataChanged interface {
	Plugin
	OnMetadataChanged(ctx context.Context, ledger id.ID, tokenID uint64) error
}

// OnMetadataRangeChanged is called when a contiguous range of tokens'
// metadata may have changed, for example after a type-range extension.
type OnMetadataRangeChanged interface {
	Plugin
	OnMetadataRangeChanged(ctx context.Context, ledger id.ID, fromID, toID uint64) error
}

// OnRentalChanged is called when a token's delegated user changes,
// including the implicit clear on ownership change (user nil, zero
// expiry).
type OnRentalChanged interface {
	Plugin
	OnRentalChanged(ctx context.Context, ledger id.ID, tokenID uint64, user id.ID, expires time.Time) error
}

// OnAttributeFrozen is called when a governance attribute is permanently
// locked. attribute names the lock: "minters", "cap", "threshold", "uri",
// "type_range", "royalty", "registration".
type OnAttributeFrozen interface {
	Plugin
	OnAttributeFrozen(ctx context.Context, ledger id.ID, attribute string) error
}

// ──────────────────────────────────────────────────
// Pause hooks
// ──────────────────────────────────────────────────

// OnPaused is called when a ledger is paused.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context, ledger id.ID) error
}

// OnUnpaused is called when a ledger resumes.
type OnUnpaused interface {
	Plugin
	OnUnpaused(ctx context.Context, ledger id.ID) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed is called when buffered transfer events are flushed
// to the store.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Metadata formatters
// ──────────────────────────────────────────────────

// MetadataFormatter renders a token's metadata location from a base
// location and a token id. The engines never format locations
// themselves; formatters are looked up by name.
type MetadataFormatter interface {
	Plugin
	FormatterName() string
	TokenURI(base string, tokenID uint64) string
}

// ──────────────────────────────────────────────────
// Transfer validators
// ──────────────────────────────────────────────────

// TransferValidator can veto a movement after the built-in guards have
// passed and before any state changes. A non-nil error aborts the
// operation.
type TransferValidator interface {
	Plugin
	ValidateTransfer(ctx context.Context, ev TransferEvent) error
}
