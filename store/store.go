// Package store defines the persistence contract for Tenure. Engines
// keep their working state in memory and use a Store as a write-behind
// snapshot plus an append-only transfer journal; Start rehydrates from
// it.
package store

import (
	"context"
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

// Transfer kinds recorded in the journal.
const (
	KindMint     = "mint"
	KindTransfer = "transfer"
	KindBurn     = "burn"
)

// HoldingRecord is the snapshot of one holding scope: a holder's balance
// of one token identity and the instant its qualifying stretch began
// (zero while below the threshold). TokenID is zero for single-balance
// ledgers.
type HoldingRecord struct {
	Ledger  id.ID        `json:"ledger"`
	Account id.ID        `json:"account"`
	TokenID uint64       `json:"token_id"`
	Balance types.Amount `json:"balance"`
	Since   time.Time    `json:"since"`
}

// TokenRecord is the snapshot of one unique token, including its rental
// grant. The stored rental expiry is whatever the engine last held; it
// is never rewritten just because it passed.
type TokenRecord struct {
	Ledger         id.ID     `json:"ledger"`
	TokenID        uint64    `json:"token_id"`
	Owner          id.ID     `json:"owner"`
	FirstOwner     id.ID     `json:"first_owner"`
	Type           uint64    `json:"type"`
	MintedAt       time.Time `json:"minted_at"`
	LastTransferAt time.Time `json:"last_transfer_at"`
	User           id.ID     `json:"user"`
	UserExpires    time.Time `json:"user_expires"`
}

// RegistrationRecord is the snapshot of one token identity registration
// in a per-identity ledger.
type RegistrationRecord struct {
	Ledger    id.ID        `json:"ledger"`
	TokenID   uint64       `json:"token_id"`
	URI       string       `json:"uri"`
	Threshold types.Amount `json:"threshold"`
	Cap       types.Amount `json:"cap"`
	URIFrozen bool         `json:"uri_frozen"`
}

// TransferRecord is one journal entry. From is nil for mints, To is nil
// for burns.
type TransferRecord struct {
	ID      id.ID        `json:"id"`
	Ledger  id.ID        `json:"ledger"`
	Kind    string       `json:"kind"`
	Caller  id.ID        `json:"caller"`
	From    id.ID        `json:"from"`
	To      id.ID        `json:"to"`
	TokenID uint64       `json:"token_id"`
	Amount  types.Amount `json:"amount"`
	At      time.Time    `json:"at"`
}

// QueryOpts filters journal queries. Zero-value fields are ignored.
type QueryOpts struct {
	Account id.ID   // match either side of the movement
	TokenID *uint64 // match one token identity
	Kind    string  // KindMint, KindTransfer, or KindBurn
	Since   time.Time
	Until   time.Time
	Limit   int
	Offset  int
}

// Store is the unified storage interface for all Tenure state.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Holding snapshot methods
	UpsertHolding(ctx context.Context, rec *HoldingRecord) error
	DeleteHolding(ctx context.Context, ledger, account id.ID, tokenID uint64) error
	ListHoldings(ctx context.Context, ledger id.ID) ([]*HoldingRecord, error)

	// Unique token snapshot methods
	UpsertToken(ctx context.Context, rec *TokenRecord) error
	DeleteToken(ctx context.Context, ledger id.ID, tokenID uint64) error
	GetToken(ctx context.Context, ledger id.ID, tokenID uint64) (*TokenRecord, error)
	ListTokens(ctx context.Context, ledger id.ID) ([]*TokenRecord, error)

	// Registration snapshot methods
	UpsertRegistration(ctx context.Context, rec *RegistrationRecord) error
	GetRegistration(ctx context.Context, ledger id.ID, tokenID uint64) (*RegistrationRecord, error)
	ListRegistrations(ctx context.Context, ledger id.ID) ([]*RegistrationRecord, error)

	// Transfer journal methods
	AppendTransfers(ctx context.Context, recs []*TransferRecord) error
	QueryTransfers(ctx context.Context, ledger id.ID, opts QueryOpts) ([]*TransferRecord, error)
	PurgeTransfers(ctx context.Context, before time.Time) (int64, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
