// Package tenure provides a family of embeddable token ledgers for Go
// applications, built around holder tenure: how long an account has
// continuously held a qualifying position.
//
// Tenure is designed as a library, not a service. Import it directly
// into your Go application. It provides three ledger variants sharing
// one governance and persistence core:
//
//   - Ledger: one balance per holder of a single token kind
//   - AssetLedger: independent balances of many registered token
//     identities per holder, with atomic batch operations
//   - Collection: unique tokens with one owner each, sequential
//     identities, typed issuance, rentals, and royalties
//
// # Quick Start
//
// Create a ledger with your preferred store:
//
//	import (
//	    "github.com/xraph/tenure"
//	    "github.com/xraph/tenure/id"
//	    "github.com/xraph/tenure/store/postgres"
//	)
//
//	// Initialize store
//	st, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create ledger
//	owner := id.NewAccountID()
//	l := tenure.NewLedger(st, owner)
//
//	// Start the ledger (migrates, rehydrates, begins the journal worker)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Every ledger starts paused; the owner must Unpause before balances
// can move:
//
//	if err := l.Unpause(ctx, owner); err != nil { ... }
//
// Minting is restricted to the minter set (the owner is always a
// minter) and bounded by a freezable supply cap:
//
//	if err := l.Mint(ctx, owner, holder, 500); err != nil { ... }
//
// Tenure accrues once a holder's balance reaches the threshold and is
// forfeited entirely the moment it dips below:
//
//	l.SetThreshold(owner, 100)
//	d := l.HoldingPeriod(holder) // continuous time at or above 100
//
// Governance attributes (the minter set, supply caps, thresholds,
// metadata locations, type ranges, royalties) can each be frozen:
// a one-way door that makes the attribute permanent.
//
// # Persistence
//
// Engines hold authoritative state in memory. Stores are write-behind
// snapshots plus a batched transfer journal; pass a nil store for a
// purely ephemeral ledger. Drivers exist for Postgres, SQLite, MongoDB,
// and memory.
//
// # TypeID
//
// All identities use TypeID for globally unique, type-safe
// identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	ldgr_01h2xcejqtf2nbrexx3vqjhp41  // Ledger instance ID
//	xfer_01h455vb4pex5vsknk084sn02q  // Journal entry ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package tenure
