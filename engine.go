package tenure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tenure/access"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/plugin"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/types"
)

// engine is the shared core of the three ledger variants: identity,
// governance, the plugin registry, the transfer journal, and the
// write-behind persistence plumbing. All mutations on an engine are
// serialized by mu; each takes one timestamp from the clock and uses it
// for everything it touches.
type engine struct {
	ledgerID id.ID
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	clock    types.Clock
	governor *access.Governor

	mu sync.Mutex

	// Background journal worker
	journalBuffer chan *store.TransferRecord
	stopChan      chan struct{}
	wg            sync.WaitGroup

	// Configuration
	journalBatchSize     int
	journalFlushInterval time.Duration
}

// Option configures a ledger engine.
type Option func(*engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithClock sets the time source. Defaults to the system clock in UTC.
func WithClock(clock types.Clock) Option {
	return func(e *engine) {
		e.clock = clock
	}
}

// WithLedgerID sets the ledger instance identity. A fresh one is
// generated when not supplied; pass the stored identity to rehydrate an
// existing ledger.
func WithLedgerID(ledgerID id.ID) Option {
	return func(e *engine) {
		e.ledgerID = ledgerID
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithJournalConfig configures transfer journal batching.
func WithJournalConfig(batchSize int, flushInterval time.Duration) Option {
	return func(e *engine) {
		e.journalBatchSize = batchSize
		e.journalFlushInterval = flushInterval
	}
}

// initEngine builds the shared core in place. s may be nil for a purely
// in-memory ledger: snapshots and the journal are then skipped entirely.
func initEngine(e *engine, s store.Store, owner id.ID, opts ...Option) {
	e.ledgerID = id.NewLedgerID()
	e.store = s
	e.plugins = plugin.NewRegistry()
	e.logger = slog.Default()
	e.clock = types.SystemClock{}
	e.governor = access.NewGovernor(owner)
	e.journalBuffer = make(chan *store.TransferRecord, 10000)
	e.stopChan = make(chan struct{})
	e.journalBatchSize = 100
	e.journalFlushInterval = 5 * time.Second

	for _, opt := range opts {
		opt(e)
	}
}

// ID returns the ledger instance identity.
func (e *engine) ID() id.ID { return e.ledgerID }

// Plugins returns the plugin registry.
func (e *engine) Plugins() *plugin.Registry { return e.plugins }

// start runs the shared startup steps: store migration, plugin init,
// and the journal worker. self is the concrete engine, handed to OnInit
// plugins.
func (e *engine) start(ctx context.Context, self interface{}) error {
	if e.store != nil {
		if err := e.store.Migrate(ctx); err != nil {
			return err
		}
	}

	e.plugins.EmitInit(ctx, self)

	e.wg.Add(1)
	go e.journalFlushWorker(ctx)

	e.logger.Info("ledger started",
		"ledger", e.ledgerID.String(),
		"batch_size", e.journalBatchSize,
		"flush_interval", e.journalFlushInterval,
	)

	return nil
}

// Stop shuts down the engine: the journal is drained, plugins are
// notified, and the store is closed.
func (e *engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	if e.store == nil {
		return nil
	}

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Governance
// ──────────────────────────────────────────────────

// Owner returns the ledger owner.
func (e *engine) Owner() id.ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.Owner()
}

// Paused reports whether the ledger is paused. New ledgers start paused;
// the owner must Unpause before any balances can move.
func (e *engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.Paused()
}

// Pause suspends all balance-changing operations. Owner-only.
func (e *engine) Pause(ctx context.Context, caller id.ID) error {
	e.mu.Lock()
	err := e.governor.Pause(caller)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.plugins.EmitPaused(ctx, e.ledgerID)
	return nil
}

// Unpause resumes balance-changing operations. Owner-only.
func (e *engine) Unpause(ctx context.Context, caller id.ID) error {
	e.mu.Lock()
	err := e.governor.Unpause(caller)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.plugins.EmitUnpaused(ctx, e.ledgerID)
	return nil
}

// TransferOwnership hands the owner role to newOwner. Owner-only.
func (e *engine) TransferOwnership(caller, newOwner id.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.TransferOwnership(caller, newOwner)
}

// IsMinter reports whether a may mint on this ledger.
func (e *engine) IsMinter(a id.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.IsMinter(a)
}

// AddMinter grants minting rights. Owner-only.
func (e *engine) AddMinter(caller, m id.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.AddMinter(caller, m)
}

// RemoveMinter revokes minting rights. Owner-only.
func (e *engine) RemoveMinter(caller, m id.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.governor.RemoveMinter(caller, m)
}

// FreezeMinters permanently locks the minter set. Owner-only, one-way.
func (e *engine) FreezeMinters(ctx context.Context, caller id.ID) error {
	e.mu.Lock()
	err := e.governor.FreezeMinters(caller)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.plugins.EmitAttributeFrozen(ctx, e.ledgerID, "minters")
	return nil
}

// ──────────────────────────────────────────────────
// Transfer journal
// ──────────────────────────────────────────────────

// record enqueues one journal entry (non-blocking). A full buffer drops
// the entry with a warning rather than stalling the mutation path.
func (e *engine) record(rec *store.TransferRecord) {
	if e.store == nil {
		return
	}

	select {
	case e.journalBuffer <- rec:
	default:
		e.logger.Warn("journal buffer full, dropping entry",
			"ledger", e.ledgerID.String(),
			"kind", rec.Kind,
		)
	}
}

// journalFlushWorker flushes journal entries to the store.
func (e *engine) journalFlushWorker(ctx context.Context) {
	defer e.wg.Done()

	batch := make([]*store.TransferRecord, 0, e.journalBatchSize)
	ticker := time.NewTicker(e.journalFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			// Final flush
			for {
				select {
				case rec := <-e.journalBuffer:
					batch = append(batch, rec)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				e.flushJournalBatch(ctx, batch)
			}
			return

		case rec := <-e.journalBuffer:
			batch = append(batch, rec)
			if len(batch) >= e.journalBatchSize {
				e.flushJournalBatch(ctx, batch)
				batch = make([]*store.TransferRecord, 0, e.journalBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				e.flushJournalBatch(ctx, batch)
				batch = make([]*store.TransferRecord, 0, e.journalBatchSize)
			}
		}
	}
}

func (e *engine) flushJournalBatch(ctx context.Context, batch []*store.TransferRecord) {
	start := time.Now()

	if err := e.store.AppendTransfers(ctx, batch); err != nil {
		e.logger.Error("failed to flush journal batch",
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	elapsed := time.Since(start)
	e.plugins.EmitJournalFlushed(ctx, len(batch), elapsed)

	e.logger.Debug("flushed journal batch",
		"batch_size", len(batch),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// QueryTransfers reads back journal entries for this ledger.
func (e *engine) QueryTransfers(ctx context.Context, opts store.QueryOpts) ([]*store.TransferRecord, error) {
	if e.store == nil {
		return nil, ErrStoreNotReady
	}

	return e.store.QueryTransfers(ctx, e.ledgerID, opts)
}

// PurgeTransfers drops journal entries older than before and returns the
// number removed.
func (e *engine) PurgeTransfers(ctx context.Context, before time.Time) (int64, error) {
	if e.store == nil {
		return 0, ErrStoreNotReady
	}

	return e.store.PurgeTransfers(ctx, before)
}

// ──────────────────────────────────────────────────
// Write-behind persistence
// ──────────────────────────────────────────────────

// persistHolding snapshots one holding scope, best-effort.
func (e *engine) persistHolding(ctx context.Context, account id.ID, tokenID uint64, balance types.Amount, since time.Time) {
	if e.store == nil {
		return
	}

	var err error
	if balance == 0 && since.IsZero() {
		err = e.store.DeleteHolding(ctx, e.ledgerID, account, tokenID)
	} else {
		err = e.store.UpsertHolding(ctx, &store.HoldingRecord{
			Ledger:  e.ledgerID,
			Account: account,
			TokenID: tokenID,
			Balance: balance,
			Since:   since,
		})
	}
	if err != nil {
		e.logger.Warn("failed to persist holding snapshot",
			"account", account.String(),
			"token_id", tokenID,
			"error", err,
		)
	}
}

// persistToken snapshots one unique token record, best-effort.
func (e *engine) persistToken(ctx context.Context, rec *store.TokenRecord) {
	if e.store == nil {
		return
	}

	rec.Ledger = e.ledgerID
	if err := e.store.UpsertToken(ctx, rec); err != nil {
		e.logger.Warn("failed to persist token snapshot",
			"token_id", rec.TokenID,
			"error", err,
		)
	}
}

// dropToken removes one unique token snapshot, best-effort.
func (e *engine) dropToken(ctx context.Context, tokenID uint64) {
	if e.store == nil {
		return
	}

	if err := e.store.DeleteToken(ctx, e.ledgerID, tokenID); err != nil {
		e.logger.Warn("failed to delete token snapshot",
			"token_id", tokenID,
			"error", err,
		)
	}
}

// persistRegistration snapshots one registration, best-effort.
func (e *engine) persistRegistration(ctx context.Context, rec *store.RegistrationRecord) {
	if e.store == nil {
		return
	}

	rec.Ledger = e.ledgerID
	if err := e.store.UpsertRegistration(ctx, rec); err != nil {
		e.logger.Warn("failed to persist registration snapshot",
			"token_id", rec.TokenID,
			"error", err,
		)
	}
}
