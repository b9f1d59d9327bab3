package tenure

import (
	"context"
	"time"

	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/holding"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/plugin"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/token"
	"github.com/xraph/tenure/types"
)

// Ledger is the single-balance engine: every holder has one balance of
// one token kind. It tracks total supply against a freezable cap and
// accrues holding tenure per account against a single, freezable
// threshold.
type Ledger struct {
	engine

	holdings  *holding.Accountant
	total     types.Amount
	cap       token.SupplyCap
	threshold freeze.Attr[types.Amount]
}

// NewLedger creates a single-balance ledger owned by owner. The ledger
// starts paused. s may be nil for a purely in-memory ledger.
func NewLedger(s store.Store, owner id.ID, opts ...Option) *Ledger {
	l := &Ledger{
		holdings: holding.NewAccountant(),
		cap:      token.NewSupplyCap(0),
	}
	initEngine(&l.engine, s, owner, opts...)
	return l
}

// Start migrates the store, rehydrates balances, initializes plugins,
// and begins the journal worker.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.engine.start(ctx, l); err != nil {
		return err
	}

	if l.store == nil {
		return nil
	}

	recs, err := l.store.ListHoldings(ctx, l.ledgerID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.total = 0
	for _, rec := range recs {
		scope := holding.Scope{Account: rec.Account}
		l.holdings.Load(scope, rec.Balance, rec.Since)

		total, ok := l.total.AddChecked(rec.Balance)
		if !ok {
			return ErrInvalidInput
		}
		l.total = total
	}

	l.logger.Info("ledger state loaded",
		"ledger", l.ledgerID.String(),
		"holders", len(recs),
	)

	return nil
}

// ──────────────────────────────────────────────────
// Supply configuration
// ──────────────────────────────────────────────────

// SupplyCap returns the current cap (zero = unlimited).
func (l *Ledger) SupplyCap() types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cap.Limit()
}

// SetSupplyCap replaces the cap. Owner-only; a non-zero cap below the
// outstanding supply is rejected.
func (l *Ledger) SetSupplyCap(caller id.ID, limit types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.governor.RequireOwner(caller); err != nil {
		return err
	}

	return l.cap.Set(limit, l.total)
}

// FreezeSupplyCap permanently locks the cap. Owner-only, one-way.
func (l *Ledger) FreezeSupplyCap(ctx context.Context, caller id.ID) error {
	l.mu.Lock()
	err := l.governor.RequireOwner(caller)
	if err == nil {
		err = l.cap.Freeze()
	}
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.plugins.EmitAttributeFrozen(ctx, l.ledgerID, "cap")
	return nil
}

// Threshold returns the tenure threshold (zero disables tracking).
func (l *Ledger) Threshold() types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.threshold.Get()
}

// SetThreshold replaces the tenure threshold. Owner-only; applies to
// future balance changes, running clocks are untouched.
func (l *Ledger) SetThreshold(caller id.ID, threshold types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.governor.RequireOwner(caller); err != nil {
		return err
	}

	return l.threshold.Set(threshold)
}

// FreezeThreshold permanently locks the threshold. Owner-only, one-way.
func (l *Ledger) FreezeThreshold(ctx context.Context, caller id.ID) error {
	l.mu.Lock()
	err := l.governor.RequireOwner(caller)
	if err == nil {
		err = l.threshold.Freeze()
	}
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.plugins.EmitAttributeFrozen(ctx, l.ledgerID, "threshold")
	return nil
}

// ──────────────────────────────────────────────────
// Balance movement
// ──────────────────────────────────────────────────

// Mint creates amount tokens for to. The caller must be a minter, the
// ledger must be running, and the new total must fit the cap.
func (l *Ledger) Mint(ctx context.Context, caller, to id.ID, amount types.Amount) error {
	l.mu.Lock()

	if err := l.guardMint(caller, to, amount); err != nil {
		l.mu.Unlock()
		return err
	}

	now := l.clock.Now()
	ev := plugin.TransferEvent{
		Ledger: l.ledgerID, Caller: caller, To: to, Amount: amount, At: now,
	}
	if err := l.plugins.ValidateTransfer(ctx, ev); err != nil {
		l.mu.Unlock()
		return err
	}

	scope := holding.Scope{Account: to}
	newBalance, ok := l.holdings.Balance(scope).AddChecked(amount)
	if !ok {
		l.mu.Unlock()
		return ErrInvalidInput
	}

	l.total += amount
	l.holdings.Observe(scope, newBalance, l.threshold.Get(), now)
	since, _ := l.holdings.HeldSince(scope)

	l.mu.Unlock()

	l.persistHolding(ctx, to, 0, newBalance, since)
	l.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindMint,
		Caller: caller, To: to, Amount: amount, At: now,
	})
	l.plugins.EmitMint(ctx, ev)

	return nil
}

// guardMint runs the mint guard chain: not-paused, then minter, then
// input validity, then cap headroom. Callers hold mu.
func (l *Ledger) guardMint(caller, to id.ID, amount types.Amount) error {
	if err := l.governor.RequireNotPaused(); err != nil {
		return err
	}
	if err := l.governor.RequireMinter(caller); err != nil {
		return err
	}
	if to.IsNil() {
		return ErrInvalidAccount
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !l.cap.Allows(l.total, amount) {
		attempted, _ := l.total.AddChecked(amount)
		return CapExceededError{Attempted: attempted, Cap: l.cap.Limit()}
	}

	return nil
}

// Transfer moves amount tokens from the caller's balance to to. A
// transfer to self is legal and changes nothing.
func (l *Ledger) Transfer(ctx context.Context, caller, to id.ID, amount types.Amount) error {
	l.mu.Lock()

	if err := l.governor.RequireNotPaused(); err != nil {
		l.mu.Unlock()
		return err
	}
	if caller.IsNil() || to.IsNil() {
		l.mu.Unlock()
		return ErrInvalidAccount
	}
	if amount == 0 {
		l.mu.Unlock()
		return ErrInvalidAmount
	}

	from := caller
	srcScope := holding.Scope{Account: from}
	fromBalance, ok := l.holdings.Balance(srcScope).SubChecked(amount)
	if !ok {
		l.mu.Unlock()
		return ErrInsufficientBalance
	}

	if from == to {
		// Legal no-op: the balance never changes, no clock is touched.
		l.mu.Unlock()
		return nil
	}

	now := l.clock.Now()
	ev := plugin.TransferEvent{
		Ledger: l.ledgerID, Caller: caller, From: from, To: to, Amount: amount, At: now,
	}
	if err := l.plugins.ValidateTransfer(ctx, ev); err != nil {
		l.mu.Unlock()
		return err
	}

	dstScope := holding.Scope{Account: to}
	toBalance, ok := l.holdings.Balance(dstScope).AddChecked(amount)
	if !ok {
		l.mu.Unlock()
		return ErrInvalidInput
	}

	threshold := l.threshold.Get()
	l.holdings.Observe(srcScope, fromBalance, threshold, now)
	l.holdings.Observe(dstScope, toBalance, threshold, now)
	fromSince, _ := l.holdings.HeldSince(srcScope)
	toSince, _ := l.holdings.HeldSince(dstScope)

	l.mu.Unlock()

	l.persistHolding(ctx, from, 0, fromBalance, fromSince)
	l.persistHolding(ctx, to, 0, toBalance, toSince)
	l.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindTransfer,
		Caller: caller, From: from, To: to, Amount: amount, At: now,
	})
	l.plugins.EmitTransfer(ctx, ev)

	return nil
}

// Burn destroys amount tokens from the caller's balance.
func (l *Ledger) Burn(ctx context.Context, caller id.ID, amount types.Amount) error {
	l.mu.Lock()

	if err := l.governor.RequireNotPaused(); err != nil {
		l.mu.Unlock()
		return err
	}
	if caller.IsNil() {
		l.mu.Unlock()
		return ErrInvalidAccount
	}
	if amount == 0 {
		l.mu.Unlock()
		return ErrInvalidAmount
	}

	scope := holding.Scope{Account: caller}
	newBalance, ok := l.holdings.Balance(scope).SubChecked(amount)
	if !ok {
		l.mu.Unlock()
		return ErrInsufficientBalance
	}

	now := l.clock.Now()

	l.total -= amount
	l.holdings.Observe(scope, newBalance, l.threshold.Get(), now)
	since, _ := l.holdings.HeldSince(scope)

	l.mu.Unlock()

	l.persistHolding(ctx, caller, 0, newBalance, since)
	l.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindBurn,
		Caller: caller, From: caller, Amount: amount, At: now,
	})
	l.plugins.EmitBurn(ctx, plugin.TransferEvent{
		Ledger: l.ledgerID, Caller: caller, From: caller, Amount: amount, At: now,
	})

	return nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// BalanceOf returns account's balance.
func (l *Ledger) BalanceOf(account id.ID) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings.Balance(holding.Scope{Account: account})
}

// TotalSupply returns the outstanding supply.
func (l *Ledger) TotalSupply() types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// HeldSince returns the instant account's current qualifying stretch
// began. ok is false while the account is below the threshold.
func (l *Ledger) HeldSince(account id.ID) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings.HeldSince(holding.Scope{Account: account})
}

// HoldingPeriod returns how long account has continuously held at least
// the threshold. Zero for accounts below the threshold.
func (l *Ledger) HoldingPeriod(account id.ID) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings.Period(holding.Scope{Account: account}, l.threshold.Get(), l.clock.Now())
}
