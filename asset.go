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

// AssetLedger is the per-identity engine: holders carry independent
// balances of many token identities. Each identity must be registered
// exactly once before it can be minted, carrying its metadata location,
// tenure threshold, and optional supply cap. Tenure accrues per
// (holder, identity) scope.
type AssetLedger struct {
	engine

	holdings      *holding.Accountant
	registrations map[uint64]*token.Registration
	supplies      map[uint64]types.Amount
	regOpen       freeze.Attr[bool]

	// operator approvals: holder -> operator -> approved
	operators map[string]map[string]bool
}

// BatchEntry is one movement in a batch operation.
type BatchEntry struct {
	TokenID uint64
	Amount  types.Amount
}

// NewAssetLedger creates a per-identity ledger owned by owner. The
// ledger starts paused with registration open. s may be nil for a
// purely in-memory ledger.
func NewAssetLedger(s store.Store, owner id.ID, opts ...Option) *AssetLedger {
	l := &AssetLedger{
		holdings:      holding.NewAccountant(),
		registrations: make(map[uint64]*token.Registration),
		supplies:      make(map[uint64]types.Amount),
		regOpen:       freeze.NewAttr(true),
		operators:     make(map[string]map[string]bool),
	}
	initEngine(&l.engine, s, owner, opts...)
	return l
}

// Start migrates the store, rehydrates registrations and balances,
// initializes plugins, and begins the journal worker.
func (l *AssetLedger) Start(ctx context.Context) error {
	if err := l.engine.start(ctx, l); err != nil {
		return err
	}

	if l.store == nil {
		return nil
	}

	regs, err := l.store.ListRegistrations(ctx, l.ledgerID)
	if err != nil {
		return err
	}
	recs, err := l.store.ListHoldings(ctx, l.ledgerID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range regs {
		reg := token.NewRegistration(rec.URI, rec.Threshold, rec.Cap)
		if rec.URIFrozen {
			_ = reg.FreezeURI() //nolint:errcheck // fresh registration, cannot be frozen yet
		}
		l.registrations[rec.TokenID] = reg
	}

	for _, rec := range recs {
		scope := holding.Scope{Account: rec.Account, Token: rec.TokenID}
		l.holdings.Load(scope, rec.Balance, rec.Since)

		supply, ok := l.supplies[rec.TokenID].AddChecked(rec.Balance)
		if !ok {
			return ErrInvalidInput
		}
		l.supplies[rec.TokenID] = supply
	}

	l.logger.Info("asset ledger state loaded",
		"ledger", l.ledgerID.String(),
		"registrations", len(regs),
		"holdings", len(recs),
	)

	return nil
}

// ──────────────────────────────────────────────────
// Registration
// ──────────────────────────────────────────────────

// RegisterToken registers a token identity: its metadata location, the
// balance threshold at which tenure accrues, and an optional supply cap
// (zero = unlimited). Owner-only, once per identity, and only while
// registration is open.
func (l *AssetLedger) RegisterToken(ctx context.Context, caller id.ID, tokenID uint64, uri string, threshold, cap types.Amount) error {
	l.mu.Lock()

	if err := l.governor.RequireOwner(caller); err != nil {
		l.mu.Unlock()
		return err
	}
	if l.regOpen.Frozen() {
		l.mu.Unlock()
		return ErrRegistrationFrozen
	}
	if _, exists := l.registrations[tokenID]; exists {
		l.mu.Unlock()
		return ErrAlreadyRegistered
	}

	reg := token.NewRegistration(uri, threshold, cap)
	l.registrations[tokenID] = reg

	l.mu.Unlock()

	l.persistRegistration(ctx, &store.RegistrationRecord{
		TokenID: tokenID, URI: uri, Threshold: threshold, Cap: cap,
	})
	l.plugins.EmitMetadataChanged(ctx, l.ledgerID, tokenID)

	return nil
}

// FreezeRegistration permanently closes registration: no further token
// identities can ever be added. Owner-only, one-way.
func (l *AssetLedger) FreezeRegistration(ctx context.Context, caller id.ID) error {
	l.mu.Lock()
	err := l.governor.RequireOwner(caller)
	if err == nil {
		if l.regOpen.Frozen() {
			err = ErrRegistrationFrozen
		} else {
			err = l.regOpen.Freeze()
		}
	}
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.plugins.EmitAttributeFrozen(ctx, l.ledgerID, "registration")
	return nil
}

// RegistrationFrozen reports whether registration has been closed.
func (l *AssetLedger) RegistrationFrozen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.regOpen.Frozen()
}

// IsRegistered reports whether tokenID has been registered.
func (l *AssetLedger) IsRegistered(tokenID uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.registrations[tokenID]
	return ok
}

// TokenURI returns the metadata location of tokenID.
func (l *AssetLedger) TokenURI(tokenID uint64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.registrations[tokenID]
	if !ok {
		return "", ErrNotRegistered
	}
	return reg.URI(), nil
}

// SetTokenURI rewrites the metadata location of tokenID. Owner-only;
// fails once the location is frozen.
func (l *AssetLedger) SetTokenURI(ctx context.Context, caller id.ID, tokenID uint64, uri string) error {
	l.mu.Lock()

	if err := l.governor.RequireOwner(caller); err != nil {
		l.mu.Unlock()
		return err
	}
	reg, ok := l.registrations[tokenID]
	if !ok {
		l.mu.Unlock()
		return ErrNotRegistered
	}
	if err := reg.SetURI(uri); err != nil {
		l.mu.Unlock()
		return err
	}
	rec := l.registrationRecord(tokenID, reg)

	l.mu.Unlock()

	l.persistRegistration(ctx, rec)
	l.plugins.EmitMetadataChanged(ctx, l.ledgerID, tokenID)

	return nil
}

// FreezeTokenURI permanently locks the metadata location of tokenID.
// Owner-only, one-way.
func (l *AssetLedger) FreezeTokenURI(ctx context.Context, caller id.ID, tokenID uint64) error {
	l.mu.Lock()

	if err := l.governor.RequireOwner(caller); err != nil {
		l.mu.Unlock()
		return err
	}
	reg, ok := l.registrations[tokenID]
	if !ok {
		l.mu.Unlock()
		return ErrNotRegistered
	}
	if err := reg.FreezeURI(); err != nil {
		l.mu.Unlock()
		return err
	}
	rec := l.registrationRecord(tokenID, reg)

	l.mu.Unlock()

	l.persistRegistration(ctx, rec)
	l.plugins.EmitAttributeFrozen(ctx, l.ledgerID, "uri")

	return nil
}

// registrationRecord builds a snapshot record. Callers hold mu.
func (l *AssetLedger) registrationRecord(tokenID uint64, reg *token.Registration) *store.RegistrationRecord {
	return &store.RegistrationRecord{
		TokenID:   tokenID,
		URI:       reg.URI(),
		Threshold: reg.Threshold(),
		Cap:       reg.Cap().Limit(),
		URIFrozen: reg.URIFrozen(),
	}
}

// ──────────────────────────────────────────────────
// Operator approvals
// ──────────────────────────────────────────────────

// SetApprovalForAll grants or revokes operator's right to move all of
// the caller's balances.
func (l *AssetLedger) SetApprovalForAll(caller, operator id.ID, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.IsNil() || operator.IsNil() {
		return ErrInvalidAccount
	}
	if caller == operator {
		return ErrSelfApproval
	}

	if approved {
		if l.operators[caller.String()] == nil {
			l.operators[caller.String()] = make(map[string]bool)
		}
		l.operators[caller.String()][operator.String()] = true
	} else {
		delete(l.operators[caller.String()], operator.String())
	}

	return nil
}

// IsApprovedForAll reports whether operator may move all of holder's
// balances.
func (l *AssetLedger) IsApprovedForAll(holder, operator id.ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.operators[holder.String()][operator.String()]
}

// mayAct reports whether caller may move holder's balances. Callers
// hold mu.
func (l *AssetLedger) mayAct(caller, holder id.ID) bool {
	return caller == holder || l.operators[holder.String()][caller.String()]
}

// ──────────────────────────────────────────────────
// Balance movement
// ──────────────────────────────────────────────────

// Mint creates amount tokens of tokenID for to. The identity must be
// registered, the caller must be a minter, and the identity's supply
// must stay within its cap.
func (l *AssetLedger) Mint(ctx context.Context, caller, to id.ID, tokenID uint64, amount types.Amount) error {
	return l.MintBatch(ctx, caller, to, []BatchEntry{{TokenID: tokenID, Amount: amount}})
}

// MintBatch creates several token identities for to in one atomic
// operation: every entry is validated against the full guard chain
// before any balance changes, and a single timestamp covers all tenure
// updates.
func (l *AssetLedger) MintBatch(ctx context.Context, caller, to id.ID, entries []BatchEntry) error {
	if len(entries) == 0 {
		return ErrInvalidInput
	}

	l.mu.Lock()

	// Validation phase: nothing below may mutate.
	if err := l.governor.RequireNotPaused(); err != nil {
		l.mu.Unlock()
		return err
	}
	if err := l.governor.RequireMinter(caller); err != nil {
		l.mu.Unlock()
		return err
	}
	if to.IsNil() {
		l.mu.Unlock()
		return ErrInvalidAccount
	}

	deltas := make(map[uint64]types.Amount, len(entries))
	for _, entry := range entries {
		if entry.Amount == 0 {
			l.mu.Unlock()
			return ErrInvalidAmount
		}
		if _, ok := l.registrations[entry.TokenID]; !ok {
			l.mu.Unlock()
			return ErrNotRegistered
		}
		delta, ok := deltas[entry.TokenID].AddChecked(entry.Amount)
		if !ok {
			l.mu.Unlock()
			return ErrInvalidInput
		}
		deltas[entry.TokenID] = delta
	}

	for tokenID, delta := range deltas {
		cap := l.registrations[tokenID].Cap()
		if !cap.Allows(l.supplies[tokenID], delta) {
			attempted, _ := l.supplies[tokenID].AddChecked(delta)
			l.mu.Unlock()
			return CapExceededError{TokenID: tokenID, Attempted: attempted, Cap: cap.Limit()}
		}
		scope := holding.Scope{Account: to, Token: tokenID}
		if _, ok := l.holdings.Balance(scope).AddChecked(delta); !ok {
			l.mu.Unlock()
			return ErrInvalidInput
		}
	}

	now := l.clock.Now()
	evs := make([]plugin.TransferEvent, 0, len(entries))
	for _, entry := range entries {
		evs = append(evs, plugin.TransferEvent{
			Ledger: l.ledgerID, Caller: caller, To: to,
			TokenID: entry.TokenID, Amount: entry.Amount, At: now,
		})
	}
	for _, ev := range evs {
		if err := l.plugins.ValidateTransfer(ctx, ev); err != nil {
			l.mu.Unlock()
			return err
		}
	}

	// Commit phase: apply every delta, then observe each touched scope
	// once with its final balance.
	type snapshot struct {
		account id.ID
		tokenID uint64
		balance types.Amount
		since   time.Time
	}
	snaps := make([]snapshot, 0, len(deltas))

	for tokenID, delta := range deltas {
		l.supplies[tokenID] += delta

		scope := holding.Scope{Account: to, Token: tokenID}
		newBalance := l.holdings.Balance(scope) + delta
		l.holdings.Observe(scope, newBalance, l.registrations[tokenID].Threshold(), now)
		since, _ := l.holdings.HeldSince(scope)
		snaps = append(snaps, snapshot{account: to, tokenID: tokenID, balance: newBalance, since: since})
	}

	l.mu.Unlock()

	for _, s := range snaps {
		l.persistHolding(ctx, s.account, s.tokenID, s.balance, s.since)
	}
	for _, ev := range evs {
		l.record(&store.TransferRecord{
			ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindMint,
			Caller: caller, To: to, TokenID: ev.TokenID, Amount: ev.Amount, At: now,
		})
		l.plugins.EmitMint(ctx, ev)
	}
	if len(evs) > 1 {
		l.plugins.EmitTransferBatch(ctx, evs)
	}

	return nil
}

// Transfer moves amount tokens of tokenID from from to to. The caller
// must be from or an approved operator. A transfer to self is legal and
// changes nothing.
func (l *AssetLedger) Transfer(ctx context.Context, caller, from, to id.ID, tokenID uint64, amount types.Amount) error {
	return l.TransferBatch(ctx, caller, from, to, []BatchEntry{{TokenID: tokenID, Amount: amount}})
}

// TransferBatch moves several token identities between the same pair of
// holders in one atomic operation.
func (l *AssetLedger) TransferBatch(ctx context.Context, caller, from, to id.ID, entries []BatchEntry) error {
	if len(entries) == 0 {
		return ErrInvalidInput
	}

	l.mu.Lock()

	if err := l.governor.RequireNotPaused(); err != nil {
		l.mu.Unlock()
		return err
	}
	if from.IsNil() || to.IsNil() {
		l.mu.Unlock()
		return ErrInvalidAccount
	}
	if !l.mayAct(caller, from) {
		l.mu.Unlock()
		return ErrNotApproved
	}

	deltas := make(map[uint64]types.Amount, len(entries))
	for _, entry := range entries {
		if entry.Amount == 0 {
			l.mu.Unlock()
			return ErrInvalidAmount
		}
		if _, ok := l.registrations[entry.TokenID]; !ok {
			l.mu.Unlock()
			return ErrNotRegistered
		}
		delta, ok := deltas[entry.TokenID].AddChecked(entry.Amount)
		if !ok {
			l.mu.Unlock()
			return ErrInvalidInput
		}
		deltas[entry.TokenID] = delta
	}

	for tokenID, delta := range deltas {
		srcScope := holding.Scope{Account: from, Token: tokenID}
		if _, ok := l.holdings.Balance(srcScope).SubChecked(delta); !ok {
			l.mu.Unlock()
			return ErrInsufficientBalance
		}
		if from != to {
			dstScope := holding.Scope{Account: to, Token: tokenID}
			if _, ok := l.holdings.Balance(dstScope).AddChecked(delta); !ok {
				l.mu.Unlock()
				return ErrInvalidInput
			}
		}
	}

	if from == to {
		// Legal no-op: balances are unchanged, no clocks are touched.
		l.mu.Unlock()
		return nil
	}

	now := l.clock.Now()
	evs := make([]plugin.TransferEvent, 0, len(entries))
	for _, entry := range entries {
		evs = append(evs, plugin.TransferEvent{
			Ledger: l.ledgerID, Caller: caller, From: from, To: to,
			TokenID: entry.TokenID, Amount: entry.Amount, At: now,
		})
	}
	for _, ev := range evs {
		if err := l.plugins.ValidateTransfer(ctx, ev); err != nil {
			l.mu.Unlock()
			return err
		}
	}

	type snapshot struct {
		account id.ID
		tokenID uint64
		balance types.Amount
		since   time.Time
	}
	snaps := make([]snapshot, 0, 2*len(deltas))

	for tokenID, delta := range deltas {
		srcScope := holding.Scope{Account: from, Token: tokenID}
		dstScope := holding.Scope{Account: to, Token: tokenID}
		fromBalance := l.holdings.Balance(srcScope) - delta
		toBalance := l.holdings.Balance(dstScope) + delta

		threshold := l.registrations[tokenID].Threshold()
		l.holdings.Observe(srcScope, fromBalance, threshold, now)
		l.holdings.Observe(dstScope, toBalance, threshold, now)
		fromSince, _ := l.holdings.HeldSince(srcScope)
		toSince, _ := l.holdings.HeldSince(dstScope)

		snaps = append(snaps,
			snapshot{account: from, tokenID: tokenID, balance: fromBalance, since: fromSince},
			snapshot{account: to, tokenID: tokenID, balance: toBalance, since: toSince},
		)
	}

	l.mu.Unlock()

	for _, s := range snaps {
		l.persistHolding(ctx, s.account, s.tokenID, s.balance, s.since)
	}
	for _, ev := range evs {
		l.record(&store.TransferRecord{
			ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindTransfer,
			Caller: caller, From: from, To: to, TokenID: ev.TokenID, Amount: ev.Amount, At: now,
		})
		l.plugins.EmitTransfer(ctx, ev)
	}
	if len(evs) > 1 {
		l.plugins.EmitTransferBatch(ctx, evs)
	}

	return nil
}

// Burn destroys amount tokens of tokenID from from's balance. The
// caller must be from or an approved operator.
func (l *AssetLedger) Burn(ctx context.Context, caller, from id.ID, tokenID uint64, amount types.Amount) error {
	return l.BurnBatch(ctx, caller, from, []BatchEntry{{TokenID: tokenID, Amount: amount}})
}

// BurnBatch destroys several token identities from from's balances in
// one atomic operation.
func (l *AssetLedger) BurnBatch(ctx context.Context, caller, from id.ID, entries []BatchEntry) error {
	if len(entries) == 0 {
		return ErrInvalidInput
	}

	l.mu.Lock()

	if err := l.governor.RequireNotPaused(); err != nil {
		l.mu.Unlock()
		return err
	}
	if from.IsNil() {
		l.mu.Unlock()
		return ErrInvalidAccount
	}
	if !l.mayAct(caller, from) {
		l.mu.Unlock()
		return ErrNotApproved
	}

	deltas := make(map[uint64]types.Amount, len(entries))
	for _, entry := range entries {
		if entry.Amount == 0 {
			l.mu.Unlock()
			return ErrInvalidAmount
		}
		if _, ok := l.registrations[entry.TokenID]; !ok {
			l.mu.Unlock()
			return ErrNotRegistered
		}
		delta, ok := deltas[entry.TokenID].AddChecked(entry.Amount)
		if !ok {
			l.mu.Unlock()
			return ErrInvalidInput
		}
		deltas[entry.TokenID] = delta
	}

	for tokenID, delta := range deltas {
		scope := holding.Scope{Account: from, Token: tokenID}
		if _, ok := l.holdings.Balance(scope).SubChecked(delta); !ok {
			l.mu.Unlock()
			return ErrInsufficientBalance
		}
	}

	now := l.clock.Now()

	type snapshot struct {
		tokenID uint64
		balance types.Amount
		since   time.Time
	}
	snaps := make([]snapshot, 0, len(deltas))

	for tokenID, delta := range deltas {
		l.supplies[tokenID] -= delta

		scope := holding.Scope{Account: from, Token: tokenID}
		newBalance := l.holdings.Balance(scope) - delta
		l.holdings.Observe(scope, newBalance, l.registrations[tokenID].Threshold(), now)
		since, _ := l.holdings.HeldSince(scope)
		snaps = append(snaps, snapshot{tokenID: tokenID, balance: newBalance, since: since})
	}

	evs := make([]plugin.TransferEvent, 0, len(entries))
	for _, entry := range entries {
		evs = append(evs, plugin.TransferEvent{
			Ledger: l.ledgerID, Caller: caller, From: from,
			TokenID: entry.TokenID, Amount: entry.Amount, At: now,
		})
	}

	l.mu.Unlock()

	for _, s := range snaps {
		l.persistHolding(ctx, from, s.tokenID, s.balance, s.since)
	}
	for _, ev := range evs {
		l.record(&store.TransferRecord{
			ID: id.NewTransferID(), Ledger: l.ledgerID, Kind: store.KindBurn,
			Caller: caller, From: from, TokenID: ev.TokenID, Amount: ev.Amount, At: now,
		})
		l.plugins.EmitBurn(ctx, ev)
	}
	if len(evs) > 1 {
		l.plugins.EmitTransferBatch(ctx, evs)
	}

	return nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// BalanceOf returns account's balance of tokenID.
func (l *AssetLedger) BalanceOf(account id.ID, tokenID uint64) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings.Balance(holding.Scope{Account: account, Token: tokenID})
}

// TotalSupply returns the outstanding supply of tokenID.
func (l *AssetLedger) TotalSupply(tokenID uint64) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supplies[tokenID]
}

// HeldSince returns the instant account's current qualifying stretch of
// tokenID began. ok is false while the account is below the identity's
// threshold.
func (l *AssetLedger) HeldSince(account id.ID, tokenID uint64) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings.HeldSince(holding.Scope{Account: account, Token: tokenID})
}

// HoldingPeriod returns how long account has continuously held at least
// the identity's threshold of tokenID. Zero below the threshold and for
// unregistered identities.
func (l *AssetLedger) HoldingPeriod(account id.ID, tokenID uint64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.registrations[tokenID]
	if !ok {
		return 0
	}
	return l.holdings.Period(holding.Scope{Account: account, Token: tokenID}, reg.Threshold(), l.clock.Now())
}
