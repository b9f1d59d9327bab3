package tenure

import (
	"context"
	"strconv"
	"time"

	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/plugin"
	"github.com/xraph/tenure/rental"
	"github.com/xraph/tenure/royalty"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/token"
	"github.com/xraph/tenure/types"
)

// Collection is the unique-identity engine: every token is a distinct
// record with exactly one owner. Token identities are assigned
// sequentially at mint; each carries a type drawn from a bounded,
// raisable range, and each holder can receive at most one token of each
// type, ever. Tenure is per token: the clock restarts whenever the
// token changes hands.
type Collection struct {
	engine

	records  map[uint64]*token.Record
	nextID   uint64
	tr       *token.TypeRange
	typeCaps map[uint64]*token.SupplyCap
	minted   map[uint64]types.Amount

	// airdropped[type][holder] survives burns: receipt is once per
	// holder per type, forever.
	airdropped map[uint64]map[string]bool

	rentals   *rental.Tracker
	royalties royalty.Setting
	soulbound bool
	baseURI   freeze.Attr[string]
	formatter string

	// approvals[tokenID] is the single approved mover; operators is
	// holder -> operator -> approved for all of the holder's tokens.
	approvals map[uint64]id.ID
	operators map[string]map[string]bool
}

// CollectionConfig carries the immutable shape of a collection.
type CollectionConfig struct {
	// TypeMin and TypeMax bound the valid token types. TypeMax can be
	// raised later (until frozen); TypeMin never moves.
	TypeMin uint64
	TypeMax uint64

	// Soulbound collections reject every transfer; tokens can only be
	// airdropped and burned.
	Soulbound bool

	// BaseURI is the metadata location prefix. Token metadata resolves
	// to BaseURI + tokenID unless a metadata formatter plugin named by
	// Formatter is registered.
	BaseURI   string
	Formatter string
}

// NewCollection creates a unique-identity collection owned by owner.
// The collection starts paused. s may be nil for a purely in-memory
// collection.
func NewCollection(s store.Store, owner id.ID, cfg CollectionConfig, opts ...Option) (*Collection, error) {
	tr, err := token.NewTypeRange(cfg.TypeMin, cfg.TypeMax)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		records:    make(map[uint64]*token.Record),
		nextID:     1,
		tr:         tr,
		typeCaps:   make(map[uint64]*token.SupplyCap),
		minted:     make(map[uint64]types.Amount),
		airdropped: make(map[uint64]map[string]bool),
		rentals:    rental.NewTracker(),
		soulbound:  cfg.Soulbound,
		baseURI:    freeze.NewAttr(cfg.BaseURI),
		formatter:  cfg.Formatter,
		approvals:  make(map[uint64]id.ID),
		operators:  make(map[string]map[string]bool),
	}
	initEngine(&c.engine, s, owner, opts...)
	return c, nil
}

// Start migrates the store, rehydrates token records, initializes
// plugins, and begins the journal worker.
func (c *Collection) Start(ctx context.Context) error {
	if err := c.engine.start(ctx, c); err != nil {
		return err
	}

	if c.store == nil {
		return nil
	}

	recs, err := c.store.ListTokens(ctx, c.ledgerID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range recs {
		c.records[rec.TokenID] = &token.Record{
			Owner:          rec.Owner,
			FirstOwner:     rec.FirstOwner,
			Type:           rec.Type,
			MintedAt:       rec.MintedAt,
			LastTransferAt: rec.LastTransferAt,
		}
		if rec.TokenID >= c.nextID {
			c.nextID = rec.TokenID + 1
		}
		c.minted[rec.Type]++
		c.markAirdropped(rec.Type, rec.FirstOwner)

		if !rec.User.IsNil() || !rec.UserExpires.IsZero() {
			c.rentals.Load(rec.TokenID, rec.User, rec.UserExpires)
		}
	}

	c.logger.Info("collection state loaded",
		"ledger", c.ledgerID.String(),
		"tokens", len(recs),
		"next_token_id", c.nextID,
	)

	return nil
}

func (c *Collection) markAirdropped(typ uint64, holder id.ID) {
	if c.airdropped[typ] == nil {
		c.airdropped[typ] = make(map[string]bool)
	}
	c.airdropped[typ][holder.String()] = true
}

// ──────────────────────────────────────────────────
// Minting
// ──────────────────────────────────────────────────

// Airdrop mints one token of typ for to and returns its identity.
// The caller must be a minter, typ must fall inside the type range,
// the per-type cap must have headroom, and to must never have received
// a token of typ before (burning does not reset this).
func (c *Collection) Airdrop(ctx context.Context, caller, to id.ID, typ uint64) (uint64, error) {
	c.mu.Lock()

	if err := c.guardAirdrop(caller, to, typ); err != nil {
		c.mu.Unlock()
		return 0, err
	}

	now := c.clock.Now()
	tokenID := c.nextID
	ev := plugin.TransferEvent{
		Ledger: c.ledgerID, Caller: caller, To: to,
		TokenID: tokenID, Amount: 1, At: now,
	}
	if err := c.plugins.ValidateTransfer(ctx, ev); err != nil {
		c.mu.Unlock()
		return 0, err
	}

	c.nextID++
	c.records[tokenID] = &token.Record{
		Owner:          to,
		FirstOwner:     to,
		Type:           typ,
		MintedAt:       now,
		LastTransferAt: now,
	}
	c.minted[typ]++
	c.markAirdropped(typ, to)

	c.mu.Unlock()

	c.persistToken(ctx, &store.TokenRecord{
		TokenID: tokenID, Owner: to, FirstOwner: to, Type: typ,
		MintedAt: now, LastTransferAt: now,
	})
	c.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: c.ledgerID, Kind: store.KindMint,
		Caller: caller, To: to, TokenID: tokenID, Amount: 1, At: now,
	})
	c.plugins.EmitMint(ctx, ev)

	return tokenID, nil
}

// guardAirdrop runs the airdrop guard chain: not-paused, then minter,
// then type validity, then receipt uniqueness, then cap headroom.
// Callers hold mu.
func (c *Collection) guardAirdrop(caller, to id.ID, typ uint64) error {
	if err := c.governor.RequireNotPaused(); err != nil {
		return err
	}
	if err := c.governor.RequireMinter(caller); err != nil {
		return err
	}
	if to.IsNil() {
		return ErrInvalidAccount
	}
	if !c.tr.Contains(typ) {
		return TypeRangeError{Type: typ, Min: c.tr.Min(), Max: c.tr.Max()}
	}
	if c.airdropped[typ][to.String()] {
		return ErrAlreadyAirdropped
	}
	if cap, ok := c.typeCaps[typ]; ok && !cap.Allows(c.minted[typ], 1) {
		return CapExceededError{TokenID: typ, Attempted: c.minted[typ] + 1, Cap: cap.Limit()}
	}

	return nil
}

// ──────────────────────────────────────────────────
// Transfer and burn
// ──────────────────────────────────────────────────

// Transfer moves tokenID from from to to. The caller must be the owner,
// the token's approved mover, or an operator for the owner. A transfer
// to self is legal and changes nothing. Ownership change clears the
// token's approval and rental grant and restarts its tenure clock.
func (c *Collection) Transfer(ctx context.Context, caller, from, to id.ID, tokenID uint64) error {
	c.mu.Lock()

	if err := c.governor.RequireNotPaused(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.soulbound {
		c.mu.Unlock()
		return ErrNonTransferable
	}
	if from.IsNil() || to.IsNil() {
		c.mu.Unlock()
		return ErrInvalidAccount
	}

	rec, ok := c.records[tokenID]
	if !ok {
		c.mu.Unlock()
		return ErrTokenNotFound
	}
	if rec.Owner != from {
		c.mu.Unlock()
		return ErrUnauthorized
	}
	if !c.mayMove(caller, tokenID, rec.Owner) {
		c.mu.Unlock()
		return ErrNotApproved
	}

	if from == to {
		// Legal no-op: no clock restart, approval and rental stay.
		c.mu.Unlock()
		return nil
	}

	now := c.clock.Now()
	ev := plugin.TransferEvent{
		Ledger: c.ledgerID, Caller: caller, From: from, To: to,
		TokenID: tokenID, Amount: 1, At: now,
	}
	if err := c.plugins.ValidateTransfer(ctx, ev); err != nil {
		c.mu.Unlock()
		return err
	}

	rec.Owner = to
	rec.LastTransferAt = now
	delete(c.approvals, tokenID)
	rentalCleared := c.rentals.Clear(tokenID)
	snapshot := *rec

	c.mu.Unlock()

	c.persistToken(ctx, &store.TokenRecord{
		TokenID: tokenID, Owner: snapshot.Owner, FirstOwner: snapshot.FirstOwner,
		Type: snapshot.Type, MintedAt: snapshot.MintedAt, LastTransferAt: snapshot.LastTransferAt,
	})
	c.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: c.ledgerID, Kind: store.KindTransfer,
		Caller: caller, From: from, To: to, TokenID: tokenID, Amount: 1, At: now,
	})
	c.plugins.EmitTransfer(ctx, ev)
	if rentalCleared {
		c.plugins.EmitRentalChanged(ctx, c.ledgerID, tokenID, id.Nil, time.Time{})
	}

	return nil
}

// Burn destroys tokenID. The caller must be the owner, the token's
// approved mover, or an operator for the owner. Receipt uniqueness is
// untouched: the first owner can never be airdropped the same type
// again.
func (c *Collection) Burn(ctx context.Context, caller id.ID, tokenID uint64) error {
	c.mu.Lock()

	if err := c.governor.RequireNotPaused(); err != nil {
		c.mu.Unlock()
		return err
	}

	rec, ok := c.records[tokenID]
	if !ok {
		c.mu.Unlock()
		return ErrTokenNotFound
	}
	if !c.mayMove(caller, tokenID, rec.Owner) {
		c.mu.Unlock()
		return ErrNotApproved
	}

	now := c.clock.Now()
	owner := rec.Owner

	delete(c.records, tokenID)
	delete(c.approvals, tokenID)
	rentalCleared := c.rentals.Clear(tokenID)

	c.mu.Unlock()

	c.dropToken(ctx, tokenID)
	c.record(&store.TransferRecord{
		ID: id.NewTransferID(), Ledger: c.ledgerID, Kind: store.KindBurn,
		Caller: caller, From: owner, TokenID: tokenID, Amount: 1, At: now,
	})
	c.plugins.EmitBurn(ctx, plugin.TransferEvent{
		Ledger: c.ledgerID, Caller: caller, From: owner,
		TokenID: tokenID, Amount: 1, At: now,
	})
	if rentalCleared {
		c.plugins.EmitRentalChanged(ctx, c.ledgerID, tokenID, id.Nil, time.Time{})
	}

	return nil
}

// ──────────────────────────────────────────────────
// Approvals
// ──────────────────────────────────────────────────

// mayMove reports whether caller may move tokenID owned by owner.
// Callers hold mu.
func (c *Collection) mayMove(caller id.ID, tokenID uint64, owner id.ID) bool {
	return caller == owner ||
		c.approvals[tokenID] == caller ||
		c.operators[owner.String()][caller.String()]
}

// Approve names approved as the single account allowed to move tokenID
// besides its owner. The caller must be the owner or one of the owner's
// operators. Passing the nil identity clears the approval; approving
// the owner is rejected.
func (c *Collection) Approve(caller id.ID, tokenID uint64, approved id.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	if caller != rec.Owner && !c.operators[rec.Owner.String()][caller.String()] {
		return ErrNotApproved
	}
	if approved == rec.Owner {
		return ErrSelfApproval
	}

	if approved.IsNil() {
		delete(c.approvals, tokenID)
	} else {
		c.approvals[tokenID] = approved
	}

	return nil
}

// Approved returns the approved mover of tokenID, nil when none.
func (c *Collection) Approved(tokenID uint64) (id.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[tokenID]; !ok {
		return id.Nil, ErrTokenNotFound
	}
	return c.approvals[tokenID], nil
}

// SetApprovalForAll grants or revokes operator's right to move all of
// the caller's tokens.
func (c *Collection) SetApprovalForAll(caller, operator id.ID, approved bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller.IsNil() || operator.IsNil() {
		return ErrInvalidAccount
	}
	if caller == operator {
		return ErrSelfApproval
	}

	if approved {
		if c.operators[caller.String()] == nil {
			c.operators[caller.String()] = make(map[string]bool)
		}
		c.operators[caller.String()][operator.String()] = true
	} else {
		delete(c.operators[caller.String()], operator.String())
	}

	return nil
}

// IsApprovedForAll reports whether operator may move all of holder's
// tokens.
func (c *Collection) IsApprovedForAll(holder, operator id.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operators[holder.String()][operator.String()]
}

// ──────────────────────────────────────────────────
// Rental
// ──────────────────────────────────────────────────

// SetUser grants user delegated use of tokenID until expires. The
// caller must be the owner, the token's approved mover, or an operator
// for the owner. The grant expires lazily and is wiped by any ownership
// change.
func (c *Collection) SetUser(ctx context.Context, caller id.ID, tokenID uint64, user id.ID, expires time.Time) error {
	c.mu.Lock()

	if err := c.governor.RequireNotPaused(); err != nil {
		c.mu.Unlock()
		return err
	}
	rec, ok := c.records[tokenID]
	if !ok {
		c.mu.Unlock()
		return ErrTokenNotFound
	}
	if !c.mayMove(caller, tokenID, rec.Owner) {
		c.mu.Unlock()
		return ErrNotApproved
	}

	c.rentals.SetUser(tokenID, user, expires)
	snapshot := *rec

	c.mu.Unlock()

	c.persistToken(ctx, &store.TokenRecord{
		TokenID: tokenID, Owner: snapshot.Owner, FirstOwner: snapshot.FirstOwner,
		Type: snapshot.Type, MintedAt: snapshot.MintedAt, LastTransferAt: snapshot.LastTransferAt,
		User: user, UserExpires: expires,
	})
	c.plugins.EmitRentalChanged(ctx, c.ledgerID, tokenID, user, expires)

	return nil
}

// UserOf returns the active delegated user of tokenID. ok is false
// when there is no grant, the grant names no user, or it has expired.
func (c *Collection) UserOf(tokenID uint64) (id.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rentals.UserOf(tokenID, c.clock.Now())
}

// UserExpires returns the stored rental expiry of tokenID, expired or
// not. Zero when no grant is recorded.
func (c *Collection) UserExpires(tokenID uint64) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rentals.UserExpires(tokenID)
}

// ──────────────────────────────────────────────────
// Type range and supply caps
// ──────────────────────────────────────────────────

// TypeBounds returns the current valid type range, inclusive.
func (c *Collection) TypeBounds() (min, max uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr.Min(), c.tr.Max()
}

// RaiseMaxType raises the top of the valid type range. Owner-only; the
// new max must exceed the current one, and the range must not be
// frozen. The range can never shrink.
func (c *Collection) RaiseMaxType(caller id.ID, newMax uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.governor.RequireOwner(caller); err != nil {
		return err
	}
	return c.tr.RaiseMax(newMax)
}

// FreezeTypeRange permanently locks the type range. Owner-only,
// one-way.
func (c *Collection) FreezeTypeRange(ctx context.Context, caller id.ID) error {
	c.mu.Lock()
	err := c.governor.RequireOwner(caller)
	if err == nil {
		err = c.tr.Freeze()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.plugins.EmitAttributeFrozen(ctx, c.ledgerID, "type_range")
	return nil
}

// SupplyCapOf returns the per-type cap for typ (zero = unlimited).
func (c *Collection) SupplyCapOf(typ uint64) types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cap, ok := c.typeCaps[typ]; ok {
		return cap.Limit()
	}
	return 0
}

// MintedOf returns how many tokens of typ were ever airdropped.
// Burning does not decrement this: per-type caps bound lifetime
// issuance, not outstanding supply.
func (c *Collection) MintedOf(typ uint64) types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minted[typ]
}

// SetSupplyCap replaces the per-type cap for typ. Owner-only; a
// non-zero cap below the count already minted is rejected.
func (c *Collection) SetSupplyCap(caller id.ID, typ uint64, limit types.Amount) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.governor.RequireOwner(caller); err != nil {
		return err
	}
	if !c.tr.Contains(typ) {
		return TypeRangeError{Type: typ, Min: c.tr.Min(), Max: c.tr.Max()}
	}

	cap, ok := c.typeCaps[typ]
	if !ok {
		sc := token.NewSupplyCap(0)
		cap = &sc
		c.typeCaps[typ] = cap
	}
	return cap.Set(limit, c.minted[typ])
}

// FreezeSupplyCap permanently locks the per-type cap for typ.
// Owner-only, one-way.
func (c *Collection) FreezeSupplyCap(ctx context.Context, caller id.ID, typ uint64) error {
	c.mu.Lock()
	err := c.governor.RequireOwner(caller)
	if err == nil && !c.tr.Contains(typ) {
		err = TypeRangeError{Type: typ, Min: c.tr.Min(), Max: c.tr.Max()}
	}
	if err == nil {
		cap, ok := c.typeCaps[typ]
		if !ok {
			sc := token.NewSupplyCap(0)
			cap = &sc
			c.typeCaps[typ] = cap
		}
		err = cap.Freeze()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.plugins.EmitAttributeFrozen(ctx, c.ledgerID, "cap")
	return nil
}

// ──────────────────────────────────────────────────
// Royalty
// ──────────────────────────────────────────────────

// SetRoyalty sets the collection-wide royalty. Owner-only; fails once
// the royalty is frozen.
func (c *Collection) SetRoyalty(caller, receiver id.ID, feeBasis uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.governor.RequireOwner(caller); err != nil {
		return err
	}
	return c.royalties.Set(receiver, feeBasis)
}

// FreezeRoyalty permanently locks the royalty. Owner-only, one-way.
func (c *Collection) FreezeRoyalty(ctx context.Context, caller id.ID) error {
	c.mu.Lock()
	err := c.governor.RequireOwner(caller)
	if err == nil {
		err = c.royalties.Freeze()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.plugins.EmitAttributeFrozen(ctx, c.ledgerID, "royalty")
	return nil
}

// RoyaltyInfo returns the royalty receiver and the amount due on a sale
// at salePrice. The nil identity and zero mean no royalty.
func (c *Collection) RoyaltyInfo(salePrice types.Amount) (id.ID, types.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.royalties.Info(salePrice)
}

// ──────────────────────────────────────────────────
// Metadata
// ──────────────────────────────────────────────────

// BaseURI returns the metadata location prefix.
func (c *Collection) BaseURI() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURI.Get()
}

// SetBaseURI rewrites the metadata location prefix for every token.
// Owner-only; fails once the prefix is frozen.
func (c *Collection) SetBaseURI(ctx context.Context, caller id.ID, uri string) error {
	c.mu.Lock()

	err := c.governor.RequireOwner(caller)
	if err == nil {
		err = c.baseURI.Set(uri)
	}
	last := c.nextID - 1

	c.mu.Unlock()
	if err != nil {
		return err
	}

	if last >= 1 {
		c.plugins.EmitMetadataRangeChanged(ctx, c.ledgerID, 1, last)
	}
	return nil
}

// FreezeBaseURI permanently locks the metadata location prefix.
// Owner-only, one-way.
func (c *Collection) FreezeBaseURI(ctx context.Context, caller id.ID) error {
	c.mu.Lock()
	err := c.governor.RequireOwner(caller)
	if err == nil {
		err = c.baseURI.Freeze()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.plugins.EmitAttributeFrozen(ctx, c.ledgerID, "uri")
	return nil
}

// TokenURI returns the metadata location of tokenID: the formatter
// plugin named at construction when one is registered, otherwise the
// base prefix with the decimal token identity appended.
func (c *Collection) TokenURI(tokenID uint64) (string, error) {
	c.mu.Lock()

	if _, ok := c.records[tokenID]; !ok {
		c.mu.Unlock()
		return "", ErrTokenNotFound
	}
	base := c.baseURI.Get()
	name := c.formatter

	c.mu.Unlock()

	if name != "" {
		if f := c.plugins.GetMetadataFormatter(name); f != nil {
			return f.TokenURI(base, tokenID), nil
		}
	}
	return base + strconv.FormatUint(tokenID, 10), nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Soulbound reports whether the collection rejects transfers.
func (c *Collection) Soulbound() bool { return c.soulbound }

// OwnerOf returns the current owner of tokenID.
func (c *Collection) OwnerOf(tokenID uint64) (id.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return id.Nil, ErrTokenNotFound
	}
	return rec.Owner, nil
}

// FirstOwnerOf returns the account tokenID was originally airdropped
// to. Never changes for the life of the token.
func (c *Collection) FirstOwnerOf(tokenID uint64) (id.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return id.Nil, ErrTokenNotFound
	}
	return rec.FirstOwner, nil
}

// TypeOf returns the type of tokenID.
func (c *Collection) TypeOf(tokenID uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return 0, ErrTokenNotFound
	}
	return rec.Type, nil
}

// OwnedSince returns the instant tokenID last changed hands (its mint
// instant while it has never been transferred).
func (c *Collection) OwnedSince(tokenID uint64) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return time.Time{}, ErrTokenNotFound
	}
	return rec.LastTransferAt, nil
}

// HoldingPeriod returns how long the current owner has held tokenID.
// The clock restarts on every real ownership change.
func (c *Collection) HoldingPeriod(tokenID uint64) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[tokenID]
	if !ok {
		return 0, ErrTokenNotFound
	}
	return c.clock.Now().Sub(rec.LastTransferAt), nil
}

// BalanceOf returns how many tokens account currently owns.
func (c *Collection) BalanceOf(account id.ID) types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n types.Amount
	for _, rec := range c.records {
		if rec.Owner == account {
			n++
		}
	}
	return n
}

// TotalSupply returns the number of tokens currently in existence.
func (c *Collection) TotalSupply() types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.Amount(len(c.records))
}

// HasReceived reports whether holder was ever airdropped a token of
// typ, including tokens since burned.
func (c *Collection) HasReceived(holder id.ID, typ uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.airdropped[typ][holder.String()]
}
