package tenure_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/store/memory"
)

// fakeClock drives engines with a controlled timeline.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func startLedger(t *testing.T, owner id.ID, clk *fakeClock) *tenure.Ledger {
	t.Helper()

	l := tenure.NewLedger(memory.New(), owner, tenure.WithClock(clk))
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop() })

	if err := l.Unpause(ctx, owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	return l
}

func TestLedgerStartsPaused(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()

	l := tenure.NewLedger(memory.New(), owner, tenure.WithClock(newFakeClock()))
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop() //nolint:errcheck

	if !l.Paused() {
		t.Fatal("new ledger should start paused")
	}
	if err := l.Mint(ctx, owner, holder, 100); !errors.Is(err, tenure.ErrPaused) {
		t.Fatalf("Mint on paused ledger: got %v, want ErrPaused", err)
	}
	if err := l.Unpause(ctx, holder); !errors.Is(err, tenure.ErrUnauthorized) {
		t.Fatalf("Unpause by non-owner: got %v, want ErrUnauthorized", err)
	}

	if err := l.Unpause(ctx, owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if err := l.Unpause(ctx, owner); !errors.Is(err, tenure.ErrNotPaused) {
		t.Fatalf("double Unpause: got %v, want ErrNotPaused", err)
	}
	if err := l.Mint(ctx, owner, holder, 100); err != nil {
		t.Fatalf("Mint after unpause: %v", err)
	}
}

func TestLedgerMintGuards(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	outsider := id.NewAccountID()
	ctx := context.Background()

	l := startLedger(t, owner, newFakeClock())

	if err := l.Mint(ctx, outsider, holder, 10); !errors.Is(err, tenure.ErrNotAMinter) {
		t.Fatalf("Mint by non-minter: got %v, want ErrNotAMinter", err)
	}
	if err := l.Mint(ctx, owner, id.Nil, 10); !errors.Is(err, tenure.ErrInvalidAccount) {
		t.Fatalf("Mint to nil account: got %v, want ErrInvalidAccount", err)
	}
	if err := l.Mint(ctx, owner, holder, 0); !errors.Is(err, tenure.ErrInvalidAmount) {
		t.Fatalf("Mint zero: got %v, want ErrInvalidAmount", err)
	}

	// The owner is always a minter; granted minters work too.
	if err := l.AddMinter(owner, outsider); err != nil {
		t.Fatalf("AddMinter: %v", err)
	}
	if err := l.Mint(ctx, outsider, holder, 10); err != nil {
		t.Fatalf("Mint by granted minter: %v", err)
	}
	if got := l.BalanceOf(holder); got != 10 {
		t.Fatalf("BalanceOf = %d, want 10", got)
	}
	if got := l.TotalSupply(); got != 10 {
		t.Fatalf("TotalSupply = %d, want 10", got)
	}
}

func TestLedgerSupplyCap(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()

	l := startLedger(t, owner, newFakeClock())

	if err := l.SetSupplyCap(owner, 1000); err != nil {
		t.Fatalf("SetSupplyCap: %v", err)
	}
	if err := l.Mint(ctx, owner, holder, 900); err != nil {
		t.Fatalf("Mint within cap: %v", err)
	}

	err := l.Mint(ctx, owner, holder, 200)
	var cee tenure.CapExceededError
	if !errors.As(err, &cee) {
		t.Fatalf("Mint past cap: got %v, want CapExceededError", err)
	}
	if cee.Attempted != 1100 || cee.Cap != 1000 {
		t.Fatalf("CapExceededError = %+v", cee)
	}
	if !tenure.IsRange(err) {
		t.Fatal("IsRange should match CapExceededError")
	}

	// Lowering the cap below outstanding supply is rejected.
	if err := l.SetSupplyCap(owner, 500); !errors.Is(err, tenure.ErrCapBelowSupply) {
		t.Fatalf("SetSupplyCap below supply: got %v, want ErrCapBelowSupply", err)
	}

	// Burning frees headroom.
	if err := l.Burn(ctx, holder, 400); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if err := l.SetSupplyCap(owner, 500); err != nil {
		t.Fatalf("SetSupplyCap after burn: %v", err)
	}

	if err := l.FreezeSupplyCap(ctx, owner); err != nil {
		t.Fatalf("FreezeSupplyCap: %v", err)
	}
	if err := l.SetSupplyCap(owner, 2000); !errors.Is(err, tenure.ErrFrozen) {
		t.Fatalf("SetSupplyCap after freeze: got %v, want ErrFrozen", err)
	}
	if err := l.SetSupplyCap(holder, 2000); !errors.Is(err, tenure.ErrUnauthorized) {
		t.Fatalf("SetSupplyCap by non-owner on frozen cap: got %v, want ErrUnauthorized", err)
	}
}

func TestLedgerHoldingPeriod(t *testing.T) {
	owner := id.NewAccountID()
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	ctx := context.Background()
	clk := newFakeClock()

	l := startLedger(t, owner, clk)

	if err := l.SetThreshold(owner, 100); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}

	// Crossing the threshold starts the clock.
	if err := l.Mint(ctx, owner, alice, 150); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clk.advance(10 * 24 * time.Hour)
	if got := l.HoldingPeriod(alice); got != 10*24*time.Hour {
		t.Fatalf("HoldingPeriod = %v, want 240h", got)
	}

	// Growing the balance above the threshold does not restart it.
	if err := l.Mint(ctx, owner, alice, 50); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clk.advance(24 * time.Hour)
	if got := l.HoldingPeriod(alice); got != 11*24*time.Hour {
		t.Fatalf("HoldingPeriod after top-up = %v, want 264h", got)
	}

	// Dipping below forfeits the whole accrual.
	if err := l.Transfer(ctx, alice, bob, 150); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := l.HoldingPeriod(alice); got != 0 {
		t.Fatalf("HoldingPeriod after dip = %v, want 0", got)
	}
	if _, ok := l.HeldSince(alice); ok {
		t.Fatal("HeldSince should not report a running clock below the threshold")
	}

	// Bob crossed at the transfer instant.
	clk.advance(5 * 24 * time.Hour)
	if got := l.HoldingPeriod(bob); got != 5*24*time.Hour {
		t.Fatalf("bob HoldingPeriod = %v, want 120h", got)
	}

	// Recrossing starts a fresh accrual.
	if err := l.Mint(ctx, owner, alice, 100); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clk.advance(24 * time.Hour)
	if got := l.HoldingPeriod(alice); got != 24*time.Hour {
		t.Fatalf("HoldingPeriod after recross = %v, want 24h", got)
	}
}

func TestLedgerRaisedThresholdForfeitsAccrual(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()
	clk := newFakeClock()

	l := startLedger(t, owner, clk)

	if err := l.SetThreshold(owner, 3); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if err := l.Mint(ctx, owner, holder, 5); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// The balance of 5 no longer qualifies under the raised threshold.
	clk.advance(time.Hour)
	if err := l.SetThreshold(owner, 10); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if got := l.HoldingPeriod(holder); got != 0 {
		t.Fatalf("HoldingPeriod below raised threshold = %v, want 0", got)
	}

	// Crossing the raised threshold starts a fresh clock; the hour
	// accrued under the old threshold is gone.
	if err := l.Mint(ctx, owner, holder, 6); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clk.advance(time.Minute)
	if got := l.HoldingPeriod(holder); got != time.Minute {
		t.Fatalf("HoldingPeriod after recross = %v, want 1m", got)
	}
}

func TestLedgerZeroThresholdDisablesTenure(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()
	clk := newFakeClock()

	l := startLedger(t, owner, clk)

	if err := l.Mint(ctx, owner, holder, 1000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clk.advance(100 * 24 * time.Hour)

	if got := l.HoldingPeriod(holder); got != 0 {
		t.Fatalf("HoldingPeriod with zero threshold = %v, want 0", got)
	}
	if _, ok := l.HeldSince(holder); ok {
		t.Fatal("HeldSince should report no clock with zero threshold")
	}
}

func TestLedgerTransfer(t *testing.T) {
	owner := id.NewAccountID()
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	ctx := context.Background()
	clk := newFakeClock()

	l := startLedger(t, owner, clk)
	if err := l.SetThreshold(owner, 100); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if err := l.Mint(ctx, owner, alice, 200); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if err := l.Transfer(ctx, alice, bob, 500); !errors.Is(err, tenure.ErrInsufficientBalance) {
		t.Fatalf("over-transfer: got %v, want ErrInsufficientBalance", err)
	}

	// Self-transfer is a legal no-op: the clock keeps running.
	start, ok := l.HeldSince(alice)
	if !ok {
		t.Fatal("clock should be running")
	}
	clk.advance(time.Hour)
	if err := l.Transfer(ctx, alice, alice, 200); err != nil {
		t.Fatalf("self-transfer: %v", err)
	}
	since, ok := l.HeldSince(alice)
	if !ok || !since.Equal(start) {
		t.Fatalf("self-transfer moved the clock: since=%v ok=%v, want %v", since, ok, start)
	}
	if got := l.BalanceOf(alice); got != 200 {
		t.Fatalf("BalanceOf after self-transfer = %d, want 200", got)
	}

	if err := l.Transfer(ctx, alice, bob, 50); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got != 150 {
		t.Fatalf("alice balance = %d, want 150", got)
	}
	if got := l.BalanceOf(bob); got != 50 {
		t.Fatalf("bob balance = %d, want 50", got)
	}
	if got := l.TotalSupply(); got != 200 {
		t.Fatalf("TotalSupply after transfer = %d, want 200", got)
	}
}

func TestLedgerBurn(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()

	l := startLedger(t, owner, newFakeClock())
	if err := l.Mint(ctx, owner, holder, 300); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if err := l.Burn(ctx, holder, 400); !errors.Is(err, tenure.ErrInsufficientBalance) {
		t.Fatalf("over-burn: got %v, want ErrInsufficientBalance", err)
	}
	if err := l.Burn(ctx, holder, 100); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if got := l.BalanceOf(holder); got != 200 {
		t.Fatalf("balance = %d, want 200", got)
	}
	if got := l.TotalSupply(); got != 200 {
		t.Fatalf("TotalSupply = %d, want 200", got)
	}
}

func TestLedgerMinterFreeze(t *testing.T) {
	owner := id.NewAccountID()
	minter := id.NewAccountID()
	other := id.NewAccountID()
	ctx := context.Background()

	l := startLedger(t, owner, newFakeClock())

	if err := l.AddMinter(owner, minter); err != nil {
		t.Fatalf("AddMinter: %v", err)
	}
	if err := l.FreezeMinters(ctx, owner); err != nil {
		t.Fatalf("FreezeMinters: %v", err)
	}

	if err := l.AddMinter(owner, other); !errors.Is(err, tenure.ErrMintersFrozen) {
		t.Fatalf("AddMinter after freeze: got %v, want ErrMintersFrozen", err)
	}
	if err := l.RemoveMinter(owner, minter); !errors.Is(err, tenure.ErrMintersFrozen) {
		t.Fatalf("RemoveMinter after freeze: got %v, want ErrMintersFrozen", err)
	}

	// Authorization is checked before the frozen state.
	if err := l.AddMinter(other, other); !errors.Is(err, tenure.ErrUnauthorized) {
		t.Fatalf("AddMinter by non-owner: got %v, want ErrUnauthorized", err)
	}

	// Existing minters keep minting.
	if err := l.Mint(ctx, minter, other, 10); err != nil {
		t.Fatalf("Mint by frozen-in minter: %v", err)
	}
}

func TestLedgerRehydration(t *testing.T) {
	owner := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()
	clk := newFakeClock()
	st := memory.New()

	l := tenure.NewLedger(st, owner, tenure.WithClock(clk))
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Unpause(ctx, owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if err := l.SetThreshold(owner, 100); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if err := l.Mint(ctx, owner, holder, 250); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	since, ok := l.HeldSince(holder)
	if !ok {
		t.Fatal("clock should be running")
	}
	ledgerID := l.ID()
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	clk.advance(48 * time.Hour)

	restored := tenure.NewLedger(st, owner, tenure.WithClock(clk), tenure.WithLedgerID(ledgerID))
	if err := restored.Start(ctx); err != nil {
		t.Fatalf("restored Start: %v", err)
	}
	defer restored.Stop() //nolint:errcheck
	if err := restored.Unpause(ctx, owner); err != nil {
		t.Fatalf("restored Unpause: %v", err)
	}
	if err := restored.SetThreshold(owner, 100); err != nil {
		t.Fatalf("restored SetThreshold: %v", err)
	}

	if got := restored.BalanceOf(holder); got != 250 {
		t.Fatalf("restored balance = %d, want 250", got)
	}
	if got := restored.TotalSupply(); got != 250 {
		t.Fatalf("restored TotalSupply = %d, want 250", got)
	}
	got, ok := restored.HeldSince(holder)
	if !ok || !got.Equal(since) {
		t.Fatalf("restored HeldSince = %v ok=%v, want %v", got, ok, since)
	}
	if period := restored.HoldingPeriod(holder); period != 48*time.Hour {
		t.Fatalf("restored HoldingPeriod = %v, want 48h", period)
	}
}

func TestLedgerJournal(t *testing.T) {
	owner := id.NewAccountID()
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	ctx := context.Background()
	st := memory.New()

	l := tenure.NewLedger(st, owner,
		tenure.WithClock(newFakeClock()),
		tenure.WithJournalConfig(2, 50*time.Millisecond),
	)
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Unpause(ctx, owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}

	if err := l.Mint(ctx, owner, alice, 100); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := l.Transfer(ctx, alice, bob, 40); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if err := l.Burn(ctx, bob, 10); err != nil {
		t.Fatalf("Burn: %v", err)
	}

	// Stop drains the journal buffer.
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	recs, err := st.QueryTransfers(ctx, l.ID(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("QueryTransfers: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("journal entries = %d, want 3", len(recs))
	}

	kinds := map[string]int{}
	for _, rec := range recs {
		kinds[rec.Kind]++
	}
	if kinds["mint"] != 1 || kinds["transfer"] != 1 || kinds["burn"] != 1 {
		t.Fatalf("journal kinds = %v", kinds)
	}
}

func TestLedgerOwnershipTransfer(t *testing.T) {
	owner := id.NewAccountID()
	next := id.NewAccountID()
	holder := id.NewAccountID()
	ctx := context.Background()

	l := startLedger(t, owner, newFakeClock())

	if err := l.TransferOwnership(next, next); !errors.Is(err, tenure.ErrUnauthorized) {
		t.Fatalf("TransferOwnership by non-owner: got %v, want ErrUnauthorized", err)
	}
	if err := l.TransferOwnership(owner, next); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if got := l.Owner(); got != next {
		t.Fatalf("Owner = %s, want %s", got, next)
	}

	// The old owner loses everything, including its implicit minter role.
	if err := l.Mint(ctx, owner, holder, 10); !errors.Is(err, tenure.ErrNotAMinter) {
		t.Fatalf("Mint by former owner: got %v, want ErrNotAMinter", err)
	}
	if err := l.Mint(ctx, next, holder, 10); err != nil {
		t.Fatalf("Mint by new owner: %v", err)
	}
}
