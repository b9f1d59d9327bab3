package holding

import (
	"testing"
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func TestClockStartsOnUpwardCrossing(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	// Below threshold: clock not running.
	a.Observe(scope, 50, 100, at(0))
	if _, ok := a.HeldSince(scope); ok {
		t.Fatal("clock should not run below threshold")
	}
	if got := a.Period(scope, 100, at(time.Hour)); got != 0 {
		t.Errorf("Period below threshold: got %v, want 0", got)
	}

	// Crossing up starts the clock.
	a.Observe(scope, 100, 100, at(time.Hour))
	since, ok := a.HeldSince(scope)
	if !ok {
		t.Fatal("clock should run at threshold")
	}
	if !since.Equal(at(time.Hour)) {
		t.Errorf("since: got %v, want %v", since, at(time.Hour))
	}
	if got := a.Period(scope, 100, at(3*time.Hour)); got != 2*time.Hour {
		t.Errorf("Period: got %v, want 2h", got)
	}
}

func TestClockUnchangedAboveThreshold(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	a.Observe(scope, 100, 100, at(0))

	// Further accumulation does not restart the clock.
	a.Observe(scope, 500, 100, at(time.Hour))
	a.Observe(scope, 200, 100, at(2*time.Hour))

	since, ok := a.HeldSince(scope)
	if !ok {
		t.Fatal("clock should still run")
	}
	if !since.Equal(at(0)) {
		t.Errorf("since moved: got %v, want %v", since, at(0))
	}
	if got := a.Period(scope, 100, at(5*time.Hour)); got != 5*time.Hour {
		t.Errorf("Period: got %v, want 5h", got)
	}
}

func TestDipBelowForfeitsAccrual(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	a.Observe(scope, 100, 100, at(0))

	// Momentary dip below threshold clears the clock.
	a.Observe(scope, 99, 100, at(10*time.Hour))
	if _, ok := a.HeldSince(scope); ok {
		t.Fatal("clock should be cleared after dipping below")
	}
	if got := a.Period(scope, 100, at(11*time.Hour)); got != 0 {
		t.Errorf("Period after dip: got %v, want 0", got)
	}

	// Recrossing starts a fresh accrual; the ten hours are gone.
	a.Observe(scope, 100, 100, at(12*time.Hour))
	since, ok := a.HeldSince(scope)
	if !ok {
		t.Fatal("clock should run after recrossing")
	}
	if !since.Equal(at(12 * time.Hour)) {
		t.Errorf("since: got %v, want %v", since, at(12*time.Hour))
	}
	if got := a.Period(scope, 100, at(13*time.Hour)); got != time.Hour {
		t.Errorf("Period after recross: got %v, want 1h", got)
	}
}

func TestRaisedThresholdStartsFreshClock(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	// Qualify under the original threshold.
	a.Observe(scope, 5, 3, at(0))

	// The owner raised the threshold to 10; the balance of 5 no longer
	// qualifies, so crossing it must start a fresh clock rather than
	// resume the stale accrual from t0.
	a.Observe(scope, 11, 10, at(time.Hour))

	since, ok := a.HeldSince(scope)
	if !ok {
		t.Fatal("clock should run after crossing the raised threshold")
	}
	if !since.Equal(at(time.Hour)) {
		t.Errorf("since: got %v, want %v", since, at(time.Hour))
	}
	if got := a.Period(scope, 10, at(time.Hour+time.Minute)); got != time.Minute {
		t.Errorf("Period: got %v, want 1m", got)
	}
}

func TestStaleClockClearedBelowRaisedThreshold(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	a.Observe(scope, 5, 3, at(0))

	// Still below the raised threshold: the leftover clock is cleared,
	// not carried.
	a.Observe(scope, 6, 10, at(time.Hour))
	if _, ok := a.HeldSince(scope); ok {
		t.Fatal("clock should not survive below the raised threshold")
	}
	if got := a.Period(scope, 10, at(2*time.Hour)); got != 0 {
		t.Errorf("Period: got %v, want 0", got)
	}
}

func TestZeroThresholdDisablesTracking(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	a.Observe(scope, 1_000_000, 0, at(0))
	if _, ok := a.HeldSince(scope); ok {
		t.Error("clock should not run with a zero threshold")
	}
	if got := a.Period(scope, 0, at(time.Hour)); got != 0 {
		t.Errorf("Period: got %v, want 0", got)
	}
}

func TestScopesAreIndependent(t *testing.T) {
	a := NewAccountant()
	acct := id.NewAccountID()
	gold := Scope{Account: acct, Token: 1}
	iron := Scope{Account: acct, Token: 2}

	a.Observe(gold, 100, 100, at(0))
	a.Observe(iron, 100, 100, at(time.Hour))

	// Dropping iron below threshold leaves gold untouched.
	a.Observe(iron, 10, 100, at(2*time.Hour))

	if _, ok := a.HeldSince(iron); ok {
		t.Error("iron clock should be cleared")
	}
	since, ok := a.HeldSince(gold)
	if !ok || !since.Equal(at(0)) {
		t.Errorf("gold clock disturbed: %v, %v", since, ok)
	}
}

func TestPeriodUnknownScope(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	if got := a.Period(scope, 100, at(0)); got != 0 {
		t.Errorf("Period of unknown scope: got %v, want 0", got)
	}
	if got := a.Balance(scope); got != 0 {
		t.Errorf("Balance of unknown scope: got %v, want 0", got)
	}
}

func TestZeroBalanceScopeIsPruned(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID()}

	a.Observe(scope, 100, 100, at(0))
	a.Observe(scope, 0, 100, at(time.Hour))

	if a.Len() != 0 {
		t.Errorf("Len: got %d, want 0", a.Len())
	}
}

func TestLoadAndEach(t *testing.T) {
	a := NewAccountant()
	scope := Scope{Account: id.NewAccountID(), Token: 7}

	a.Load(scope, 250, at(0))

	if got := a.Balance(scope); got != 250 {
		t.Errorf("Balance: got %v, want 250", got)
	}
	if got := a.Period(scope, 100, at(time.Hour)); got != time.Hour {
		t.Errorf("Period: got %v, want 1h", got)
	}

	var visited int
	a.Each(func(s Scope, balance types.Amount, since time.Time) {
		visited++
		if s != scope || balance != 250 || !since.Equal(at(0)) {
			t.Errorf("Each: unexpected entry %v %v %v", s, balance, since)
		}
	})
	if visited != 1 {
		t.Errorf("visited %d scopes, want 1", visited)
	}

	a.Forget(scope)
	if a.Len() != 0 {
		t.Error("Forget did not drop the scope")
	}
}
