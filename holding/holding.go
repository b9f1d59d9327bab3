// Package holding implements tenure accounting for token balances: per
// holder scope it remembers when the balance last rose to a qualifying
// threshold, so engines can answer "how long has this holder continuously
// held at least N tokens".
//
// The tracked instant only changes on threshold crossings:
//
//   - below → at-or-above: the clock starts (since = now)
//   - at-or-above → below: the clock is cleared, accrual is forfeited
//   - no crossing: the clock is untouched
//
// Dipping below the threshold even momentarily therefore resets the
// tenure to zero; recrossing starts a fresh accrual.
package holding

import (
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/types"
)

// Scope identifies one tracked balance. Token is zero for single-balance
// ledgers; per-identity ledgers scope tenure to (account, token id).
type Scope struct {
	Account id.ID
	Token   uint64
}

// state is the tracked pair for one scope. since is the zero time while
// the balance is below the qualifying threshold.
type state struct {
	balance types.Amount
	since   time.Time
}

// Accountant tracks tenure for a set of scopes. It is not safe for
// concurrent use on its own; the owning engine serializes access under
// its mutation lock.
type Accountant struct {
	scopes map[Scope]state
}

// NewAccountant returns an empty Accountant.
func NewAccountant() *Accountant {
	return &Accountant{scopes: make(map[Scope]state)}
}

// Observe records the scope's new balance and applies the crossing rule
// against the previous balance. Both sides of the crossing are judged
// against the threshold in effect for this observation, so a raised
// threshold forfeits accrual the scope no longer qualifies for: the
// next upward crossing starts a fresh clock. A threshold of zero
// disables tracking: the clock stays cleared no matter the balance.
//
// Engines call Observe once per touched scope per mutation, after the
// balance change has been decided, with the single timestamp captured for
// that mutation. Batch operations observe each scope's final balance
// once.
func (a *Accountant) Observe(scope Scope, balance, threshold types.Amount, now time.Time) {
	prev := a.scopes[scope]

	next := state{balance: balance, since: prev.since}

	if threshold == 0 {
		next.since = time.Time{}
	} else {
		qualified := balance >= threshold
		wasQualified := prev.balance >= threshold

		switch {
		case !qualified:
			next.since = time.Time{}
		case !wasQualified || prev.since.IsZero():
			next.since = now
		}
	}

	if next.balance == 0 && next.since.IsZero() {
		delete(a.scopes, scope)
		return
	}

	a.scopes[scope] = next
}

// Balance returns the last observed balance for scope.
func (a *Accountant) Balance(scope Scope) types.Amount {
	return a.scopes[scope].balance
}

// HeldSince returns the instant the scope's current qualifying stretch
// began. ok is false if the scope is not currently at or above its
// threshold (the clock is not running).
func (a *Accountant) HeldSince(scope Scope) (time.Time, bool) {
	s, found := a.scopes[scope]
	if !found || s.since.IsZero() {
		return time.Time{}, false
	}

	return s.since, true
}

// Period returns how long the scope has continuously held a qualifying
// balance, as of now. It returns zero for scopes below the threshold,
// unknown scopes, and disabled (zero) thresholds.
func (a *Accountant) Period(scope Scope, threshold types.Amount, now time.Time) time.Duration {
	if threshold == 0 {
		return 0
	}

	s, found := a.scopes[scope]
	if !found || s.since.IsZero() || s.balance < threshold {
		return 0
	}

	return now.Sub(s.since)
}

// Load restores one scope's tracked pair, bypassing the crossing rule.
// Engines use it when rehydrating from a store snapshot.
func (a *Accountant) Load(scope Scope, balance types.Amount, since time.Time) {
	if balance == 0 && since.IsZero() {
		delete(a.scopes, scope)
		return
	}

	a.scopes[scope] = state{balance: balance, since: since}
}

// Forget drops all tracked state for scope.
func (a *Accountant) Forget(scope Scope) {
	delete(a.scopes, scope)
}

// Each invokes fn for every tracked scope. Engines use it to snapshot
// state into the store.
func (a *Accountant) Each(fn func(scope Scope, balance types.Amount, since time.Time)) {
	for scope, s := range a.scopes {
		fn(scope, s.balance, s.since)
	}
}

// Len returns the number of tracked scopes.
func (a *Accountant) Len() int {
	return len(a.scopes)
}
