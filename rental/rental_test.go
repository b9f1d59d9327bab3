package rental

import (
	"testing"
	"time"

	"github.com/xraph/tenure/id"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSetAndReadUser(t *testing.T) {
	tr := NewTracker()
	renter := id.NewAccountID()

	tr.SetUser(1, renter, t0.Add(time.Hour))

	user, ok := tr.UserOf(1, t0)
	if !ok || user != renter {
		t.Fatalf("UserOf: got %v, %v", user, ok)
	}

	// Valid exactly at the expiry instant.
	if _, ok := tr.UserOf(1, t0.Add(time.Hour)); !ok {
		t.Error("grant should be valid at its expiry instant")
	}
}

func TestExpiryIsLazy(t *testing.T) {
	tr := NewTracker()
	renter := id.NewAccountID()
	expires := t0.Add(time.Hour)

	tr.SetUser(1, renter, expires)

	// Past expiry: no active user, but the stored expiry is untouched.
	if _, ok := tr.UserOf(1, t0.Add(2*time.Hour)); ok {
		t.Error("expired grant should report no user")
	}
	if got := tr.UserExpires(1); !got.Equal(expires) {
		t.Errorf("UserExpires: got %v, want %v", got, expires)
	}

	// Reading earlier again still sees the user: nothing was cleared.
	if _, ok := tr.UserOf(1, t0); !ok {
		t.Error("grant state should survive an expired read")
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker()
	renter := id.NewAccountID()

	if tr.Clear(1) {
		t.Error("Clear on unknown token should report false")
	}

	tr.SetUser(1, renter, t0.Add(time.Hour))
	if !tr.Clear(1) {
		t.Error("Clear should report true for an active grant")
	}
	if _, ok := tr.UserOf(1, t0); ok {
		t.Error("grant should be gone after Clear")
	}
	if got := tr.UserExpires(1); !got.IsZero() {
		t.Errorf("UserExpires after Clear: got %v, want zero", got)
	}
}

func TestNilUserGrant(t *testing.T) {
	tr := NewTracker()

	tr.SetUser(1, id.Nil, t0.Add(time.Hour))
	if _, ok := tr.UserOf(1, t0); ok {
		t.Error("nil-user grant should report no user")
	}
	// Clearing it still reports a change (the expiry was set).
	if !tr.Clear(1) {
		t.Error("Clear of nil-user grant with expiry should report true")
	}
}

func TestUnknownToken(t *testing.T) {
	tr := NewTracker()

	if _, ok := tr.UserOf(42, t0); ok {
		t.Error("unknown token should have no user")
	}
	if got := tr.UserExpires(42); !got.IsZero() {
		t.Errorf("UserExpires of unknown token: got %v, want zero", got)
	}
}

func TestLoadAndEach(t *testing.T) {
	tr := NewTracker()
	renter := id.NewAccountID()

	tr.Load(7, renter, t0.Add(time.Hour))

	var visited int
	tr.Each(func(tokenID uint64, user id.ID, expires time.Time) {
		visited++
		if tokenID != 7 || user != renter || !expires.Equal(t0.Add(time.Hour)) {
			t.Errorf("Each: unexpected entry %d %v %v", tokenID, user, expires)
		}
	})
	if visited != 1 {
		t.Errorf("visited %d grants, want 1", visited)
	}
}
