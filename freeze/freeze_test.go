package freeze

import (
	"errors"
	"testing"
)

func TestAttrSetGet(t *testing.T) {
	a := NewAttr(uint64(100))

	if got := a.Get(); got != 100 {
		t.Fatalf("Get: got %d, want 100", got)
	}

	if err := a.Set(200); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := a.Get(); got != 200 {
		t.Errorf("Get after Set: got %d, want 200", got)
	}
}

func TestAttrFreeze(t *testing.T) {
	a := NewAttr("ipfs://meta/")

	if a.Frozen() {
		t.Fatal("new attribute should not be frozen")
	}
	if err := a.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if !a.Frozen() {
		t.Fatal("attribute should be frozen")
	}

	if err := a.Set("ipfs://other/"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Set after Freeze: got %v, want ErrFrozen", err)
	}
	if got := a.Get(); got != "ipfs://meta/" {
		t.Errorf("value changed by rejected Set: got %q", got)
	}

	// Freeze is one-way and not re-entrant.
	if err := a.Freeze(); !errors.Is(err, ErrFrozen) {
		t.Errorf("double Freeze: got %v, want ErrFrozen", err)
	}
}

func TestAttrUpdate(t *testing.T) {
	a := NewAttr(map[string]bool{"alice": true})

	err := a.Update(func(m map[string]bool) map[string]bool {
		m["bob"] = true
		return m
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !a.Get()["bob"] {
		t.Error("Update did not apply")
	}

	if err := a.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	called := false
	err = a.Update(func(m map[string]bool) map[string]bool {
		called = true
		return m
	})
	if !errors.Is(err, ErrFrozen) {
		t.Errorf("Update after Freeze: got %v, want ErrFrozen", err)
	}
	if called {
		t.Error("Update called fn on a frozen attribute")
	}
}

func TestAttrZeroValue(t *testing.T) {
	var a Attr[uint64]

	if a.Frozen() {
		t.Error("zero-value attribute should not be frozen")
	}
	if got := a.Get(); got != 0 {
		t.Errorf("zero-value Get: got %d, want 0", got)
	}
	if err := a.Set(7); err != nil {
		t.Errorf("zero-value Set: %v", err)
	}
}
