package access

import (
	"errors"
	"testing"

	"github.com/xraph/tenure/id"
)

func TestNewGovernorStartsPaused(t *testing.T) {
	owner := id.NewAccountID()
	g := NewGovernor(owner)

	if !g.Paused() {
		t.Fatal("new governor should start paused")
	}
	if err := g.RequireNotPaused(); !errors.Is(err, ErrPaused) {
		t.Errorf("RequireNotPaused: got %v, want ErrPaused", err)
	}
	if g.Owner() != owner {
		t.Errorf("Owner: got %v, want %v", g.Owner(), owner)
	}
}

func TestPauseUnpause(t *testing.T) {
	owner := id.NewAccountID()
	stranger := id.NewAccountID()
	g := NewGovernor(owner)

	// Already paused at construction.
	if err := g.Pause(owner); !errors.Is(err, ErrAlreadyPaused) {
		t.Errorf("Pause while paused: got %v, want ErrAlreadyPaused", err)
	}

	if err := g.Unpause(stranger); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Unpause by stranger: got %v, want ErrUnauthorized", err)
	}
	if err := g.Unpause(owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if g.Paused() {
		t.Fatal("should be unpaused")
	}
	if err := g.RequireNotPaused(); err != nil {
		t.Errorf("RequireNotPaused after unpause: %v", err)
	}

	if err := g.Unpause(owner); !errors.Is(err, ErrNotPaused) {
		t.Errorf("Unpause while running: got %v, want ErrNotPaused", err)
	}

	if err := g.Pause(stranger); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Pause by stranger: got %v, want ErrUnauthorized", err)
	}
	if err := g.Pause(owner); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !g.Paused() {
		t.Fatal("should be paused")
	}
}

func TestMinterSet(t *testing.T) {
	owner := id.NewAccountID()
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	g := NewGovernor(owner)

	// Owner is an implicit minter.
	if !g.IsMinter(owner) {
		t.Error("owner should be a minter")
	}
	if g.IsMinter(alice) {
		t.Error("alice should not be a minter yet")
	}

	if err := g.AddMinter(alice, bob); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AddMinter by non-owner: got %v, want ErrUnauthorized", err)
	}
	if err := g.AddMinter(owner, id.Nil); !errors.Is(err, ErrInvalidMinter) {
		t.Errorf("AddMinter nil: got %v, want ErrInvalidMinter", err)
	}

	if err := g.AddMinter(owner, alice); err != nil {
		t.Fatalf("AddMinter: %v", err)
	}
	if !g.IsMinter(alice) {
		t.Error("alice should be a minter")
	}
	if err := g.RequireMinter(alice); err != nil {
		t.Errorf("RequireMinter(alice): %v", err)
	}
	if err := g.RequireMinter(bob); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RequireMinter(bob): got %v, want ErrUnauthorized", err)
	}

	if err := g.AddMinter(owner, alice); !errors.Is(err, ErrAlreadyMinter) {
		t.Errorf("duplicate AddMinter: got %v, want ErrAlreadyMinter", err)
	}

	if err := g.RemoveMinter(owner, bob); !errors.Is(err, ErrNotAMinter) {
		t.Errorf("RemoveMinter unknown: got %v, want ErrNotAMinter", err)
	}
	if err := g.RemoveMinter(owner, alice); err != nil {
		t.Fatalf("RemoveMinter: %v", err)
	}
	if g.IsMinter(alice) {
		t.Error("alice should no longer be a minter")
	}
}

func TestFreezeMinters(t *testing.T) {
	owner := id.NewAccountID()
	alice := id.NewAccountID()
	stranger := id.NewAccountID()
	g := NewGovernor(owner)

	if err := g.AddMinter(owner, alice); err != nil {
		t.Fatalf("AddMinter: %v", err)
	}

	// Authorization is checked before the frozen flag.
	if err := g.FreezeMinters(stranger); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("FreezeMinters by stranger: got %v, want ErrUnauthorized", err)
	}

	if err := g.FreezeMinters(owner); err != nil {
		t.Fatalf("FreezeMinters: %v", err)
	}
	if !g.MintersFrozen() {
		t.Fatal("minter set should be frozen")
	}

	if err := g.AddMinter(owner, stranger); !errors.Is(err, ErrMintersFrozen) {
		t.Errorf("AddMinter after freeze: got %v, want ErrMintersFrozen", err)
	}
	if err := g.RemoveMinter(owner, alice); !errors.Is(err, ErrMintersFrozen) {
		t.Errorf("RemoveMinter after freeze: got %v, want ErrMintersFrozen", err)
	}
	if err := g.FreezeMinters(owner); !errors.Is(err, ErrMintersFrozen) {
		t.Errorf("double FreezeMinters: got %v, want ErrMintersFrozen", err)
	}

	// Frozen set still answers membership.
	if !g.IsMinter(alice) {
		t.Error("alice should remain a minter after freeze")
	}

	// Stranger calling after freeze still sees Unauthorized first.
	if err := g.AddMinter(stranger, stranger); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AddMinter by stranger after freeze: got %v, want ErrUnauthorized", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	owner := id.NewAccountID()
	next := id.NewAccountID()
	g := NewGovernor(owner)

	if err := g.TransferOwnership(next, next); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("TransferOwnership by non-owner: got %v, want ErrUnauthorized", err)
	}
	if err := g.TransferOwnership(owner, id.Nil); !errors.Is(err, ErrInvalidMinter) {
		t.Errorf("TransferOwnership to nil: got %v, want ErrInvalidMinter", err)
	}
	if err := g.TransferOwnership(owner, next); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if g.Owner() != next {
		t.Errorf("Owner: got %v, want %v", g.Owner(), next)
	}
	if err := g.RequireOwner(owner); !errors.Is(err, ErrUnauthorized) {
		t.Error("old owner should no longer pass RequireOwner")
	}
}
