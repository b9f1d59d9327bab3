// Package memory provides an in-memory Store implementation, used as the
// default store and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/store"
)

type Store struct {
	mu sync.RWMutex

	// Holding snapshots keyed by ledger|account|token
	holdings map[string]*store.HoldingRecord

	// Unique token snapshots keyed by ledger|token
	tokens map[string]*store.TokenRecord

	// Registration snapshots keyed by ledger|token
	registrations map[string]*store.RegistrationRecord

	// Transfer journal, append order
	transfers []store.TransferRecord
}

func New() *Store {
	return &Store{
		holdings:      make(map[string]*store.HoldingRecord),
		tokens:        make(map[string]*store.TokenRecord),
		registrations: make(map[string]*store.RegistrationRecord),
		transfers:     make([]store.TransferRecord, 0),
	}
}

func holdingKey(ledger, account id.ID, tokenID uint64) string {
	return fmt.Sprintf("%s|%s|%d", ledger, account, tokenID)
}

func tokenKey(ledger id.ID, tokenID uint64) string {
	return fmt.Sprintf("%s|%d", ledger, tokenID)
}

// Holding snapshot implementation
func (s *Store) UpsertHolding(_ context.Context, rec *store.HoldingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.holdings[holdingKey(rec.Ledger, rec.Account, rec.TokenID)] = &cp
	return nil
}

func (s *Store) DeleteHolding(_ context.Context, ledger, account id.ID, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holdings, holdingKey(ledger, account, tokenID))
	return nil
}

func (s *Store) ListHoldings(_ context.Context, ledger id.ID) ([]*store.HoldingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*store.HoldingRecord, 0)
	for _, rec := range s.holdings {
		if rec.Ledger == ledger {
			cp := *rec
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Unique token snapshot implementation
func (s *Store) UpsertToken(_ context.Context, rec *store.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.tokens[tokenKey(rec.Ledger, rec.TokenID)] = &cp
	return nil
}

func (s *Store) DeleteToken(_ context.Context, ledger id.ID, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, tokenKey(ledger, tokenID))
	return nil
}

func (s *Store) GetToken(_ context.Context, ledger id.ID, tokenID uint64) (*store.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.tokens[tokenKey(ledger, tokenID)]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, tenure.ErrTokenNotFound
}

func (s *Store) ListTokens(_ context.Context, ledger id.ID) ([]*store.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*store.TokenRecord, 0)
	for _, rec := range s.tokens {
		if rec.Ledger == ledger {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TokenID < result[j].TokenID })
	return result, nil
}

// Registration snapshot implementation
func (s *Store) UpsertRegistration(_ context.Context, rec *store.RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.registrations[tokenKey(rec.Ledger, rec.TokenID)] = &cp
	return nil
}

func (s *Store) GetRegistration(_ context.Context, ledger id.ID, tokenID uint64) (*store.RegistrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.registrations[tokenKey(ledger, tokenID)]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, tenure.ErrNotRegistered
}

func (s *Store) ListRegistrations(_ context.Context, ledger id.ID) ([]*store.RegistrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*store.RegistrationRecord, 0)
	for _, rec := range s.registrations {
		if rec.Ledger == ledger {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TokenID < result[j].TokenID })
	return result, nil
}

// Transfer journal implementation
func (s *Store) AppendTransfers(_ context.Context, recs []*store.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.transfers = append(s.transfers, *rec)
	}
	return nil
}

func (s *Store) QueryTransfers(_ context.Context, ledger id.ID, opts store.QueryOpts) ([]*store.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*store.TransferRecord, 0)
	for i := range s.transfers {
		rec := &s.transfers[i]
		if rec.Ledger != ledger {
			continue
		}
		if !opts.Account.IsNil() && rec.From != opts.Account && rec.To != opts.Account {
			continue
		}
		if opts.TokenID != nil && rec.TokenID != *opts.TokenID {
			continue
		}
		if opts.Kind != "" && rec.Kind != opts.Kind {
			continue
		}
		if !opts.Since.IsZero() && rec.At.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && rec.At.After(opts.Until) {
			continue
		}
		cp := *rec
		result = append(result, &cp)
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) PurgeTransfers(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	kept := make([]store.TransferRecord, 0)
	for _, rec := range s.transfers {
		if rec.At.Before(before) {
			count++
		} else {
			kept = append(kept, rec)
		}
	}
	s.transfers = kept
	return count, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

var _ store.Store = (*Store)(nil)
