package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/types"
)

// ==================== Holding models ====================

type holdingModel struct {
	grove.BaseModel `grove:"table:tenure_holdings"`

	LedgerID  string     `grove:"ledger_id,pk"`
	AccountID string     `grove:"account_id,pk"`
	TokenID   int64      `grove:"token_id,pk"`
	Balance   int64      `grove:"balance"`
	HeldSince *time.Time `grove:"held_since"`
	UpdatedAt time.Time  `grove:"updated_at"`
}

func toHoldingModel(rec *store.HoldingRecord) *holdingModel {
	m := &holdingModel{
		LedgerID:  rec.Ledger.String(),
		AccountID: rec.Account.String(),
		TokenID:   int64(rec.TokenID),
		Balance:   int64(rec.Balance),
	}
	if !rec.Since.IsZero() {
		since := rec.Since
		m.HeldSince = &since
	}
	return m
}

func fromHoldingModel(m *holdingModel) (*store.HoldingRecord, error) {
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	rec := &store.HoldingRecord{
		Ledger:  ledgerID,
		Account: accountID,
		TokenID: uint64(m.TokenID),
		Balance: types.Amount(m.Balance),
	}
	if m.HeldSince != nil {
		rec.Since = *m.HeldSince
	}
	return rec, nil
}

// ==================== Token models ====================

type tokenModel struct {
	grove.BaseModel `grove:"table:tenure_tokens"`

	LedgerID       string     `grove:"ledger_id,pk"`
	TokenID        int64      `grove:"token_id,pk"`
	OwnerID        string     `grove:"owner_id"`
	FirstOwnerID   string     `grove:"first_owner_id"`
	TokenType      int64      `grove:"token_type"`
	MintedAt       time.Time  `grove:"minted_at"`
	LastTransferAt time.Time  `grove:"last_transfer_at"`
	UserID         string     `grove:"user_id"`
	UserExpires    *time.Time `grove:"user_expires"`
}

func toTokenModel(rec *store.TokenRecord) *tokenModel {
	m := &tokenModel{
		LedgerID:       rec.Ledger.String(),
		TokenID:        int64(rec.TokenID),
		OwnerID:        rec.Owner.String(),
		FirstOwnerID:   rec.FirstOwner.String(),
		TokenType:      int64(rec.Type),
		MintedAt:       rec.MintedAt,
		LastTransferAt: rec.LastTransferAt,
	}
	if !rec.User.IsNil() {
		m.UserID = rec.User.String()
	}
	if !rec.UserExpires.IsZero() {
		expires := rec.UserExpires
		m.UserExpires = &expires
	}
	return m
}

func fromTokenModel(m *tokenModel) (*store.TokenRecord, error) {
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseAccountID(m.OwnerID)
	if err != nil {
		return nil, err
	}
	firstOwnerID, err := id.ParseAccountID(m.FirstOwnerID)
	if err != nil {
		return nil, err
	}

	rec := &store.TokenRecord{
		Ledger:         ledgerID,
		TokenID:        uint64(m.TokenID),
		Owner:          ownerID,
		FirstOwner:     firstOwnerID,
		Type:           uint64(m.TokenType),
		MintedAt:       m.MintedAt,
		LastTransferAt: m.LastTransferAt,
	}
	if m.UserID != "" {
		userID, err := id.ParseAccountID(m.UserID)
		if err != nil {
			return nil, err
		}
		rec.User = userID
	}
	if m.UserExpires != nil {
		rec.UserExpires = *m.UserExpires
	}
	return rec, nil
}

// ==================== Registration models ====================

type registrationModel struct {
	grove.BaseModel `grove:"table:tenure_registrations"`

	LedgerID  string `grove:"ledger_id,pk"`
	TokenID   int64  `grove:"token_id,pk"`
	URI       string `grove:"uri"`
	Threshold int64  `grove:"threshold"`
	Cap       int64  `grove:"cap"`
	URIFrozen bool   `grove:"uri_frozen"`
}

func toRegistrationModel(rec *store.RegistrationRecord) *registrationModel {
	return &registrationModel{
		LedgerID:  rec.Ledger.String(),
		TokenID:   int64(rec.TokenID),
		URI:       rec.URI,
		Threshold: int64(rec.Threshold),
		Cap:       int64(rec.Cap),
		URIFrozen: rec.URIFrozen,
	}
}

func fromRegistrationModel(m *registrationModel) (*store.RegistrationRecord, error) {
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}

	return &store.RegistrationRecord{
		Ledger:    ledgerID,
		TokenID:   uint64(m.TokenID),
		URI:       m.URI,
		Threshold: types.Amount(m.Threshold),
		Cap:       types.Amount(m.Cap),
		URIFrozen: m.URIFrozen,
	}, nil
}

// ==================== Transfer models ====================

type transferModel struct {
	grove.BaseModel `grove:"table:tenure_transfers"`

	ID       string    `grove:"id,pk"`
	LedgerID string    `grove:"ledger_id"`
	Kind     string    `grove:"kind"`
	CallerID string    `grove:"caller_id"`
	FromID   string    `grove:"from_id"`
	ToID     string    `grove:"to_id"`
	TokenID  int64     `grove:"token_id"`
	Amount   int64     `grove:"amount"`
	At       time.Time `grove:"at"`
}

func toTransferModel(rec *store.TransferRecord) *transferModel {
	m := &transferModel{
		ID:       rec.ID.String(),
		LedgerID: rec.Ledger.String(),
		Kind:     rec.Kind,
		CallerID: rec.Caller.String(),
		TokenID:  int64(rec.TokenID),
		Amount:   int64(rec.Amount),
		At:       rec.At,
	}
	if !rec.From.IsNil() {
		m.FromID = rec.From.String()
	}
	if !rec.To.IsNil() {
		m.ToID = rec.To.String()
	}
	return m
}

func fromTransferModel(m *transferModel) (*store.TransferRecord, error) {
	transferID, err := id.ParseTransferID(m.ID)
	if err != nil {
		return nil, err
	}
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}
	callerID, err := id.ParseAccountID(m.CallerID)
	if err != nil {
		return nil, err
	}

	rec := &store.TransferRecord{
		ID:      transferID,
		Ledger:  ledgerID,
		Kind:    m.Kind,
		Caller:  callerID,
		TokenID: uint64(m.TokenID),
		Amount:  types.Amount(m.Amount),
		At:      m.At,
	}
	if m.FromID != "" {
		fromID, err := id.ParseAccountID(m.FromID)
		if err != nil {
			return nil, err
		}
		rec.From = fromID
	}
	if m.ToID != "" {
		toID, err := id.ParseAccountID(m.ToID)
		if err != nil {
			return nil, err
		}
		rec.To = toID
	}
	return rec, nil
}
