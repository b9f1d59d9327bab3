package mongo

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/types"
)

// ==================== Holding models ====================

type holdingModel struct {
	grove.BaseModel `grove:"table:tenure_holdings"`

	// Key is ledger|account|token: holdings have a composite identity
	// and Mongo documents need a single _id.
	Key       string     `grove:"id,pk"      bson:"_id"`
	LedgerID  string     `grove:"ledger_id"  bson:"ledger_id"`
	AccountID string     `grove:"account_id" bson:"account_id"`
	TokenID   int64      `grove:"token_id"   bson:"token_id"`
	Balance   int64      `grove:"balance"    bson:"balance"`
	HeldSince *time.Time `grove:"held_since" bson:"held_since,omitempty"`
	UpdatedAt time.Time  `grove:"updated_at" bson:"updated_at"`
}

func holdingKey(ledger, account id.ID, tokenID uint64) string {
	return fmt.Sprintf("%s|%s|%d", ledger, account, tokenID)
}

func tokenKey(ledger id.ID, tokenID uint64) string {
	return fmt.Sprintf("%s|%d", ledger, tokenID)
}

func toHoldingModel(rec *store.HoldingRecord) *holdingModel {
	m := &holdingModel{
		Key:       holdingKey(rec.Ledger, rec.Account, rec.TokenID),
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

	Key            string     `grove:"id,pk"            bson:"_id"`
	LedgerID       string     `grove:"ledger_id"        bson:"ledger_id"`
	TokenID        int64      `grove:"token_id"         bson:"token_id"`
	OwnerID        string     `grove:"owner_id"         bson:"owner_id"`
	FirstOwnerID   string     `grove:"first_owner_id"   bson:"first_owner_id"`
	TokenType      int64      `grove:"token_type"       bson:"token_type"`
	MintedAt       time.Time  `grove:"minted_at"        bson:"minted_at"`
	LastTransferAt time.Time  `grove:"last_transfer_at" bson:"last_transfer_at"`
	UserID         string     `grove:"user_id"          bson:"user_id"`
	UserExpires    *time.Time `grove:"user_expires"     bson:"user_expires,omitempty"`
}

func toTokenModel(rec *store.TokenRecord) *tokenModel {
	m := &tokenModel{
		Key:            tokenKey(rec.Ledger, rec.TokenID),
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

	Key       string `grove:"id,pk"      bson:"_id"`
	LedgerID  string `grove:"ledger_id"  bson:"ledger_id"`
	TokenID   int64  `grove:"token_id"   bson:"token_id"`
	URI       string `grove:"uri"        bson:"uri"`
	Threshold int64  `grove:"threshold"  bson:"threshold"`
	Cap       int64  `grove:"cap"        bson:"cap"`
	URIFrozen bool   `grove:"uri_frozen" bson:"uri_frozen"`
}

func toRegistrationModel(rec *store.RegistrationRecord) *registrationModel {
	return &registrationModel{
		Key:       tokenKey(rec.Ledger, rec.TokenID),
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

	ID       string    `grove:"id,pk"     bson:"_id"`
	LedgerID string    `grove:"ledger_id" bson:"ledger_id"`
	Kind     string    `grove:"kind"      bson:"kind"`
	CallerID string    `grove:"caller_id" bson:"caller_id"`
	FromID   string    `grove:"from_id"   bson:"from_id"`
	ToID     string    `grove:"to_id"     bson:"to_id"`
	TokenID  int64     `grove:"token_id"  bson:"token_id"`
	Amount   int64     `grove:"amount"    bson:"amount"`
	At       time.Time `grove:"at"        bson:"at"`
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
