package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	tenure "github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	tenurestore "github.com/xraph/tenure/store"
	"github.com/xraph/tenure/types"
)

// compile-time interface check
var _ tenurestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("tenure/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tenure/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Models ====================

type holdingModel struct {
	grove.BaseModel `grove:"table:tenure_holdings"`

	LedgerID  string     `grove:"ledger_id,pk"`
	AccountID string     `grove:"account_id,pk"`
	TokenID   int64      `grove:"token_id,pk"`
	Balance   int64      `grove:"balance"`
	HeldSince *time.Time `grove:"held_since"`
	UpdatedAt time.Time  `grove:"updated_at"`
}

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

type registrationModel struct {
	grove.BaseModel `grove:"table:tenure_registrations"`

	LedgerID  string `grove:"ledger_id,pk"`
	TokenID   int64  `grove:"token_id,pk"`
	URI       string `grove:"uri"`
	Threshold int64  `grove:"threshold"`
	Cap       int64  `grove:"cap"`
	URIFrozen bool   `grove:"uri_frozen"`
}

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

func toHoldingModel(rec *tenurestore.HoldingRecord) *holdingModel {
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

func fromHoldingModel(m *holdingModel) (*tenurestore.HoldingRecord, error) {
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	rec := &tenurestore.HoldingRecord{
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

func toTokenModel(rec *tenurestore.TokenRecord) *tokenModel {
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

func fromTokenModel(m *tokenModel) (*tenurestore.TokenRecord, error) {
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

	rec := &tenurestore.TokenRecord{
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

func toRegistrationModel(rec *tenurestore.RegistrationRecord) *registrationModel {
	return &registrationModel{
		LedgerID:  rec.Ledger.String(),
		TokenID:   int64(rec.TokenID),
		URI:       rec.URI,
		Threshold: int64(rec.Threshold),
		Cap:       int64(rec.Cap),
		URIFrozen: rec.URIFrozen,
	}
}

func fromRegistrationModel(m *registrationModel) (*tenurestore.RegistrationRecord, error) {
	ledgerID, err := id.ParseLedgerID(m.LedgerID)
	if err != nil {
		return nil, err
	}

	return &tenurestore.RegistrationRecord{
		Ledger:    ledgerID,
		TokenID:   uint64(m.TokenID),
		URI:       m.URI,
		Threshold: types.Amount(m.Threshold),
		Cap:       types.Amount(m.Cap),
		URIFrozen: m.URIFrozen,
	}, nil
}

func toTransferModel(rec *tenurestore.TransferRecord) *transferModel {
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

func fromTransferModel(m *transferModel) (*tenurestore.TransferRecord, error) {
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

	rec := &tenurestore.TransferRecord{
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

// ==================== Holding snapshots ====================

func (s *Store) UpsertHolding(ctx context.Context, rec *tenurestore.HoldingRecord) error {
	m := toHoldingModel(rec)
	m.UpdatedAt = now()

	res, err := s.sdb.NewUpdate((*holdingModel)(nil)).
		Set("balance = ?", m.Balance).
		Set("held_since = ?", m.HeldSince).
		Set("updated_at = ?", m.UpdatedAt).
		Where("ledger_id = ?", m.LedgerID).
		Where("account_id = ?", m.AccountID).
		Where("token_id = ?", m.TokenID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) DeleteHolding(ctx context.Context, ledger, account id.ID, tokenID uint64) error {
	_, err := s.sdb.NewDelete((*holdingModel)(nil)).
		Where("ledger_id = ?", ledger.String()).
		Where("account_id = ?", account.String()).
		Where("token_id = ?", int64(tokenID)).
		Exec(ctx)
	return err
}

func (s *Store) ListHoldings(ctx context.Context, ledger id.ID) ([]*tenurestore.HoldingRecord, error) {
	var models []holdingModel
	err := s.sdb.NewSelect(&models).
		Where("ledger_id = ?", ledger.String()).
		OrderExpr("account_id ASC, token_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*tenurestore.HoldingRecord, len(models))
	for i := range models {
		rec, err := fromHoldingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

// ==================== Token snapshots ====================

func (s *Store) UpsertToken(ctx context.Context, rec *tenurestore.TokenRecord) error {
	m := toTokenModel(rec)

	res, err := s.sdb.NewUpdate((*tokenModel)(nil)).
		Set("owner_id = ?", m.OwnerID).
		Set("first_owner_id = ?", m.FirstOwnerID).
		Set("token_type = ?", m.TokenType).
		Set("minted_at = ?", m.MintedAt).
		Set("last_transfer_at = ?", m.LastTransferAt).
		Set("user_id = ?", m.UserID).
		Set("user_expires = ?", m.UserExpires).
		Where("ledger_id = ?", m.LedgerID).
		Where("token_id = ?", m.TokenID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) DeleteToken(ctx context.Context, ledger id.ID, tokenID uint64) error {
	_, err := s.sdb.NewDelete((*tokenModel)(nil)).
		Where("ledger_id = ?", ledger.String()).
		Where("token_id = ?", int64(tokenID)).
		Exec(ctx)
	return err
}

func (s *Store) GetToken(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.TokenRecord, error) {
	m := new(tokenModel)
	err := s.sdb.NewSelect(m).
		Where("ledger_id = ?", ledger.String()).
		Where("token_id = ?", int64(tokenID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tenure.ErrTokenNotFound
		}
		return nil, err
	}
	return fromTokenModel(m)
}

func (s *Store) ListTokens(ctx context.Context, ledger id.ID) ([]*tenurestore.TokenRecord, error) {
	var models []tokenModel
	err := s.sdb.NewSelect(&models).
		Where("ledger_id = ?", ledger.String()).
		OrderExpr("token_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*tenurestore.TokenRecord, len(models))
	for i := range models {
		rec, err := fromTokenModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

// ==================== Registration snapshots ====================

func (s *Store) UpsertRegistration(ctx context.Context, rec *tenurestore.RegistrationRecord) error {
	m := toRegistrationModel(rec)

	res, err := s.sdb.NewUpdate((*registrationModel)(nil)).
		Set("uri = ?", m.URI).
		Set("threshold = ?", m.Threshold).
		Set("cap = ?", m.Cap).
		Set("uri_frozen = ?", m.URIFrozen).
		Where("ledger_id = ?", m.LedgerID).
		Where("token_id = ?", m.TokenID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetRegistration(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.RegistrationRecord, error) {
	m := new(registrationModel)
	err := s.sdb.NewSelect(m).
		Where("ledger_id = ?", ledger.String()).
		Where("token_id = ?", int64(tokenID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tenure.ErrNotRegistered
		}
		return nil, err
	}
	return fromRegistrationModel(m)
}

func (s *Store) ListRegistrations(ctx context.Context, ledger id.ID) ([]*tenurestore.RegistrationRecord, error) {
	var models []registrationModel
	err := s.sdb.NewSelect(&models).
		Where("ledger_id = ?", ledger.String()).
		OrderExpr("token_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*tenurestore.RegistrationRecord, len(models))
	for i := range models {
		rec, err := fromRegistrationModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

// ==================== Transfer journal ====================

func (s *Store) AppendTransfers(ctx context.Context, recs []*tenurestore.TransferRecord) error {
	if len(recs) == 0 {
		return nil
	}

	models := make([]transferModel, len(recs))
	for i, rec := range recs {
		models[i] = *toTransferModel(rec)
	}
	_, err := s.sdb.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) QueryTransfers(ctx context.Context, ledger id.ID, opts tenurestore.QueryOpts) ([]*tenurestore.TransferRecord, error) {
	var models []transferModel
	q := s.sdb.NewSelect(&models).Where("ledger_id = ?", ledger.String())

	if !opts.Account.IsNil() {
		q = q.Where("(from_id = ? OR to_id = ?)", opts.Account.String(), opts.Account.String())
	}
	if opts.TokenID != nil {
		q = q.Where("token_id = ?", int64(*opts.TokenID))
	}
	if opts.Kind != "" {
		q = q.Where("kind = ?", opts.Kind)
	}
	if !opts.Since.IsZero() {
		q = q.Where("at >= ?", opts.Since)
	}
	if !opts.Until.IsZero() {
		q = q.Where("at <= ?", opts.Until)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*tenurestore.TransferRecord, len(models))
	for i := range models {
		rec, err := fromTransferModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

func (s *Store) PurgeTransfers(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*transferModel)(nil)).
		Where("at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
