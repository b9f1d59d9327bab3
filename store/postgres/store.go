package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	tenure "github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	tenurestore "github.com/xraph/tenure/store"
)

// compile-time interface check
var _ tenurestore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tenure/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tenure/postgres: migration failed: %w", err)
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

// ==================== Holding snapshots ====================

func (s *Store) UpsertHolding(ctx context.Context, rec *tenurestore.HoldingRecord) error {
	m := toHoldingModel(rec)
	m.UpdatedAt = now()

	res, err := s.pg.NewUpdate((*holdingModel)(nil)).
		Set("balance = $1", m.Balance).
		Set("held_since = $2", m.HeldSince).
		Set("updated_at = $3", m.UpdatedAt).
		Where("ledger_id = $4", m.LedgerID).
		Where("account_id = $5", m.AccountID).
		Where("token_id = $6", m.TokenID).
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

	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) DeleteHolding(ctx context.Context, ledger, account id.ID, tokenID uint64) error {
	_, err := s.pg.NewDelete((*holdingModel)(nil)).
		Where("ledger_id = $1", ledger.String()).
		Where("account_id = $2", account.String()).
		Where("token_id = $3", int64(tokenID)).
		Exec(ctx)
	return err
}

func (s *Store) ListHoldings(ctx context.Context, ledger id.ID) ([]*tenurestore.HoldingRecord, error) {
	var models []holdingModel
	err := s.pg.NewSelect(&models).
		Where("ledger_id = $1", ledger.String()).
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

	res, err := s.pg.NewUpdate((*tokenModel)(nil)).
		Set("owner_id = $1", m.OwnerID).
		Set("first_owner_id = $2", m.FirstOwnerID).
		Set("token_type = $3", m.TokenType).
		Set("minted_at = $4", m.MintedAt).
		Set("last_transfer_at = $5", m.LastTransferAt).
		Set("user_id = $6", m.UserID).
		Set("user_expires = $7", m.UserExpires).
		Where("ledger_id = $8", m.LedgerID).
		Where("token_id = $9", m.TokenID).
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

	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) DeleteToken(ctx context.Context, ledger id.ID, tokenID uint64) error {
	_, err := s.pg.NewDelete((*tokenModel)(nil)).
		Where("ledger_id = $1", ledger.String()).
		Where("token_id = $2", int64(tokenID)).
		Exec(ctx)
	return err
}

func (s *Store) GetToken(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.TokenRecord, error) {
	m := new(tokenModel)
	err := s.pg.NewSelect(m).
		Where("ledger_id = $1", ledger.String()).
		Where("token_id = $2", int64(tokenID)).
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
	err := s.pg.NewSelect(&models).
		Where("ledger_id = $1", ledger.String()).
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

	res, err := s.pg.NewUpdate((*registrationModel)(nil)).
		Set("uri = $1", m.URI).
		Set("threshold = $2", m.Threshold).
		Set("cap = $3", m.Cap).
		Set("uri_frozen = $4", m.URIFrozen).
		Where("ledger_id = $5", m.LedgerID).
		Where("token_id = $6", m.TokenID).
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

	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetRegistration(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.RegistrationRecord, error) {
	m := new(registrationModel)
	err := s.pg.NewSelect(m).
		Where("ledger_id = $1", ledger.String()).
		Where("token_id = $2", int64(tokenID)).
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
	err := s.pg.NewSelect(&models).
		Where("ledger_id = $1", ledger.String()).
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
	_, err := s.pg.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) QueryTransfers(ctx context.Context, ledger id.ID, opts tenurestore.QueryOpts) ([]*tenurestore.TransferRecord, error) {
	var models []transferModel
	q := s.pg.NewSelect(&models).Where("ledger_id = $1", ledger.String())

	argIdx := 1
	if !opts.Account.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("(from_id = $%d OR to_id = $%d)", argIdx, argIdx), opts.Account.String())
	}
	if opts.TokenID != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("token_id = $%d", argIdx), int64(*opts.TokenID))
	}
	if opts.Kind != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("kind = $%d", argIdx), opts.Kind)
	}
	if !opts.Since.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("at >= $%d", argIdx), opts.Since)
	}
	if !opts.Until.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("at <= $%d", argIdx), opts.Until)
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
	res, err := s.pg.NewDelete((*transferModel)(nil)).
		Where("at < $1", before).
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
