package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	tenure "github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	tenurestore "github.com/xraph/tenure/store"
)

// Collection name constants.
const (
	colHoldings      = "tenure_holdings"
	colTokens        = "tenure_tokens"
	colRegistrations = "tenure_registrations"
	colTransfers     = "tenure_transfers"
)

// compile-time interface check
var _ tenurestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tenure collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tenure/mongo: migrate %s indexes: %w", col, err)
		}
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
	m.UpdatedAt = time.Now().UTC()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.Key,
			"ledger_id":  m.LedgerID,
			"account_id": m.AccountID,
			"token_id":   m.TokenID,
			"balance":    m.Balance,
			"held_since": m.HeldSince,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tenure/mongo: upsert holding: %w", err)
	}
	return nil
}

func (s *Store) DeleteHolding(ctx context.Context, ledger, account id.ID, tokenID uint64) error {
	_, err := s.mdb.NewDelete((*holdingModel)(nil)).
		Filter(bson.M{"_id": holdingKey(ledger, account, tokenID)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tenure/mongo: delete holding: %w", err)
	}
	return nil
}

func (s *Store) ListHoldings(ctx context.Context, ledger id.ID) ([]*tenurestore.HoldingRecord, error) {
	var models []holdingModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"ledger_id": ledger.String()}).
		Sort(bson.D{{Key: "account_id", Value: 1}, {Key: "token_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenure/mongo: list holdings: %w", err)
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

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":              m.Key,
			"ledger_id":        m.LedgerID,
			"token_id":         m.TokenID,
			"owner_id":         m.OwnerID,
			"first_owner_id":   m.FirstOwnerID,
			"token_type":       m.TokenType,
			"minted_at":        m.MintedAt,
			"last_transfer_at": m.LastTransferAt,
			"user_id":          m.UserID,
			"user_expires":     m.UserExpires,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tenure/mongo: upsert token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, ledger id.ID, tokenID uint64) error {
	_, err := s.mdb.NewDelete((*tokenModel)(nil)).
		Filter(bson.M{"_id": tokenKey(ledger, tokenID)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tenure/mongo: delete token: %w", err)
	}
	return nil
}

func (s *Store) GetToken(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.TokenRecord, error) {
	var m tokenModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tokenKey(ledger, tokenID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tenure.ErrTokenNotFound
		}
		return nil, fmt.Errorf("tenure/mongo: get token: %w", err)
	}
	return fromTokenModel(&m)
}

func (s *Store) ListTokens(ctx context.Context, ledger id.ID) ([]*tenurestore.TokenRecord, error) {
	var models []tokenModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"ledger_id": ledger.String()}).
		Sort(bson.D{{Key: "token_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenure/mongo: list tokens: %w", err)
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

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.Key,
			"ledger_id":  m.LedgerID,
			"token_id":   m.TokenID,
			"uri":        m.URI,
			"threshold":  m.Threshold,
			"cap":        m.Cap,
			"uri_frozen": m.URIFrozen,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tenure/mongo: upsert registration: %w", err)
	}
	return nil
}

func (s *Store) GetRegistration(ctx context.Context, ledger id.ID, tokenID uint64) (*tenurestore.RegistrationRecord, error) {
	var m registrationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tokenKey(ledger, tokenID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tenure.ErrNotRegistered
		}
		return nil, fmt.Errorf("tenure/mongo: get registration: %w", err)
	}
	return fromRegistrationModel(&m)
}

func (s *Store) ListRegistrations(ctx context.Context, ledger id.ID) ([]*tenurestore.RegistrationRecord, error) {
	var models []registrationModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"ledger_id": ledger.String()}).
		Sort(bson.D{{Key: "token_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tenure/mongo: list registrations: %w", err)
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

	for _, rec := range recs {
		m := toTransferModel(rec)
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("tenure/mongo: append transfer: %w", err)
		}
	}
	return nil
}

func (s *Store) QueryTransfers(ctx context.Context, ledger id.ID, opts tenurestore.QueryOpts) ([]*tenurestore.TransferRecord, error) {
	filter := bson.M{"ledger_id": ledger.String()}
	if !opts.Account.IsNil() {
		acct := opts.Account.String()
		filter["$or"] = []bson.M{{"from_id": acct}, {"to_id": acct}}
	}
	if opts.TokenID != nil {
		filter["token_id"] = int64(*opts.TokenID)
	}
	if opts.Kind != "" {
		filter["kind"] = opts.Kind
	}
	if !opts.Since.IsZero() || !opts.Until.IsZero() {
		at := bson.M{}
		if !opts.Since.IsZero() {
			at["$gte"] = opts.Since
		}
		if !opts.Until.IsZero() {
			at["$lte"] = opts.Until
		}
		filter["at"] = at
	}

	var models []transferModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "at", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tenure/mongo: query transfers: %w", err)
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
	res, err := s.mdb.NewDelete((*transferModel)(nil)).
		Filter(bson.M{"at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tenure/mongo: purge transfers: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tenure collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colHoldings: {
			{Keys: bson.D{{Key: "ledger_id", Value: 1}}},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "account_id", Value: 1}}},
		},
		colTokens: {
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "owner_id", Value: 1}}},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "token_type", Value: 1}}},
		},
		colRegistrations: {
			{
				Keys:    bson.D{{Key: "ledger_id", Value: 1}, {Key: "token_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colTransfers: {
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "at", Value: 1}}},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "from_id", Value: 1}}},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}, {Key: "to_id", Value: 1}}},
		},
	}
}
