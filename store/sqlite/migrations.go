package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Tenure store (SQLite).
var Migrations = migrate.NewGroup("tenure")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tenure_holdings",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenure_holdings (
    ledger_id   TEXT NOT NULL,
    account_id  TEXT NOT NULL,
    token_id    INTEGER NOT NULL DEFAULT 0,
    balance     INTEGER NOT NULL DEFAULT 0,
    held_since  TEXT,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (ledger_id, account_id, token_id)
);

CREATE INDEX IF NOT EXISTS idx_tenure_holdings_ledger ON tenure_holdings (ledger_id);
CREATE INDEX IF NOT EXISTS idx_tenure_holdings_account ON tenure_holdings (ledger_id, account_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tenure_holdings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tenure_tokens",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenure_tokens (
    ledger_id        TEXT NOT NULL,
    token_id         INTEGER NOT NULL,
    owner_id         TEXT NOT NULL DEFAULT '',
    first_owner_id   TEXT NOT NULL DEFAULT '',
    token_type       INTEGER NOT NULL DEFAULT 0,
    minted_at        TEXT NOT NULL DEFAULT (datetime('now')),
    last_transfer_at TEXT NOT NULL DEFAULT (datetime('now')),
    user_id          TEXT NOT NULL DEFAULT '',
    user_expires     TEXT,
    PRIMARY KEY (ledger_id, token_id)
);

CREATE INDEX IF NOT EXISTS idx_tenure_tokens_owner ON tenure_tokens (ledger_id, owner_id);
CREATE INDEX IF NOT EXISTS idx_tenure_tokens_type ON tenure_tokens (ledger_id, token_type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tenure_tokens`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tenure_registrations",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenure_registrations (
    ledger_id  TEXT NOT NULL,
    token_id   INTEGER NOT NULL,
    uri        TEXT NOT NULL DEFAULT '',
    threshold  INTEGER NOT NULL DEFAULT 0,
    cap        INTEGER NOT NULL DEFAULT 0,
    uri_frozen INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (ledger_id, token_id)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tenure_registrations`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tenure_transfers",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenure_transfers (
    id         TEXT PRIMARY KEY,
    ledger_id  TEXT NOT NULL DEFAULT '',
    kind       TEXT NOT NULL DEFAULT '',
    caller_id  TEXT NOT NULL DEFAULT '',
    from_id    TEXT NOT NULL DEFAULT '',
    to_id      TEXT NOT NULL DEFAULT '',
    token_id   INTEGER NOT NULL DEFAULT 0,
    amount     INTEGER NOT NULL DEFAULT 0,
    at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tenure_transfers_ledger_at ON tenure_transfers (ledger_id, at);
CREATE INDEX IF NOT EXISTS idx_tenure_transfers_from ON tenure_transfers (ledger_id, from_id);
CREATE INDEX IF NOT EXISTS idx_tenure_transfers_to ON tenure_transfers (ledger_id, to_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tenure_transfers`)
				return err
			},
		},
	)
}
