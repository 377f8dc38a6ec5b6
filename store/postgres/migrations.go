package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the feeledger store.
var Migrations = migrate.NewGroup("feeledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_feeledger_events",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS feeledger_events (
    id             TEXT PRIMARY KEY,
    ledger         TEXT NOT NULL,
    seq            BIGINT NOT NULL,
    kind           TEXT NOT NULL,
    proposal_id    BIGINT,
    from_addr      TEXT NOT NULL DEFAULT '',
    to_addr        TEXT NOT NULL DEFAULT '',
    admin          TEXT NOT NULL DEFAULT '',
    value          TEXT NOT NULL DEFAULT '',
    min_signatures BIGINT NOT NULL DEFAULT 0,
    percentage     BIGINT NOT NULL DEFAULT 0,
    timestamp      TIMESTAMPTZ NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_feeledger_events_ledger_seq ON feeledger_events (ledger, seq);
CREATE INDEX IF NOT EXISTS idx_feeledger_events_kind ON feeledger_events (ledger, kind, seq);
CREATE INDEX IF NOT EXISTS idx_feeledger_events_proposal ON feeledger_events (ledger, proposal_id) WHERE proposal_id IS NOT NULL;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS feeledger_events`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_feeledger_snapshots",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS feeledger_snapshots (
    id         TEXT PRIMARY KEY,
    ledger     TEXT NOT NULL,
    seq        BIGINT NOT NULL,
    state      JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_feeledger_snapshots_ledger_seq ON feeledger_snapshots (ledger, seq DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS feeledger_snapshots`)
				return err
			},
		},
	)
}
