package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/store/memory"
	mongostore "github.com/xraph/feeledger/store/mongo"
	pgstore "github.com/xraph/feeledger/store/postgres"
	sqlitestore "github.com/xraph/feeledger/store/sqlite"
	"github.com/xraph/feeledger/types"
)

// openStore connects the configured backend. Tests replace it.
var openStore = func(ctx context.Context, driver, dsn string) (store.Store, error) {
	switch driver {
	case "memory":
		return memory.New(), nil

	case "sqlite":
		drv := sqlitedriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return sqlitestore.New(db), nil

	case "postgres":
		drv := pgdriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return pgstore.New(db), nil

	case "mongo":
		drv := mongodriver.New()
		if err := drv.Open(ctx, dsn); err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		db, err := grove.Open(drv)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return mongostore.New(db), nil

	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

// ledgerConfig returns the genesis config with the owner resolved.
func ledgerConfig() (feeledger.Config, error) {
	lc := cfg.Ledger
	if cfg.Owner == "" {
		return lc, errors.New("owner is not configured; run 'feeledger init --owner <address>' first")
	}
	owner, err := types.ParseAddress(cfg.Owner)
	if err != nil {
		return lc, fmt.Errorf("owner: %w", err)
	}
	lc.Owner = owner
	return lc, nil
}

// openLedger builds an unstarted ledger over the configured store.
func openLedger(ctx context.Context, opts ...feeledger.Option) (*feeledger.Ledger, error) {
	lc, err := ledgerConfig()
	if err != nil {
		return nil, err
	}
	s, err := openStore(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	opts = append([]feeledger.Option{feeledger.WithLogger(logger)}, opts...)
	l, err := feeledger.New(s, lc, opts...)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return l, nil
}

// withLedger restores the ledger, runs fn and stops the ledger, which
// flushes the journal and writes a snapshot.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, l *feeledger.Ledger) error) error {
	ctx := cmd.Context()

	l, err := openLedger(ctx)
	if err != nil {
		return err
	}
	if err := l.Start(ctx); err != nil {
		return errors.Join(err, l.Store().Close())
	}

	opErr := fn(ctx, l)
	return errors.Join(opErr, l.Stop())
}

// caller is the --as flag, else the configured caller, else the owner.
func caller() (types.Address, error) {
	s := cfg.Caller
	if s == "" {
		s = cfg.Owner
	}
	if s == "" {
		return types.ZeroAddress, errors.New("no caller: pass --as <address>")
	}
	return types.ParseAddress(s)
}

func parseAddress(name, s string) (types.Address, error) {
	a, err := types.ParseAddress(s)
	if err != nil {
		return a, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

// parseAmount reads smallest units.
func parseAmount(s string) (*uint256.Int, error) {
	a, err := types.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	return a, nil
}

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("proposal id %q: %w", s, err)
	}
	return id, nil
}

// formatAmount renders v in tokens with thousands separators.
func formatAmount(v *uint256.Int, symbol string) string {
	return types.Humanize(v, feeledger.Decimals) + " " + symbol
}

func formatAllowance(v *uint256.Int, symbol string) string {
	if v.Eq(types.MaxAmount()) {
		return "unlimited " + symbol
	}
	return formatAmount(v, symbol)
}
