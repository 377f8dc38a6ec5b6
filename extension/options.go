package extension

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/plugin"
	"github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/types"
)

// Option configures the feeledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger. It takes precedence over
// WithGroveDB.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB builds the store from db using the configured driver.
func WithGroveDB(db *grove.DB, driver string) Option {
	return func(e *Extension) {
		e.db = db
		e.config.Driver = driver
	}
}

// WithLedgerOption passes a feeledger.Option through to the ledger.
func WithLedgerOption(opt feeledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, feeledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithLedgerConfig sets the genesis configuration.
func WithLedgerConfig(cfg feeledger.Config) Option {
	return func(e *Extension) {
		e.config.Ledger = cfg
		if !types.IsZero(cfg.Owner) {
			e.config.Owner = cfg.Owner.Hex()
		}
	}
}

// WithDisableMigrate skips schema migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithJournalBatchSize sets the number of events to buffer before flushing.
func WithJournalBatchSize(size int) Option {
	return func(e *Extension) { e.config.JournalBatchSize = size }
}

// WithJournalFlushInterval sets how frequently the journal is flushed.
func WithJournalFlushInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.JournalFlushInterval = d }
}
