package extension

import (
	"time"

	"github.com/xraph/feeledger"
)

// Store drivers understood by the extension.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config holds the feeledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.feeledger" or "feeledger" keys).
type Config struct {
	// DisableMigrate skips schema migration on start, for stores whose
	// schema is managed elsewhere.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Driver selects the store backend built around the grove.DB passed
	// with WithGroveDB: "postgres", "sqlite" or "mongo". Without a
	// grove.DB the memory store is used.
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// JournalBatchSize is the number of events to buffer before flushing
	// to the store (default: 100).
	JournalBatchSize int `json:"journal_batch_size" mapstructure:"journal_batch_size" yaml:"journal_batch_size"`

	// JournalFlushInterval is how frequently the journal is flushed even
	// if the batch size has not been reached (default: 1s).
	JournalFlushInterval time.Duration `json:"journal_flush_interval" mapstructure:"journal_flush_interval" yaml:"journal_flush_interval"`

	// Owner is the hex address that receives the supply at genesis.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`

	// Ledger is the genesis configuration. Owner is taken from the
	// field above.
	Ledger feeledger.Config `json:"ledger" mapstructure:"ledger" yaml:"ledger"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		JournalBatchSize:     100,
		JournalFlushInterval: time.Second,
		Ledger:               feeledger.DefaultConfig(),
	}
}
