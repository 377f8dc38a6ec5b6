// Package extension provides the Forge extension adapter for feeledger.
//
// It implements the forge.Extension interface to integrate a fee ledger
// into a Forge application with store construction, DI registration
// and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.feeledger" or
// "feeledger" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/store/memory"
	mongostore "github.com/xraph/feeledger/store/mongo"
	pgstore "github.com/xraph/feeledger/store/postgres"
	sqlitestore "github.com/xraph/feeledger/store/sqlite"
	"github.com/xraph/feeledger/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "feeledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Fee-charging token ledger with multisig payouts"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts a feeledger.Ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *feeledger.Ledger
	store      store.Store
	db         *grove.DB
	ledgerOpts []feeledger.Option
}

// New creates a new feeledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
		config:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger.
// This is nil until Register is called.
func (e *Extension) Engine() *feeledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// builds the store and the ledger, and registers the ledger in the DI
// container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := e.buildStore()
		if err != nil {
			return err
		}
		e.store = s
	}
	if e.config.DisableMigrate {
		e.store = unmigrated{e.store}
	}

	cfg, err := e.ledgerConfig()
	if err != nil {
		return err
	}

	eng, err := feeledger.New(e.store, cfg, e.buildLedgerOpts()...)
	if err != nil {
		return err
	}
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*feeledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("feeledger: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension]. The ledger writes a final
// snapshot before the store closes.
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("feeledger: store not initialized")
	}
	if e.engine != nil && !e.engine.Reconciled() {
		return errors.New("feeledger: balances do not add up to the supply")
	}
	return e.store.Ping(ctx)
}

// buildStore picks a backend for the configured driver.
func (e *Extension) buildStore() (store.Store, error) {
	if e.db == nil {
		if e.config.Driver != "" && e.config.Driver != DriverMemory {
			return nil, fmt.Errorf("feeledger: driver %q needs a grove database", e.config.Driver)
		}
		return memory.New(), nil
	}

	switch e.config.Driver {
	case DriverPostgres:
		return pgstore.New(e.db), nil
	case DriverSQLite:
		return sqlitestore.New(e.db), nil
	case DriverMongo:
		return mongostore.New(e.db), nil
	default:
		return nil, fmt.Errorf("feeledger: unsupported driver %q", e.config.Driver)
	}
}

// ledgerConfig resolves the genesis owner from its hex form.
func (e *Extension) ledgerConfig() (feeledger.Config, error) {
	cfg := e.config.Ledger
	if e.config.Owner != "" {
		owner, err := types.ParseAddress(e.config.Owner)
		if err != nil {
			return cfg, fmt.Errorf("feeledger: owner: %w", err)
		}
		cfg.Owner = owner
	}
	return cfg, nil
}

// buildLedgerOpts constructs feeledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []feeledger.Option {
	opts := make([]feeledger.Option, 0, len(e.ledgerOpts)+1)
	opts = append(opts, feeledger.WithJournalConfig(e.config.JournalBatchSize, e.config.JournalFlushInterval))

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// unmigrated leaves schema management to someone else.
type unmigrated struct{ store.Store }

func (unmigrated) Migrate(context.Context) error { return nil }

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("feeledger: configuration is required but not found in config files; " +
				"ensure 'extensions.feeledger' or 'feeledger' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("feeledger: configuration loaded",
		forge.F("driver", e.config.Driver),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("journal_batch_size", e.config.JournalBatchSize),
		forge.F("journal_flush_interval", e.config.JournalFlushInterval),
		forge.F("ledger", e.config.Ledger.Key()),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.feeledger", "feeledger"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("feeledger: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("feeledger: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.JournalBatchSize <= 0 {
		cfg.JournalBatchSize = defaults.JournalBatchSize
	}
	if cfg.JournalFlushInterval <= 0 {
		cfg.JournalFlushInterval = defaults.JournalFlushInterval
	}

	l, d := &cfg.Ledger, defaults.Ledger
	if l.Name == "" {
		l.Name = d.Name
	}
	if l.Symbol == "" {
		l.Symbol = d.Symbol
	}
	if l.TotalSupply == 0 {
		l.TotalSupply = d.TotalSupply
	}
	if l.MinimumSignatures == 0 {
		l.MinimumSignatures = d.MinimumSignatures
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if yamlConfig.Driver == "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}
	if yamlConfig.Owner == "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}
	if yamlConfig.JournalBatchSize == 0 {
		yamlConfig.JournalBatchSize = programmaticConfig.JournalBatchSize
	}
	if yamlConfig.JournalFlushInterval == 0 {
		yamlConfig.JournalFlushInterval = programmaticConfig.JournalFlushInterval
	}

	y, p := &yamlConfig.Ledger, programmaticConfig.Ledger
	if y.ID == "" {
		y.ID = p.ID
	}
	if y.Name == "" {
		y.Name = p.Name
	}
	if y.Symbol == "" {
		y.Symbol = p.Symbol
	}
	if y.TotalSupply == 0 {
		y.TotalSupply = p.TotalSupply
	}
	if y.MinimumSignatures == 0 {
		y.MinimumSignatures = p.MinimumSignatures
	}
	// A zero file percentage is indistinguishable from an absent one.
	if y.PercentageFees == 0 {
		y.PercentageFees = p.PercentageFees
	}
	if types.IsZero(y.Owner) {
		y.Owner = p.Owner
	}

	return mergeWithDefaults(yamlConfig)
}
