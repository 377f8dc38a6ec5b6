// Package cmd implements the feeledger command line.
//
// Every command except serve opens the configured store, restores the
// ledger from its latest snapshot and journal, applies one operation
// and stops the ledger, which writes a fresh snapshot.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xraph/feeledger"
)

const envPrefix = "FEELEDGER"

// settings is the resolved CLI configuration.
type settings struct {
	Driver   string           `mapstructure:"driver"`
	DSN      string           `mapstructure:"dsn"`
	Owner    string           `mapstructure:"owner"`
	Caller   string           `mapstructure:"caller"`
	LogLevel string           `mapstructure:"log_level"`
	Ledger   feeledger.Config `mapstructure:"ledger"`
}

var (
	configPath string
	v          = viper.New()
	cfg        settings
	logger     = slog.Default()
)

// RootCmd is the feeledger command.
var RootCmd = &cobra.Command{
	Use:          "feeledger",
	Short:        "Fee-charging token ledger with multisig payouts",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadSettings(cmd)
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "feeledger.yaml", "config file")
	flags.String("driver", "sqlite", "store driver: sqlite, postgres or mongo")
	flags.String("dsn", "file:feeledger.db", "store connection string")
	flags.String("as", "", "caller address (defaults to caller, then owner, from config)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")

	_ = v.BindPFlag("driver", flags.Lookup("driver"))
	_ = v.BindPFlag("dsn", flags.Lookup("dsn"))
	_ = v.BindPFlag("caller", flags.Lookup("as"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	defaults := feeledger.DefaultConfig()
	v.SetDefault("owner", "")
	v.SetDefault("ledger.id", "")
	v.SetDefault("ledger.name", defaults.Name)
	v.SetDefault("ledger.symbol", defaults.Symbol)
	v.SetDefault("ledger.total_supply", defaults.TotalSupply)
	v.SetDefault("ledger.percentage_fees", defaults.PercentageFees)
	v.SetDefault("ledger.minimum_signatures", defaults.MinimumSignatures)
}

// loadSettings layers flags over FEELEDGER_* variables over the config
// file over defaults. A missing config file is not an error.
func loadSettings(cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	cfg = settings{}
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
