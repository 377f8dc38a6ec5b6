package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/id"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file and persist the genesis state",
	Long: `Writes the config file with a fresh ledger ID and the given owner,
then mints the supply to the owner and stores the genesis snapshot.
Run it once per ledger.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		owner, _ := flags.GetString("owner")
		if _, err := parseAddress("owner", owner); err != nil {
			return err
		}

		v.Set("owner", owner)
		if cfg.Ledger.ID == "" {
			v.Set("ledger.id", id.NewLedgerID().String())
		}
		for _, name := range []string{"name", "symbol", "total-supply", "percentage-fees", "minimum-signatures"} {
			if f := flags.Lookup(name); f.Changed {
				v.Set("ledger."+strings.ReplaceAll(name, "-", "_"), f.Value.String())
			}
		}

		if err := v.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("write %s: %w", configPath, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return err
		}

		return withLedger(cmd, func(_ context.Context, l *feeledger.Ledger) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ledger   %s\n", l.ID())
			fmt.Fprintf(out, "token    %s (%s)\n", l.Name(), l.Symbol())
			fmt.Fprintf(out, "supply   %s\n", formatAmount(l.TotalSupply(), l.Symbol()))
			fmt.Fprintf(out, "owner    %s\n", l.Owner().Hex())
			fmt.Fprintf(out, "config   %s\n", configPath)
			return nil
		})
	},
}

func init() {
	defaults := feeledger.DefaultConfig()
	flags := initCmd.Flags()
	flags.String("owner", "", "address that receives the supply and is the first admin")
	flags.String("name", defaults.Name, "token name")
	flags.String("symbol", defaults.Symbol, "token symbol")
	flags.Uint64("total-supply", defaults.TotalSupply, "supply in whole tokens")
	flags.Uint64("percentage-fees", defaults.PercentageFees, "transfer fee percentage")
	flags.Uint64("minimum-signatures", defaults.MinimumSignatures, "upper bound for proposal thresholds")
	_ = initCmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(initCmd)
}
