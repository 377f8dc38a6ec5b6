package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/types"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "List or change the admin set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withLedger(cmd, func(_ context.Context, l *feeledger.Ledger) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "owner               %s\n", l.Owner().Hex())
			fmt.Fprintf(out, "minimum signatures  %d\n", l.MinimumSignatures())
			for _, a := range l.Admins() {
				fmt.Fprintf(out, "admin               %s\n", a.Hex())
			}
			return nil
		})
	},
}

func adminChange(use, short string, apply func(l *feeledger.Ledger, ctx context.Context, caller, admin types.Address) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			admin, err := parseAddress("address", args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
				if err := apply(l, ctx, from, admin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admins: %d\n", len(l.Admins()))
				return nil
			})
		},
	}
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change owner-controlled settings",
}

func settingChange(use, short string, apply func(l *feeledger.Ledger, ctx context.Context, caller types.Address, n uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("value %q: %w", args[0], err)
			}
			return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
				if err := apply(l, ctx, from, n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s set to %d\n", use, n)
				return nil
			})
		},
	}
}

func init() {
	adminCmd.AddCommand(
		adminChange("add", "Grant admin rights (owner only)", (*feeledger.Ledger).AddAdmin),
		adminChange("remove", "Revoke admin rights (owner only)", (*feeledger.Ledger).RemoveAdmin),
	)
	settingsCmd.AddCommand(
		settingChange("min-sigs", "Set the upper bound for proposal thresholds (owner only)", (*feeledger.Ledger).SetMinimumSignatures),
		settingChange("fees", "Set the transfer fee percentage (owner only)", (*feeledger.Ledger).UpdatePercentageFees),
	)
	RootCmd.AddCommand(adminCmd, settingsCmd)
}
