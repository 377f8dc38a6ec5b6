package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show a balance, or the supply and fee pool without an address",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(_ context.Context, l *feeledger.Ledger) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				addr, err := parseAddress("address", args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", addr.Hex(), formatAmount(l.BalanceOf(addr), l.Symbol()))
				return nil
			}

			fmt.Fprintf(out, "supply          %s\n", formatAmount(l.TotalSupply(), l.Symbol()))
			fmt.Fprintf(out, "collected fees  %s\n", formatAmount(l.CollectedFees(), l.Symbol()))
			fmt.Fprintf(out, "fee             %d%%\n", l.PercentageFees())
			for _, h := range l.Holders() {
				fmt.Fprintf(out, "%s  %s\n", h.Hex(), formatAmount(l.BalanceOf(h), l.Symbol()))
			}
			return nil
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Send tokens; the caller also pays the fee",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := caller()
		if err != nil {
			return err
		}
		to, err := parseAddress("to", args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}

		return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
			fee := l.QuoteFee(from, amount)
			if err := l.Transfer(ctx, from, to, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s, fee %s\n",
				formatAmount(amount, l.Symbol()), to.Hex(), formatAmount(fee, l.Symbol()))
			return nil
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Set a spender's allowance over the caller's balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := caller()
		if err != nil {
			return err
		}
		spender, err := parseAddress("spender", args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}

		return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
			if err := l.Approve(ctx, owner, spender, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s may spend %s of %s\n",
				spender.Hex(), formatAllowance(amount, l.Symbol()), owner.Hex())
			return nil
		})
	},
}

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from <from> <to> <amount>",
	Short: "Spend an allowance; the fee is charged to from",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		spender, err := caller()
		if err != nil {
			return err
		}
		from, err := parseAddress("from", args[0])
		if err != nil {
			return err
		}
		to, err := parseAddress("to", args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}

		return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
			if err := l.TransferFrom(ctx, spender, from, to, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s from %s to %s, allowance left %s\n",
				formatAmount(amount, l.Symbol()), from.Hex(), to.Hex(),
				formatAllowance(l.Allowance(from, spender), l.Symbol()))
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(balanceCmd, transferCmd, approveCmd, transferFromCmd)
}
