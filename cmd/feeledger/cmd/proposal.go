package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

var proposalCmd = &cobra.Command{
	Use:     "proposal",
	Aliases: []string{"proposals"},
	Short:   "Propose, sign, execute or cancel payouts from the fee pool",
}

var proposeCmd = &cobra.Command{
	Use:   "propose <to> <amount> <min-signatures>",
	Short: "Open a payout proposal (admin only)",
	Args:  cobra.ExactArgs(3),
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
		minSigs, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("min-signatures %q: %w", args[2], err)
		}

		return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
			id, err := l.ProposeCollection(ctx, from, to, amount, minSigs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "proposal %d opened\n", id)
			return nil
		})
	},
}

// proposalStep builds sign, execute and cancel, which share their shape.
func proposalStep(use, short, done string, apply func(l *feeledger.Ledger, ctx context.Context, id uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
				if err := apply(l, ctx, id); err != nil {
					return err
				}
				p, err := l.Proposal(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "proposal %d %s (%d/%d signatures)\n",
					id, done, p.SignatureCount(), p.MinSignatures)
				return nil
			})
		},
	}
}

// asCaller resolves the caller before applying fn.
func asCaller(fn func(l *feeledger.Ledger, ctx context.Context, caller types.Address, id uint64) error) func(*feeledger.Ledger, context.Context, uint64) error {
	return func(l *feeledger.Ledger, ctx context.Context, id uint64) error {
		from, err := caller()
		if err != nil {
			return err
		}
		return fn(l, ctx, from, id)
	}
}

var proposalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a proposal and its signers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		return withLedger(cmd, func(_ context.Context, l *feeledger.Ledger) error {
			p, err := l.Proposal(id)
			if err != nil {
				return err
			}
			printProposal(cmd.OutOrStdout(), p, l.Symbol())
			for i, s := range l.ProposalSignatures(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "  signer %d  %s\n", i+1, s.Hex())
			}
			return nil
		})
	},
}

var proposalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		return withLedger(cmd, func(_ context.Context, l *feeledger.Ledger) error {
			out := cmd.OutOrStdout()
			ps := l.ListProposals(proposal.ListOpts{Status: proposal.Status(status), Limit: limit, Offset: offset})
			for _, p := range ps {
				printProposal(out, p, l.Symbol())
			}
			fmt.Fprintf(out, "%d of %d proposals, %d open\n", len(ps), l.ProposalsCount(), l.OpenProposalsCount())
			return nil
		})
	},
}

func printProposal(w io.Writer, p *proposal.Proposal, symbol string) {
	fmt.Fprintf(w, "#%-4d %-9s %s -> %s  %d/%d signatures  created %s\n",
		p.ID, p.Status(), formatAmount(p.Value, symbol), p.To.Hex(),
		p.SignatureCount(), p.MinSignatures, humanize.Time(p.CreatedAt))
}

func init() {
	proposalListCmd.Flags().String("status", "", "open, executed or cancelled")
	proposalListCmd.Flags().Int("limit", 0, "maximum proposals to list")
	proposalListCmd.Flags().Int("offset", 0, "proposals to skip")

	proposalCmd.AddCommand(
		proposeCmd,
		proposalStep("sign", "Sign an open proposal (admin only)", "signed", asCaller((*feeledger.Ledger).SignProposal)),
		proposalStep("execute", "Pay a fully signed proposal (admin only)", "executed", asCaller((*feeledger.Ledger).ExecuteProposal)),
		proposalStep("cancel", "Cancel an open proposal (admin only)", "cancelled", asCaller((*feeledger.Ledger).CancelProposal)),
		proposalShowCmd,
		proposalListCmd,
	)
	RootCmd.AddCommand(proposalCmd)
}
