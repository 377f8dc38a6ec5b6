package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the event journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		kind, _ := flags.GetString("kind")
		after, _ := flags.GetUint64("after")
		limit, _ := flags.GetInt("limit")

		opts := event.ListOpts{Kind: event.Kind(kind), AfterSeq: after, Limit: limit}
		if flags.Changed("proposal") {
			pid, _ := flags.GetUint64("proposal")
			opts.ProposalID = &pid
		}

		return withLedger(cmd, func(ctx context.Context, l *feeledger.Ledger) error {
			events, err := l.Events(ctx, opts)
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Fprintln(cmd.OutOrStdout(), describeEvent(e, l.Symbol()))
			}
			return nil
		})
	},
}

// describeEvent renders one journal line.
func describeEvent(e *event.Event, symbol string) string {
	head := fmt.Sprintf("%6d  %-26s  %-14s", e.Seq, string(e.Kind), humanize.Time(e.Timestamp))

	var body string
	switch e.Kind {
	case event.KindTransfer:
		body = fmt.Sprintf("%s -> %s  %s", e.From.Hex(), e.To.Hex(), formatAmount(orZero(e.Value), symbol))
		if e.ProposalID != nil {
			body += "  payout of #" + strconv.FormatUint(*e.ProposalID, 10)
		}
	case event.KindFeesCollected:
		body = fmt.Sprintf("%s paid %s", e.From.Hex(), formatAmount(orZero(e.Value), symbol))
	case event.KindApproval:
		body = fmt.Sprintf("%s allows %s  %s", e.From.Hex(), e.To.Hex(), formatAllowance(orZero(e.Value), symbol))
	case event.KindProposalCreated:
		body = fmt.Sprintf("#%d by %s  %s -> %s  needs %d", ref(e), e.Admin.Hex(), formatAmount(orZero(e.Value), symbol), e.To.Hex(), e.MinSignatures)
	case event.KindProposalSigned, event.KindProposalExecuted, event.KindProposalCancelled:
		body = fmt.Sprintf("#%d by %s", ref(e), e.Admin.Hex())
	case event.KindAdminAdded, event.KindAdminRemoved:
		body = e.Admin.Hex()
	case event.KindMinimumSignaturesUpdated:
		body = strconv.FormatUint(e.MinSignatures, 10)
	case event.KindPercentageFeesUpdated:
		body = strconv.FormatUint(e.Percentage, 10) + "%"
	}
	return head + "  " + body
}

func ref(e *event.Event) uint64 {
	if e.ProposalID == nil {
		return 0
	}
	return *e.ProposalID
}

func orZero(v *types.Amount) *types.Amount {
	if v == nil {
		return types.Zero()
	}
	return v
}

func init() {
	flags := eventsCmd.Flags()
	flags.String("kind", "", "only events of this kind")
	flags.Uint64("proposal", 0, "only events of this proposal")
	flags.Uint64("after", 0, "only events after this sequence number")
	flags.Int("limit", 0, "maximum events to list")

	RootCmd.AddCommand(eventsCmd)
}
