package feeledger_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/store/memory"
	"github.com/xraph/feeledger/types"
)

// TestDocumentationExamples verifies that the package documentation
// examples work as written.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		ctx := context.Background()

		cfg := feeledger.DefaultConfig()
		cfg.Owner = feeledger.MustParseAddress("0x00000000000000000000000000000000000000aa")

		l, err := feeledger.New(memory.New(), cfg,
			feeledger.WithLogger(slog.Default()),
			feeledger.WithJournalConfig(100, 5*time.Second),
		)
		require.NoError(t, err)
		require.NoError(t, l.Start(ctx))
		defer l.Stop() //nolint:errcheck // example

		admin := cfg.Owner
		other := feeledger.MustParseAddress("0x00000000000000000000000000000000000000bb")
		recipient := feeledger.MustParseAddress("0x00000000000000000000000000000000000000cc")

		require.NoError(t, l.AddAdmin(ctx, admin, other))
		require.NoError(t, l.SetMinimumSignatures(ctx, admin, 2))

		// Fund the pool: 1% of 10,000 units.
		require.NoError(t, l.Transfer(ctx, admin, other, feeledger.NewAmount(10_000)))
		require.Equal(t, uint64(100), l.CollectedFees().Uint64())

		amount := feeledger.NewAmount(100)
		id, err := l.ProposeCollection(ctx, admin, recipient, amount, 2)
		require.NoError(t, err)
		require.NoError(t, l.SignProposal(ctx, admin, id))
		require.NoError(t, l.SignProposal(ctx, other, id))
		require.NoError(t, l.ExecuteProposal(ctx, admin, id))

		require.Equal(t, uint64(100), l.BalanceOf(recipient).Uint64())
		require.True(t, l.CollectedFees().IsZero())

		executed, err := l.Events(ctx, event.ListOpts{Kind: event.KindProposalExecuted})
		require.NoError(t, err)
		require.Len(t, executed, 1)
		require.Equal(t, "evt", string(executed[0].ID.Prefix()))
	})

	t.Run("AmountExamples", func(t *testing.T) {
		whole, overflow := types.ScaleWhole(3, feeledger.Decimals)
		require.False(t, overflow)
		require.Equal(t, "3000000000000000000", whole.Dec())
		require.Equal(t, "3", types.FormatUnits(whole, feeledger.Decimals))

		parsed, err := feeledger.ParseAmount("1500000000000000000")
		require.NoError(t, err)
		require.Equal(t, "1.5", types.FormatUnits(parsed, feeledger.Decimals))
	})
}
