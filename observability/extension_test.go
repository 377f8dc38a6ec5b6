package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/observability"
	"github.com/xraph/feeledger/store/memory"
	"github.com/xraph/feeledger/types"
)

var (
	owner = types.BytesToAddress([]byte{0x01})
	alice = types.BytesToAddress([]byte{0xa1})
	bob   = types.BytesToAddress([]byte{0xb0})
)

func TestMetricsTrackLedgerActivity(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

	cfg := feeledger.DefaultConfig()
	cfg.Owner = owner
	cfg.PercentageFees = 10

	l, err := feeledger.New(memory.New(), cfg,
		feeledger.WithPlugin(metrics),
		feeledger.WithJournalConfig(16, time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	t.Cleanup(func() { _ = l.Stop() })

	require.NoError(t, l.Transfer(ctx, owner, alice, uint256.NewInt(1_000)))
	id, err := l.ProposeCollection(ctx, owner, bob, uint256.NewInt(40), 1)
	require.NoError(t, err)
	require.NoError(t, l.SignProposal(ctx, owner, id))
	require.NoError(t, l.ExecuteProposal(ctx, owner, id))
	require.Error(t, l.AddAdmin(ctx, alice, bob))
	require.Error(t, l.ExecuteProposal(ctx, owner, id))
	require.NoError(t, l.Flush(ctx))

	require.InDelta(t, 1, value(metrics.Transfers), 0)
	require.InDelta(t, 1, value(metrics.FeesCollected), 0)
	require.InDelta(t, 1, value(metrics.Payouts), 0)
	require.InDelta(t, 1, value(metrics.ProposalsCreated), 0)
	require.InDelta(t, 1, value(metrics.ProposalsSigned), 0)
	require.InDelta(t, 1, value(metrics.ProposalsExecuted), 0)
	require.InDelta(t, 1, value(metrics.UnauthorizedOperations), 0)
	require.InDelta(t, 1, value(metrics.OperationsRejected), 0)

	// genesis, fee, transfer, created, signed, payout, executed
	require.InDelta(t, 7, value(metrics.JournalEventsFlushed), 0)
}

func value(m any) float64 {
	return testutil.ToFloat64(m.(prometheus.Collector))
}

func TestFailureClassification(t *testing.T) {
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(prometheus.NewRegistry()))
	ctx := context.Background()

	require.NoError(t, metrics.OnOperationFailed(ctx, "add_admin", alice, errs.OnlyOwner(alice)))
	require.NoError(t, metrics.OnOperationFailed(ctx, "sign_proposal", alice, errs.OnlyAdmin(alice)))
	require.NoError(t, metrics.OnOperationFailed(ctx, "transfer", alice, errs.InsufficientBalance(alice, uint256.NewInt(1), uint256.NewInt(2))))

	require.InDelta(t, 2, value(metrics.UnauthorizedOperations), 0)
	require.InDelta(t, 1, value(metrics.OperationsRejected), 0)
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := observability.NewPrometheusFactory(reg).Counter("feeledger.token.transfers")
	second := observability.NewPrometheusFactory(reg).Counter("feeledger.token.transfers")
	first.Inc()
	second.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "feeledger_token_transfers_total", families[0].GetName())
	require.InDelta(t, 2, families[0].GetMetric()[0].GetCounter().GetValue(), 0)
}
