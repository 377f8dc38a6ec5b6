package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger"
	audithook "github.com/xraph/feeledger/audit_hook"
	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/store/memory"
	"github.com/xraph/feeledger/types"
)

var (
	owner = types.BytesToAddress([]byte{0x01})
	alice = types.BytesToAddress([]byte{0xa1})
	bob   = types.BytesToAddress([]byte{0xb0})
)

type trail struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (tr *trail) Record(_ context.Context, e *audithook.AuditEvent) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, e)
	return nil
}

func (tr *trail) actions() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]string, 0, len(tr.events))
	for _, e := range tr.events {
		out = append(out, e.Action)
	}
	return out
}

func (tr *trail) last() *audithook.AuditEvent {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.events[len(tr.events)-1]
}

func TestLedgerOperationsAreAudited(t *testing.T) {
	ctx := context.Background()
	tr := &trail{}

	cfg := feeledger.DefaultConfig()
	cfg.Owner = owner
	cfg.PercentageFees = 10

	l, err := feeledger.New(memory.New(), cfg,
		feeledger.WithPlugin(audithook.New(tr)),
		feeledger.WithJournalConfig(16, time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	t.Cleanup(func() { _ = l.Stop() })

	require.NoError(t, l.Transfer(ctx, owner, alice, uint256.NewInt(1_000)))
	require.NoError(t, l.AddAdmin(ctx, owner, alice))
	id, err := l.ProposeCollection(ctx, alice, bob, uint256.NewInt(50), 1)
	require.NoError(t, err)
	require.NoError(t, l.SignProposal(ctx, owner, id))
	require.NoError(t, l.ExecuteProposal(ctx, alice, id))

	require.Equal(t, []string{
		audithook.ActionFeesCollected,
		audithook.ActionTransfer,
		audithook.ActionAdminAdded,
		audithook.ActionProposalCreated,
		audithook.ActionProposalSigned,
		audithook.ActionPayout,
		audithook.ActionProposalExecuted,
	}, tr.actions())

	executed := tr.last()
	require.Equal(t, audithook.ResourceProposal, executed.Resource)
	require.Equal(t, "0", executed.ResourceID)
	require.Equal(t, audithook.SeverityWarning, executed.Severity)
	require.Equal(t, "50", executed.Metadata["value"])

	err = l.SignProposal(ctx, bob, id)
	require.ErrorIs(t, err, errs.ErrOnlyAdmin)

	rejected := tr.last()
	require.Equal(t, audithook.ActionUnauthorizedOperation, rejected.Action)
	require.Equal(t, audithook.OutcomeFailure, rejected.Outcome)
	require.Equal(t, bob.Hex(), rejected.Actor)
	require.Equal(t, "sign_proposal", rejected.Metadata["operation"])
	require.NotEmpty(t, rejected.Reason)
}

func TestRejectedOperationCarriesProposal(t *testing.T) {
	tr := &trail{}
	ext := audithook.New(tr)

	err := ext.OnOperationFailed(context.Background(), "execute_proposal", owner, errs.ProposalNotEnoughSignatures(3, 1, 2))
	require.NoError(t, err)

	e := tr.last()
	require.Equal(t, audithook.ActionOperationRejected, e.Action)
	require.Equal(t, audithook.SeverityInfo, e.Severity)
	require.Equal(t, audithook.ResourceProposal, e.Resource)
	require.Equal(t, uint64(3), e.Metadata["proposal_id"])
}

func TestActionFiltering(t *testing.T) {
	ctx := context.Background()
	p := &proposal.Proposal{ID: 7, To: bob, Value: uint256.NewInt(5), MinSignatures: 1}

	t.Run("WithoutTransfers", func(t *testing.T) {
		tr := &trail{}
		ext := audithook.New(tr, audithook.WithoutTransfers())

		require.NoError(t, ext.OnTransfer(ctx, owner, alice, uint256.NewInt(1)))
		require.NoError(t, ext.OnApproval(ctx, owner, alice, uint256.NewInt(1)))
		require.NoError(t, ext.OnTransfer(ctx, types.ZeroAddress, alice, uint256.NewInt(1)))
		require.NoError(t, ext.OnProposalCancelled(ctx, p))

		require.Equal(t, []string{audithook.ActionPayout, audithook.ActionProposalCancelled}, tr.actions())
	})

	t.Run("WithEnabledActions", func(t *testing.T) {
		tr := &trail{}
		ext := audithook.New(tr, audithook.WithEnabledActions(audithook.ActionPercentageFeesUpdated))

		require.NoError(t, ext.OnSettingsChanged(ctx, feeledger.SettingMinimumSignatures, 2))
		require.NoError(t, ext.OnSettingsChanged(ctx, feeledger.SettingPercentageFees, 5))
		require.NoError(t, ext.OnAdminChanged(ctx, alice, false))

		require.Equal(t, []string{audithook.ActionPercentageFeesUpdated}, tr.actions())
		require.Equal(t, uint64(5), tr.last().Metadata["value"])
	})
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	calls := 0
	ext := audithook.New(audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		calls++
		return errors.New("backend down")
	}))

	require.NoError(t, ext.OnFeesCollected(context.Background(), alice, uint256.NewInt(1), uint256.NewInt(9)))
	require.Equal(t, 1, calls)
}
