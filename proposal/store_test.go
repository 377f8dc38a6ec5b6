package proposal_test

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/fee"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/role"
	"github.com/xraph/feeledger/types"
)

var (
	owner    = types.MustParseAddress("0x0000000000000000000000000000000000000001")
	alice    = types.MustParseAddress("0x00000000000000000000000000000000000000a1")
	bob      = types.MustParseAddress("0x00000000000000000000000000000000000000b0")
	outsider = types.MustParseAddress("0x00000000000000000000000000000000000000ff")
)

type fixture struct {
	roles *role.Registry
	fees  *fee.Ledger
	store *proposal.Store
}

func newFixture(t *testing.T, minSigs uint64) *fixture {
	t.Helper()
	accounts := balance.NewAccounts()
	require.NoError(t, accounts.Mint(owner, uint256.NewInt(10_000)))
	fees, err := fee.New(accounts, 10)
	require.NoError(t, err)
	roles, err := role.NewRegistry(owner, minSigs)
	require.NoError(t, err)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &fixture{roles: roles, fees: fees, store: proposal.NewStore(roles, fees, now)}
}

// fund moves enough through the ledger to collect at least want in fees.
func (f *fixture) fund(t *testing.T, want uint64) {
	t.Helper()
	for f.fees.CollectedFees().Uint64() < want {
		_, err := f.fees.Transfer(owner, owner, bob, uint256.NewInt(100))
		require.NoError(t, err)
	}
}

func (f *fixture) propose(t *testing.T, caller types.Address, value, minSigs uint64) uint64 {
	t.Helper()
	p, err := f.store.Propose(caller, alice, uint256.NewInt(value), minSigs)
	require.NoError(t, err)
	return p.ID
}

func TestProposeValidation(t *testing.T) {
	f := newFixture(t, 2)

	tests := []struct {
		name    string
		caller  types.Address
		to      types.Address
		value   uint64
		minSigs uint64
		want    error
	}{
		{"NotAdmin", outsider, alice, 1, 1, errs.ErrOnlyAdmin},
		{"ZeroRecipient", owner, types.ZeroAddress, 1, 1, errs.ErrCannotProposeToZeroAddress},
		{"ZeroValue", owner, alice, 0, 1, errs.ErrCannotProposeWithZeroValue},
		{"ThresholdTooLow", owner, alice, 1, 0, errs.ErrMinimumSignaturesTooLow},
		{"ThresholdTooHigh", owner, alice, 1, 3, errs.ErrMinimumSignaturesTooHigh},
		// Authorization wins over every input problem.
		{"NotAdminAndZeroValue", outsider, types.ZeroAddress, 0, 0, errs.ErrOnlyAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.Propose(tt.caller, tt.to, uint256.NewInt(tt.value), tt.minSigs)
			require.ErrorIs(t, err, tt.want)
		})
	}
	require.Zero(t, f.store.Count())
	require.Empty(t, f.store.Open())
}

func TestProposeAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t, 1)
	for want := uint64(0); want < 3; want++ {
		require.Equal(t, want, f.propose(t, owner, 100, 1))
	}
	require.Equal(t, uint64(3), f.store.Count())
	require.ElementsMatch(t, []uint64{0, 1, 2}, f.store.Open())

	p, err := f.store.Get(1)
	require.NoError(t, err)
	require.Equal(t, alice, p.To)
	require.Equal(t, proposal.StatusOpen, p.Status())
	require.False(t, p.CreatedAt.IsZero())
}

func TestSignThenExecuteFailsWithoutFees(t *testing.T) {
	f := newFixture(t, 1)
	id := f.propose(t, owner, 100, 1)
	require.Equal(t, []uint64{0}, f.store.Open())

	_, err := f.store.Sign(owner, id)
	require.NoError(t, err)
	require.True(t, f.store.HasSigned(id, owner))

	_, err = f.store.Execute(owner, id)
	require.ErrorIs(t, err, errs.ErrInsufficientFees)

	p, err := f.store.Get(id)
	require.NoError(t, err)
	require.True(t, p.IsOpen())
	require.Equal(t, []uint64{0}, f.store.Open())
}

func TestExecutePaysOut(t *testing.T) {
	f := newFixture(t, 1)
	id := f.propose(t, owner, 100, 1)
	_, err := f.store.Sign(owner, id)
	require.NoError(t, err)

	f.fund(t, 100)
	before := f.fees.CollectedFees()
	aliceBefore := f.fees.BalanceOf(alice)
	bobBefore := f.fees.BalanceOf(bob)

	p, err := f.store.Execute(owner, id)
	require.NoError(t, err)
	require.True(t, p.Executed)
	require.NotNil(t, p.ExecutedAt)
	require.Empty(t, f.store.Open())

	require.Equal(t, new(uint256.Int).SubUint64(before, 100), f.fees.CollectedFees())
	require.Equal(t, new(uint256.Int).AddUint64(aliceBefore, 100), f.fees.BalanceOf(alice))
	require.Equal(t, bobBefore, f.fees.BalanceOf(bob))
	require.True(t, f.fees.Reconciled())

	_, err = f.store.Execute(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyExecuted)
	_, err = f.store.Cancel(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyExecuted)
	_, err = f.store.Sign(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyExecuted)
}

func TestExecuteNeedsThreshold(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.roles.AddAdmin(owner, alice)
	require.NoError(t, err)
	f.fund(t, 50)

	id := f.propose(t, owner, 50, 2)
	_, err = f.store.Execute(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalNotEnoughSignatures)

	_, err = f.store.Sign(owner, id)
	require.NoError(t, err)
	_, err = f.store.Execute(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalNotEnoughSignatures)

	_, err = f.store.Sign(alice, id)
	require.NoError(t, err)
	_, err = f.store.Execute(alice, id)
	require.NoError(t, err)
}

func TestThresholdIsFixedAtCreation(t *testing.T) {
	f := newFixture(t, 3)
	f.fund(t, 10)
	id := f.propose(t, owner, 10, 2)

	// Lowering the global bound does not relax existing proposals.
	require.NoError(t, f.roles.SetMinimumSignatures(owner, 1))
	_, err := f.store.Sign(owner, id)
	require.NoError(t, err)

	p, err := f.store.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p.MinSignatures)
	_, err = f.store.Execute(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalNotEnoughSignatures)
}

func TestSignatureOrderAndDuplicates(t *testing.T) {
	f := newFixture(t, 1)
	for _, a := range []types.Address{alice, bob} {
		_, err := f.roles.AddAdmin(owner, a)
		require.NoError(t, err)
	}
	id := f.propose(t, owner, 1, 1)

	for _, signer := range []types.Address{bob, owner, alice} {
		_, err := f.store.Sign(signer, id)
		require.NoError(t, err)
	}
	_, err := f.store.Sign(owner, id)
	require.ErrorIs(t, err, errs.ErrProposalAlreadySigned)

	require.Equal(t, []types.Address{bob, owner, alice}, f.store.Signatures(id))
	p, err := f.store.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint64(3), p.SignatureCount())

	_, err = f.store.Sign(outsider, id)
	require.ErrorIs(t, err, errs.ErrOnlyAdmin)
}

func TestCancelRemovesFromOpenIndex(t *testing.T) {
	f := newFixture(t, 1)
	for i := 0; i < 3; i++ {
		f.propose(t, owner, 100, 1)
	}

	_, err := f.roles.AddAdmin(owner, alice)
	require.NoError(t, err)
	p, err := f.store.Cancel(alice, 1)
	require.NoError(t, err)
	require.Equal(t, alice, *p.CancelledBy)

	require.ElementsMatch(t, []uint64{0, 2}, f.store.Open())
	require.Equal(t, 2, f.store.OpenCount())

	_, err = f.store.Sign(owner, 1)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyCancelled)
	_, err = f.store.Cancel(owner, 1)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyCancelled)
	_, err = f.store.Execute(owner, 1)
	require.ErrorIs(t, err, errs.ErrProposalAlreadyCancelled)

	// Records are never deleted.
	require.Equal(t, uint64(3), f.store.Count())
	all := f.store.All()
	require.Equal(t, 3, all.Len())
	require.Equal(t, alice, all.CancelledBy[1])
	require.Equal(t, types.ZeroAddress, all.CancelledBy[0])
}

func TestUnknownProposal(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.store.Get(7)
	require.ErrorIs(t, err, errs.ErrProposalNotFound)
	_, err = f.store.Sign(owner, 7)
	require.ErrorIs(t, err, errs.ErrProposalNotFound)
	_, err = f.store.Execute(owner, 7)
	require.ErrorIs(t, err, errs.ErrProposalNotFound)
	_, err = f.store.Cancel(owner, 7)
	require.ErrorIs(t, err, errs.ErrProposalNotFound)

	require.False(t, f.store.HasSigned(7, owner))
	require.NotNil(t, f.store.Signatures(7))
	require.Empty(t, f.store.Signatures(7))
}

func TestGetReturnsCopy(t *testing.T) {
	f := newFixture(t, 1)
	id := f.propose(t, owner, 5, 1)

	p, err := f.store.Get(id)
	require.NoError(t, err)
	p.Value.SetUint64(999)
	p.Signers = append(p.Signers, outsider)

	again, err := f.store.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint64(5), again.Value.Uint64())
	require.Empty(t, again.Signers)
}

func TestList(t *testing.T) {
	f := newFixture(t, 1)
	for i := 0; i < 4; i++ {
		f.propose(t, owner, 1, 1)
	}
	_, err := f.store.Cancel(owner, 2)
	require.NoError(t, err)

	open := f.store.List(proposal.ListOpts{Status: proposal.StatusOpen})
	require.Len(t, open, 3)
	require.Equal(t, uint64(3), open[2].ID)

	page := f.store.List(proposal.ListOpts{Offset: 1, Limit: 2})
	require.Len(t, page, 2)
	require.Equal(t, uint64(1), page[0].ID)

	cancelled := f.store.List(proposal.ListOpts{Status: proposal.StatusCancelled})
	require.Len(t, cancelled, 1)
	require.Equal(t, uint64(2), cancelled[0].ID)
}

func TestExportRestore(t *testing.T) {
	f := newFixture(t, 1)
	for i := 0; i < 3; i++ {
		f.propose(t, owner, 1, 1)
	}
	_, err := f.store.Sign(owner, 0)
	require.NoError(t, err)
	_, err = f.store.Cancel(owner, 0)
	require.NoError(t, err)

	state := f.store.Export()
	g := newFixture(t, 1)
	require.NoError(t, g.store.Restore(state))
	require.Equal(t, f.store.Open(), g.store.Open())
	require.Equal(t, f.store.All(), g.store.All())
	require.Equal(t, []types.Address{owner}, g.store.Signatures(0))

	// The next ID continues the sequence.
	require.Equal(t, uint64(3), g.propose(t, owner, 1, 1))

	bad := f.store.Export()
	bad.Open = append(bad.Open, 0)
	require.ErrorIs(t, g.store.Restore(bad), errs.ErrInvalidConfig)
}
