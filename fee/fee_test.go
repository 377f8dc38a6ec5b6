package fee

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

var (
	owner = types.MustParseAddress("0x0000000000000000000000000000000000000001")
	alice = types.MustParseAddress("0x00000000000000000000000000000000000000a1")
	bob   = types.MustParseAddress("0x00000000000000000000000000000000000000b0")
)

// oracle computes floor(amount * pct / 100) with unbounded precision.
func oracle(amount *uint256.Int, pct uint64) *uint256.Int {
	n := new(big.Int).Mul(amount.ToBig(), new(big.Int).SetUint64(pct))
	n.Quo(n, big.NewInt(100))
	out, overflow := uint256.FromBig(n)
	if overflow {
		panic("oracle overflow")
	}
	return out
}

func TestCalculateMatchesOracle(t *testing.T) {
	top := types.MaxAmount()
	nearLimit := func(pct uint64) *uint256.Int {
		return new(uint256.Int).Div(top, uint256.NewInt(pct))
	}

	tests := []struct {
		name   string
		amount *uint256.Int
		pct    uint64
	}{
		{"Small", uint256.NewInt(100), 10},
		{"BelowOneUnit", uint256.NewInt(9), 10},
		{"Rounding", uint256.NewInt(199), 7},
		{"FullPercentage", uint256.NewInt(12345), 100},
		{"OnePercent", uint256.NewInt(99), 1},
		{"AtDirectLimit", nearLimit(37), 37},
		{"JustAboveDirectLimit", new(uint256.Int).AddUint64(nearLimit(37), 1), 37},
		{"MaxAmountFull", top, 100},
		{"MaxAmountOne", top, 1},
		{"MaxAmountOdd", top, 33},
		{"MaxMinusOne", new(uint256.Int).SubUint64(top, 1), 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, oracle(tt.amount, tt.pct), Calculate(tt.amount, tt.pct))
		})
	}
}

func TestCalculateSweep(t *testing.T) {
	top := types.MaxAmount()
	for pct := uint64(1); pct <= MaxPercentage; pct++ {
		for _, sub := range []uint64{0, 1, 50, 99, 100, 101} {
			amount := new(uint256.Int).SubUint64(top, sub)
			require.Equal(t, oracle(amount, pct), Calculate(amount, pct), "pct=%d sub=%d", pct, sub)

			limit := new(uint256.Int).Div(top, uint256.NewInt(pct))
			below := new(uint256.Int).SubUint64(limit, sub)
			require.Equal(t, oracle(below, pct), Calculate(below, pct), "pct=%d below limit by %d", pct, sub)
		}
	}
}

func TestCalculateBoundaries(t *testing.T) {
	require.True(t, Calculate(uint256.NewInt(1_000_000), 0).IsZero())
	require.True(t, Calculate(types.MaxAmount(), 0).IsZero())
	require.True(t, Calculate(uint256.NewInt(0), 50).IsZero())
	require.Equal(t, uint64(777), Calculate(uint256.NewInt(777), 100).Uint64())
	// 9 * 11 < 100
	require.True(t, Calculate(uint256.NewInt(9), 11).IsZero())
}

func newLedger(t *testing.T, supply uint64, pct uint64) *Ledger {
	t.Helper()
	accounts := balance.NewAccounts()
	require.NoError(t, accounts.Mint(owner, uint256.NewInt(supply)))
	l, err := New(accounts, pct)
	require.NoError(t, err)
	return l
}

func TestTransferChargesInitiator(t *testing.T) {
	l := newLedger(t, 10000, 10)

	charged, err := l.Transfer(owner, owner, alice, uint256.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, uint64(100), charged.Uint64())

	collectedBefore := l.CollectedFees()
	charged, err = l.Transfer(alice, alice, bob, uint256.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, uint64(10), charged.Uint64())

	require.Equal(t, uint64(890), l.BalanceOf(alice).Uint64())
	require.Equal(t, uint64(100), l.BalanceOf(bob).Uint64())
	require.Equal(t, uint64(10), new(uint256.Int).Sub(l.CollectedFees(), collectedBefore).Uint64())
	require.True(t, l.Reconciled())
}

func TestTransferRequiresAmountPlusFee(t *testing.T) {
	l := newLedger(t, 10000, 10)
	_, err := l.Transfer(owner, owner, alice, uint256.NewInt(1000))
	require.NoError(t, err)

	// 910 + 91 > 1000
	_, err = l.Transfer(alice, alice, bob, uint256.NewInt(910))
	require.ErrorIs(t, err, errs.ErrInsufficientBalance)
	require.Equal(t, uint64(1000), l.BalanceOf(alice).Uint64())
	require.True(t, l.BalanceOf(bob).IsZero())

	// 909 + 90 <= 1000
	_, err = l.Transfer(alice, alice, bob, uint256.NewInt(909))
	require.NoError(t, err)
	require.Equal(t, uint64(1), l.BalanceOf(alice).Uint64())
	require.True(t, l.Reconciled())
}

func TestTransferFeeCheckedFirst(t *testing.T) {
	l := newLedger(t, 100, 100)

	// The fee alone exceeds the balance, so the receiver is never checked.
	_, err := l.Transfer(owner, owner, types.ZeroAddress, uint256.NewInt(101))
	require.ErrorIs(t, err, errs.ErrInsufficientBalance)

	_, err = l.Transfer(owner, owner, types.ZeroAddress, uint256.NewInt(10))
	require.ErrorIs(t, err, errs.ErrInvalidReceiver)
	require.Equal(t, uint64(100), l.BalanceOf(owner).Uint64())
	require.True(t, l.CollectedFees().IsZero())
}

func TestZeroPayerIsNotCharged(t *testing.T) {
	l := newLedger(t, 100, 50)
	charged, err := l.DebitWithFee(types.ZeroAddress, uint256.NewInt(100))
	require.NoError(t, err)
	require.True(t, charged.IsZero())
	require.True(t, l.CollectedFees().IsZero())
}

func TestSpendCollectedFees(t *testing.T) {
	l := newLedger(t, 1000, 10)
	_, err := l.Transfer(owner, owner, alice, uint256.NewInt(500))
	require.NoError(t, err)
	require.Equal(t, uint64(50), l.CollectedFees().Uint64())

	err = l.SpendCollectedFees(bob, uint256.NewInt(51))
	require.ErrorIs(t, err, errs.ErrInsufficientFees)
	require.Equal(t, uint64(50), l.CollectedFees().Uint64())

	require.NoError(t, l.SpendCollectedFees(bob, uint256.NewInt(50)))
	require.True(t, l.CollectedFees().IsZero())
	require.Equal(t, uint64(50), l.BalanceOf(bob).Uint64())
	require.True(t, l.Reconciled())
}

func TestSetPercentage(t *testing.T) {
	l := newLedger(t, 1, 10)
	require.ErrorIs(t, l.SetPercentage(101), errs.ErrPercentageFeesTooHigh)
	require.Equal(t, uint64(10), l.Percentage())
	require.NoError(t, l.SetPercentage(100))
	require.Equal(t, uint64(100), l.Percentage())

	_, err := New(balance.NewAccounts(), 101)
	require.ErrorIs(t, err, errs.ErrPercentageFeesTooHigh)
}

func TestRestore(t *testing.T) {
	l := newLedger(t, 1000, 10)
	_, err := l.Transfer(owner, owner, alice, uint256.NewInt(100))
	require.NoError(t, err)

	accounts := balance.NewAccounts()
	require.NoError(t, accounts.Restore(l.Accounts().Export()))
	restored, err := New(accounts, 0)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(l.Export()))
	require.Equal(t, l.CollectedFees(), restored.CollectedFees())
	require.Equal(t, uint64(10), restored.Percentage())

	bad := l.Export()
	bad.CollectedFees = uint256.NewInt(11)
	require.ErrorIs(t, restored.Restore(bad), errs.ErrInvalidConfig)
	require.Equal(t, uint64(10), restored.CollectedFees().Uint64())
}
