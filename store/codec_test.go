package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/fee"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/role"
	"github.com/xraph/feeledger/snapshot"
	"github.com/xraph/feeledger/types"
)

func TestAmountColumns(t *testing.T) {
	v, err := DecodeAmount("")
	require.NoError(t, err)
	require.Nil(t, v)

	top := types.MaxAmount()
	got, err := DecodeAmount(EncodeAmount(top))
	require.NoError(t, err)
	require.True(t, got.Eq(top))

	_, err = DecodeAmount("0x10")
	require.Error(t, err)
}

func TestAddressColumns(t *testing.T) {
	require.Empty(t, EncodeAddress(types.ZeroAddress))

	zero, err := DecodeAddress("")
	require.NoError(t, err)
	require.True(t, types.IsZero(zero))

	a := types.BytesToAddress([]byte{0xa1})
	got, err := DecodeAddress(EncodeAddress(a))
	require.NoError(t, err)
	require.Equal(t, a, got)

	_, err = DecodeAddress("not-an-address")
	require.Error(t, err)
}

func TestStatePreservesWideAmounts(t *testing.T) {
	owner := types.BytesToAddress([]byte{0x01})
	to := types.BytesToAddress([]byte{0xb0})
	supply := types.MaxAmount()

	st := snapshot.State{
		Name:   "Fee Ledger",
		Symbol: "FEE",
		Accounts: balance.State{
			TotalSupply: supply,
			Balances:    []balance.Holding{{Address: owner, Amount: new(uint256.Int).Sub(supply, uint256.NewInt(7))}},
		},
		Fees:  fee.State{Percentage: 1, CollectedFees: uint256.NewInt(7)},
		Roles: role.State{Owner: owner, Admins: []types.Address{owner}, MinimumSignatures: 1},
		Proposals: proposal.State{
			Proposals: []*proposal.Proposal{{ID: 0, To: to, Value: uint256.NewInt(3), MinSignatures: 1, Signers: []types.Address{owner}}},
			Open:      []uint64{0},
		},
	}

	raw, err := EncodeState(st)
	require.NoError(t, err)

	back, err := DecodeState(raw)
	require.NoError(t, err)
	require.Equal(t, "FEE", back.Symbol)
	require.True(t, back.Accounts.TotalSupply.Eq(supply))
	require.True(t, back.Accounts.Balances[0].Amount.Eq(st.Accounts.Balances[0].Amount))
	require.Equal(t, owner, back.Roles.Owner)
	require.Len(t, back.Proposals.Proposals, 1)
	require.Equal(t, []types.Address{owner}, back.Proposals.Proposals[0].Signers)
	require.Equal(t, []uint64{0}, back.Proposals.Open)

	_, err = DecodeState("{")
	require.Error(t, err)
}
