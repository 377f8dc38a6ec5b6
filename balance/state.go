package balance

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// Holding is one non-zero balance.
type Holding struct {
	Address types.Address `json:"address"`
	Amount  *uint256.Int  `json:"amount"`
}

// Grant is one non-zero allowance.
type Grant struct {
	Owner   types.Address `json:"owner"`
	Spender types.Address `json:"spender"`
	Amount  *uint256.Int  `json:"amount"`
}

// State is a detached copy of an Accounts book.
type State struct {
	TotalSupply *uint256.Int `json:"total_supply"`
	Balances    []Holding    `json:"balances"`
	Allowances  []Grant      `json:"allowances,omitempty"`
}

// Export copies the book into a State.
func (a *Accounts) Export() State {
	state := State{TotalSupply: a.TotalSupply()}
	for _, addr := range a.Holders() {
		state.Balances = append(state.Balances, Holding{Address: addr, Amount: a.BalanceOf(addr)})
	}
	for owner, spenders := range a.allowances {
		for spender, amount := range spenders {
			state.Allowances = append(state.Allowances, Grant{
				Owner:   owner,
				Spender: spender,
				Amount:  types.Clone(amount),
			})
		}
	}
	return state
}

// Restore replaces the book with state. Holdings may not exceed the
// recorded supply; the remainder is held outside the book.
func (a *Accounts) Restore(state State) error {
	supply := types.Clone(state.TotalSupply)
	balances := make(map[types.Address]*uint256.Int, len(state.Balances))
	total := types.Zero()

	for _, h := range state.Balances {
		if types.IsZero(h.Address) {
			return fmt.Errorf("%w: balance held by zero address", errs.ErrInvalidConfig)
		}
		var overflow bool
		if total, overflow = new(uint256.Int).AddOverflow(total, types.Clone(h.Amount)); overflow {
			return fmt.Errorf("%w: balances overflow", errs.ErrInvalidConfig)
		}
		if h.Amount != nil && !h.Amount.IsZero() {
			balances[h.Address] = types.Clone(h.Amount)
		}
	}
	if total.Gt(supply) {
		return fmt.Errorf("%w: balances %s exceed supply %s", errs.ErrInvalidConfig, total.Dec(), supply.Dec())
	}

	allowances := map[types.Address]map[types.Address]*uint256.Int{}
	for _, g := range state.Allowances {
		if g.Amount == nil || g.Amount.IsZero() {
			continue
		}
		if allowances[g.Owner] == nil {
			allowances[g.Owner] = map[types.Address]*uint256.Int{}
		}
		allowances[g.Owner][g.Spender] = types.Clone(g.Amount)
	}

	a.balances = balances
	a.allowances = allowances
	a.totalSupply = supply
	return nil
}
