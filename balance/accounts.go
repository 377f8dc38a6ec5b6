// Package balance implements plain token bookkeeping: balances,
// allowances and total supply. It knows nothing about fees or roles.
//
// Accounts is not safe for concurrent use. The feeledger engine
// serializes every call under its own lock.
package balance

import (
	"bytes"
	"sort"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// Accounts holds balances and allowances keyed by address.
type Accounts struct {
	balances    map[types.Address]*uint256.Int
	allowances  map[types.Address]map[types.Address]*uint256.Int
	totalSupply *uint256.Int
}

// NewAccounts returns an empty book with zero supply.
func NewAccounts() *Accounts {
	return &Accounts{
		balances:    map[types.Address]*uint256.Int{},
		allowances:  map[types.Address]map[types.Address]*uint256.Int{},
		totalSupply: types.Zero(),
	}
}

// BalanceOf returns a copy of the balance of addr.
func (a *Accounts) BalanceOf(addr types.Address) *uint256.Int {
	return types.Clone(a.balances[addr])
}

// TotalSupply returns a copy of the total supply.
func (a *Accounts) TotalSupply() *uint256.Int {
	return types.Clone(a.totalSupply)
}

// Allowance returns how much spender may still move on behalf of owner.
func (a *Accounts) Allowance(owner, spender types.Address) *uint256.Int {
	return types.Clone(a.allowances[owner][spender])
}

// Mint creates amount new tokens owned by to.
func (a *Accounts) Mint(to types.Address, amount *uint256.Int) error {
	if types.IsZero(to) {
		return errs.InvalidReceiver(to)
	}
	supply, overflow := new(uint256.Int).AddOverflow(a.totalSupply, amount)
	if overflow {
		return errs.ErrSupplyOverflow
	}
	a.totalSupply = supply
	a.Credit(to, amount)
	return nil
}

// Credit increases the balance of addr. Balances are bounded by the
// total supply, so the addition cannot overflow.
func (a *Accounts) Credit(addr types.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	a.set(addr, new(uint256.Int).Add(a.balanceRef(addr), amount))
}

// Debit decreases the balance of addr, failing without change when the
// balance is too small.
func (a *Accounts) Debit(addr types.Address, amount *uint256.Int) error {
	balance := a.balanceRef(addr)
	if balance.Lt(amount) {
		return errs.InsufficientBalance(addr, balance, amount)
	}
	a.set(addr, new(uint256.Int).Sub(balance, amount))
	return nil
}

// CheckTransfer reports the error Transfer would return, given that
// reserved units of from's balance are already committed elsewhere in
// the same operation.
func (a *Accounts) CheckTransfer(from, to types.Address, amount, reserved *uint256.Int) error {
	if types.IsZero(from) {
		return errs.InvalidSender(from)
	}
	if types.IsZero(to) {
		return errs.InvalidReceiver(to)
	}

	available := a.balanceRef(from)
	if reserved != nil {
		if available.Lt(reserved) {
			return errs.InsufficientBalance(from, available, reserved)
		}
		available = new(uint256.Int).Sub(available, reserved)
	}
	if available.Lt(amount) {
		return errs.InsufficientBalance(from, available, amount)
	}
	return nil
}

// Transfer moves amount from one holder to another.
func (a *Accounts) Transfer(from, to types.Address, amount *uint256.Int) error {
	if err := a.CheckTransfer(from, to, amount, nil); err != nil {
		return err
	}
	if err := a.Debit(from, amount); err != nil {
		return err
	}
	a.Credit(to, amount)
	return nil
}

// Approve sets the allowance of spender over owner's tokens.
func (a *Accounts) Approve(owner, spender types.Address, amount *uint256.Int) error {
	if types.IsZero(owner) {
		return errs.InvalidApprover(owner)
	}
	if types.IsZero(spender) {
		return errs.InvalidSpender(spender)
	}

	if amount.IsZero() {
		delete(a.allowances[owner], spender)
		if len(a.allowances[owner]) == 0 {
			delete(a.allowances, owner)
		}
		return nil
	}

	if a.allowances[owner] == nil {
		a.allowances[owner] = map[types.Address]*uint256.Int{}
	}
	a.allowances[owner][spender] = types.Clone(amount)
	return nil
}

// CheckSpendAllowance reports the error SpendAllowance would return.
func (a *Accounts) CheckSpendAllowance(owner, spender types.Address, amount *uint256.Int) error {
	current := a.Allowance(owner, spender)
	if isUnlimited(current) {
		return nil
	}
	if current.Lt(amount) {
		return errs.InsufficientAllowance(spender, current, amount)
	}
	return nil
}

// SpendAllowance consumes amount of spender's allowance over owner.
// An allowance of 2^256-1 is unlimited and never decreases.
func (a *Accounts) SpendAllowance(owner, spender types.Address, amount *uint256.Int) error {
	if err := a.CheckSpendAllowance(owner, spender, amount); err != nil {
		return err
	}
	current := a.Allowance(owner, spender)
	if isUnlimited(current) {
		return nil
	}
	return a.Approve(owner, spender, new(uint256.Int).Sub(current, amount))
}

// Holders returns every address with a non-zero balance, ordered by bytes.
func (a *Accounts) Holders() []types.Address {
	holders := make([]types.Address, 0, len(a.balances))
	for addr := range a.balances {
		holders = append(holders, addr)
	}
	sort.Slice(holders, func(i, j int) bool {
		return bytes.Compare(holders[i].Bytes(), holders[j].Bytes()) < 0
	})
	return holders
}

// SumBalances adds up every balance, reporting overflow in the second
// result.
func (a *Accounts) SumBalances() (*uint256.Int, bool) {
	values := make([]*uint256.Int, 0, len(a.balances))
	for _, b := range a.balances {
		values = append(values, b)
	}
	return types.Sum(values...)
}

func (a *Accounts) balanceRef(addr types.Address) *uint256.Int {
	if b, ok := a.balances[addr]; ok {
		return b
	}
	return types.Zero()
}

func (a *Accounts) set(addr types.Address, amount *uint256.Int) {
	if amount.IsZero() {
		delete(a.balances, addr)
		return
	}
	a.balances[addr] = amount
}

func isUnlimited(v *uint256.Int) bool {
	return v.Eq(types.MaxAmount())
}
