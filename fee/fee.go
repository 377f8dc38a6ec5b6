// Package fee charges a percentage fee on every transfer-initiating
// operation and keeps the collected-fees pool.
//
// The pool lives outside the balance book, so
//
//	sum(balances) + CollectedFees() == TotalSupply()
//
// holds after every call.
package fee

import (
	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// MaxPercentage is the highest accepted fee percentage.
const MaxPercentage uint64 = 100

var hundred = uint256.NewInt(100)

// Calculate returns floor(amount * pct / 100).
//
// The product is computed directly unless amount > 2^256-1 / pct, in
// which case it is decomposed as
//
//	(amount / 100) * pct + ((amount % 100) * pct) / 100
//
// Both branches are kept as written. Callers never see which one ran.
func Calculate(amount *uint256.Int, pct uint64) *uint256.Int {
	if pct == 0 || amount.IsZero() {
		return types.Zero()
	}
	p := uint256.NewInt(pct)

	limit := new(uint256.Int).Div(types.MaxAmount(), p)
	if amount.Gt(limit) {
		quo, rem := new(uint256.Int), new(uint256.Int)
		quo.DivMod(amount, hundred, rem)
		quo.Mul(quo, p)
		rem.Mul(rem, p)
		rem.Div(rem, hundred)
		return quo.Add(quo, rem)
	}

	out := new(uint256.Int).Mul(amount, p)
	return out.Div(out, hundred)
}

// Ledger wraps a balance book with fee collection.
type Ledger struct {
	accounts   *balance.Accounts
	collected  *uint256.Int
	percentage uint64
}

// New returns a fee ledger over accounts charging pct percent.
func New(accounts *balance.Accounts, pct uint64) (*Ledger, error) {
	if pct > MaxPercentage {
		return nil, errs.PercentageFeesTooHigh(pct)
	}
	return &Ledger{
		accounts:   accounts,
		collected:  types.Zero(),
		percentage: pct,
	}, nil
}

// Accounts returns the underlying balance book.
func (l *Ledger) Accounts() *balance.Accounts { return l.accounts }

// Percentage returns the current fee percentage.
func (l *Ledger) Percentage() uint64 { return l.percentage }

// SetPercentage changes the fee percentage. Authorization is the caller's concern.
func (l *Ledger) SetPercentage(pct uint64) error {
	if pct > MaxPercentage {
		return errs.PercentageFeesTooHigh(pct)
	}
	l.percentage = pct
	return nil
}

// CollectedFees returns a copy of the pool.
func (l *Ledger) CollectedFees() *uint256.Int { return types.Clone(l.collected) }

// BalanceOf returns the balance of addr.
func (l *Ledger) BalanceOf(addr types.Address) *uint256.Int { return l.accounts.BalanceOf(addr) }

// FeeFor returns the fee payer would be charged for moving amount.
// A zero payer is never charged.
func (l *Ledger) FeeFor(payer types.Address, amount *uint256.Int) *uint256.Int {
	if types.IsZero(payer) {
		return types.Zero()
	}
	return Calculate(amount, l.percentage)
}

// DebitWithFee moves the fee for amount from payer into the pool and
// returns it. Nothing changes when the fee is zero or the payer cannot
// cover it.
func (l *Ledger) DebitWithFee(payer types.Address, amount *uint256.Int) (*uint256.Int, error) {
	charged := l.FeeFor(payer, amount)
	if charged.IsZero() {
		return charged, nil
	}
	if err := l.accounts.Debit(payer, charged); err != nil {
		return nil, err
	}
	l.collected.Add(l.collected, charged)
	return charged, nil
}

// CheckTransfer reports the error Transfer would return without
// changing any state. The fee is checked before the principal.
func (l *Ledger) CheckTransfer(payer, from, to types.Address, amount *uint256.Int) (*uint256.Int, error) {
	charged := l.FeeFor(payer, amount)
	if !charged.IsZero() {
		if have := l.accounts.BalanceOf(payer); have.Lt(charged) {
			return nil, errs.InsufficientBalance(payer, have, charged)
		}
	}

	var reserved *uint256.Int
	if payer == from {
		reserved = charged
	}
	if err := l.accounts.CheckTransfer(from, to, amount, reserved); err != nil {
		return nil, err
	}
	return charged, nil
}

// Transfer charges payer the fee for amount, then moves amount from
// from to to. Either both happen or neither does.
func (l *Ledger) Transfer(payer, from, to types.Address, amount *uint256.Int) (*uint256.Int, error) {
	if _, err := l.CheckTransfer(payer, from, to, amount); err != nil {
		return nil, err
	}
	charged, err := l.DebitWithFee(payer, amount)
	if err != nil {
		return nil, err
	}
	if err := l.accounts.Transfer(from, to, amount); err != nil {
		return nil, err
	}
	return charged, nil
}

// CheckSpend reports the error SpendCollectedFees would return.
func (l *Ledger) CheckSpend(amount *uint256.Int) error {
	if l.collected.Lt(amount) {
		return errs.InsufficientFees(l.collected, amount)
	}
	return nil
}

// SpendCollectedFees pays amount out of the pool to to.
func (l *Ledger) SpendCollectedFees(to types.Address, amount *uint256.Int) error {
	if err := l.CheckSpend(amount); err != nil {
		return err
	}
	l.collected.Sub(l.collected, amount)
	l.accounts.Credit(to, amount)
	return nil
}

// Reconciled reports whether balances and pool add up to the supply.
func (l *Ledger) Reconciled() bool {
	balances, overflow := l.accounts.SumBalances()
	if overflow {
		return false
	}
	sum, overflow := new(uint256.Int).AddOverflow(balances, l.collected)
	return !overflow && sum.Eq(l.accounts.TotalSupply())
}
