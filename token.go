package feeledger

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/types"
)

// ──────────────────────────────────────────────────
// Token operations
// ──────────────────────────────────────────────────

// Transfer moves amount from caller to to. Caller additionally pays the
// percentage fee into the collected-fees pool and must hold amount+fee.
func (l *Ledger) Transfer(ctx context.Context, caller, to types.Address, amount *uint256.Int) error {
	amount = orZero(amount)

	l.mu.Lock()
	charged, err := l.book.fees.Transfer(caller, caller, to, amount)
	var pool *uint256.Int
	if err == nil {
		if !charged.IsZero() {
			l.record(&event.Event{Kind: event.KindFeesCollected, From: caller, Value: charged})
		}
		l.record(transferEvent(caller, to, amount))
		pool = l.book.fees.CollectedFees()
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "transfer", caller, err)
	}

	if !charged.IsZero() {
		l.plugins.EmitFeesCollected(ctx, caller, charged, pool)
	}
	l.plugins.EmitTransfer(ctx, caller, to, amount)
	return nil
}

// TransferFrom spends caller's allowance over from and moves amount
// from from to to. The fee is charged to from, not to the spender.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to types.Address, amount *uint256.Int) error {
	amount = orZero(amount)

	l.mu.Lock()
	charged, remaining, err := l.transferFromLocked(caller, from, to, amount)
	var pool *uint256.Int
	if err == nil {
		if !charged.IsZero() {
			l.record(&event.Event{Kind: event.KindFeesCollected, From: from, Value: charged})
		}
		l.record(transferEvent(from, to, amount))
		l.record(&event.Event{Kind: event.KindApproval, From: from, To: caller, Value: remaining})
		pool = l.book.fees.CollectedFees()
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "transfer_from", caller, err)
	}

	if !charged.IsZero() {
		l.plugins.EmitFeesCollected(ctx, from, charged, pool)
	}
	l.plugins.EmitTransfer(ctx, from, to, amount)
	l.plugins.EmitApproval(ctx, from, caller, remaining)
	return nil
}

// transferFromLocked checks the allowance and the transfer before
// touching either.
func (l *Ledger) transferFromLocked(spender, from, to types.Address, amount *uint256.Int) (charged, remaining *uint256.Int, err error) {
	accounts := l.book.accounts
	if err := accounts.CheckSpendAllowance(from, spender, amount); err != nil {
		return nil, nil, err
	}
	if _, err := l.book.fees.CheckTransfer(from, from, to, amount); err != nil {
		return nil, nil, err
	}
	if err := accounts.SpendAllowance(from, spender, amount); err != nil {
		return nil, nil, err
	}
	charged, err = l.book.fees.Transfer(from, from, to, amount)
	if err != nil {
		return nil, nil, err
	}
	return charged, accounts.Allowance(from, spender), nil
}

// Approve sets spender's allowance over caller's balance. An allowance
// of MaxAmount is unlimited.
func (l *Ledger) Approve(ctx context.Context, caller, spender types.Address, amount *uint256.Int) error {
	amount = orZero(amount)

	l.mu.Lock()
	err := l.book.accounts.Approve(caller, spender, amount)
	if err == nil {
		l.record(&event.Event{Kind: event.KindApproval, From: caller, To: spender, Value: types.Clone(amount)})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "approve", caller, err)
	}

	l.plugins.EmitApproval(ctx, caller, spender, amount)
	return nil
}

// ──────────────────────────────────────────────────
// Token reads
// ──────────────────────────────────────────────────

func (l *Ledger) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

func (l *Ledger) Symbol() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.symbol
}

func (l *Ledger) Decimals() uint8 { return types.Decimals }

func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.accounts.TotalSupply()
}

func (l *Ledger) BalanceOf(addr types.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.accounts.BalanceOf(addr)
}

func (l *Ledger) Allowance(owner, spender types.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.accounts.Allowance(owner, spender)
}

// Holders returns every address with a non-zero balance.
func (l *Ledger) Holders() []types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.accounts.Holders()
}

// CollectedFees returns the pool that funds proposal payouts.
func (l *Ledger) CollectedFees() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.fees.CollectedFees()
}

func (l *Ledger) PercentageFees() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.fees.Percentage()
}

// QuoteFee returns the fee payer would be charged for moving amount at
// the current percentage.
func (l *Ledger) QuoteFee(payer types.Address, amount *uint256.Int) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.fees.FeeFor(payer, orZero(amount))
}
