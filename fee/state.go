package fee

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// State is a detached copy of the pool and its percentage.
type State struct {
	Percentage    uint64       `json:"percentage"`
	CollectedFees *uint256.Int `json:"collected_fees"`
}

// Export copies the pool settings.
func (l *Ledger) Export() State {
	return State{Percentage: l.percentage, CollectedFees: l.CollectedFees()}
}

// Restore replaces the pool. The balance book must already be restored
// so the supply invariant can be verified.
func (l *Ledger) Restore(state State) error {
	if state.Percentage > MaxPercentage {
		return errs.PercentageFeesTooHigh(state.Percentage)
	}
	prevPct, prevCollected := l.percentage, l.collected

	l.percentage = state.Percentage
	l.collected = types.Clone(state.CollectedFees)
	if !l.Reconciled() {
		l.percentage, l.collected = prevPct, prevCollected
		return fmt.Errorf("%w: balances plus collected fees do not match supply", errs.ErrInvalidConfig)
	}
	return nil
}
