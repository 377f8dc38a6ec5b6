package proposal

import (
	"fmt"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// State is a detached copy of the store. Open preserves index order.
type State struct {
	Proposals []*Proposal `json:"proposals"`
	Open      []uint64    `json:"open"`
}

// Export copies every proposal and the open index.
func (s *Store) Export() State {
	state := State{Proposals: make([]*Proposal, 0, len(s.proposals)), Open: s.open.IDs()}
	for _, p := range s.proposals {
		state.Proposals = append(state.Proposals, p.Clone())
	}
	return state
}

// Restore replaces the store with state after checking that it could
// have been produced by this store's operations.
func (s *Store) Restore(state State) error {
	proposals := make([]*Proposal, 0, len(state.Proposals))
	open := map[uint64]bool{}

	for i, p := range state.Proposals {
		if p == nil || p.ID != uint64(i) {
			return fmt.Errorf("%w: proposal %d out of sequence", errs.ErrInvalidConfig, i)
		}
		if p.Executed && p.Cancelled() {
			return fmt.Errorf("%w: proposal %d both executed and cancelled", errs.ErrInvalidConfig, i)
		}
		if types.IsZero(p.To) || p.Value == nil || p.Value.IsZero() || p.MinSignatures < 1 {
			return fmt.Errorf("%w: proposal %d malformed", errs.ErrInvalidConfig, i)
		}
		seen := make(map[types.Address]struct{}, len(p.Signers))
		for _, signer := range p.Signers {
			if _, dup := seen[signer]; dup {
				return fmt.Errorf("%w: proposal %d signed twice by %s", errs.ErrInvalidConfig, i, signer.Hex())
			}
			seen[signer] = struct{}{}
		}
		if p.IsOpen() {
			open[p.ID] = true
		}
		proposals = append(proposals, p.Clone())
	}

	if len(state.Open) != len(open) {
		return fmt.Errorf("%w: open index holds %d ids, want %d", errs.ErrInvalidConfig, len(state.Open), len(open))
	}
	for _, id := range state.Open {
		if !open[id] {
			return fmt.Errorf("%w: proposal %d is not open", errs.ErrInvalidConfig, id)
		}
		delete(open, id)
	}

	s.proposals = proposals
	s.open = OpenIndex{ids: append([]uint64{}, state.Open...)}
	return nil
}
