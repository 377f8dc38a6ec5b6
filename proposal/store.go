// Package proposal implements the propose, sign, execute and cancel
// lifecycle for payouts from the collected-fees pool.
//
// A proposal starts open and ends executed or cancelled, never both.
// Every operation checks authorization first, then input, then
// lifecycle state, then quantities, and changes nothing unless all
// checks pass.
package proposal

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// Authorizer decides who may act on proposals and bounds thresholds.
type Authorizer interface {
	RequireAdmin(caller types.Address) error
	MinimumSignatures() uint64
}

// Pool funds executed proposals.
type Pool interface {
	CheckSpend(amount *uint256.Int) error
	SpendCollectedFees(to types.Address, amount *uint256.Int) error
}

// Store owns every proposal, their signer sequences and the open index.
// It is not safe for concurrent use.
type Store struct {
	proposals []*Proposal
	open      OpenIndex
	auth      Authorizer
	pool      Pool
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore(auth Authorizer, pool Pool, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{auth: auth, pool: pool, now: now}
}

// Propose creates an open proposal to pay value to to and returns its ID.
func (s *Store) Propose(caller, to types.Address, value *uint256.Int, minSignatures uint64) (*Proposal, error) {
	if err := s.auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if types.IsZero(to) {
		return nil, errs.CannotProposeToZeroAddress()
	}
	if value == nil || value.IsZero() {
		return nil, errs.CannotProposeWithZeroValue()
	}
	if minSignatures < 1 {
		return nil, errs.MinimumSignaturesTooLow(minSignatures)
	}
	if limit := s.auth.MinimumSignatures(); minSignatures > limit {
		return nil, errs.MinimumSignaturesTooHigh(minSignatures, limit)
	}

	p := &Proposal{
		Entity:        types.NewEntity(s.now()),
		ID:            uint64(len(s.proposals)),
		To:            to,
		Value:         types.Clone(value),
		MinSignatures: minSignatures,
	}
	s.proposals = append(s.proposals, p)
	s.open.Add(p.ID)
	return p.Clone(), nil
}

// Sign appends caller to the proposal's signer sequence.
func (s *Store) Sign(caller types.Address, id uint64) (*Proposal, error) {
	if err := s.auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.openProposal(id)
	if err != nil {
		return nil, err
	}
	if p.HasSigned(caller) {
		return nil, errs.ProposalAlreadySigned(id, caller)
	}

	p.Signers = append(p.Signers, caller)
	p.Touch(s.now())
	return p.Clone(), nil
}

// Execute pays the proposal out of the pool. It fails until enough
// admins have signed and the pool covers the value.
func (s *Store) Execute(caller types.Address, id uint64) (*Proposal, error) {
	if err := s.auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.openProposal(id)
	if err != nil {
		return nil, err
	}
	if !p.Ready() {
		return nil, errs.ProposalNotEnoughSignatures(id, p.SignatureCount(), p.MinSignatures)
	}
	if err := s.pool.CheckSpend(p.Value); err != nil {
		return nil, err
	}
	if err := s.pool.SpendCollectedFees(p.To, p.Value); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	p.Executed = true
	p.ExecutedAt = &at
	p.Touch(at)
	s.open.Remove(id)
	return p.Clone(), nil
}

// Cancel closes the proposal without paying it. Any admin may cancel.
func (s *Store) Cancel(caller types.Address, id uint64) (*Proposal, error) {
	if err := s.auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.openProposal(id)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	by := caller
	p.CancelledBy = &by
	p.CancelledAt = &at
	p.Touch(at)
	s.open.Remove(id)
	return p.Clone(), nil
}

// openProposal looks up id and applies the lifecycle checks shared by
// every mutation, executed before cancelled.
func (s *Store) openProposal(id uint64) (*Proposal, error) {
	p, ok := s.lookup(id)
	if !ok {
		return nil, errs.ProposalNotFound(id)
	}
	if p.Executed {
		return nil, errs.ProposalAlreadyExecuted(id)
	}
	if p.Cancelled() {
		return nil, errs.ProposalAlreadyCancelled(id)
	}
	return p, nil
}

func (s *Store) lookup(id uint64) (*Proposal, bool) {
	if id >= uint64(len(s.proposals)) {
		return nil, false
	}
	return s.proposals[id], true
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Get returns a copy of the proposal.
func (s *Store) Get(id uint64) (*Proposal, error) {
	p, ok := s.lookup(id)
	if !ok {
		return nil, errs.ProposalNotFound(id)
	}
	return p.Clone(), nil
}

// Count returns how many proposals were ever created.
func (s *Store) Count() uint64 { return uint64(len(s.proposals)) }

// Open returns the IDs of open proposals in index order.
func (s *Store) Open() []uint64 { return s.open.IDs() }

func (s *Store) OpenCount() int { return s.open.Len() }

// HasSigned reports whether admin signed id. Unknown IDs report false.
func (s *Store) HasSigned(id uint64, admin types.Address) bool {
	p, ok := s.lookup(id)
	return ok && p.HasSigned(admin)
}

// Signatures returns the signer sequence of id, empty for unknown IDs.
func (s *Store) Signatures(id uint64) []types.Address {
	p, ok := s.lookup(id)
	if !ok {
		return []types.Address{}
	}
	return append([]types.Address{}, p.Signers...)
}

// All returns every proposal as parallel columns in creation order.
func (s *Store) All() Columns {
	n := len(s.proposals)
	c := Columns{
		SignatureCounts: make([]uint64, n),
		To:              make([]types.Address, n),
		Values:          make([]*uint256.Int, n),
		MinSignatures:   make([]uint64, n),
		Executed:        make([]bool, n),
		CancelledBy:     make([]types.Address, n),
	}
	for i, p := range s.proposals {
		c.SignatureCounts[i] = p.SignatureCount()
		c.To[i] = p.To
		c.Values[i] = types.Clone(p.Value)
		c.MinSignatures[i] = p.MinSignatures
		c.Executed[i] = p.Executed
		if p.CancelledBy != nil {
			c.CancelledBy[i] = *p.CancelledBy
		}
	}
	return c
}

// List returns copies of proposals in creation order, filtered by status.
func (s *Store) List(opts ListOpts) []*Proposal {
	out := []*Proposal{}
	skipped := 0
	for _, p := range s.proposals {
		if opts.Status != "" && p.Status() != opts.Status {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, p.Clone())
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}
