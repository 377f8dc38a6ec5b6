package feeledger

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

// Settings names passed to OnSettingsChanged.
const (
	SettingMinimumSignatures = "minimum_signatures"
	SettingPercentageFees    = "percentage_fees"
)

// ──────────────────────────────────────────────────
// Roles and settings
// ──────────────────────────────────────────────────

// AddAdmin grants admin rights to admin. Owner only; adding an existing
// admin succeeds without an event.
func (l *Ledger) AddAdmin(ctx context.Context, caller, admin types.Address) error {
	l.mu.Lock()
	changed, err := l.book.roles.AddAdmin(caller, admin)
	if err == nil && changed {
		l.record(&event.Event{Kind: event.KindAdminAdded, From: caller, Admin: admin})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "add_admin", caller, err)
	}
	if changed {
		l.logger.Info("admin added", "admin", admin.Hex())
		l.plugins.EmitAdminChanged(ctx, admin, true)
	}
	return nil
}

// RemoveAdmin revokes admin rights. Owner only; removing a non-admin
// succeeds without an event. The owner may remove itself from the
// admin set but keeps owner rights.
func (l *Ledger) RemoveAdmin(ctx context.Context, caller, admin types.Address) error {
	l.mu.Lock()
	changed, err := l.book.roles.RemoveAdmin(caller, admin)
	if err == nil && changed {
		l.record(&event.Event{Kind: event.KindAdminRemoved, From: caller, Admin: admin})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "remove_admin", caller, err)
	}
	if changed {
		l.logger.Info("admin removed", "admin", admin.Hex())
		l.plugins.EmitAdminChanged(ctx, admin, false)
	}
	return nil
}

// SetMinimumSignatures sets the upper bound for new proposals'
// thresholds. Existing proposals keep theirs.
func (l *Ledger) SetMinimumSignatures(ctx context.Context, caller types.Address, n uint64) error {
	l.mu.Lock()
	err := l.book.roles.SetMinimumSignatures(caller, n)
	if err == nil {
		l.record(&event.Event{Kind: event.KindMinimumSignaturesUpdated, From: caller, MinSignatures: n})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "set_minimum_signatures", caller, err)
	}
	l.logger.Info("minimum signatures updated", "minimum_signatures", n)
	l.plugins.EmitSettingsChanged(ctx, SettingMinimumSignatures, n)
	return nil
}

// UpdatePercentageFees changes the transfer fee. Owner only.
func (l *Ledger) UpdatePercentageFees(ctx context.Context, caller types.Address, pct uint64) error {
	l.mu.Lock()
	err := l.book.roles.RequireOwner(caller)
	if err == nil {
		err = l.book.fees.SetPercentage(pct)
	}
	if err == nil {
		l.record(&event.Event{Kind: event.KindPercentageFeesUpdated, From: caller, Percentage: pct})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "update_percentage_fees", caller, err)
	}
	l.logger.Info("percentage fees updated", "percentage_fees", pct)
	l.plugins.EmitSettingsChanged(ctx, SettingPercentageFees, pct)
	return nil
}

func (l *Ledger) Owner() types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.roles.Owner()
}

func (l *Ledger) IsOwner(addr types.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.roles.IsOwner(addr)
}

func (l *Ledger) IsAdmin(addr types.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.roles.IsAdmin(addr)
}

// Admins returns the admin set ordered by address.
func (l *Ledger) Admins() []types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.roles.Admins()
}

func (l *Ledger) MinimumSignatures() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.roles.MinimumSignatures()
}

// ──────────────────────────────────────────────────
// Proposals
// ──────────────────────────────────────────────────

// ProposeCollection opens a proposal to pay value out of the collected
// fees to to once minSignatures admins have signed. It returns the new
// proposal's ID.
func (l *Ledger) ProposeCollection(ctx context.Context, caller, to types.Address, value *uint256.Int, minSignatures uint64) (uint64, error) {
	l.mu.Lock()
	p, err := l.book.proposals.Propose(caller, to, value, minSignatures)
	if err == nil {
		l.record(&event.Event{
			Kind:          event.KindProposalCreated,
			ProposalID:    proposalRef(p.ID),
			To:            p.To,
			Admin:         caller,
			Value:         types.Clone(p.Value),
			MinSignatures: p.MinSignatures,
		})
	}
	l.mu.Unlock()

	if err != nil {
		return 0, l.fail(ctx, "propose_collection", caller, err)
	}

	l.logger.Info("proposal created",
		"proposal_id", p.ID,
		"to", p.To.Hex(),
		"value", p.Value.Dec(),
		"min_signatures", p.MinSignatures,
	)
	l.plugins.EmitProposalCreated(ctx, p)
	return p.ID, nil
}

// SignProposal adds caller's signature to an open proposal.
func (l *Ledger) SignProposal(ctx context.Context, caller types.Address, id uint64) error {
	l.mu.Lock()
	p, err := l.book.proposals.Sign(caller, id)
	if err == nil {
		l.record(&event.Event{Kind: event.KindProposalSigned, ProposalID: proposalRef(id), Admin: caller})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "sign_proposal", caller, err)
	}

	l.logger.Info("proposal signed",
		"proposal_id", id,
		"admin", caller.Hex(),
		"signatures", p.SignatureCount(),
		"required", p.MinSignatures,
	)
	l.plugins.EmitProposalSigned(ctx, p, caller)
	return nil
}

// ExecuteProposal pays a fully signed proposal out of the collected
// fees. The payout is journaled as a transfer from the zero address
// followed by proposal_executed.
func (l *Ledger) ExecuteProposal(ctx context.Context, caller types.Address, id uint64) error {
	l.mu.Lock()
	p, err := l.book.proposals.Execute(caller, id)
	var pool *uint256.Int
	if err == nil {
		payout := transferEvent(types.ZeroAddress, p.To, p.Value)
		payout.ProposalID = proposalRef(id)
		l.record(payout)
		l.record(&event.Event{
			Kind:       event.KindProposalExecuted,
			ProposalID: proposalRef(id),
			To:         p.To,
			Admin:      caller,
			Value:      types.Clone(p.Value),
		})
		pool = l.book.fees.CollectedFees()
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "execute_proposal", caller, err)
	}

	l.logger.Info("proposal executed",
		"proposal_id", id,
		"to", p.To.Hex(),
		"value", p.Value.Dec(),
		"collected_fees", pool.Dec(),
	)
	l.plugins.EmitTransfer(ctx, types.ZeroAddress, p.To, p.Value)
	l.plugins.EmitProposalExecuted(ctx, p)
	return nil
}

// CancelProposal closes an open proposal without paying it. Any admin
// may cancel.
func (l *Ledger) CancelProposal(ctx context.Context, caller types.Address, id uint64) error {
	l.mu.Lock()
	p, err := l.book.proposals.Cancel(caller, id)
	if err == nil {
		l.record(&event.Event{Kind: event.KindProposalCancelled, ProposalID: proposalRef(id), Admin: caller})
	}
	l.mu.Unlock()

	if err != nil {
		return l.fail(ctx, "cancel_proposal", caller, err)
	}

	l.logger.Info("proposal cancelled", "proposal_id", id, "admin", caller.Hex())
	l.plugins.EmitProposalCancelled(ctx, p)
	return nil
}

// Proposal returns a copy of proposal id.
func (l *Ledger) Proposal(id uint64) (*proposal.Proposal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.Get(id)
}

func (l *Ledger) ProposalsCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.Count()
}

// OpenProposals returns the IDs of proposals neither executed nor
// cancelled, in no meaningful order.
func (l *Ledger) OpenProposals() []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.Open()
}

func (l *Ledger) OpenProposalsCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.OpenCount()
}

// AllProposals returns every proposal as parallel columns in creation
// order.
func (l *Ledger) AllProposals() proposal.Columns {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.All()
}

// ListProposals pages through proposals filtered by status.
func (l *Ledger) ListProposals(opts proposal.ListOpts) []*proposal.Proposal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.List(opts)
}

// HasSignedProposal is false for an unknown proposal.
func (l *Ledger) HasSignedProposal(id uint64, admin types.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.HasSigned(id, admin)
}

// ProposalSignatures returns the signers of id in signing order, or an
// empty slice for an unknown proposal.
func (l *Ledger) ProposalSignatures(id uint64) []types.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.proposals.Signatures(id)
}
