package event

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/types"
)

type Kind string

const (
	KindTransfer                 Kind = "transfer"
	KindApproval                 Kind = "approval"
	KindFeesCollected            Kind = "fees_collected"
	KindProposalCreated          Kind = "proposal_created"
	KindProposalSigned           Kind = "proposal_signed"
	KindProposalExecuted         Kind = "proposal_executed"
	KindProposalCancelled        Kind = "proposal_cancelled"
	KindAdminAdded               Kind = "admin_added"
	KindAdminRemoved             Kind = "admin_removed"
	KindMinimumSignaturesUpdated Kind = "minimum_signatures_updated"
	KindPercentageFeesUpdated    Kind = "percentage_fees_updated"
)

// Event is one journaled state change. Seq is gap-free per ledger and
// orders events the way their operations were applied. Fields that do
// not apply to Kind are zero.
//
// A payout from the pool is journaled as a transfer from the zero
// address, followed by proposal_executed.
type Event struct {
	ID            id.EventID    `json:"id"`
	Ledger        string        `json:"ledger"`
	Seq           uint64        `json:"seq"`
	Kind          Kind          `json:"kind"`
	ProposalID    *uint64       `json:"proposal_id,omitempty"`
	From          types.Address `json:"from"`
	To            types.Address `json:"to"`
	Admin         types.Address `json:"admin"`
	Value         *uint256.Int  `json:"value,omitempty"`
	MinSignatures uint64        `json:"min_signatures,omitempty"`
	Percentage    uint64        `json:"percentage,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

type ListOpts struct {
	Kind       Kind
	ProposalID *uint64
	AfterSeq   uint64
	Limit      int
	Offset     int
}

// Matches reports whether e passes the Kind and ProposalID filters.
// AfterSeq, Limit and Offset are applied by the store.
func (o ListOpts) Matches(e *Event) bool {
	if o.Kind != "" && e.Kind != o.Kind {
		return false
	}
	if o.ProposalID != nil && (e.ProposalID == nil || *e.ProposalID != *o.ProposalID) {
		return false
	}
	return e.Seq > o.AfterSeq
}
