package proposal

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/types"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// Proposal is a request to pay Value out of the collected-fees pool to To.
// Signers is in signing order and never contains duplicates.
type Proposal struct {
	types.Entity
	ID            uint64          `json:"id"`
	To            types.Address   `json:"to"`
	Value         *uint256.Int    `json:"value"`
	MinSignatures uint64          `json:"min_signatures"`
	Signers       []types.Address `json:"signers"`
	Executed      bool            `json:"executed"`
	CancelledBy   *types.Address  `json:"cancelled_by,omitempty"`
	ExecutedAt    *time.Time      `json:"executed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

func (p *Proposal) SignatureCount() uint64 { return uint64(len(p.Signers)) }

func (p *Proposal) Cancelled() bool { return p.CancelledBy != nil }

func (p *Proposal) IsOpen() bool { return !p.Executed && !p.Cancelled() }

// Ready reports whether enough admins have signed to execute.
func (p *Proposal) Ready() bool { return p.SignatureCount() >= p.MinSignatures }

func (p *Proposal) Status() Status {
	switch {
	case p.Executed:
		return StatusExecuted
	case p.Cancelled():
		return StatusCancelled
	default:
		return StatusOpen
	}
}

// HasSigned scans the signer sequence for admin.
func (p *Proposal) HasSigned(admin types.Address) bool {
	for _, s := range p.Signers {
		if s == admin {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *Proposal) Clone() *Proposal {
	c := *p
	c.Value = types.Clone(p.Value)
	c.Signers = append([]types.Address(nil), p.Signers...)
	if p.CancelledBy != nil {
		by := *p.CancelledBy
		c.CancelledBy = &by
	}
	if p.ExecutedAt != nil {
		at := *p.ExecutedAt
		c.ExecutedAt = &at
	}
	if p.CancelledAt != nil {
		at := *p.CancelledAt
		c.CancelledAt = &at
	}
	return &c
}

// Columns holds every proposal as parallel slices, one entry per
// proposal in creation order. A zero CancelledBy entry means none.
type Columns struct {
	SignatureCounts []uint64        `json:"signature_counts"`
	To              []types.Address `json:"to"`
	Values          []*uint256.Int  `json:"values"`
	MinSignatures   []uint64        `json:"min_signatures"`
	Executed        []bool          `json:"executed"`
	CancelledBy     []types.Address `json:"cancelled_by"`
}

func (c Columns) Len() int { return len(c.To) }

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
