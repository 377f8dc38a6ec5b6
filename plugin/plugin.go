// Package plugin provides the extension hooks of a feeledger Ledger.
//
// A plugin implements Plugin plus any subset of the hook interfaces
// below. Hooks run after the operation has been applied and outside the
// ledger lock, so they observe committed state and cannot block other
// callers for longer than the dispatch timeout.
package plugin

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. l is the *feeledger.Ledger.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l any) error
}

type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Token hooks
// ──────────────────────────────────────────────────

// OnTransfer is called for every balance movement after genesis,
// including pool payouts, which have a zero from address.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, from, to types.Address, value *uint256.Int) error
}

// OnFeesCollected is called when a non-zero fee moves into the pool.
type OnFeesCollected interface {
	Plugin
	OnFeesCollected(ctx context.Context, payer types.Address, fee, pool *uint256.Int) error
}

type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, owner, spender types.Address, value *uint256.Int) error
}

// ──────────────────────────────────────────────────
// Proposal hooks
// ──────────────────────────────────────────────────

type OnProposalCreated interface {
	Plugin
	OnProposalCreated(ctx context.Context, p *proposal.Proposal) error
}

type OnProposalSigned interface {
	Plugin
	OnProposalSigned(ctx context.Context, p *proposal.Proposal, admin types.Address) error
}

type OnProposalExecuted interface {
	Plugin
	OnProposalExecuted(ctx context.Context, p *proposal.Proposal) error
}

type OnProposalCancelled interface {
	Plugin
	OnProposalCancelled(ctx context.Context, p *proposal.Proposal) error
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnAdminChanged is called when the admin set actually changes.
type OnAdminChanged interface {
	Plugin
	OnAdminChanged(ctx context.Context, admin types.Address, added bool) error
}

// OnSettingsChanged is called after the global minimum signatures or
// the fee percentage is updated. setting is "minimum_signatures" or
// "percentage_fees".
type OnSettingsChanged interface {
	Plugin
	OnSettingsChanged(ctx context.Context, setting string, value uint64) error
}

// ──────────────────────────────────────────────────
// Operational hooks
// ──────────────────────────────────────────────────

// OnOperationFailed is called when a mutation is rejected.
type OnOperationFailed interface {
	Plugin
	OnOperationFailed(ctx context.Context, op string, caller types.Address, err error) error
}

// OnJournalFlushed is called after a batch of events reaches the store.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error
}
