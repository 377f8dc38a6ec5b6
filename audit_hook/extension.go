// Package audithook bridges feeledger operations to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// an audit backend directly. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/plugin"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnTransfer          = (*Extension)(nil)
	_ plugin.OnApproval          = (*Extension)(nil)
	_ plugin.OnFeesCollected     = (*Extension)(nil)
	_ plugin.OnProposalCreated   = (*Extension)(nil)
	_ plugin.OnProposalSigned    = (*Extension)(nil)
	_ plugin.OnProposalExecuted  = (*Extension)(nil)
	_ plugin.OnProposalCancelled = (*Extension)(nil)
	_ plugin.OnAdminChanged      = (*Extension)(nil)
	_ plugin.OnSettingsChanged   = (*Extension)(nil)
	_ plugin.OnOperationFailed   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a backend-neutral audit record.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension records every committed or rejected ledger operation.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Token hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer. Transfers from the zero
// address are pool payouts.
func (e *Extension) OnTransfer(ctx context.Context, from, to types.Address, value *uint256.Int) error {
	if types.IsZero(from) {
		return e.record(ctx, ActionPayout, SeverityInfo, OutcomeSuccess,
			ResourcePool, to.Hex(), CategoryTreasury, "", nil,
			"to", to.Hex(),
			"value", value.Dec(),
		)
	}
	return e.record(ctx, ActionTransfer, SeverityInfo, OutcomeSuccess,
		ResourceAccount, from.Hex(), CategoryToken, from.Hex(), nil,
		"to", to.Hex(),
		"value", value.Dec(),
	)
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, owner, spender types.Address, value *uint256.Int) error {
	return e.record(ctx, ActionApproval, SeverityInfo, OutcomeSuccess,
		ResourceAccount, owner.Hex(), CategoryToken, owner.Hex(), nil,
		"spender", spender.Hex(),
		"value", value.Dec(),
	)
}

// OnFeesCollected implements plugin.OnFeesCollected.
func (e *Extension) OnFeesCollected(ctx context.Context, payer types.Address, fee, pool *uint256.Int) error {
	return e.record(ctx, ActionFeesCollected, SeverityInfo, OutcomeSuccess,
		ResourcePool, "", CategoryTreasury, payer.Hex(), nil,
		"fee", fee.Dec(),
		"collected_fees", pool.Dec(),
	)
}

// ──────────────────────────────────────────────────
// Proposal hooks
// ──────────────────────────────────────────────────

// OnProposalCreated implements plugin.OnProposalCreated.
func (e *Extension) OnProposalCreated(ctx context.Context, p *proposal.Proposal) error {
	return e.record(ctx, ActionProposalCreated, SeverityInfo, OutcomeSuccess,
		ResourceProposal, proposalID(p), CategoryGovernance, "", nil,
		"to", p.To.Hex(),
		"value", p.Value.Dec(),
		"min_signatures", p.MinSignatures,
	)
}

// OnProposalSigned implements plugin.OnProposalSigned.
func (e *Extension) OnProposalSigned(ctx context.Context, p *proposal.Proposal, admin types.Address) error {
	return e.record(ctx, ActionProposalSigned, SeverityInfo, OutcomeSuccess,
		ResourceProposal, proposalID(p), CategoryGovernance, admin.Hex(), nil,
		"signatures", p.SignatureCount(),
		"min_signatures", p.MinSignatures,
	)
}

// OnProposalExecuted implements plugin.OnProposalExecuted. Payouts move
// pooled funds, so they are audited at warning severity.
func (e *Extension) OnProposalExecuted(ctx context.Context, p *proposal.Proposal) error {
	return e.record(ctx, ActionProposalExecuted, SeverityWarning, OutcomeSuccess,
		ResourceProposal, proposalID(p), CategoryTreasury, "", nil,
		"to", p.To.Hex(),
		"value", p.Value.Dec(),
		"signers", len(p.Signers),
	)
}

// OnProposalCancelled implements plugin.OnProposalCancelled.
func (e *Extension) OnProposalCancelled(ctx context.Context, p *proposal.Proposal) error {
	var actor string
	if p.CancelledBy != nil {
		actor = p.CancelledBy.Hex()
	}
	return e.record(ctx, ActionProposalCancelled, SeverityInfo, OutcomeSuccess,
		ResourceProposal, proposalID(p), CategoryGovernance, actor, nil,
		"signatures", p.SignatureCount(),
	)
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnAdminChanged implements plugin.OnAdminChanged.
func (e *Extension) OnAdminChanged(ctx context.Context, admin types.Address, added bool) error {
	action := ActionAdminRemoved
	if added {
		action = ActionAdminAdded
	}
	return e.record(ctx, action, SeverityWarning, OutcomeSuccess,
		ResourceRole, admin.Hex(), CategoryAccess, "", nil,
		"admin", admin.Hex(),
	)
}

// OnSettingsChanged implements plugin.OnSettingsChanged.
func (e *Extension) OnSettingsChanged(ctx context.Context, setting string, value uint64) error {
	action := ActionPercentageFeesUpdated
	if setting == "minimum_signatures" {
		action = ActionMinimumSignaturesUpdated
	}
	return e.record(ctx, action, SeverityWarning, OutcomeSuccess,
		ResourceSettings, setting, CategoryGovernance, "", nil,
		"value", value,
	)
}

// OnOperationFailed implements plugin.OnOperationFailed. Authorization
// failures get their own action so they can be alerted on.
func (e *Extension) OnOperationFailed(ctx context.Context, op string, caller types.Address, err error) error {
	action, severity := ActionOperationRejected, SeverityInfo
	if errs.IsAuthorization(err) {
		action, severity = ActionUnauthorizedOperation, SeverityWarning
	}

	kv := []any{"operation", op}
	var typed *errs.Error
	if errors.As(err, &typed) && typed.ProposalID != nil {
		kv = append(kv, "proposal_id", *typed.ProposalID)
	}
	return e.record(ctx, action, severity, OutcomeFailure,
		resourceFor(op), "", CategoryAccess, caller.Hex(), err,
		kv...,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func proposalID(p *proposal.Proposal) string {
	return strconv.FormatUint(p.ID, 10)
}

func resourceFor(op string) string {
	switch op {
	case "transfer", "transfer_from", "approve":
		return ResourceAccount
	case "add_admin", "remove_admin":
		return ResourceRole
	case "set_minimum_signatures", "update_percentage_fees":
		return ResourceSettings
	default:
		return ResourceProposal
	}
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category, actor string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Actor:      actor,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
