// Package observability provides a metrics extension for feeledger that
// counts committed and rejected operations via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/plugin"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnTransfer          = (*MetricsExtension)(nil)
	_ plugin.OnApproval          = (*MetricsExtension)(nil)
	_ plugin.OnFeesCollected     = (*MetricsExtension)(nil)
	_ plugin.OnProposalCreated   = (*MetricsExtension)(nil)
	_ plugin.OnProposalSigned    = (*MetricsExtension)(nil)
	_ plugin.OnProposalExecuted  = (*MetricsExtension)(nil)
	_ plugin.OnProposalCancelled = (*MetricsExtension)(nil)
	_ plugin.OnAdminChanged      = (*MetricsExtension)(nil)
	_ plugin.OnSettingsChanged   = (*MetricsExtension)(nil)
	_ plugin.OnOperationFailed   = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics. Names are dot-separated.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger activity metrics.
// Register it as a feeledger plugin to track token and proposal flow.
type MetricsExtension struct {
	factory MetricFactory

	// Token metrics
	Transfers     Counter
	Approvals     Counter
	FeesCollected Counter
	Payouts       Counter

	// Proposal metrics
	ProposalsCreated      Counter
	ProposalsSigned       Counter
	ProposalsExecuted     Counter
	ProposalsCancelled    Counter
	SignaturesAtExecution Histogram

	// Governance metrics
	AdminsAdded     Counter
	AdminsRemoved   Counter
	SettingsChanged Counter

	// Failure metrics
	OperationsRejected     Counter
	UnauthorizedOperations Counter

	// Journal metrics
	JournalEventsFlushed Counter
	JournalBatchSize     Histogram
	JournalFlushLatency  Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		Transfers:     factory.Counter("feeledger.token.transfers"),
		Approvals:     factory.Counter("feeledger.token.approvals"),
		FeesCollected: factory.Counter("feeledger.fees.collected"),
		Payouts:       factory.Counter("feeledger.fees.payouts"),

		ProposalsCreated:      factory.Counter("feeledger.proposal.created"),
		ProposalsSigned:       factory.Counter("feeledger.proposal.signed"),
		ProposalsExecuted:     factory.Counter("feeledger.proposal.executed"),
		ProposalsCancelled:    factory.Counter("feeledger.proposal.cancelled"),
		SignaturesAtExecution: factory.Histogram("feeledger.proposal.signatures"),

		AdminsAdded:     factory.Counter("feeledger.admin.added"),
		AdminsRemoved:   factory.Counter("feeledger.admin.removed"),
		SettingsChanged: factory.Counter("feeledger.settings.changed"),

		OperationsRejected:     factory.Counter("feeledger.operation.rejected"),
		UnauthorizedOperations: factory.Counter("feeledger.operation.unauthorized"),

		JournalEventsFlushed: factory.Counter("feeledger.journal.events.flushed"),
		JournalBatchSize:     factory.Histogram("feeledger.journal.batch.size"),
		JournalFlushLatency:  factory.Histogram("feeledger.journal.flush.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Token hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, from, _ types.Address, _ *uint256.Int) error {
	if types.IsZero(from) {
		m.Payouts.Inc()
		return nil
	}
	m.Transfers.Inc()
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _, _ types.Address, _ *uint256.Int) error {
	m.Approvals.Inc()
	return nil
}

// OnFeesCollected implements plugin.OnFeesCollected.
func (m *MetricsExtension) OnFeesCollected(_ context.Context, _ types.Address, _, _ *uint256.Int) error {
	m.FeesCollected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Proposal hooks
// ──────────────────────────────────────────────────

// OnProposalCreated implements plugin.OnProposalCreated.
func (m *MetricsExtension) OnProposalCreated(_ context.Context, _ *proposal.Proposal) error {
	m.ProposalsCreated.Inc()
	return nil
}

// OnProposalSigned implements plugin.OnProposalSigned.
func (m *MetricsExtension) OnProposalSigned(_ context.Context, _ *proposal.Proposal, _ types.Address) error {
	m.ProposalsSigned.Inc()
	return nil
}

// OnProposalExecuted implements plugin.OnProposalExecuted.
func (m *MetricsExtension) OnProposalExecuted(_ context.Context, p *proposal.Proposal) error {
	m.ProposalsExecuted.Inc()
	m.SignaturesAtExecution.Observe(float64(p.SignatureCount()))
	return nil
}

// OnProposalCancelled implements plugin.OnProposalCancelled.
func (m *MetricsExtension) OnProposalCancelled(_ context.Context, _ *proposal.Proposal) error {
	m.ProposalsCancelled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnAdminChanged implements plugin.OnAdminChanged.
func (m *MetricsExtension) OnAdminChanged(_ context.Context, _ types.Address, added bool) error {
	if added {
		m.AdminsAdded.Inc()
	} else {
		m.AdminsRemoved.Inc()
	}
	return nil
}

// OnSettingsChanged implements plugin.OnSettingsChanged.
func (m *MetricsExtension) OnSettingsChanged(_ context.Context, _ string, _ uint64) error {
	m.SettingsChanged.Inc()
	return nil
}

// OnOperationFailed implements plugin.OnOperationFailed.
func (m *MetricsExtension) OnOperationFailed(_ context.Context, _ string, _ types.Address, err error) error {
	if errs.IsAuthorization(err) {
		m.UnauthorizedOperations.Inc()
		return nil
	}
	m.OperationsRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.JournalEventsFlushed.Add(float64(count))
	m.JournalBatchSize.Observe(float64(count))
	m.JournalFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
