package audithook

// Action constants for audit events.
const (
	// Token actions
	ActionTransfer      = "token.transfer"
	ActionApproval      = "token.approval"
	ActionFeesCollected = "fees.collected"
	ActionPayout        = "fees.payout"

	// Proposal actions
	ActionProposalCreated   = "proposal.created"
	ActionProposalSigned    = "proposal.signed"
	ActionProposalExecuted  = "proposal.executed"
	ActionProposalCancelled = "proposal.cancelled"

	// Governance actions
	ActionAdminAdded               = "admin.added"
	ActionAdminRemoved             = "admin.removed"
	ActionMinimumSignaturesUpdated = "settings.minimum_signatures"
	ActionPercentageFeesUpdated    = "settings.percentage_fees"

	// Rejections
	ActionOperationRejected     = "operation.rejected"
	ActionUnauthorizedOperation = "operation.unauthorized"
)

// Resource constants for audit events.
const (
	ResourceAccount  = "account"
	ResourcePool     = "pool"
	ResourceProposal = "proposal"
	ResourceRole     = "role"
	ResourceSettings = "settings"
)

// Category constants for audit events.
const (
	CategoryToken      = "token"
	CategoryTreasury   = "treasury"
	CategoryGovernance = "governance"
	CategoryAccess     = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
