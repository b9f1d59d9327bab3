package audithook

// Action constants for audit events.
const (
	// Movement actions
	ActionMint          = "token.minted"
	ActionTransfer      = "token.transferred"
	ActionBurn          = "token.burned"
	ActionTransferBatch = "token.batch"

	// Metadata actions
	ActionMetadataChanged = "metadata.changed"
	ActionRentalChanged   = "rental.changed"

	// Governance actions
	ActionAttributeFrozen = "attribute.frozen"
	ActionPaused          = "ledger.paused"
	ActionUnpaused        = "ledger.unpaused"
)

// Resource constants for audit events.
const (
	ResourceToken    = "token"
	ResourceMetadata = "metadata"
	ResourceRental   = "rental"
	ResourceLedger   = "ledger"
)

// Category constants for audit events.
const (
	CategoryMovement   = "movement"
	CategoryMetadata   = "metadata"
	CategoryGovernance = "governance"
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
	OutcomePartial = "partial"
)
