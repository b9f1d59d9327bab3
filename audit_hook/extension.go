// Package audithook bridges Tenure lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnMint            = (*Extension)(nil)
	_ plugin.OnTransfer        = (*Extension)(nil)
	_ plugin.OnTransferBatch   = (*Extension)(nil)
	_ plugin.OnBurn            = (*Extension)(nil)
	_ plugin.OnMetadataChanged = (*Extension)(nil)
	_ plugin.OnRentalChanged   = (*Extension)(nil)
	_ plugin.OnAttributeFrozen = (*Extension)(nil)
	_ plugin.OnPaused          = (*Extension)(nil)
	_ plugin.OnUnpaused        = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
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

// Extension bridges Tenure lifecycle events to an audit trail backend.
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
// Movement hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (e *Extension) OnMint(ctx context.Context, ev plugin.TransferEvent) error {
	return e.record(ctx, ActionMint, SeverityInfo, OutcomeSuccess,
		ResourceToken, strconv.FormatUint(ev.TokenID, 10), CategoryMovement, nil,
		"ledger", ev.Ledger.String(),
		"caller", ev.Caller.String(),
		"to", ev.To.String(),
		"amount", int64(ev.Amount),
	)
}

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, ev plugin.TransferEvent) error {
	return e.record(ctx, ActionTransfer, SeverityInfo, OutcomeSuccess,
		ResourceToken, strconv.FormatUint(ev.TokenID, 10), CategoryMovement, nil,
		"ledger", ev.Ledger.String(),
		"caller", ev.Caller.String(),
		"from", ev.From.String(),
		"to", ev.To.String(),
		"amount", int64(ev.Amount),
	)
}

// OnTransferBatch implements plugin.OnTransferBatch.
func (e *Extension) OnTransferBatch(ctx context.Context, evs []plugin.TransferEvent) error {
	if len(evs) == 0 {
		return nil
	}

	return e.record(ctx, ActionTransferBatch, SeverityInfo, OutcomeSuccess,
		ResourceToken, "", CategoryMovement, nil,
		"ledger", evs[0].Ledger.String(),
		"caller", evs[0].Caller.String(),
		"entries", len(evs),
	)
}

// OnBurn implements plugin.OnBurn.
func (e *Extension) OnBurn(ctx context.Context, ev plugin.TransferEvent) error {
	return e.record(ctx, ActionBurn, SeverityInfo, OutcomeSuccess,
		ResourceToken, strconv.FormatUint(ev.TokenID, 10), CategoryMovement, nil,
		"ledger", ev.Ledger.String(),
		"caller", ev.Caller.String(),
		"from", ev.From.String(),
		"amount", int64(ev.Amount),
	)
}

// ──────────────────────────────────────────────────
// Metadata and rental hooks
// ──────────────────────────────────────────────────

// OnMetadataChanged implements plugin.OnMetadataChanged.
func (e *Extension) OnMetadataChanged(ctx context.Context, ledger id.ID, tokenID uint64) error {
	return e.record(ctx, ActionMetadataChanged, SeverityInfo, OutcomeSuccess,
		ResourceMetadata, strconv.FormatUint(tokenID, 10), CategoryMetadata, nil,
		"ledger", ledger.String(),
		"token_id", tokenID,
	)
}

// OnRentalChanged implements plugin.OnRentalChanged.
func (e *Extension) OnRentalChanged(ctx context.Context, ledger id.ID, tokenID uint64, user id.ID, expires time.Time) error {
	return e.record(ctx, ActionRentalChanged, SeverityInfo, OutcomeSuccess,
		ResourceRental, strconv.FormatUint(tokenID, 10), CategoryMetadata, nil,
		"ledger", ledger.String(),
		"token_id", tokenID,
		"user", user.String(),
		"expires", expires,
	)
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnAttributeFrozen implements plugin.OnAttributeFrozen.
func (e *Extension) OnAttributeFrozen(ctx context.Context, ledger id.ID, attribute string) error {
	return e.record(ctx, ActionAttributeFrozen, SeverityWarning, OutcomeSuccess,
		ResourceLedger, ledger.String(), CategoryGovernance, nil,
		"attribute", attribute,
	)
}

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context, ledger id.ID) error {
	return e.record(ctx, ActionPaused, SeverityWarning, OutcomeSuccess,
		ResourceLedger, ledger.String(), CategoryGovernance, nil,
		"event", "ledger_paused",
	)
}

// OnUnpaused implements plugin.OnUnpaused.
func (e *Extension) OnUnpaused(ctx context.Context, ledger id.ID) error {
	return e.record(ctx, ActionUnpaused, SeverityInfo, OutcomeSuccess,
		ResourceLedger, ledger.String(), CategoryGovernance, nil,
		"event", "ledger_unpaused",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
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
