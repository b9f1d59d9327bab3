// Package observability provides a metrics plugin for Tenure that records
// lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnInit            = (*MetricsExtension)(nil)
	_ plugin.OnMint            = (*MetricsExtension)(nil)
	_ plugin.OnTransfer        = (*MetricsExtension)(nil)
	_ plugin.OnTransferBatch   = (*MetricsExtension)(nil)
	_ plugin.OnBurn            = (*MetricsExtension)(nil)
	_ plugin.OnMetadataChanged = (*MetricsExtension)(nil)
	_ plugin.OnRentalChanged   = (*MetricsExtension)(nil)
	_ plugin.OnAttributeFrozen = (*MetricsExtension)(nil)
	_ plugin.OnPaused          = (*MetricsExtension)(nil)
	_ plugin.OnUnpaused        = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed  = (*MetricsExtension)(nil)
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

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide lifecycle metrics.
// Register it as a Tenure plugin to automatically track token movement.
type MetricsExtension struct {
	factory MetricFactory

	// Movement metrics
	Mints          Counter
	Transfers      Counter
	Burns          Counter
	AmountMinted   Counter
	AmountBurned   Counter
	BatchSize      Histogram
	BatchTransfers Counter

	// Metadata and rental metrics
	MetadataChanges Counter
	RentalChanges   Counter

	// Governance metrics
	AttributesFrozen Counter
	Pauses           Counter
	Unpauses         Counter

	// Journal metrics
	JournalFlushSize    Histogram
	JournalFlushLatency Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Movement metrics
		Mints:          factory.Counter("tenure.mint.count"),
		Transfers:      factory.Counter("tenure.transfer.count"),
		Burns:          factory.Counter("tenure.burn.count"),
		AmountMinted:   factory.Counter("tenure.mint.amount"),
		AmountBurned:   factory.Counter("tenure.burn.amount"),
		BatchSize:      factory.Histogram("tenure.batch.size"),
		BatchTransfers: factory.Counter("tenure.batch.count"),

		// Metadata and rental metrics
		MetadataChanges: factory.Counter("tenure.metadata.changes"),
		RentalChanges:   factory.Counter("tenure.rental.changes"),

		// Governance metrics
		AttributesFrozen: factory.Counter("tenure.attribute.frozen"),
		Pauses:           factory.Counter("tenure.pause.count"),
		Unpauses:         factory.Counter("tenure.unpause.count"),

		// Journal metrics
		JournalFlushSize:    factory.Histogram("tenure.journal.flush.size"),
		JournalFlushLatency: factory.Histogram("tenure.journal.flush.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Movement hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (m *MetricsExtension) OnMint(_ context.Context, ev plugin.TransferEvent) error {
	m.Mints.Inc()
	m.AmountMinted.Add(float64(ev.Amount))
	return nil
}

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, _ plugin.TransferEvent) error {
	m.Transfers.Inc()
	return nil
}

// OnTransferBatch implements plugin.OnTransferBatch.
func (m *MetricsExtension) OnTransferBatch(_ context.Context, evs []plugin.TransferEvent) error {
	m.BatchTransfers.Inc()
	m.BatchSize.Observe(float64(len(evs)))
	return nil
}

// OnBurn implements plugin.OnBurn.
func (m *MetricsExtension) OnBurn(_ context.Context, ev plugin.TransferEvent) error {
	m.Burns.Inc()
	m.AmountBurned.Add(float64(ev.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Metadata and rental hooks
// ──────────────────────────────────────────────────

// OnMetadataChanged implements plugin.OnMetadataChanged.
func (m *MetricsExtension) OnMetadataChanged(_ context.Context, _ id.ID, _ uint64) error {
	m.MetadataChanges.Inc()
	return nil
}

// OnRentalChanged implements plugin.OnRentalChanged.
func (m *MetricsExtension) OnRentalChanged(_ context.Context, _ id.ID, _ uint64, _ id.ID, _ time.Time) error {
	m.RentalChanges.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnAttributeFrozen implements plugin.OnAttributeFrozen.
func (m *MetricsExtension) OnAttributeFrozen(_ context.Context, _ id.ID, _ string) error {
	m.AttributesFrozen.Inc()
	return nil
}

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context, _ id.ID) error {
	m.Pauses.Inc()
	return nil
}

// OnUnpaused implements plugin.OnUnpaused.
func (m *MetricsExtension) OnUnpaused(_ context.Context, _ id.ID) error {
	m.Unpauses.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.JournalFlushSize.Observe(float64(count))
	m.JournalFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
