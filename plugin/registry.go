package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/tenure/id"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onMint                 []OnMint
	onTransfer             []OnTransfer
	onTransferBatch        []OnTransferBatch
	onBurn                 []OnBurn
	onMetadataChanged      []OnMetadataChanged
	onMetadataRangeChanged []OnMetadataRangeChanged
	onRentalChanged        []OnRentalChanged
	onAttributeFrozen      []OnAttributeFrozen
	onPaused               []OnPaused
	onUnpaused             []OnUnpaused
	onJournalFlushed       []OnJournalFlushed
	metadataFormatters     map[string]MetadataFormatter
	transferValidators     []TransferValidator
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:             slog.Default(),
		metadataFormatters: make(map[string]MetadataFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnTransferBatch); ok {
		r.onTransferBatch = append(r.onTransferBatch, v)
	}
	if v, ok := p.(OnBurn); ok {
		r.onBurn = append(r.onBurn, v)
	}
	if v, ok := p.(OnMetadataChanged); ok {
		r.onMetadataChanged = append(r.onMetadataChanged, v)
	}
	if v, ok := p.(OnMetadataRangeChanged); ok {
		r.onMetadataRangeChanged = append(r.onMetadataRangeChanged, v)
	}
	if v, ok := p.(OnRentalChanged); ok {
		r.onRentalChanged = append(r.onRentalChanged, v)
	}
	if v, ok := p.(OnAttributeFrozen); ok {
		r.onAttributeFrozen = append(r.onAttributeFrozen, v)
	}
	if v, ok := p.(OnPaused); ok {
		r.onPaused = append(r.onPaused, v)
	}
	if v, ok := p.(OnUnpaused); ok {
		r.onUnpaused = append(r.onUnpaused, v)
	}
	if v, ok := p.(OnJournalFlushed); ok {
		r.onJournalFlushed = append(r.onJournalFlushed, v)
	}
	if v, ok := p.(MetadataFormatter); ok {
		r.metadataFormatters[v.FormatterName()] = v
	}
	if v, ok := p.(TransferValidator); ok {
		r.transferValidators = append(r.transferValidators, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnMint)(nil)).Elem(), "OnMint")
	checkInterface(reflect.TypeOf((*OnTransfer)(nil)).Elem(), "OnTransfer")
	checkInterface(reflect.TypeOf((*OnBurn)(nil)).Elem(), "OnBurn")
	checkInterface(reflect.TypeOf((*OnMetadataChanged)(nil)).Elem(), "OnMetadataChanged")
	checkInterface(reflect.TypeOf((*OnRentalChanged)(nil)).Elem(), "OnRentalChanged")
	checkInterface(reflect.TypeOf((*MetadataFormatter)(nil)).Elem(), "MetadataFormatter")
	checkInterface(reflect.TypeOf((*TransferValidator)(nil)).Elem(), "TransferValidator")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMint emits a mint event.
func (r *Registry) EmitMint(ctx context.Context, ev TransferEvent) {
	r.mu.RLock()
	plugins := r.onMint
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMint(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnMint failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransfer emits a transfer event.
func (r *Registry) EmitTransfer(ctx context.Context, ev TransferEvent) {
	r.mu.RLock()
	plugins := r.onTransfer
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransfer(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnTransfer failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferBatch emits a batch event with every movement performed.
func (r *Registry) EmitTransferBatch(ctx context.Context, evs []TransferEvent) {
	r.mu.RLock()
	plugins := r.onTransferBatch
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransferBatch(ctx, evs)
		}); err != nil {
			r.logger.Warn("plugin OnTransferBatch failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBurn emits a burn event.
func (r *Registry) EmitBurn(ctx context.Context, ev TransferEvent) {
	r.mu.RLock()
	plugins := r.onBurn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBurn(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnBurn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMetadataChanged emits a metadata changed event for one token.
func (r *Registry) EmitMetadataChanged(ctx context.Context, ledger id.ID, tokenID uint64) {
	r.mu.RLock()
	plugins := r.onMetadataChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMetadataChanged(ctx, ledger, tokenID)
		}); err != nil {
			r.logger.Warn("plugin OnMetadataChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMetadataRangeChanged emits a metadata changed event for a range.
func (r *Registry) EmitMetadataRangeChanged(ctx context.Context, ledger id.ID, fromID, toID uint64) {
	r.mu.RLock()
	plugins := r.onMetadataRangeChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMetadataRangeChanged(ctx, ledger, fromID, toID)
		}); err != nil {
			r.logger.Warn("plugin OnMetadataRangeChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRentalChanged emits a rental changed event.
func (r *Registry) EmitRentalChanged(ctx context.Context, ledger id.ID, tokenID uint64, user id.ID, expires time.Time) {
	r.mu.RLock()
	plugins := r.onRentalChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRentalChanged(ctx, ledger, tokenID, user, expires)
		}); err != nil {
			r.logger.Warn("plugin OnRentalChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAttributeFrozen emits an attribute frozen event.
func (r *Registry) EmitAttributeFrozen(ctx context.Context, ledger id.ID, attribute string) {
	r.mu.RLock()
	plugins := r.onAttributeFrozen
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAttributeFrozen(ctx, ledger, attribute)
		}); err != nil {
			r.logger.Warn("plugin OnAttributeFrozen failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaused emits a paused event.
func (r *Registry) EmitPaused(ctx context.Context, ledger id.ID) {
	r.mu.RLock()
	plugins := r.onPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaused(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnPaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUnpaused emits an unpaused event.
func (r *Registry) EmitUnpaused(ctx context.Context, ledger id.ID) {
	r.mu.RLock()
	plugins := r.onUnpaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnpaused(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnUnpaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitJournalFlushed emits a journal flushed event.
func (r *Registry) EmitJournalFlushed(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onJournalFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJournalFlushed(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnJournalFlushed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetMetadataFormatter returns a metadata formatter by name.
func (r *Registry) GetMetadataFormatter(name string) MetadataFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadataFormatters[name]
}

// ValidateTransfer consults every registered transfer validator, in
// registration order. Unlike event emission, a validator error is
// returned to the caller and aborts the operation.
func (r *Registry) ValidateTransfer(ctx context.Context, ev TransferEvent) error {
	r.mu.RLock()
	validators := r.transferValidators
	r.mu.RUnlock()

	for _, v := range validators {
		if err := v.ValidateTransfer(ctx, ev); err != nil {
			return fmt.Errorf("plugin %s rejected transfer: %w", v.Name(), err)
		}
	}

	return nil
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
