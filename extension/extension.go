// Package extension provides the Forge extension adapter for Tenure.
//
// It implements the forge.Extension interface to integrate a Tenure
// ledger into a Forge application with automatic DI registration and
// lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.tenure" or "tenure" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	tenure "github.com/xraph/tenure"
	"github.com/xraph/tenure/id"
	"github.com/xraph/tenure/store"
	"github.com/xraph/tenure/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tenure"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Holding-period token ledger engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts a Tenure ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *tenure.Ledger
	store      store.Store
	owner      id.ID
	engineOpts []tenure.Option
}

// New creates a new Tenure Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *tenure.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.resolveOwner(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts := e.buildEngineOpts()

	e.engine = tenure.NewLedger(e.store, e.owner, opts...)

	return vessel.Provide(fapp.Container(), func() (*tenure.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("tenure: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("tenure: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveOwner determines the ledger owner from programmatic options or
// the configured TypeID string.
func (e *Extension) resolveOwner() error {
	if !e.owner.IsNil() {
		return nil
	}
	if e.config.Owner == "" {
		return errors.New("tenure: ledger owner is required; set 'owner' in config or use WithOwner")
	}

	owner, err := id.ParseAccountID(e.config.Owner)
	if err != nil {
		return err
	}
	e.owner = owner
	return nil
}

// buildEngineOpts constructs tenure.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []tenure.Option {
	opts := make([]tenure.Option, 0, len(e.engineOpts)+1)

	if e.config.JournalBatchSize > 0 || e.config.JournalFlushInterval > 0 {
		batchSize := e.config.JournalBatchSize
		flushInterval := e.config.JournalFlushInterval
		defaults := DefaultConfig()
		if batchSize == 0 {
			batchSize = defaults.JournalBatchSize
		}
		if flushInterval == 0 {
			flushInterval = defaults.JournalFlushInterval
		}
		opts = append(opts, tenure.WithJournalConfig(batchSize, flushInterval))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("tenure: configuration is required but not found in config files; " +
				"ensure 'extensions.tenure' or 'tenure' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("tenure: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("journal_batch_size", e.config.JournalBatchSize),
		forge.F("journal_flush_interval", e.config.JournalFlushInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.tenure" first (namespaced pattern).
	if cm.IsSet("extensions.tenure") {
		if err := cm.Bind("extensions.tenure", &cfg); err == nil {
			e.Logger().Debug("tenure: loaded config from file",
				forge.F("key", "extensions.tenure"),
			)
			return cfg, true
		}
		e.Logger().Warn("tenure: failed to bind extensions.tenure config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "tenure" key.
	if cm.IsSet("tenure") {
		if err := cm.Bind("tenure", &cfg); err == nil {
			e.Logger().Debug("tenure: loaded config from file",
				forge.F("key", "tenure"),
			)
			return cfg, true
		}
		e.Logger().Warn("tenure: failed to bind tenure config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.JournalBatchSize == 0 {
		cfg.JournalBatchSize = defaults.JournalBatchSize
	}
	if cfg.JournalFlushInterval == 0 {
		cfg.JournalFlushInterval = defaults.JournalFlushInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Owner == "" && programmaticConfig.Owner != "" {
		yamlConfig.Owner = programmaticConfig.Owner
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.JournalBatchSize == 0 && programmaticConfig.JournalBatchSize != 0 {
		yamlConfig.JournalBatchSize = programmaticConfig.JournalBatchSize
	}
	if yamlConfig.JournalFlushInterval == 0 && programmaticConfig.JournalFlushInterval != 0 {
		yamlConfig.JournalFlushInterval = programmaticConfig.JournalFlushInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
