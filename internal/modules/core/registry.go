package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Registry routes delivered events to the modules whose filters match.
// Events are handed to modules one at a time, in the order they arrive;
// the delivery contract (see Module) makes that ordering meaningful.
type Registry struct {
	modules map[string]Module
	logger  zerolog.Logger

	// Event routing
	topicFilters   map[string][]string // topic0 -> module names
	addressFilters map[string][]string // address -> module names

	mu      sync.RWMutex
	running bool
}

// NewRegistry creates an empty module registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		modules:        make(map[string]Module),
		logger:         logger.With().Str("component", "module_registry").Logger(),
		topicFilters:   make(map[string][]string),
		addressFilters: make(map[string][]string),
	}
}

// Register adds a module and indexes its event filters.
func (r *Registry) Register(module Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := module.Name()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s is already registered", name)
	}

	manifest := module.Manifest()
	if manifest == nil {
		return fmt.Errorf("module %s has no manifest", name)
	}
	if err := manifest.ValidateManifest(); err != nil {
		return fmt.Errorf("module %s has invalid manifest: %w", name, err)
	}

	for _, filter := range module.GetEventFilters() {
		if filter.Topic0 != "" {
			topic := strings.ToLower(filter.Topic0)
			r.topicFilters[topic] = append(r.topicFilters[topic], name)
		}
		if filter.Address != "" {
			address := strings.ToLower(filter.Address)
			r.addressFilters[address] = append(r.addressFilters[address], name)
		}
	}

	r.modules[name] = module

	r.logger.Info().
		Str("module", name).
		Str("version", module.Version()).
		Int("filters", len(module.GetEventFilters())).
		Msg("Module registered")

	return nil
}

// Dispatch routes one event to every interested module. A handler error
// stops dispatch and is returned to the caller: under in-order delivery
// a skipped event would silently corrupt derived state downstream.
func (r *Registry) Dispatch(ctx context.Context, event *Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		return nil
	}

	for _, name := range r.interestedModules(event) {
		module := r.modules[name]
		if err := module.HandleEvent(ctx, event); err != nil {
			r.logger.Error().
				Err(err).
				Str("module", name).
				Uint64("block", event.BlockNumber).
				Str("tx_hash", event.TxHash).
				Msg("Module failed to process event")
			return fmt.Errorf("module %s: %w", name, err)
		}
	}

	return nil
}

func (r *Registry) interestedModules(event *Event) []string {
	var interested []string
	seen := make(map[string]bool)

	topic0 := strings.ToLower(event.Topic0().Hex())
	for _, name := range r.topicFilters[topic0] {
		if !seen[name] {
			interested = append(interested, name)
			seen[name] = true
		}
	}
	for _, name := range r.addressFilters[event.Address] {
		if !seen[name] {
			interested = append(interested, name)
			seen[name] = true
		}
	}

	return interested
}

// Start enables dispatching.
func (r *Registry) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("module registry is already running")
	}
	r.running = true
	r.logger.Info().Int("modules", len(r.modules)).Msg("Module registry started")
	return nil
}

// Stop disables dispatching. Safe to call more than once.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	r.logger.Info().Msg("Module registry stopped")
}

// GetModule returns a registered module by name.
func (r *Registry) GetModule(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, exists := r.modules[name]
	return module, exists
}

// ListModules returns all registered module names.
func (r *Registry) ListModules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	return names
}
