// Package zenlinkv2 derives trading and liquidity entities from Zenlink V2
// (Uniswap-V2-style) factory and pair events.
package zenlinkv2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/ethrpc"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/loader"
	"github.com/zenlinkpro/zenlink-indexer/internal/pricing"
	"github.com/zenlinkpro/zenlink-indexer/internal/realtime"
	"github.com/zenlinkpro/zenlink-indexer/internal/registry"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// Module implements the core.Module interface for Zenlink V2.
type Module struct {
	manifest *core.Manifest
	logger   zerolog.Logger
	store    store.Store
	pairs    *registry.PairRegistry
	oracle   *pricing.Oracle

	config *Config

	handlers map[common.Hash]EventHandler

	// Optional collaborators, nil-safe.
	publisher *realtime.Publisher
	balances  ethrpc.BalanceReader
	metadata  ethrpc.MetadataReader

	// Parsed config values.
	minUSDThresholdNewPairs decimal.Decimal
	minLiquidityLock        *big.Int
	whitelisted             map[string]struct{}
}

// Config represents the module configuration carried in the manifest
// context.
type Config struct {
	FactoryAddress string   `yaml:"factoryAddress"`
	WrappedNative  string   `yaml:"wrappedNative"`
	Whitelist      []string `yaml:"whitelist"`

	ReferencePairs ReferencePairs `yaml:"referencePairs"`

	// MinimumLiquidityETH is the native-reserve floor for price-source
	// pairs. MinimumUSDThresholdNewPairs is the reserve floor applied
	// to tracked volume while a pair has fewer than five LPs.
	MinimumLiquidityETH         string `yaml:"minimumLiquidityETH"`
	MinimumUSDThresholdNewPairs string `yaml:"minimumUSDThresholdNewPairs"`

	// MinimumLiquidityLockAmount is the LP amount burned to the zero
	// address when a pair bootstraps.
	MinimumLiquidityLockAmount string `yaml:"minimumLiquidityLockAmount"`
}

type ReferencePairs struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// EventHandler function type for handling specific events
type EventHandler func(ctx context.Context, module *Module, event *core.Event) error

// lpCountCapForNewPairs is the liquidity-provider count under which the
// reserve-floor check gates tracked volume.
const lpCountCapForNewPairs = 5

// New creates a Zenlink V2 module from an already-loaded manifest.
func New(manifest *core.Manifest, st store.Store, logger zerolog.Logger) (*Module, error) {
	var config Config
	if err := manifest.DecodeContext(&config); err != nil {
		return nil, fmt.Errorf("failed to parse module config: %w", err)
	}

	// Normalize address casing from config to avoid user formatting requirements
	config.FactoryAddress = strings.ToLower(config.FactoryAddress)
	config.WrappedNative = strings.ToLower(config.WrappedNative)
	config.ReferencePairs.Primary = strings.ToLower(config.ReferencePairs.Primary)
	config.ReferencePairs.Secondary = strings.ToLower(config.ReferencePairs.Secondary)
	for i := range config.Whitelist {
		config.Whitelist[i] = strings.ToLower(config.Whitelist[i])
	}

	if config.FactoryAddress == "" {
		return nil, errors.New("factoryAddress is required in module config")
	}
	if config.WrappedNative == "" {
		return nil, errors.New("wrappedNative is required in module config")
	}

	minLiquidityETH := bigdec.Parse(config.MinimumLiquidityETH)
	if minLiquidityETH.IsZero() {
		minLiquidityETH = decimal.NewFromInt(5)
	}
	minUSDThreshold := bigdec.Parse(config.MinimumUSDThresholdNewPairs)
	if minUSDThreshold.IsZero() {
		minUSDThreshold = decimal.NewFromInt(50)
	}
	minLock, ok := new(big.Int).SetString(config.MinimumLiquidityLockAmount, 10)
	if !ok {
		minLock = big.NewInt(1000)
	}

	moduleLogger := logger.With().Str("module", manifest.Name).Logger()

	whitelisted := make(map[string]struct{}, len(config.Whitelist))
	for _, addr := range config.Whitelist {
		whitelisted[addr] = struct{}{}
	}

	m := &Module{
		manifest: manifest,
		logger:   moduleLogger,
		store:    st,
		pairs:    registry.New(st, moduleLogger),
		oracle: pricing.New(st, pricing.Config{
			WrappedNative:          config.WrappedNative,
			Whitelist:              config.Whitelist,
			PrimaryReferencePair:   config.ReferencePairs.Primary,
			SecondaryReferencePair: config.ReferencePairs.Secondary,
			MinimumLiquidityETH:    minLiquidityETH,
		}, moduleLogger),
		config:                  &config,
		handlers:                make(map[common.Hash]EventHandler),
		minUSDThresholdNewPairs: minUSDThreshold,
		minLiquidityLock:        minLock,
		whitelisted:             whitelisted,
	}

	m.registerEventHandlers()

	return m, nil
}

// NewFromManifestFile loads the manifest from disk and builds the module.
func NewFromManifestFile(path string, st store.Store, logger zerolog.Logger) (*Module, error) {
	manifestLoader := loader.NewManifestLoader(logger)
	manifest, err := manifestLoader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return New(manifest, st, logger)
}

// registerEventHandlers sets up event signature to handler mappings
func (m *Module) registerEventHandlers() {
	m.handlers[pairCreatedSig] = handlePairCreated
	m.handlers[transferSig] = handleTransfer
	m.handlers[syncSig] = handleSync
	m.handlers[swapSig] = handleSwap
	m.handlers[mintSig] = handleMint
	m.handlers[burnSig] = handleBurn
}

// Name returns the module name
func (m *Module) Name() string {
	return m.manifest.Name
}

// Version returns the module version
func (m *Module) Version() string {
	return m.manifest.Version
}

// Manifest returns the module manifest
func (m *Module) Manifest() *core.Manifest {
	return m.manifest
}

// SetPublisher injects the realtime publisher. Optional.
func (m *Module) SetPublisher(p *realtime.Publisher) {
	m.publisher = p
}

// SetBalanceReader injects the LP-balance reader used to refresh
// liquidity positions. Optional; without it position balances keep their
// last stored value.
func (m *Module) SetBalanceReader(r ethrpc.BalanceReader) {
	m.balances = r
}

// SetMetadataReader injects the ERC-20 metadata reader used when new
// tokens appear. Optional.
func (m *Module) SetMetadataReader(r ethrpc.MetadataReader) {
	m.metadata = r
}

// Oracle exposes the module's price oracle.
func (m *Module) Oracle() *pricing.Oracle {
	return m.oracle
}

// HandleEvent processes a single event log
func (m *Module) HandleEvent(ctx context.Context, event *core.Event) error {
	handler, exists := m.handlers[event.Topic0()]
	if !exists {
		return nil
	}
	return handler(ctx, m, event)
}

// GetEventFilters returns the event filters this module is interested in
func (m *Module) GetEventFilters() []core.EventFilter {
	return []core.EventFilter{
		{Address: m.config.FactoryAddress, Topic0: pairCreatedSig.Hex()},
		{Topic0: transferSig.Hex()},
		{Topic0: syncSig.Hex()},
		{Topic0: swapSig.Hex()},
		{Topic0: mintSig.Hex()},
		{Topic0: burnSig.Hex()},
	}
}

// GetStartBlock returns the block number to start indexing from
func (m *Module) GetStartBlock() uint64 {
	if len(m.manifest.DataSources) > 0 && m.manifest.DataSources[0].Source.StartBlock != nil {
		return *m.manifest.DataSources[0].Source.StartBlock
	}
	return 0
}

func (m *Module) isWhitelisted(tokenID string) bool {
	_, ok := m.whitelisted[tokenID]
	return ok
}

// pairForEvent resolves the pair contract behind an event. Events from
// addresses that are not known pairs (other ERC-20 transfers match the
// same topic) resolve to nil and the caller skips the event.
func (m *Module) pairForEvent(ctx context.Context, event *core.Event) (*entity.Pair, error) {
	known, err := m.pairs.IsKnownPair(ctx, event.Address)
	if err != nil {
		return nil, err
	}
	if !known {
		m.logger.Debug().
			Str("address", event.Address).
			Uint64("block", event.BlockNumber).
			Msg("Skipping event from unknown pair contract")
		return nil, nil
	}

	pair, err := m.store.GetPair(ctx, event.Address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pair, nil
}
