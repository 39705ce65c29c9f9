// Package core defines the contract between the event ingestion host and
// the modules that derive entities from event logs.
package core

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Module represents a processing module that derives entities from
// blockchain events. Inspired by The Graph Protocol's subgraph pattern.
//
// Delivery contract: the host hands each module the logs matching its
// filters exactly once, in block order and log-index order within a
// block. Handlers lean on that ordering (liquidity reconciliation in
// particular) and do not defend against replays or gaps.
type Module interface {
	// Name returns the unique name of the module
	Name() string

	// Version returns the module version
	Version() string

	// Manifest returns the module's manifest configuration
	Manifest() *Manifest

	// HandleEvent processes a single event log that matches this module's filters
	HandleEvent(ctx context.Context, event *Event) error

	// GetEventFilters returns the event filters this module is interested in
	GetEventFilters() []EventFilter

	// GetStartBlock returns the block number from which this module should start processing
	GetStartBlock() uint64
}

// Event is one log with its block context resolved by the host.
type Event struct {
	Log         *types.Log
	BlockNumber uint64
	Timestamp   int64

	// Lowercased hex forms used as entity ids.
	Address  string
	TxHash   string
	LogIndex uint
}

// NewEvent wraps a log with its block timestamp.
func NewEvent(log *types.Log, timestamp int64) *Event {
	return &Event{
		Log:         log,
		BlockNumber: log.BlockNumber,
		Timestamp:   timestamp,
		Address:     strings.ToLower(log.Address.Hex()),
		TxHash:      strings.ToLower(log.TxHash.Hex()),
		LogIndex:    log.Index,
	}
}

// Topic0 returns the event signature hash, or the zero hash for anonymous
// logs.
func (e *Event) Topic0() common.Hash {
	if len(e.Log.Topics) == 0 {
		return common.Hash{}
	}
	return e.Log.Topics[0]
}

// EventFilter defines what events a module wants to receive
type EventFilter struct {
	// Address is the contract address to watch (optional, empty = all addresses)
	Address string `yaml:"address,omitempty"`

	// Topic0 is the event signature hash (optional, empty = all events)
	Topic0 string `yaml:"topic0,omitempty"`

	// Topics are additional indexed parameters to filter by
	Topics []string `yaml:"topics,omitempty"`
}
