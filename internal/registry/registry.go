// Package registry tracks which contract addresses are known pair
// contracts, so events emitted by unrelated LP-token-like contracts can be
// skipped without a store round trip per event.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

type PairRegistry struct {
	store  store.Store
	logger zerolog.Logger

	mu    sync.RWMutex
	known map[string]struct{}
}

func New(st store.Store, logger zerolog.Logger) *PairRegistry {
	return &PairRegistry{
		store:  st,
		logger: logger.With().Str("component", "registry").Logger(),
		known:  make(map[string]struct{}),
	}
}

// Register marks an address as a pair contract. Called when a pair entity
// is created.
func (r *PairRegistry) Register(address string) {
	r.mu.Lock()
	r.known[address] = struct{}{}
	r.mu.Unlock()
}

// IsKnownPair reports whether the address belongs to a pair contract. A
// miss in the in-memory set falls through to the store, so restarts do not
// lose previously created pairs.
func (r *PairRegistry) IsKnownPair(ctx context.Context, address string) (bool, error) {
	r.mu.RLock()
	_, ok := r.known[address]
	r.mu.RUnlock()
	if ok {
		return true, nil
	}

	_, err := r.store.GetPair(ctx, address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	r.Register(address)
	return true, nil
}
