package registry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

func TestIsKnownPair(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	reg := New(st, zerolog.Nop())

	known, err := reg.IsKnownPair(ctx, "0xpair")
	require.NoError(t, err)
	assert.False(t, known)

	reg.Register("0xpair")
	known, err = reg.IsKnownPair(ctx, "0xpair")
	require.NoError(t, err)
	assert.True(t, known)
}

func TestIsKnownPairFallsThroughToStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SavePair(ctx, &entity.Pair{ID: "0xstored", Token0: "a", Token1: "b"}))

	// Fresh registry with an empty set, as after a restart.
	reg := New(st, zerolog.Nop())

	known, err := reg.IsKnownPair(ctx, "0xstored")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = reg.IsKnownPair(ctx, "0xmissing")
	require.NoError(t, err)
	assert.False(t, known)
}
