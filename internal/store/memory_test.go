package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
)

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetPair(ctx, "0xabc")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetBundle(ctx, entity.BundleID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SavePair(ctx, &entity.Pair{
		ID:     "0xpair",
		Token0: "0xaaa",
		Token1: "0xbbb",
	}))

	first, err := s.GetPair(ctx, "0xpair")
	require.NoError(t, err)
	first.Reserve0 = "999"

	second, err := s.GetPair(ctx, "0xpair")
	require.NoError(t, err)
	assert.Empty(t, second.Reserve0, "mutation without save must not persist")
}

func TestMemoryStoreFindPairByTokens(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SavePair(ctx, &entity.Pair{
		ID:     "0xpair",
		Token0: "0xaaa",
		Token1: "0xbbb",
	}))

	pair, err := s.FindPairByTokens(ctx, "0xaaa", "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, "0xpair", pair.ID)

	pair, err = s.FindPairByTokens(ctx, "0xbbb", "0xaaa")
	require.NoError(t, err)
	assert.Equal(t, "0xpair", pair.ID)

	_, err = s.FindPairByTokens(ctx, "0xaaa", "0xccc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRemoveMint(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SaveMint(ctx, &entity.Mint{ID: "0xtx-0", Pair: "0xpair"}))
	require.NoError(t, s.RemoveMint(ctx, "0xtx-0"))

	_, err := s.GetMint(ctx, "0xtx-0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreStableSwapLookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SaveStableSwap(ctx, &entity.StableSwap{
		ID:      "0xpool",
		LPToken: "0xlp",
		Tokens:  []string{"0xusdc", "0xfrax"},
	}))

	ss, err := s.GetStableSwapByLPToken(ctx, "0xlp")
	require.NoError(t, err)
	assert.Equal(t, "0xpool", ss.ID)
	assert.Len(t, ss.Tokens, 2)

	_, err = s.GetStableSwapByLPToken(ctx, "0xother")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCountPairs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	count, err := s.CountPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.SavePair(ctx, &entity.Pair{ID: "0x1", Token0: "a", Token1: "b"}))
	require.NoError(t, s.SavePair(ctx, &entity.Pair{ID: "0x2", Token0: "c", Token1: "d"}))
	require.NoError(t, s.SavePair(ctx, &entity.Pair{ID: "0x1", Token0: "a", Token1: "b"}))

	count, err = s.CountPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
