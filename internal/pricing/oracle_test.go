package pricing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

const (
	wnative = "0x00000000000000000000000000000000000wglmr"
	frax    = "0x000000000000000000000000000000000000frax"
	usdc    = "0x000000000000000000000000000000000000usdc"

	nativeFraxPair = "0x0000000000000000000000000000000nativefrax"
	nativeUSDCPair = "0x0000000000000000000000000000000nativeusdc"
)

func testOracle(t *testing.T) (*Oracle, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := Config{
		WrappedNative:          wnative,
		Whitelist:              []string{wnative, frax, usdc},
		PrimaryReferencePair:   nativeFraxPair,
		SecondaryReferencePair: nativeUSDCPair,
		MinimumLiquidityETH:    decimal.NewFromInt(5),
	}
	return New(st, cfg, zerolog.Nop()), st
}

func savePair(t *testing.T, st *store.MemoryStore, id, token0, token1, token0Price, token1Price, reserveETH string) {
	t.Helper()
	require.NoError(t, st.SavePair(context.Background(), &entity.Pair{
		ID:          id,
		Token0:      token0,
		Token1:      token1,
		Token0Price: token0Price,
		Token1Price: token1Price,
		ReserveETH:  reserveETH,
	}))
}

func TestNativeUSDPriceNoReferencePairs(t *testing.T) {
	oracle, _ := testOracle(t)

	price, err := oracle.NativeUSDPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestNativeUSDPricePrefersPrimaryAboveFloor(t *testing.T) {
	oracle, st := testOracle(t)

	// native is token0, so token0Price is FRAX per native.
	savePair(t, st, nativeFraxPair, wnative, frax, "0.410000", "2.439024", "120.000000")
	savePair(t, st, nativeUSDCPair, usdc, wnative, "2.500000", "0.400000", "80.000000")

	price, err := oracle.NativeUSDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.41", price.String())
}

func TestNativeUSDPriceFallsBackToSecondary(t *testing.T) {
	oracle, st := testOracle(t)

	// Primary below the 5-native floor.
	savePair(t, st, nativeFraxPair, wnative, frax, "0.410000", "2.439024", "3.000000")
	// native is token1 here, so token1Price is USDC per native.
	savePair(t, st, nativeUSDCPair, usdc, wnative, "2.500000", "0.400000", "80.000000")

	price, err := oracle.NativeUSDPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.4", price.String())
}

func TestDerivedNativePriceOfNativeIsOne(t *testing.T) {
	oracle, _ := testOracle(t)

	price, err := oracle.DerivedNativePrice(context.Background(), wnative)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())
}

func TestDerivedNativePriceThroughNativePair(t *testing.T) {
	oracle, st := testOracle(t)
	token := "0x00000000000000000000000000000000000token"

	// 1 token = 2 native.
	savePair(t, st, "0xpair", token, wnative, "2.000000", "0.500000", "40.000000")

	price, err := oracle.DerivedNativePrice(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "2", price.String())
}

func TestDerivedNativePriceSkipsPairsBelowFloor(t *testing.T) {
	oracle, st := testOracle(t)
	token := "0x00000000000000000000000000000000000token"

	// The native pair would win on priority but is under the floor.
	savePair(t, st, "0xthin", token, wnative, "9.000000", "0.111111", "1.000000")
	// FRAX route qualifies: 1 token = 3 FRAX, 1 FRAX = 0.5 native.
	savePair(t, st, "0xdeep", token, frax, "3.000000", "0.333333", "50.000000")
	savePair(t, st, "0xfraxnative", frax, wnative, "0.500000", "2.000000", "50.000000")

	price, err := oracle.DerivedNativePrice(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1.5", price.String())
}

func TestDerivedNativePriceFirstMatchWins(t *testing.T) {
	oracle, st := testOracle(t)
	token := "0x00000000000000000000000000000000000token"

	// Both routes qualify; whitelist order says the native pair decides.
	savePair(t, st, "0xnativepair", token, wnative, "2.000000", "0.500000", "40.000000")
	savePair(t, st, "0xfraxpair", token, frax, "100.000000", "0.010000", "90.000000")
	savePair(t, st, "0xfraxnative", frax, wnative, "0.500000", "2.000000", "50.000000")

	price, err := oracle.DerivedNativePrice(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "2", price.String())
}

func TestDerivedNativePriceWhitelistCycleTerminates(t *testing.T) {
	oracle, st := testOracle(t)

	// frax and usdc only price against each other; neither reaches the
	// native token, so both must resolve to zero instead of looping.
	savePair(t, st, "0xfraxusdc", frax, usdc, "1.000000", "1.000000", "100.000000")

	price, err := oracle.DerivedNativePrice(context.Background(), frax)
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestDerivedUSDPriceThroughNativeRoute(t *testing.T) {
	oracle, st := testOracle(t)
	token := "0x00000000000000000000000000000000000token"

	savePair(t, st, nativeFraxPair, wnative, frax, "0.500000", "2.000000", "120.000000")
	savePair(t, st, "0xpair", token, wnative, "2.000000", "0.500000", "40.000000")

	price, err := oracle.DerivedUSDPrice(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())
}

func TestDerivedUSDPriceStableBasketFallback(t *testing.T) {
	oracle, st := testOracle(t)
	ctx := context.Background()
	lpToken := "0x0000000000000000000000000000000000004pool"

	savePair(t, st, nativeFraxPair, wnative, frax, "0.500000", "2.000000", "120.000000")
	savePair(t, st, "0xusdcnative", usdc, wnative, "2.000000", "0.500000", "40.000000")

	require.NoError(t, st.SaveStableSwap(ctx, &entity.StableSwap{
		ID:      "0xbasket",
		LPToken: lpToken,
		Tokens:  []string{"0xunpriceable", usdc},
	}))

	// The LP token has no whitelist route; the first priceable basket
	// member (usdc at 1 USD) supplies the price.
	price, err := oracle.DerivedUSDPrice(ctx, lpToken)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String())
}

func TestDerivedUSDPriceBasketCycleTerminates(t *testing.T) {
	oracle, st := testOracle(t)
	ctx := context.Background()

	require.NoError(t, st.SaveStableSwap(ctx, &entity.StableSwap{
		ID: "0xa", LPToken: "0xlpa", Tokens: []string{"0xlpb"},
	}))
	require.NoError(t, st.SaveStableSwap(ctx, &entity.StableSwap{
		ID: "0xb", LPToken: "0xlpb", Tokens: []string{"0xlpa"},
	}))

	price, err := oracle.DerivedUSDPrice(ctx, "0xlpa")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}
