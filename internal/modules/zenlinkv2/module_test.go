package zenlinkv2

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

const (
	testFactory = "0x049581aeb6fe262727f290165c29bdab065a1b68"
	testWMOVR   = "0x98878b06940ae243284ca214f92bb71a2b032b8a"
	testFRAX    = "0x1a93b23281cc1cde4c4741353f3064709a16197d"

	testUSDC = "0xe3f5a90f9cb311505cd691a46596599aa1a0ad7d"

	testPair    = "0x7eda899b3522683636746a2f3a7814e6ffca75e1"
	testPair2   = "0x2cc54b4a3878e36e1c754871438113c1117a3ad7"
	testPair3   = "0x3933b0214b3b117fb52646343076d229817a4e4b"
	testTokenY  = "0x6e80b7ef0465f6a1e17df5ba1e9cc3b487c6c111"
	testAlice   = "0x1d6b10ff7a17ad0d1c7e47fdd6cf57cc972b99cf"
	testBob     = "0x2a2b8e13e41b2a2cb455505db1abf579d420d5e5"
	testBlockTS = int64(1_700_000_000)
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func testManifest() *core.Manifest {
	addr := testFactory
	start := uint64(1)
	return &core.Manifest{
		Name:    "zenlink-v2",
		Version: "1.0.0",
		DataSources: []core.DataSource{{
			Kind:    "ethereum/contract",
			Name:    "Factory",
			Network: "moonriver",
			Source:  core.DataSourceSource{Address: &addr, StartBlock: &start},
		}},
		Context: map[string]interface{}{
			"factoryAddress": testFactory,
			"wrappedNative":  testWMOVR,
			"whitelist":      []interface{}{testWMOVR, testFRAX, testUSDC},
			"referencePairs": map[string]interface{}{
				"primary":   testPair,
				"secondary": testPair,
			},
			"minimumLiquidityETH":         "5",
			"minimumUSDThresholdNewPairs": "50",
			"minimumLiquidityLockAmount":  "1000",
		},
	}
}

type fixture struct {
	module *Module
	store  *store.MemoryStore
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	module, err := New(testManifest(), st, testLogger())
	require.NoError(t, err)
	return &fixture{module: module, store: st, ctx: context.Background()}
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func addrTopic(addr string) common.Hash {
	return common.BytesToHash(common.HexToAddress(addr).Bytes())
}

func makeEvent(address string, topics []common.Hash, data []byte, txHash string, block uint64, index uint) *core.Event {
	log := &types.Log{
		Address:     common.HexToAddress(address),
		Topics:      topics,
		Data:        data,
		TxHash:      common.HexToHash(txHash),
		BlockNumber: block,
		Index:       index,
	}
	return core.NewEvent(log, testBlockTS)
}

func pairCreatedEvt(token0, token1, pair, txHash string, block uint64) *core.Event {
	data := append(word(new(big.Int).SetBytes(common.HexToAddress(pair).Bytes())), word(big.NewInt(1))...)
	return makeEvent(testFactory,
		[]common.Hash{pairCreatedSig, addrTopic(token0), addrTopic(token1)},
		data, txHash, block, 0)
}

func transferEvt(pair, from, to string, value *big.Int, txHash string, block uint64, index uint) *core.Event {
	return makeEvent(pair,
		[]common.Hash{transferSig, addrTopic(from), addrTopic(to)},
		word(value), txHash, block, index)
}

func syncEvt(pair string, reserve0, reserve1 *big.Int, txHash string, block uint64, index uint) *core.Event {
	data := append(word(reserve0), word(reserve1)...)
	return makeEvent(pair, []common.Hash{syncSig}, data, txHash, block, index)
}

func swapEvt(pair, sender, to string, a0In, a1In, a0Out, a1Out *big.Int, txHash string, block uint64, index uint) *core.Event {
	data := word(a0In)
	data = append(data, word(a1In)...)
	data = append(data, word(a0Out)...)
	data = append(data, word(a1Out)...)
	return makeEvent(pair,
		[]common.Hash{swapSig, addrTopic(sender), addrTopic(to)},
		data, txHash, block, index)
}

func mintEvt(pair, sender string, amount0, amount1 *big.Int, txHash string, block uint64, index uint) *core.Event {
	data := append(word(amount0), word(amount1)...)
	return makeEvent(pair, []common.Hash{mintSig, addrTopic(sender)}, data, txHash, block, index)
}

func burnEvt(pair, sender, to string, amount0, amount1 *big.Int, txHash string, block uint64, index uint) *core.Event {
	data := append(word(amount0), word(amount1)...)
	return makeEvent(pair,
		[]common.Hash{burnSig, addrTopic(sender), addrTopic(to)},
		data, txHash, block, index)
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// createPair runs the PairCreated handler for a WMOVR/FRAX pair and the
// initial reserve syncs that give both tokens derived prices.
func (f *fixture) createPricedPair(t *testing.T) {
	t.Helper()
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))
	// First sync sets reserves and spot prices; the second runs with a
	// stored reserveETH above the floor so FRAX gets a derived price.
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair, eth(1000), eth(2500), "0xa2", 101, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair, eth(1000), eth(2500), "0xa3", 102, 0)))
}

type stubBalances struct {
	balances map[string]*big.Int
}

func (s *stubBalances) BalanceOf(_ context.Context, _, owner common.Address, _ uint64) (*big.Int, error) {
	if v, ok := s.balances[strings.ToLower(owner.Hex())]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

func TestPairCreatedCreatesEntities(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, testWMOVR, pair.Token0)
	assert.Equal(t, testFRAX, pair.Token1)
	assert.Equal(t, "0", pair.TotalSupply)
	assert.Equal(t, "0.000000", pair.VolumeUSD)
	assert.Equal(t, uint64(100), pair.CreatedAtBlockNumber)

	factory, err := f.store.GetFactory(f.ctx, testFactory)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.PairCount)

	token0, err := f.store.GetToken(f.ctx, testWMOVR)
	require.NoError(t, err)
	assert.Equal(t, int32(18), token0.Decimals)

	_, err = f.store.GetToken(f.ctx, testFRAX)
	require.NoError(t, err)
}

func TestHandleEventIgnoresUnknownContracts(t *testing.T) {
	f := newFixture(t)

	// An ERC-20 Transfer from a token that is not a pair contract.
	evt := transferEvt(testTokenY, testAlice, testBob, eth(5), "0xb1", 100, 0)
	require.NoError(t, f.module.HandleEvent(f.ctx, evt))

	_, err := f.store.GetTransaction(f.ctx, evt.TxHash)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransferBootstrapLockSkipped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	evt := transferEvt(testPair, addressZero, addressZero, big.NewInt(1000), "0xb1", 101, 0)
	require.NoError(t, f.module.HandleEvent(f.ctx, evt))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, "0", pair.TotalSupply)

	_, err = f.store.GetTransaction(f.ctx, evt.TxHash)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMintTransferOpensSkeleton(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(5), "0xb1", 101, 0)))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, eth(5).String(), pair.TotalSupply)

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"b1")
	require.NoError(t, err)
	require.Len(t, tx.Mints, 1)

	mint, err := f.store.GetMint(f.ctx, tx.Mints[0])
	require.NoError(t, err)
	assert.Equal(t, testAlice, mint.To)
	assert.Equal(t, eth(5).String(), mint.Liquidity)
	assert.Empty(t, mint.Sender, "skeleton must stay incomplete until the Mint event")

	// A second mint transfer in the same transaction must not open
	// another skeleton while the first is incomplete.
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(3), "0xb1", 101, 1)))

	tx, err = f.store.GetTransaction(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Len(t, tx.Mints, 1)
}

func TestMintCompletion(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(5), "0xc1", 103, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testBob, eth(10), eth(25), "0xc1", 103, 1)))

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"c1")
	require.NoError(t, err)
	require.Len(t, tx.Mints, 1)

	mint, err := f.store.GetMint(f.ctx, tx.Mints[0])
	require.NoError(t, err)
	assert.Equal(t, testBob, mint.Sender)
	assert.Equal(t, "10.000000", mint.Amount0)
	assert.Equal(t, "25.000000", mint.Amount1)
	// 10 WMOVR at 2.5 USD plus 25 FRAX at 0.4 MOVR derived, all at an
	// ETH price of 2.5: (1*10 + 0.4*25) * 2.5 = 50.
	assert.Equal(t, "50.000000", mint.AmountUSD)
	assert.Equal(t, uint(1), mint.LogIndex)

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, 1, pair.TxCount)

	token0, err := f.store.GetToken(f.ctx, testWMOVR)
	require.NoError(t, err)
	assert.Equal(t, 1, token0.TxCount)

	// The LP receiver now holds a position.
	_, err = f.store.GetLiquidityPosition(f.ctx, testPair+"-"+testAlice)
	require.NoError(t, err)
}

func TestMintWithoutTransferFails(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	err := f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testBob, eth(10), eth(25), "0xdead", 103, 0))

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "Mint", recErr.Event)
}

func TestSecondMintCompletionFails(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(5), "0xc1", 103, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testBob, eth(10), eth(25), "0xc1", 103, 1)))

	err := f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testBob, eth(10), eth(25), "0xc1", 103, 2))

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
}

func TestBurnFlow(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	// Seed supply.
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(10), "0xc1", 103, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testAlice, eth(10), eth(25), "0xc1", 103, 1)))

	// Withdraw: LP tokens move into the pair, then burn to zero.
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, testAlice, testPair, eth(4), "0xd1", 104, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, testPair, addressZero, eth(4), "0xd1", 104, 1)))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, eth(6).String(), pair.TotalSupply)

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"d1")
	require.NoError(t, err)
	require.Len(t, tx.Burns, 1)

	burn, err := f.store.GetBurn(f.ctx, tx.Burns[0])
	require.NoError(t, err)
	assert.Equal(t, eth(4).String(), burn.Liquidity)
	assert.Empty(t, burn.Sender)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		burnEvt(testPair, testAlice, testBob, eth(4), eth(10), "0xd1", 104, 2)))

	burn, err = f.store.GetBurn(f.ctx, tx.Burns[0])
	require.NoError(t, err)
	assert.Equal(t, testAlice, burn.Sender)
	assert.Equal(t, testBob, burn.To)
	assert.Equal(t, "4.000000", burn.Amount0)
	assert.Equal(t, "10.000000", burn.Amount1)
	// (1*4 + 0.4*10) * 2.5 = 20.
	assert.Equal(t, "20.000000", burn.AmountUSD)
}

func TestBurnWithoutTransferFails(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	err := f.module.HandleEvent(f.ctx,
		burnEvt(testPair, testAlice, testBob, eth(4), eth(10), "0xdead", 104, 0))

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "Burn", recErr.Event)
}

func TestFeeMintAbsorbedIntoBurn(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(10), "0xc1", 103, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		mintEvt(testPair, testAlice, eth(10), eth(25), "0xc1", 103, 1)))

	// Protocol fee mint followed by a burn in the same transaction.
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testBob, eth(1), "0xd1", 104, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, testPair, addressZero, eth(4), "0xd1", 104, 1)))

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"d1")
	require.NoError(t, err)
	assert.Empty(t, tx.Mints, "fee mint must be absorbed")
	require.Len(t, tx.Burns, 1)

	burn, err := f.store.GetBurn(f.ctx, tx.Burns[0])
	require.NoError(t, err)
	assert.Equal(t, testBob, burn.FeeTo)
	assert.Equal(t, eth(1).String(), burn.FeeLiquidity)

	_, err = f.store.GetMint(f.ctx, tx.ID+"-0")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSyncUpdatesReservesAndPrices(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	require.NoError(t, f.module.HandleEvent(f.ctx,
		syncEvt(testPair, eth(1000), eth(2500), "0xa2", 101, 0)))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, eth(1000).String(), pair.Reserve0)
	assert.Equal(t, eth(2500).String(), pair.Reserve1)
	assert.Equal(t, "2.500000", pair.Token0Price)
	assert.Equal(t, "0.400000", pair.Token1Price)

	// The pair is the native/stable reference pair, so the bundle picks
	// up the native price from it.
	bundle, err := f.store.GetBundle(f.ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "2.500000", bundle.ETHPrice)

	token0, err := f.store.GetToken(f.ctx, testWMOVR)
	require.NoError(t, err)
	assert.Equal(t, "1.000000", token0.DerivedETH)
	assert.Equal(t, eth(1000).String(), token0.TotalLiquidity)
}

func TestSyncZeroReserveGivesZeroPrice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	require.NoError(t, f.module.HandleEvent(f.ctx,
		syncEvt(testPair, big.NewInt(0), eth(2500), "0xa2", 101, 0)))

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, "0.000000", pair.Token0Price)
	assert.Equal(t, "0.000000", pair.Token1Price)
}

func TestSyncSecondPassDerivesCounterTokenPrice(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	token1, err := f.store.GetToken(f.ctx, testFRAX)
	require.NoError(t, err)
	assert.Equal(t, "0.400000", token1.DerivedETH)

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	// 1000 WMOVR at 1 plus 2500 FRAX at 0.4 native each.
	assert.Equal(t, "2000.000000", pair.ReserveETH)
	assert.Equal(t, "5000.000000", pair.ReserveUSD)
	assert.Equal(t, "2000.000000", pair.TrackedReserveETH)
}

func TestSwapTrackedVolume(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		swapEvt(testPair, testAlice, testBob, eth(10), big.NewInt(0), big.NewInt(0), eth(24), "0xe1", 103, 0)))

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"e1")
	require.NoError(t, err)
	require.Len(t, tx.Swaps, 1)
	assert.Equal(t, tx.ID+"-0", tx.Swaps[0])

	swap, err := f.store.GetSwap(f.ctx, tx.Swaps[0])
	require.NoError(t, err)
	assert.Equal(t, "10.000000", swap.Amount0In)
	assert.Equal(t, "24.000000", swap.Amount1Out)
	// Both tokens whitelisted: (10*2.5 + 24*1.0) / 2.
	assert.Equal(t, "24.500000", swap.AmountUSD)

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, "24.500000", pair.VolumeUSD)
	assert.Equal(t, "10.000000", pair.VolumeToken0)
	assert.Equal(t, "24.000000", pair.VolumeToken1)
	assert.Equal(t, 1, pair.TxCount)

	factory, err := f.store.GetFactory(f.ctx, testFactory)
	require.NoError(t, err)
	assert.Equal(t, "24.500000", factory.TotalVolumeUSD)
	assert.Equal(t, "9.800000", factory.TotalVolumeETH)

	dayID := testPair + "-19675"
	dayData, err := f.store.GetPairDayData(f.ctx, dayID)
	require.NoError(t, err)
	assert.Equal(t, "24.500000", dayData.DailyVolumeUSD)
	assert.Equal(t, 1, dayData.DailyTxns)

	factoryDay, err := f.store.GetFactoryDayData(f.ctx, "19675")
	require.NoError(t, err)
	assert.Equal(t, "24.500000", factoryDay.DailyVolumeUSD)
}

func TestSwapBelowReserveFloorIsUntracked(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	// Fresh pair with tiny reserves: 2 WMOVR is 5 USD, far below the
	// 50 USD floor for pairs with under five LPs.
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testTokenY, testPair2, "0xa4", 103)))
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair2, eth(2), eth(100), "0xa5", 104, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair2, eth(2), eth(100), "0xa6", 105, 0)))

	require.NoError(t, f.module.HandleEvent(f.ctx,
		swapEvt(testPair2, testAlice, testBob, eth(1), big.NewInt(0), big.NewInt(0), eth(50), "0xe2", 106, 0)))

	pair, err := f.store.GetPair(f.ctx, testPair2)
	require.NoError(t, err)
	assert.Equal(t, "0.000000", pair.VolumeUSD, "tracked volume must stay zero under the floor")

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"e2")
	require.NoError(t, err)
	swap, err := f.store.GetSwap(f.ctx, tx.Swaps[0])
	require.NoError(t, err)
	// Falls back to the derived estimate: (1 WMOVR * 1) / 2 * 2.5.
	assert.Equal(t, "1.250000", swap.AmountUSD)
}

func TestSwapBothWhitelistedBelowFloorIsUntracked(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	// Both sides whitelisted but the combined reserves are worth 40 USD,
	// under the 50 USD floor: 8 WMOVR at 2.5 plus 20 USDC at 1.
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testUSDC, testPair3, "0xa4", 103)))
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair3, eth(8), eth(20), "0xa5", 104, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx, syncEvt(testPair3, eth(8), eth(20), "0xa6", 105, 0)))

	pair, err := f.store.GetPair(f.ctx, testPair3)
	require.NoError(t, err)
	pair.LiquidityProviderCount = 3
	require.NoError(t, f.store.SavePair(f.ctx, pair))

	require.NoError(t, f.module.HandleEvent(f.ctx,
		swapEvt(testPair3, testAlice, testBob, eth(2), big.NewInt(0), big.NewInt(0), eth(4), "0xe3", 106, 0)))

	pair, err = f.store.GetPair(f.ctx, testPair3)
	require.NoError(t, err)
	assert.Equal(t, "0.000000", pair.VolumeUSD)
	// (1*2 + 0.4*4) / 2 * 2.5.
	assert.Equal(t, "4.500000", pair.UntrackedVolumeUSD)

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"e3")
	require.NoError(t, err)
	swap, err := f.store.GetSwap(f.ctx, tx.Swaps[0])
	require.NoError(t, err)
	assert.Equal(t, "4.500000", swap.AmountUSD)
}

func TestSwapIDsFollowTransactionOrder(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	require.NoError(t, f.module.HandleEvent(f.ctx,
		swapEvt(testPair, testAlice, testBob, eth(1), big.NewInt(0), big.NewInt(0), eth(2), "0xe1", 103, 0)))
	require.NoError(t, f.module.HandleEvent(f.ctx,
		swapEvt(testPair, testAlice, testBob, eth(2), big.NewInt(0), big.NewInt(0), eth(5), "0xe1", 103, 1)))

	tx, err := f.store.GetTransaction(f.ctx, "0x"+strings.Repeat("0", 62)+"e1")
	require.NoError(t, err)
	require.Len(t, tx.Swaps, 2)
	assert.Equal(t, tx.ID+"-0", tx.Swaps[0])
	assert.Equal(t, tx.ID+"-1", tx.Swaps[1])
}

func TestLiquiditySnapshotID(t *testing.T) {
	f := newFixture(t)
	f.createPricedPair(t)

	f.module.SetBalanceReader(&stubBalances{balances: map[string]*big.Int{
		testAlice: eth(3),
	}})

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(3), "0xb1", 103, 0)))

	positionID := testPair + "-" + testAlice
	snapshotID := fmt.Sprintf("%s%d", positionID, testBlockTS)
	snapshot, err := f.store.GetLiquidityPositionSnapshot(f.ctx, snapshotID)
	require.NoError(t, err)
	assert.Equal(t, positionID, snapshot.LiquidityPosition)
	assert.Equal(t, eth(3).String(), snapshot.LiquidityTokenBalance)
	assert.Equal(t, uint64(103), snapshot.Block)
}

func TestTransferUpdatesLiquidityPositions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.module.HandleEvent(f.ctx, pairCreatedEvt(testWMOVR, testFRAX, testPair, "0xa1", 100)))

	f.module.SetBalanceReader(&stubBalances{balances: map[string]*big.Int{
		testAlice: eth(7),
	}})

	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(7), "0xb1", 101, 0)))

	position, err := f.store.GetLiquidityPosition(f.ctx, testPair+"-"+testAlice)
	require.NoError(t, err)
	assert.Equal(t, eth(7).String(), position.LiquidityTokenBalance)

	pair, err := f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, 1, pair.LiquidityProviderCount)

	// Another transfer touching the same holder must not double count.
	require.NoError(t, f.module.HandleEvent(f.ctx,
		transferEvt(testPair, addressZero, testAlice, eth(1), "0xb2", 102, 0)))

	pair, err = f.store.GetPair(f.ctx, testPair)
	require.NoError(t, err)
	assert.Equal(t, 1, pair.LiquidityProviderCount)

	user, err := f.store.GetUser(f.ctx, testAlice)
	require.NoError(t, err)
	assert.Equal(t, []string{testPair + "-" + testAlice}, user.LiquidityPositions)
}
