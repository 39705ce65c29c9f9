package zenlinkv2

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
)

// handleSync rebases the pair on its new reserves: spot prices, the
// native price bundle, derived token prices and the tracked liquidity
// aggregates are all recomputed here.
func handleSync(ctx context.Context, module *Module, event *core.Event) error {
	data, err := decodeSync(event.Log)
	if err != nil {
		return err
	}

	pair, err := module.pairForEvent(ctx, event)
	if err != nil || pair == nil {
		return err
	}

	bundle, err := module.getOrCreateBundle(ctx)
	if err != nil {
		return err
	}
	factory, err := module.getOrCreateFactory(ctx)
	if err != nil {
		return err
	}
	token0, token1, err := module.pairTokens(ctx, pair)
	if err != nil {
		return err
	}

	// Back the pair's previous contribution out of the running totals
	// before applying the new reserves.
	factory.TotalLiquidityETH = bigdec.Fixed6(
		bigdec.Parse(factory.TotalLiquidityETH).Sub(bigdec.Parse(pair.TrackedReserveETH)))
	token0.TotalLiquidity = bigdec.Parse(token0.TotalLiquidity).
		Sub(bigdec.Parse(pair.Reserve0)).String()
	token1.TotalLiquidity = bigdec.Parse(token1.TotalLiquidity).
		Sub(bigdec.Parse(pair.Reserve1)).String()

	pair.Reserve0 = data.Reserve0.String()
	pair.Reserve1 = data.Reserve1.String()

	reserve0 := bigdec.FromTokenUnits(data.Reserve0, token0.Decimals)
	reserve1 := bigdec.FromTokenUnits(data.Reserve1, token1.Decimals)

	if !reserve0.IsZero() {
		pair.Token0Price = bigdec.Fixed6(reserve1.Div(reserve0))
	} else {
		pair.Token0Price = zeroFixed
	}
	if !reserve1.IsZero() {
		pair.Token1Price = bigdec.Fixed6(reserve0.Div(reserve1))
	} else {
		pair.Token1Price = zeroFixed
	}

	// The oracle reads pair prices from the store, so the new spot
	// prices have to land before refreshing derived prices.
	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}

	ethPrice, err := module.oracle.NativeUSDPrice(ctx)
	if err != nil {
		return err
	}
	bundle.ETHPrice = bigdec.Fixed6(ethPrice)
	if err := module.store.SaveBundle(ctx, bundle); err != nil {
		return err
	}

	derived0, err := module.oracle.DerivedNativePrice(ctx, token0.ID)
	if err != nil {
		return err
	}
	token0.DerivedETH = bigdec.Fixed6(derived0)

	derived1, err := module.oracle.DerivedNativePrice(ctx, token1.ID)
	if err != nil {
		return err
	}
	token1.DerivedETH = bigdec.Fixed6(derived1)

	// Tracked liquidity counts only whitelist-priced value: both sides
	// when both tokens are whitelisted, the whitelisted side doubled
	// when only one is, nothing otherwise. Zero while the native price
	// is unknown to avoid dividing by it.
	trackedLiquidityETH := decimal.Zero
	if !ethPrice.IsZero() {
		price0 := bigdec.Parse(token0.DerivedETH).Mul(ethPrice)
		price1 := bigdec.Parse(token1.DerivedETH).Mul(ethPrice)

		wl0 := module.isWhitelisted(token0.ID)
		wl1 := module.isWhitelisted(token1.ID)

		var trackedLiquidityUSD decimal.Decimal
		switch {
		case wl0 && wl1:
			trackedLiquidityUSD = reserve0.Mul(price0).Add(reserve1.Mul(price1))
		case wl0:
			trackedLiquidityUSD = reserve0.Mul(price0).Mul(decimal.NewFromInt(2))
		case wl1:
			trackedLiquidityUSD = reserve1.Mul(price1).Mul(decimal.NewFromInt(2))
		}
		trackedLiquidityETH = trackedLiquidityUSD.Div(ethPrice)
	}

	pair.TrackedReserveETH = bigdec.Fixed6(trackedLiquidityETH)
	reserveETH := reserve0.Mul(bigdec.Parse(token0.DerivedETH)).
		Add(reserve1.Mul(bigdec.Parse(token1.DerivedETH)))
	pair.ReserveETH = bigdec.Fixed6(reserveETH)
	pair.ReserveUSD = bigdec.Fixed6(bigdec.Parse(pair.ReserveETH).Mul(bigdec.Parse(bundle.ETHPrice)))

	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}

	factory.TotalLiquidityETH = bigdec.Fixed6(
		bigdec.Parse(factory.TotalLiquidityETH).Add(trackedLiquidityETH))
	factory.TotalLiquidityUSD = bigdec.Fixed6(
		bigdec.Parse(factory.TotalLiquidityETH).Mul(bigdec.Parse(bundle.ETHPrice)))
	if err := module.store.SaveFactory(ctx, factory); err != nil {
		return err
	}

	token0.TotalLiquidity = bigdec.Parse(token0.TotalLiquidity).
		Add(bigdec.Parse(pair.Reserve0)).String()
	token1.TotalLiquidity = bigdec.Parse(token1.TotalLiquidity).
		Add(bigdec.Parse(pair.Reserve1)).String()
	if err := module.store.SaveToken(ctx, token0); err != nil {
		return err
	}
	if err := module.store.SaveToken(ctx, token1); err != nil {
		return err
	}

	if module.publisher != nil {
		module.publisher.SetCurrentBlock(event.BlockNumber)
		module.publisher.EnqueuePairChanged(pair.ID)
	}

	return nil
}
