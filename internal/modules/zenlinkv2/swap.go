package zenlinkv2

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
)

// handleSwap books swap volume on the pair, its tokens and the factory,
// records the Swap entity and fans the volume out into the day and hour
// buckets.
func handleSwap(ctx context.Context, module *Module, event *core.Event) error {
	data, err := decodeSwap(event.Log)
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

	amount0In := bigdec.FromTokenUnits(data.Amount0In, token0.Decimals)
	amount0Out := bigdec.FromTokenUnits(data.Amount0Out, token0.Decimals)
	amount1In := bigdec.FromTokenUnits(data.Amount1In, token1.Decimals)
	amount1Out := bigdec.FromTokenUnits(data.Amount1Out, token1.Decimals)
	amount0Total := amount0In.Add(amount0Out)
	amount1Total := amount1In.Add(amount1Out)

	ethPrice := bigdec.Parse(bundle.ETHPrice)
	derived0 := bigdec.Parse(token0.DerivedETH)
	derived1 := bigdec.Parse(token1.DerivedETH)

	// Untracked value: the mean of both legs at derived prices.
	derivedAmountETH := derived1.Mul(amount1Total).
		Add(derived0.Mul(amount0Total)).
		Div(decimal.NewFromInt(2))
	derivedAmountUSD := derivedAmountETH.Mul(ethPrice)

	trackedAmountUSD := module.trackedVolumeUSD(amount0Total, token0, amount1Total, token1, pair, ethPrice)
	trackedAmountETH := decimal.Zero
	if !ethPrice.IsZero() {
		trackedAmountETH = trackedAmountUSD.Div(ethPrice)
	}

	token0.TradeVolume = bigdec.Fixed6(bigdec.Parse(token0.TradeVolume).Add(amount0Total))
	token0.TradeVolumeUSD = bigdec.Fixed6(bigdec.Parse(token0.TradeVolumeUSD).Add(trackedAmountUSD))
	token0.UntrackedVolumeUSD = bigdec.Fixed6(bigdec.Parse(token0.UntrackedVolumeUSD).Add(derivedAmountUSD))
	token0.TxCount++

	token1.TradeVolume = bigdec.Fixed6(bigdec.Parse(token1.TradeVolume).Add(amount1Total))
	token1.TradeVolumeUSD = bigdec.Fixed6(bigdec.Parse(token1.TradeVolumeUSD).Add(trackedAmountUSD))
	token1.UntrackedVolumeUSD = bigdec.Fixed6(bigdec.Parse(token1.UntrackedVolumeUSD).Add(derivedAmountUSD))
	token1.TxCount++

	pair.VolumeUSD = bigdec.Fixed6(bigdec.Parse(pair.VolumeUSD).Add(trackedAmountUSD))
	pair.VolumeToken0 = bigdec.Fixed6(bigdec.Parse(pair.VolumeToken0).Add(amount0Total))
	pair.VolumeToken1 = bigdec.Fixed6(bigdec.Parse(pair.VolumeToken1).Add(amount1Total))
	pair.UntrackedVolumeUSD = bigdec.Fixed6(bigdec.Parse(pair.UntrackedVolumeUSD).Add(derivedAmountUSD))
	pair.TxCount++

	factory.TotalVolumeUSD = bigdec.Fixed6(bigdec.Parse(factory.TotalVolumeUSD).Add(trackedAmountUSD))
	factory.TotalVolumeETH = bigdec.Fixed6(bigdec.Parse(factory.TotalVolumeETH).Add(trackedAmountETH))
	factory.UntrackedVolumeUSD = bigdec.Fixed6(bigdec.Parse(factory.UntrackedVolumeUSD).Add(derivedAmountUSD))
	factory.TxCount++

	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}
	if err := module.store.SaveToken(ctx, token0); err != nil {
		return err
	}
	if err := module.store.SaveToken(ctx, token1); err != nil {
		return err
	}
	if err := module.store.SaveFactory(ctx, factory); err != nil {
		return err
	}

	tx, err := module.getOrCreateTransaction(ctx, event)
	if err != nil {
		return err
	}

	// Tracked value is authoritative for the swap record; the untracked
	// estimate fills in when tracking rejected the swap.
	amountUSD := trackedAmountUSD
	if amountUSD.IsZero() {
		amountUSD = derivedAmountUSD
	}

	swap := &entity.Swap{
		ID:          fmt.Sprintf("%s-%d", tx.ID, len(tx.Swaps)),
		Transaction: tx.ID,
		Pair:        pair.ID,
		Timestamp:   event.Timestamp,
		Sender:      data.Sender,
		From:        data.Sender,
		To:          data.To,
		Amount0In:   bigdec.Fixed6(amount0In),
		Amount1In:   bigdec.Fixed6(amount1In),
		Amount0Out:  bigdec.Fixed6(amount0Out),
		Amount1Out:  bigdec.Fixed6(amount1Out),
		AmountUSD:   bigdec.Fixed6(amountUSD),
		LogIndex:    event.LogIndex,
	}
	if err := module.store.SaveSwap(ctx, swap); err != nil {
		return err
	}

	tx.Swaps = append(tx.Swaps, swap.ID)
	if err := module.store.SaveTransaction(ctx, tx); err != nil {
		return err
	}

	b, err := module.rollupBuckets(ctx, event, pair, factory, token0, token1, bundle)
	if err != nil {
		return err
	}

	b.pairDay.DailyVolumeToken0 = bigdec.Fixed6(bigdec.Parse(b.pairDay.DailyVolumeToken0).Add(amount0Total))
	b.pairDay.DailyVolumeToken1 = bigdec.Fixed6(bigdec.Parse(b.pairDay.DailyVolumeToken1).Add(amount1Total))
	b.pairDay.DailyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.pairDay.DailyVolumeUSD).Add(trackedAmountUSD))
	if err := module.store.SavePairDayData(ctx, b.pairDay); err != nil {
		return err
	}

	b.pairHour.HourlyVolumeToken0 = bigdec.Fixed6(bigdec.Parse(b.pairHour.HourlyVolumeToken0).Add(amount0Total))
	b.pairHour.HourlyVolumeToken1 = bigdec.Fixed6(bigdec.Parse(b.pairHour.HourlyVolumeToken1).Add(amount1Total))
	b.pairHour.HourlyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.pairHour.HourlyVolumeUSD).Add(trackedAmountUSD))
	if err := module.store.SavePairHourData(ctx, b.pairHour); err != nil {
		return err
	}

	b.factoryDay.DailyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.factoryDay.DailyVolumeUSD).Add(trackedAmountUSD))
	b.factoryDay.DailyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.factoryDay.DailyVolumeETH).Add(trackedAmountETH))
	b.factoryDay.DailyVolumeUntracked = bigdec.Fixed6(bigdec.Parse(b.factoryDay.DailyVolumeUntracked).Add(derivedAmountUSD))
	if err := module.store.SaveFactoryDayData(ctx, b.factoryDay); err != nil {
		return err
	}

	b.factoryHour.HourlyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.factoryHour.HourlyVolumeUSD).Add(trackedAmountUSD))
	b.factoryHour.HourlyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.factoryHour.HourlyVolumeETH).Add(trackedAmountETH))
	b.factoryHour.HourlyVolumeUntracked = bigdec.Fixed6(bigdec.Parse(b.factoryHour.HourlyVolumeUntracked).Add(derivedAmountUSD))
	if err := module.store.SaveFactoryHourData(ctx, b.factoryHour); err != nil {
		return err
	}

	volume0ETH := amount0Total.Mul(derived0)
	b.token0Day.DailyVolumeToken = bigdec.Fixed6(bigdec.Parse(b.token0Day.DailyVolumeToken).Add(amount0Total))
	b.token0Day.DailyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.token0Day.DailyVolumeETH).Add(volume0ETH))
	b.token0Day.DailyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.token0Day.DailyVolumeUSD).Add(volume0ETH.Mul(ethPrice)))
	if err := module.store.SaveTokenDayData(ctx, b.token0Day); err != nil {
		return err
	}
	b.token0Hour.HourlyVolumeToken = bigdec.Fixed6(bigdec.Parse(b.token0Hour.HourlyVolumeToken).Add(amount0Total))
	b.token0Hour.HourlyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.token0Hour.HourlyVolumeETH).Add(volume0ETH))
	b.token0Hour.HourlyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.token0Hour.HourlyVolumeUSD).Add(volume0ETH.Mul(ethPrice)))
	if err := module.store.SaveTokenHourData(ctx, b.token0Hour); err != nil {
		return err
	}

	volume1ETH := amount1Total.Mul(derived1)
	b.token1Day.DailyVolumeToken = bigdec.Fixed6(bigdec.Parse(b.token1Day.DailyVolumeToken).Add(amount1Total))
	b.token1Day.DailyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.token1Day.DailyVolumeETH).Add(volume1ETH))
	b.token1Day.DailyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.token1Day.DailyVolumeUSD).Add(volume1ETH.Mul(ethPrice)))
	if err := module.store.SaveTokenDayData(ctx, b.token1Day); err != nil {
		return err
	}
	b.token1Hour.HourlyVolumeToken = bigdec.Fixed6(bigdec.Parse(b.token1Hour.HourlyVolumeToken).Add(amount1Total))
	b.token1Hour.HourlyVolumeETH = bigdec.Fixed6(bigdec.Parse(b.token1Hour.HourlyVolumeETH).Add(volume1ETH))
	b.token1Hour.HourlyVolumeUSD = bigdec.Fixed6(bigdec.Parse(b.token1Hour.HourlyVolumeUSD).Add(volume1ETH.Mul(ethPrice)))
	if err := module.store.SaveTokenHourData(ctx, b.token1Hour); err != nil {
		return err
	}

	if module.publisher != nil {
		module.publisher.SetCurrentBlock(event.BlockNumber)
		module.publisher.PublishEvent(pair.ID, "swap", map[string]any{
			"pair":       pair.ID,
			"sender":     swap.Sender,
			"to":         swap.To,
			"amount0In":  swap.Amount0In,
			"amount1In":  swap.Amount1In,
			"amount0Out": swap.Amount0Out,
			"amount1Out": swap.Amount1Out,
			"amountUSD":  swap.AmountUSD,
		})
		module.publisher.EnqueuePairChanged(pair.ID)
	}

	return nil
}

// trackedVolumeUSD values a swap against whitelist-derived prices only.
// While a pair has fewer than five liquidity providers its reserves must
// also clear a USD floor, so wash trading on fresh pools cannot fabricate
// volume.
func (m *Module) trackedVolumeUSD(amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token, pair *entity.Pair, ethPrice decimal.Decimal) decimal.Decimal {
	price0 := bigdec.Parse(token0.DerivedETH).Mul(ethPrice)
	price1 := bigdec.Parse(token1.DerivedETH).Mul(ethPrice)

	wl0 := m.isWhitelisted(token0.ID)
	wl1 := m.isWhitelisted(token1.ID)

	if pair.LiquidityProviderCount < lpCountCapForNewPairs {
		reserve0USD := bigdec.Parse(pair.Reserve0).Shift(-token0.Decimals).Mul(price0)
		reserve1USD := bigdec.Parse(pair.Reserve1).Shift(-token1.Decimals).Mul(price1)
		two := decimal.NewFromInt(2)

		switch {
		case wl0 && wl1:
			if reserve0USD.Add(reserve1USD).LessThan(m.minUSDThresholdNewPairs) {
				return decimal.Zero
			}
		case wl0:
			if reserve0USD.Mul(two).LessThan(m.minUSDThresholdNewPairs) {
				return decimal.Zero
			}
		case wl1:
			if reserve1USD.Mul(two).LessThan(m.minUSDThresholdNewPairs) {
				return decimal.Zero
			}
		}
	}

	switch {
	case wl0 && wl1:
		return amount0.Mul(price0).Add(amount1.Mul(price1)).Div(decimal.NewFromInt(2))
	case wl0:
		return amount0.Mul(price0)
	case wl1:
		return amount1.Mul(price1)
	default:
		return decimal.Zero
	}
}
