package zenlinkv2

import (
	"context"
	"errors"
	"fmt"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

const (
	daySeconds  = 86400
	hourSeconds = 3600
)

func dayBucket(timestamp int64) (int64, int64) {
	index := timestamp / daySeconds
	return index, index * daySeconds
}

func hourBucket(timestamp int64) (int64, int64) {
	index := timestamp / hourSeconds
	return index, index * hourSeconds
}

// updatePairDayData rolls the pair's current state into its day bucket
// and counts the transaction. Callers add volume afterwards and save.
func (m *Module) updatePairDayData(ctx context.Context, event *core.Event, pair *entity.Pair) (*entity.PairDayData, error) {
	dayIndex, dayStart := dayBucket(event.Timestamp)
	id := fmt.Sprintf("%s-%d", pair.ID, dayIndex)

	data, err := m.store.GetPairDayData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.PairDayData{
			ID:                id,
			Date:              dayStart,
			Pair:              pair.ID,
			Token0:            pair.Token0,
			Token1:            pair.Token1,
			DailyVolumeToken0: zeroFixed,
			DailyVolumeToken1: zeroFixed,
			DailyVolumeUSD:    zeroFixed,
		}
	}

	data.Reserve0 = pair.Reserve0
	data.Reserve1 = pair.Reserve1
	data.TotalSupply = pair.TotalSupply
	data.ReserveUSD = pair.ReserveUSD
	data.DailyTxns++

	if err := m.store.SavePairDayData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Module) updatePairHourData(ctx context.Context, event *core.Event, pair *entity.Pair) (*entity.PairHourData, error) {
	hourIndex, hourStart := hourBucket(event.Timestamp)
	id := fmt.Sprintf("%s-%d", pair.ID, hourIndex)

	data, err := m.store.GetPairHourData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.PairHourData{
			ID:                 id,
			HourStartUnix:      hourStart,
			Pair:               pair.ID,
			HourlyVolumeToken0: zeroFixed,
			HourlyVolumeToken1: zeroFixed,
			HourlyVolumeUSD:    zeroFixed,
		}
	}

	data.Reserve0 = pair.Reserve0
	data.Reserve1 = pair.Reserve1
	data.TotalSupply = pair.TotalSupply
	data.ReserveUSD = pair.ReserveUSD
	data.HourlyTxns++

	if err := m.store.SavePairHourData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Module) updateFactoryDayData(ctx context.Context, event *core.Event, factory *entity.Factory) (*entity.FactoryDayData, error) {
	dayIndex, dayStart := dayBucket(event.Timestamp)
	id := fmt.Sprintf("%d", dayIndex)

	data, err := m.store.GetFactoryDayData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.FactoryDayData{
			ID:                   id,
			Date:                 dayStart,
			DailyVolumeETH:       zeroFixed,
			DailyVolumeUSD:       zeroFixed,
			DailyVolumeUntracked: zeroFixed,
		}
	}

	data.TotalVolumeETH = factory.TotalVolumeETH
	data.TotalVolumeUSD = factory.TotalVolumeUSD
	data.TotalLiquidityETH = factory.TotalLiquidityETH
	data.TotalLiquidityUSD = factory.TotalLiquidityUSD
	data.TxCount = factory.TxCount

	if err := m.store.SaveFactoryDayData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Module) updateFactoryHourData(ctx context.Context, event *core.Event, factory *entity.Factory) (*entity.FactoryHourData, error) {
	hourIndex, hourStart := hourBucket(event.Timestamp)
	id := fmt.Sprintf("%d", hourIndex)

	data, err := m.store.GetFactoryHourData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.FactoryHourData{
			ID:                    id,
			HourStartUnix:         hourStart,
			HourlyVolumeETH:       zeroFixed,
			HourlyVolumeUSD:       zeroFixed,
			HourlyVolumeUntracked: zeroFixed,
		}
	}

	data.TotalVolumeETH = factory.TotalVolumeETH
	data.TotalVolumeUSD = factory.TotalVolumeUSD
	data.TotalLiquidityETH = factory.TotalLiquidityETH
	data.TotalLiquidityUSD = factory.TotalLiquidityUSD
	data.TxCount = factory.TxCount

	if err := m.store.SaveFactoryHourData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Module) updateTokenDayData(ctx context.Context, event *core.Event, token *entity.Token, bundle *entity.Bundle) (*entity.TokenDayData, error) {
	dayIndex, dayStart := dayBucket(event.Timestamp)
	id := fmt.Sprintf("%s-%d", token.ID, dayIndex)

	derivedETH := bigdec.Parse(token.DerivedETH)
	ethPrice := bigdec.Parse(bundle.ETHPrice)

	data, err := m.store.GetTokenDayData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.TokenDayData{
			ID:               id,
			Date:             dayStart,
			Token:            token.ID,
			DailyVolumeToken: zeroFixed,
			DailyVolumeETH:   zeroFixed,
			DailyVolumeUSD:   zeroFixed,
		}
	}

	data.PriceUSD = bigdec.Fixed6(derivedETH.Mul(ethPrice))
	data.TotalLiquidityToken = token.TotalLiquidity
	liquidityETH := bigdec.Parse(token.TotalLiquidity).
		Shift(-token.Decimals).Mul(derivedETH)
	data.TotalLiquidityETH = bigdec.Fixed6(liquidityETH)
	data.TotalLiquidityUSD = bigdec.Fixed6(liquidityETH.Mul(ethPrice))
	data.DailyTxns++

	if err := m.store.SaveTokenDayData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Module) updateTokenHourData(ctx context.Context, event *core.Event, token *entity.Token, bundle *entity.Bundle) (*entity.TokenHourData, error) {
	hourIndex, hourStart := hourBucket(event.Timestamp)
	id := fmt.Sprintf("%s-%d", token.ID, hourIndex)

	derivedETH := bigdec.Parse(token.DerivedETH)
	ethPrice := bigdec.Parse(bundle.ETHPrice)

	data, err := m.store.GetTokenHourData(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		data = &entity.TokenHourData{
			ID:                id,
			HourStartUnix:     hourStart,
			Token:             token.ID,
			HourlyVolumeToken: zeroFixed,
			HourlyVolumeETH:   zeroFixed,
			HourlyVolumeUSD:   zeroFixed,
		}
	}

	data.PriceUSD = bigdec.Fixed6(derivedETH.Mul(ethPrice))
	data.TotalLiquidityToken = token.TotalLiquidity
	liquidityETH := bigdec.Parse(token.TotalLiquidity).
		Shift(-token.Decimals).Mul(derivedETH)
	data.TotalLiquidityETH = bigdec.Fixed6(liquidityETH)
	data.TotalLiquidityUSD = bigdec.Fixed6(liquidityETH.Mul(ethPrice))
	data.HourlyTxns++

	if err := m.store.SaveTokenHourData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// rollupBuckets runs the full day/hour fan-out shared by the swap, mint
// and burn handlers, returning the buckets so callers can add volume.
type buckets struct {
	pairDay     *entity.PairDayData
	pairHour    *entity.PairHourData
	factoryDay  *entity.FactoryDayData
	factoryHour *entity.FactoryHourData
	token0Day   *entity.TokenDayData
	token0Hour  *entity.TokenHourData
	token1Day   *entity.TokenDayData
	token1Hour  *entity.TokenHourData
}

func (m *Module) rollupBuckets(ctx context.Context, event *core.Event, pair *entity.Pair, factory *entity.Factory, token0, token1 *entity.Token, bundle *entity.Bundle) (*buckets, error) {
	var (
		b   buckets
		err error
	)
	if b.pairDay, err = m.updatePairDayData(ctx, event, pair); err != nil {
		return nil, err
	}
	if b.pairHour, err = m.updatePairHourData(ctx, event, pair); err != nil {
		return nil, err
	}
	if b.factoryDay, err = m.updateFactoryDayData(ctx, event, factory); err != nil {
		return nil, err
	}
	if b.factoryHour, err = m.updateFactoryHourData(ctx, event, factory); err != nil {
		return nil, err
	}
	if b.token0Day, err = m.updateTokenDayData(ctx, event, token0, bundle); err != nil {
		return nil, err
	}
	if b.token0Hour, err = m.updateTokenHourData(ctx, event, token0, bundle); err != nil {
		return nil, err
	}
	if b.token1Day, err = m.updateTokenDayData(ctx, event, token1, bundle); err != nil {
		return nil, err
	}
	if b.token1Hour, err = m.updateTokenHourData(ctx, event, token1, bundle); err != nil {
		return nil, err
	}
	return &b, nil
}
