package zenlinkv2

import (
	"context"
	"errors"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// handleMint finalizes the mint skeleton opened by the preceding LP-token
// transfer. The transfer is a hard precondition: a Mint event without its
// transaction context means delivery guarantees were broken.
func handleMint(ctx context.Context, module *Module, event *core.Event) error {
	data, err := decodeMint(event.Log)
	if err != nil {
		return err
	}

	tx, err := module.store.GetTransaction(ctx, event.TxHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ReconciliationError{
				Event:  "Mint",
				TxHash: event.TxHash,
				Pair:   event.Address,
				Reason: "no transaction opened by a preceding LP transfer",
			}
		}
		return err
	}
	if len(tx.Mints) == 0 {
		return &ReconciliationError{
			Event:  "Mint",
			TxHash: event.TxHash,
			Pair:   event.Address,
			Reason: "transaction has no pending mint",
		}
	}

	mintID := tx.Mints[len(tx.Mints)-1]
	mint, err := module.store.GetMint(ctx, mintID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ReconciliationError{
				Event:  "Mint",
				TxHash: event.TxHash,
				Pair:   event.Address,
				Reason: "pending mint " + mintID + " missing from store",
			}
		}
		return err
	}
	if mint.Sender != "" {
		return &ReconciliationError{
			Event:  "Mint",
			TxHash: event.TxHash,
			Pair:   event.Address,
			Reason: "mint " + mintID + " already completed",
		}
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

	amount0 := bigdec.FromTokenUnits(data.Amount0, token0.Decimals)
	amount1 := bigdec.FromTokenUnits(data.Amount1, token1.Decimals)

	ethPrice := bigdec.Parse(bundle.ETHPrice)
	amountTotalUSD := bigdec.Parse(token1.DerivedETH).Mul(amount1).
		Add(bigdec.Parse(token0.DerivedETH).Mul(amount0)).
		Mul(ethPrice)

	token0.TxCount++
	token1.TxCount++
	pair.TxCount++
	factory.TxCount++

	if err := module.store.SaveToken(ctx, token0); err != nil {
		return err
	}
	if err := module.store.SaveToken(ctx, token1); err != nil {
		return err
	}
	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}
	if err := module.store.SaveFactory(ctx, factory); err != nil {
		return err
	}

	mint.Sender = data.Sender
	mint.Amount0 = bigdec.Fixed6(amount0)
	mint.Amount1 = bigdec.Fixed6(amount1)
	mint.AmountUSD = bigdec.Fixed6(amountTotalUSD)
	mint.LogIndex = event.LogIndex
	if err := module.store.SaveMint(ctx, mint); err != nil {
		return err
	}

	user, err := module.getOrCreateUser(ctx, mint.To)
	if err != nil {
		return err
	}
	position, err := module.getOrCreatePosition(ctx, pair, user)
	if err != nil {
		return err
	}
	if err := module.createLiquiditySnapshot(ctx, event, pair, position); err != nil {
		return err
	}

	if _, err := module.rollupBuckets(ctx, event, pair, factory, token0, token1, bundle); err != nil {
		return err
	}

	if module.publisher != nil {
		module.publisher.SetCurrentBlock(event.BlockNumber)
		module.publisher.PublishEvent(pair.ID, "mint", map[string]any{
			"pair":      pair.ID,
			"sender":    mint.Sender,
			"to":        mint.To,
			"amount0":   mint.Amount0,
			"amount1":   mint.Amount1,
			"amountUSD": mint.AmountUSD,
		})
		module.publisher.EnqueuePairChanged(pair.ID)
	}

	return nil
}

// handleBurn finalizes the burn record opened by the LP-token transfer to
// the zero address earlier in the same transaction.
func handleBurn(ctx context.Context, module *Module, event *core.Event) error {
	data, err := decodeBurn(event.Log)
	if err != nil {
		return err
	}

	tx, err := module.store.GetTransaction(ctx, event.TxHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ReconciliationError{
				Event:  "Burn",
				TxHash: event.TxHash,
				Pair:   event.Address,
				Reason: "no transaction opened by a preceding LP transfer",
			}
		}
		return err
	}
	if len(tx.Burns) == 0 {
		return &ReconciliationError{
			Event:  "Burn",
			TxHash: event.TxHash,
			Pair:   event.Address,
			Reason: "transaction has no pending burn",
		}
	}

	burnID := tx.Burns[len(tx.Burns)-1]
	burn, err := module.store.GetBurn(ctx, burnID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ReconciliationError{
				Event:  "Burn",
				TxHash: event.TxHash,
				Pair:   event.Address,
				Reason: "pending burn " + burnID + " missing from store",
			}
		}
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

	amount0 := bigdec.FromTokenUnits(data.Amount0, token0.Decimals)
	amount1 := bigdec.FromTokenUnits(data.Amount1, token1.Decimals)

	ethPrice := bigdec.Parse(bundle.ETHPrice)
	amountTotalUSD := bigdec.Parse(token1.DerivedETH).Mul(amount1).
		Add(bigdec.Parse(token0.DerivedETH).Mul(amount0)).
		Mul(ethPrice)

	token0.TxCount++
	token1.TxCount++
	pair.TxCount++
	factory.TxCount++

	if err := module.store.SaveToken(ctx, token0); err != nil {
		return err
	}
	if err := module.store.SaveToken(ctx, token1); err != nil {
		return err
	}
	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}
	if err := module.store.SaveFactory(ctx, factory); err != nil {
		return err
	}

	burn.Sender = data.Sender
	burn.To = data.To
	burn.Amount0 = bigdec.Fixed6(amount0)
	burn.Amount1 = bigdec.Fixed6(amount1)
	burn.AmountUSD = bigdec.Fixed6(amountTotalUSD)
	burn.LogIndex = event.LogIndex
	burn.NeedsComplete = false
	if err := module.store.SaveBurn(ctx, burn); err != nil {
		return err
	}

	user, err := module.getOrCreateUser(ctx, data.Sender)
	if err != nil {
		return err
	}
	position, err := module.getOrCreatePosition(ctx, pair, user)
	if err != nil {
		return err
	}
	if err := module.createLiquiditySnapshot(ctx, event, pair, position); err != nil {
		return err
	}

	if _, err := module.rollupBuckets(ctx, event, pair, factory, token0, token1, bundle); err != nil {
		return err
	}

	if module.publisher != nil {
		module.publisher.SetCurrentBlock(event.BlockNumber)
		module.publisher.PublishEvent(pair.ID, "burn", map[string]any{
			"pair":      pair.ID,
			"sender":    burn.Sender,
			"to":        burn.To,
			"amount0":   burn.Amount0,
			"amount1":   burn.Amount1,
			"amountUSD": burn.AmountUSD,
		})
		module.publisher.EnqueuePairChanged(pair.ID)
	}

	return nil
}
