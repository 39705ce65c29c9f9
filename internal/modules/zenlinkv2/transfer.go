package zenlinkv2

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// handleTransfer processes LP-token Transfer events. Mint transfers
// (from the zero address) open a mint skeleton, transfers into the pair
// followed by burns to the zero address open burn records, and both sides
// of every transfer get their liquidity positions refreshed.
func handleTransfer(ctx context.Context, module *Module, event *core.Event) error {
	data, err := decodeTransfer(event.Log)
	if err != nil {
		return err
	}

	// The bootstrap lock of the pool's first mint is burned forever and
	// never tracked as liquidity.
	if data.To == addressZero && data.Value.Cmp(module.minLiquidityLock) == 0 {
		return nil
	}

	pair, err := module.pairForEvent(ctx, event)
	if err != nil || pair == nil {
		return err
	}

	tx, err := module.getOrCreateTransaction(ctx, event)
	if err != nil {
		return err
	}

	value := data.Value.String()

	if data.From == addressZero {
		pair.TotalSupply = bigdec.AddRaw(pair.TotalSupply, data.Value)

		newMint := len(tx.Mints) == 0
		if !newMint {
			lastMint, err := module.store.GetMint(ctx, tx.Mints[len(tx.Mints)-1])
			if err != nil {
				return fmt.Errorf("failed to load mint %s: %w", tx.Mints[len(tx.Mints)-1], err)
			}
			// A second mint transfer in the same transaction only opens
			// a new skeleton once the previous one completed.
			newMint = lastMint.Sender != ""
		}

		if newMint {
			mint := &entity.Mint{
				ID:          fmt.Sprintf("%s-%d", tx.ID, len(tx.Mints)),
				Transaction: tx.ID,
				Pair:        pair.ID,
				To:          data.To,
				Liquidity:   value,
				Timestamp:   event.Timestamp,
			}
			if err := module.store.SaveMint(ctx, mint); err != nil {
				return err
			}

			tx.Mints = append(tx.Mints, mint.ID)
			if err := module.store.SaveTransaction(ctx, tx); err != nil {
				return err
			}
		}
	}

	if data.To == addressZero && data.From == pair.ID {
		pair.TotalSupply = bigdec.SubRaw(pair.TotalSupply, data.Value)

		var burn *entity.Burn
		reused := false
		if len(tx.Burns) > 0 {
			current, err := module.store.GetBurn(ctx, tx.Burns[len(tx.Burns)-1])
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if err == nil && current.NeedsComplete {
				burn = current
				reused = true
			}
		}
		if burn == nil {
			burn = &entity.Burn{
				ID:          fmt.Sprintf("%s-%d", tx.ID, len(tx.Burns)),
				Transaction: tx.ID,
				Pair:        pair.ID,
				Liquidity:   value,
				Timestamp:   event.Timestamp,
			}
		}

		// A fee mint in the same transaction is protocol fee collection,
		// not a user deposit: fold it into the burn and drop the mint.
		if len(tx.Mints) > 0 {
			lastMintID := tx.Mints[len(tx.Mints)-1]
			lastMint, err := module.store.GetMint(ctx, lastMintID)
			if err != nil {
				return fmt.Errorf("failed to load mint %s: %w", lastMintID, err)
			}
			if lastMint.Sender == "" {
				burn.FeeTo = lastMint.To
				burn.FeeLiquidity = lastMint.Liquidity

				if err := module.store.RemoveMint(ctx, lastMintID); err != nil {
					return err
				}
				tx.Mints = tx.Mints[:len(tx.Mints)-1]
			}
		}

		if err := module.store.SaveBurn(ctx, burn); err != nil {
			return err
		}
		if reused {
			tx.Burns[len(tx.Burns)-1] = burn.ID
		} else {
			tx.Burns = append(tx.Burns, burn.ID)
		}
		if err := module.store.SaveTransaction(ctx, tx); err != nil {
			return err
		}
	}

	if data.From != addressZero && data.From != pair.ID {
		if err := module.updatePosition(ctx, event, pair, data.From); err != nil {
			return err
		}
	}
	if data.To != addressZero && data.To != pair.ID {
		if err := module.updatePosition(ctx, event, pair, data.To); err != nil {
			return err
		}
	}

	return module.store.SavePair(ctx, pair)
}

// updatePosition refreshes one holder's liquidity position from the chain
// and snapshots it.
func (m *Module) updatePosition(ctx context.Context, event *core.Event, pair *entity.Pair, address string) error {
	user, err := m.getOrCreateUser(ctx, address)
	if err != nil {
		return err
	}

	position, err := m.getOrCreatePosition(ctx, pair, user)
	if err != nil {
		return err
	}

	if m.balances != nil {
		balance, err := m.balances.BalanceOf(ctx,
			common.HexToAddress(pair.ID), common.HexToAddress(address), event.BlockNumber)
		if err != nil {
			return fmt.Errorf("failed to read LP balance of %s in %s: %w", address, pair.ID, err)
		}
		position.LiquidityTokenBalance = balance.String()
		if err := m.store.SaveLiquidityPosition(ctx, position); err != nil {
			return err
		}
	}

	return m.createLiquiditySnapshot(ctx, event, pair, position)
}
