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

const zeroFixed = "0.000000"

func (m *Module) getOrCreateBundle(ctx context.Context) (*entity.Bundle, error) {
	bundle, err := m.store.GetBundle(ctx, entity.BundleID)
	if err == nil {
		return bundle, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	bundle = &entity.Bundle{ID: entity.BundleID, ETHPrice: zeroFixed}
	if err := m.store.SaveBundle(ctx, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (m *Module) getOrCreateFactory(ctx context.Context) (*entity.Factory, error) {
	factory, err := m.store.GetFactory(ctx, m.config.FactoryAddress)
	if err == nil {
		return factory, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	factory = &entity.Factory{
		ID:                 m.config.FactoryAddress,
		TotalVolumeETH:     zeroFixed,
		TotalVolumeUSD:     zeroFixed,
		UntrackedVolumeUSD: zeroFixed,
		TotalLiquidityETH:  zeroFixed,
		TotalLiquidityUSD:  zeroFixed,
	}
	if err := m.store.SaveFactory(ctx, factory); err != nil {
		return nil, err
	}
	return factory, nil
}

func (m *Module) getOrCreateTransaction(ctx context.Context, event *core.Event) (*entity.Transaction, error) {
	tx, err := m.store.GetTransaction(ctx, event.TxHash)
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	tx = &entity.Transaction{
		ID:          event.TxHash,
		BlockNumber: event.BlockNumber,
		Timestamp:   event.Timestamp,
		Mints:       []string{},
		Burns:       []string{},
		Swaps:       []string{},
	}
	if err := m.store.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (m *Module) getOrCreateUser(ctx context.Context, address string) (*entity.User, error) {
	user, err := m.store.GetUser(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &entity.User{
		ID:                 address,
		LiquidityPositions: []string{},
		USDSwapped:         zeroFixed,
	}
	if err := m.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// getOrCreatePosition loads the user's position in the pair, creating it
// with a zero balance on first sight. Creation counts the user as a new
// liquidity provider on the pair.
func (m *Module) getOrCreatePosition(ctx context.Context, pair *entity.Pair, user *entity.User) (*entity.LiquidityPosition, error) {
	id := fmt.Sprintf("%s-%s", pair.ID, user.ID)

	position, err := m.store.GetLiquidityPosition(ctx, id)
	if err == nil {
		return position, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	pair.LiquidityProviderCount++
	if err := m.store.SavePair(ctx, pair); err != nil {
		return nil, err
	}

	position = &entity.LiquidityPosition{
		ID:                    id,
		Pair:                  pair.ID,
		User:                  user.ID,
		LiquidityTokenBalance: "0",
	}
	if err := m.store.SaveLiquidityPosition(ctx, position); err != nil {
		return nil, err
	}

	user.LiquidityPositions = append(user.LiquidityPositions, id)
	if err := m.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	m.logger.Debug().
		Str("pair", pair.ID).
		Str("user", user.ID).
		Msg("Created liquidity position")

	return position, nil
}

// createLiquiditySnapshot records the position together with the pair's
// reserves and prices at the event's block. Skipped silently before the
// bundle exists.
func (m *Module) createLiquiditySnapshot(ctx context.Context, event *core.Event, pair *entity.Pair, position *entity.LiquidityPosition) error {
	bundle, err := m.store.GetBundle(ctx, entity.BundleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token0, err := m.store.GetToken(ctx, pair.Token0)
	if err != nil {
		return fmt.Errorf("failed to load token0 %s: %w", pair.Token0, err)
	}
	token1, err := m.store.GetToken(ctx, pair.Token1)
	if err != nil {
		return fmt.Errorf("failed to load token1 %s: %w", pair.Token1, err)
	}

	ethPrice := bigdec.Parse(bundle.ETHPrice)

	snapshot := &entity.LiquidityPositionSnapshot{
		ID:                        fmt.Sprintf("%s%d", position.ID, event.Timestamp),
		LiquidityPosition:         position.ID,
		User:                      position.User,
		Pair:                      pair.ID,
		Timestamp:                 event.Timestamp,
		Block:                     event.BlockNumber,
		Token0PriceUSD:            bigdec.Fixed6(bigdec.Parse(token0.DerivedETH).Mul(ethPrice)),
		Token1PriceUSD:            bigdec.Fixed6(bigdec.Parse(token1.DerivedETH).Mul(ethPrice)),
		Reserve0:                  pair.Reserve0,
		Reserve1:                  pair.Reserve1,
		ReserveUSD:                pair.ReserveUSD,
		LiquidityTokenTotalSupply: pair.TotalSupply,
		LiquidityTokenBalance:     position.LiquidityTokenBalance,
	}

	return m.store.SaveLiquidityPositionSnapshot(ctx, snapshot)
}

// pairTokens loads both sides of a pair. A pair entity without its tokens
// is corrupted state, not a skippable condition.
func (m *Module) pairTokens(ctx context.Context, pair *entity.Pair) (*entity.Token, *entity.Token, error) {
	token0, err := m.store.GetToken(ctx, pair.Token0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load token0 %s of pair %s: %w", pair.Token0, pair.ID, err)
	}
	token1, err := m.store.GetToken(ctx, pair.Token1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load token1 %s of pair %s: %w", pair.Token1, pair.ID, err)
	}
	return token0, token1, nil
}
