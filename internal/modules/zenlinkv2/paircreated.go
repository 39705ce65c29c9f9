package zenlinkv2

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// handlePairCreated processes PairCreated events from the factory,
// creating the pair and any tokens seen for the first time.
func handlePairCreated(ctx context.Context, module *Module, event *core.Event) error {
	if event.Address != module.config.FactoryAddress {
		return nil
	}

	data, err := decodePairCreated(event.Log)
	if err != nil {
		return err
	}

	module.logger.Info().
		Str("pair", data.Pair).
		Str("token0", data.Token0).
		Str("token1", data.Token1).
		Uint64("block", event.BlockNumber).
		Msg("Processing PairCreated event")

	factory, err := module.getOrCreateFactory(ctx)
	if err != nil {
		return err
	}

	if _, err := module.getOrCreateToken(ctx, data.Token0); err != nil {
		return err
	}
	if _, err := module.getOrCreateToken(ctx, data.Token1); err != nil {
		return err
	}

	pair := &entity.Pair{
		ID:                   data.Pair,
		Token0:               data.Token0,
		Token1:               data.Token1,
		Reserve0:             "0",
		Reserve1:             "0",
		TotalSupply:          "0",
		ReserveETH:           zeroFixed,
		ReserveUSD:           zeroFixed,
		TrackedReserveETH:    zeroFixed,
		Token0Price:          zeroFixed,
		Token1Price:          zeroFixed,
		VolumeToken0:         zeroFixed,
		VolumeToken1:         zeroFixed,
		VolumeUSD:            zeroFixed,
		UntrackedVolumeUSD:   zeroFixed,
		CreatedAtTimestamp:   event.Timestamp,
		CreatedAtBlockNumber: event.BlockNumber,
	}
	if err := module.store.SavePair(ctx, pair); err != nil {
		return err
	}
	module.pairs.Register(pair.ID)

	factory.PairCount++
	return module.store.SaveFactory(ctx, factory)
}

func (m *Module) getOrCreateToken(ctx context.Context, address string) (*entity.Token, error) {
	token, err := m.store.GetToken(ctx, address)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	token = &entity.Token{
		ID:                 address,
		Decimals:           18,
		DerivedETH:         zeroFixed,
		TradeVolume:        zeroFixed,
		TradeVolumeUSD:     zeroFixed,
		UntrackedVolumeUSD: zeroFixed,
		TotalLiquidity:     "0",
	}

	if m.metadata != nil {
		meta, err := m.metadata.TokenMetadata(ctx, common.HexToAddress(address))
		if err != nil {
			m.logger.Warn().Err(err).Str("token", address).Msg("Failed to fetch token metadata")
		} else {
			token.Name = meta.Name
			token.Symbol = meta.Symbol
			token.Decimals = meta.Decimals
		}
	}

	if err := m.store.SaveToken(ctx, token); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("token", address).
		Str("symbol", token.Symbol).
		Int32("decimals", token.Decimals).
		Msg("Created token")

	return token, nil
}
