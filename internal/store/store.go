// Package store is the persistence gateway for derived entities. Reads
// return ErrNotFound for missing ids; writes are full upserts. Handlers
// mutate a loaded entity and save it back, so a loaded entity is always a
// private copy.
package store

import (
	"context"
	"errors"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
)

var ErrNotFound = errors.New("entity not found")

// Entity kinds used as table discriminators.
const (
	KindBundle            = "bundle"
	KindFactory           = "factory"
	KindToken             = "token"
	KindPair              = "pair"
	KindTransaction       = "transaction"
	KindMint              = "mint"
	KindBurn              = "burn"
	KindSwap              = "swap"
	KindUser              = "user"
	KindLiquidityPosition = "liquidity_position"
	KindLiquiditySnapshot = "liquidity_position_snapshot"
	KindStableSwap        = "stable_swap"
	KindPairDayData       = "pair_day_data"
	KindPairHourData      = "pair_hour_data"
	KindFactoryDayData    = "factory_day_data"
	KindFactoryHourData   = "factory_hour_data"
	KindTokenDayData      = "token_day_data"
	KindTokenHourData     = "token_hour_data"
)

type Store interface {
	GetBundle(ctx context.Context, id string) (*entity.Bundle, error)
	SaveBundle(ctx context.Context, b *entity.Bundle) error

	GetFactory(ctx context.Context, id string) (*entity.Factory, error)
	SaveFactory(ctx context.Context, f *entity.Factory) error

	GetToken(ctx context.Context, id string) (*entity.Token, error)
	SaveToken(ctx context.Context, t *entity.Token) error

	GetPair(ctx context.Context, id string) (*entity.Pair, error)
	// FindPairByTokens matches either token ordering.
	FindPairByTokens(ctx context.Context, tokenA, tokenB string) (*entity.Pair, error)
	SavePair(ctx context.Context, p *entity.Pair) error
	CountPairs(ctx context.Context) (int, error)

	GetTransaction(ctx context.Context, id string) (*entity.Transaction, error)
	SaveTransaction(ctx context.Context, tx *entity.Transaction) error

	GetMint(ctx context.Context, id string) (*entity.Mint, error)
	SaveMint(ctx context.Context, m *entity.Mint) error
	RemoveMint(ctx context.Context, id string) error

	GetBurn(ctx context.Context, id string) (*entity.Burn, error)
	SaveBurn(ctx context.Context, b *entity.Burn) error

	GetSwap(ctx context.Context, id string) (*entity.Swap, error)
	SaveSwap(ctx context.Context, s *entity.Swap) error

	GetUser(ctx context.Context, id string) (*entity.User, error)
	SaveUser(ctx context.Context, u *entity.User) error

	GetLiquidityPosition(ctx context.Context, id string) (*entity.LiquidityPosition, error)
	SaveLiquidityPosition(ctx context.Context, p *entity.LiquidityPosition) error
	GetLiquidityPositionSnapshot(ctx context.Context, id string) (*entity.LiquidityPositionSnapshot, error)
	SaveLiquidityPositionSnapshot(ctx context.Context, s *entity.LiquidityPositionSnapshot) error

	GetStableSwapByLPToken(ctx context.Context, lpToken string) (*entity.StableSwap, error)
	SaveStableSwap(ctx context.Context, s *entity.StableSwap) error

	GetPairDayData(ctx context.Context, id string) (*entity.PairDayData, error)
	SavePairDayData(ctx context.Context, d *entity.PairDayData) error
	GetPairHourData(ctx context.Context, id string) (*entity.PairHourData, error)
	SavePairHourData(ctx context.Context, d *entity.PairHourData) error
	GetFactoryDayData(ctx context.Context, id string) (*entity.FactoryDayData, error)
	SaveFactoryDayData(ctx context.Context, d *entity.FactoryDayData) error
	GetFactoryHourData(ctx context.Context, id string) (*entity.FactoryHourData, error)
	SaveFactoryHourData(ctx context.Context, d *entity.FactoryHourData) error
	GetTokenDayData(ctx context.Context, id string) (*entity.TokenDayData, error)
	SaveTokenDayData(ctx context.Context, d *entity.TokenDayData) error
	GetTokenHourData(ctx context.Context, id string) (*entity.TokenHourData, error)
	SaveTokenHourData(ctx context.Context, d *entity.TokenHourData) error
}
