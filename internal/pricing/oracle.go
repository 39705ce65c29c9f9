// Package pricing derives native and USD token prices from pair reserves.
// The native price of a token is found by walking its whitelist
// counter-tokens in a fixed priority order; tokens with no usable
// whitelist route fall back to stable-basket membership.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/zenlinkpro/zenlink-indexer/internal/bigdec"
	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// maxBasketDepth caps the stable-basket recursion. Baskets nest at most a
// couple of levels in practice; anything deeper is a config mistake.
const maxBasketDepth = 8

type Config struct {
	// WrappedNative is the wrapped native token address, lowercased.
	WrappedNative string
	// Whitelist is the ordered list of counter-tokens considered when
	// deriving a native price. Order is the tie-break: the first
	// qualifying pair wins.
	Whitelist []string
	// PrimaryReferencePair and SecondaryReferencePair are the
	// native/stable pairs used for the native USD price. The primary
	// pair is preferred while its native-side reserve clears the floor.
	PrimaryReferencePair   string
	SecondaryReferencePair string
	// MinimumLiquidityETH is the native-denominated reserve floor a
	// pair must exceed to qualify as a price source.
	MinimumLiquidityETH decimal.Decimal
}

type Oracle struct {
	store  store.Store
	cfg    Config
	logger zerolog.Logger
}

func New(st store.Store, cfg Config, logger zerolog.Logger) *Oracle {
	return &Oracle{
		store:  st,
		cfg:    cfg,
		logger: logger.With().Str("component", "pricing").Logger(),
	}
}

// NativeUSDPrice returns the USD price of the wrapped native token, read
// from the primary reference pair when it clears the liquidity floor and
// from the secondary pair otherwise. Zero when neither pair exists.
func (o *Oracle) NativeUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	primary, err := o.store.GetPair(ctx, o.cfg.PrimaryReferencePair)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to load primary reference pair: %w", err)
	}
	if primary != nil && bigdec.Parse(primary.ReserveETH).GreaterThan(o.cfg.MinimumLiquidityETH) {
		return o.nativeSidePrice(primary), nil
	}

	secondary, err := o.store.GetPair(ctx, o.cfg.SecondaryReferencePair)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load secondary reference pair: %w", err)
	}
	return o.nativeSidePrice(secondary), nil
}

// nativeSidePrice reads the price of the native token out of a
// native/stable pair. Token0Price is reserve1/reserve0, so when token0 is
// the native token it is the stable amount one native unit buys.
func (o *Oracle) nativeSidePrice(pair *entity.Pair) decimal.Decimal {
	if pair.Token0 == o.cfg.WrappedNative {
		return bigdec.Parse(pair.Token0Price)
	}
	return bigdec.Parse(pair.Token1Price)
}

// DerivedNativePrice returns the price of a token denominated in the
// native token. The wrapped native token is 1 by definition; other tokens
// are priced through the first whitelist counter-token whose pair clears
// the liquidity floor, recursively valuing the counter-token. Zero when no
// route qualifies.
func (o *Oracle) DerivedNativePrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	return o.derivedNative(ctx, tokenID, map[string]struct{}{})
}

func (o *Oracle) derivedNative(ctx context.Context, tokenID string, visited map[string]struct{}) (decimal.Decimal, error) {
	if tokenID == o.cfg.WrappedNative {
		return bigdec.One, nil
	}
	if _, ok := visited[tokenID]; ok {
		return decimal.Zero, nil
	}
	visited[tokenID] = struct{}{}

	for _, counter := range o.cfg.Whitelist {
		if counter == tokenID {
			continue
		}
		pair, err := o.store.FindPairByTokens(ctx, tokenID, counter)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return decimal.Zero, err
		}
		if !bigdec.Parse(pair.ReserveETH).GreaterThan(o.cfg.MinimumLiquidityETH) {
			continue
		}

		// Price of the token expressed in counter-token units.
		price := bigdec.Parse(pair.Token0Price)
		counterSide := pair.Token1
		if pair.Token1 == tokenID {
			price = bigdec.Parse(pair.Token1Price)
			counterSide = pair.Token0
		}

		counterDerived, err := o.derivedNative(ctx, counterSide, visited)
		if err != nil {
			return decimal.Zero, err
		}
		// First qualifying pair decides, even if the counter-token
		// itself prices to zero.
		return price.Mul(counterDerived), nil
	}

	return decimal.Zero, nil
}

// DerivedUSDPrice returns the USD price of a token: its derived native
// price times the native USD price, or, when that is zero and the token is
// a stable-basket LP token, the first non-zero USD price among the
// basket's members in declared order.
func (o *Oracle) DerivedUSDPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	return o.derivedUSD(ctx, tokenID, 0, map[string]struct{}{})
}

func (o *Oracle) derivedUSD(ctx context.Context, tokenID string, depth int, visited map[string]struct{}) (decimal.Decimal, error) {
	native, err := o.NativeUSDPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	derived, err := o.DerivedNativePrice(ctx, tokenID)
	if err != nil {
		return decimal.Zero, err
	}
	if usd := derived.Mul(native); !usd.IsZero() {
		return usd, nil
	}

	if depth >= maxBasketDepth {
		o.logger.Warn().Str("token", tokenID).Msg("Stable basket recursion depth exceeded")
		return decimal.Zero, nil
	}
	if _, ok := visited[tokenID]; ok {
		return decimal.Zero, nil
	}
	visited[tokenID] = struct{}{}

	basket, err := o.store.GetStableSwapByLPToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	for _, member := range basket.Tokens {
		price, err := o.derivedUSD(ctx, member, depth+1, visited)
		if err != nil {
			return decimal.Zero, err
		}
		if !price.IsZero() {
			return price, nil
		}
	}
	return decimal.Zero, nil
}
