package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS entities_pair_tokens_idx
	ON entities ((data->>'token0'), (data->>'token1')) WHERE kind = 'pair';
CREATE INDEX IF NOT EXISTS entities_stable_swap_lp_idx
	ON entities ((data->>'lpToken')) WHERE kind = 'stable_swap';
`

// PostgresStore persists entities as JSONB rows keyed by (kind, id).
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

type PostgresConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConnections int32
}

func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func NewPostgresStore(ctx context.Context, cfg *PostgresConfig, logger zerolog.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("Connected to entity store")

	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) get(ctx context.Context, kind, id string, out any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM entities WHERE kind = $1 AND id = $2`, kind, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
	}
	return json.Unmarshal(raw, out)
}

func (s *PostgresStore) put(ctx context.Context, kind, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO entities (kind, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, id) DO UPDATE SET data = $3, updated_at = NOW()`,
		kind, id, raw)
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *PostgresStore) GetBundle(ctx context.Context, id string) (*entity.Bundle, error) {
	var b entity.Bundle
	if err := s.get(ctx, KindBundle, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) SaveBundle(ctx context.Context, b *entity.Bundle) error {
	return s.put(ctx, KindBundle, b.ID, b)
}

func (s *PostgresStore) GetFactory(ctx context.Context, id string) (*entity.Factory, error) {
	var f entity.Factory
	if err := s.get(ctx, KindFactory, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) SaveFactory(ctx context.Context, f *entity.Factory) error {
	return s.put(ctx, KindFactory, f.ID, f)
}

func (s *PostgresStore) GetToken(ctx context.Context, id string) (*entity.Token, error) {
	var t entity.Token
	if err := s.get(ctx, KindToken, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) SaveToken(ctx context.Context, t *entity.Token) error {
	return s.put(ctx, KindToken, t.ID, t)
}

func (s *PostgresStore) GetPair(ctx context.Context, id string) (*entity.Pair, error) {
	var p entity.Pair
	if err := s.get(ctx, KindPair, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) FindPairByTokens(ctx context.Context, tokenA, tokenB string) (*entity.Pair, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM entities
		WHERE kind = $1
			AND ((data->>'token0' = $2 AND data->>'token1' = $3)
				OR (data->>'token0' = $3 AND data->>'token1' = $2))
		LIMIT 1`,
		KindPair, tokenA, tokenB).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pair for %s/%s: %w", tokenA, tokenB, err)
	}
	var p entity.Pair
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) SavePair(ctx context.Context, p *entity.Pair) error {
	return s.put(ctx, KindPair, p.ID, p)
}

func (s *PostgresStore) CountPairs(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM entities WHERE kind = $1`, KindPair).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pairs: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := s.get(ctx, KindTransaction, id, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *PostgresStore) SaveTransaction(ctx context.Context, tx *entity.Transaction) error {
	return s.put(ctx, KindTransaction, tx.ID, tx)
}

func (s *PostgresStore) GetMint(ctx context.Context, id string) (*entity.Mint, error) {
	var m entity.Mint
	if err := s.get(ctx, KindMint, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) SaveMint(ctx context.Context, m *entity.Mint) error {
	return s.put(ctx, KindMint, m.ID, m)
}

func (s *PostgresStore) RemoveMint(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM entities WHERE kind = $1 AND id = $2`, KindMint, id)
	if err != nil {
		return fmt.Errorf("failed to remove mint %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) GetBurn(ctx context.Context, id string) (*entity.Burn, error) {
	var b entity.Burn
	if err := s.get(ctx, KindBurn, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) SaveBurn(ctx context.Context, b *entity.Burn) error {
	return s.put(ctx, KindBurn, b.ID, b)
}

func (s *PostgresStore) GetSwap(ctx context.Context, id string) (*entity.Swap, error) {
	var sw entity.Swap
	if err := s.get(ctx, KindSwap, id, &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

func (s *PostgresStore) SaveSwap(ctx context.Context, sw *entity.Swap) error {
	return s.put(ctx, KindSwap, sw.ID, sw)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := s.get(ctx, KindUser, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) SaveUser(ctx context.Context, u *entity.User) error {
	return s.put(ctx, KindUser, u.ID, u)
}

func (s *PostgresStore) GetLiquidityPosition(ctx context.Context, id string) (*entity.LiquidityPosition, error) {
	var p entity.LiquidityPosition
	if err := s.get(ctx, KindLiquidityPosition, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) SaveLiquidityPosition(ctx context.Context, p *entity.LiquidityPosition) error {
	return s.put(ctx, KindLiquidityPosition, p.ID, p)
}

func (s *PostgresStore) GetLiquidityPositionSnapshot(ctx context.Context, id string) (*entity.LiquidityPositionSnapshot, error) {
	var snap entity.LiquidityPositionSnapshot
	if err := s.get(ctx, KindLiquiditySnapshot, id, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *PostgresStore) SaveLiquidityPositionSnapshot(ctx context.Context, snap *entity.LiquidityPositionSnapshot) error {
	return s.put(ctx, KindLiquiditySnapshot, snap.ID, snap)
}

func (s *PostgresStore) GetStableSwapByLPToken(ctx context.Context, lpToken string) (*entity.StableSwap, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM entities WHERE kind = $1 AND data->>'lpToken' = $2 LIMIT 1`,
		KindStableSwap, lpToken).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stable swap for lp token %s: %w", lpToken, err)
	}
	var ss entity.StableSwap
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, err
	}
	return &ss, nil
}

func (s *PostgresStore) SaveStableSwap(ctx context.Context, ss *entity.StableSwap) error {
	return s.put(ctx, KindStableSwap, ss.ID, ss)
}

func (s *PostgresStore) GetPairDayData(ctx context.Context, id string) (*entity.PairDayData, error) {
	var d entity.PairDayData
	if err := s.get(ctx, KindPairDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SavePairDayData(ctx context.Context, d *entity.PairDayData) error {
	return s.put(ctx, KindPairDayData, d.ID, d)
}

func (s *PostgresStore) GetPairHourData(ctx context.Context, id string) (*entity.PairHourData, error) {
	var d entity.PairHourData
	if err := s.get(ctx, KindPairHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SavePairHourData(ctx context.Context, d *entity.PairHourData) error {
	return s.put(ctx, KindPairHourData, d.ID, d)
}

func (s *PostgresStore) GetFactoryDayData(ctx context.Context, id string) (*entity.FactoryDayData, error) {
	var d entity.FactoryDayData
	if err := s.get(ctx, KindFactoryDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SaveFactoryDayData(ctx context.Context, d *entity.FactoryDayData) error {
	return s.put(ctx, KindFactoryDayData, d.ID, d)
}

func (s *PostgresStore) GetFactoryHourData(ctx context.Context, id string) (*entity.FactoryHourData, error) {
	var d entity.FactoryHourData
	if err := s.get(ctx, KindFactoryHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SaveFactoryHourData(ctx context.Context, d *entity.FactoryHourData) error {
	return s.put(ctx, KindFactoryHourData, d.ID, d)
}

func (s *PostgresStore) GetTokenDayData(ctx context.Context, id string) (*entity.TokenDayData, error) {
	var d entity.TokenDayData
	if err := s.get(ctx, KindTokenDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SaveTokenDayData(ctx context.Context, d *entity.TokenDayData) error {
	return s.put(ctx, KindTokenDayData, d.ID, d)
}

func (s *PostgresStore) GetTokenHourData(ctx context.Context, id string) (*entity.TokenHourData, error) {
	var d entity.TokenHourData
	if err := s.get(ctx, KindTokenHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) SaveTokenHourData(ctx context.Context, d *entity.TokenHourData) error {
	return s.put(ctx, KindTokenHourData, d.ID, d)
}
