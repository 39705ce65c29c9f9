package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zenlinkpro/zenlink-indexer/internal/entity"
)

// MemoryStore keeps entities as marshaled JSON, so gets always hand out
// private copies with the same isolation the Postgres store provides. Used
// in tests and for dry runs.
type MemoryStore struct {
	mu         sync.RWMutex
	tables     map[string]map[string][]byte
	pairIndex  map[string]string // "token0|token1" -> pair id
	stableSwap map[string]string // lp token -> stable swap id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:     make(map[string]map[string][]byte),
		pairIndex:  make(map[string]string),
		stableSwap: make(map[string]string),
	}
}

func (s *MemoryStore) get(kind, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.tables[kind][id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (s *MemoryStore) put(kind, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", kind, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[kind] == nil {
		s.tables[kind] = make(map[string][]byte)
	}
	s.tables[kind][id] = raw
	return nil
}

func (s *MemoryStore) GetBundle(_ context.Context, id string) (*entity.Bundle, error) {
	var b entity.Bundle
	if err := s.get(KindBundle, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MemoryStore) SaveBundle(_ context.Context, b *entity.Bundle) error {
	return s.put(KindBundle, b.ID, b)
}

func (s *MemoryStore) GetFactory(_ context.Context, id string) (*entity.Factory, error) {
	var f entity.Factory
	if err := s.get(KindFactory, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *MemoryStore) SaveFactory(_ context.Context, f *entity.Factory) error {
	return s.put(KindFactory, f.ID, f)
}

func (s *MemoryStore) GetToken(_ context.Context, id string) (*entity.Token, error) {
	var t entity.Token
	if err := s.get(KindToken, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MemoryStore) SaveToken(_ context.Context, t *entity.Token) error {
	return s.put(KindToken, t.ID, t)
}

func (s *MemoryStore) GetPair(_ context.Context, id string) (*entity.Pair, error) {
	var p entity.Pair
	if err := s.get(KindPair, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) FindPairByTokens(ctx context.Context, tokenA, tokenB string) (*entity.Pair, error) {
	s.mu.RLock()
	id, ok := s.pairIndex[tokenA+"|"+tokenB]
	if !ok {
		id, ok = s.pairIndex[tokenB+"|"+tokenA]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetPair(ctx, id)
}

func (s *MemoryStore) SavePair(_ context.Context, p *entity.Pair) error {
	if err := s.put(KindPair, p.ID, p); err != nil {
		return err
	}
	s.mu.Lock()
	s.pairIndex[p.Token0+"|"+p.Token1] = p.ID
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CountPairs(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[KindPair]), nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := s.get(KindTransaction, id, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *MemoryStore) SaveTransaction(_ context.Context, tx *entity.Transaction) error {
	return s.put(KindTransaction, tx.ID, tx)
}

func (s *MemoryStore) GetMint(_ context.Context, id string) (*entity.Mint, error) {
	var m entity.Mint
	if err := s.get(KindMint, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemoryStore) SaveMint(_ context.Context, m *entity.Mint) error {
	return s.put(KindMint, m.ID, m)
}

func (s *MemoryStore) RemoveMint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables[KindMint], id)
	return nil
}

func (s *MemoryStore) GetBurn(_ context.Context, id string) (*entity.Burn, error) {
	var b entity.Burn
	if err := s.get(KindBurn, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MemoryStore) SaveBurn(_ context.Context, b *entity.Burn) error {
	return s.put(KindBurn, b.ID, b)
}

func (s *MemoryStore) GetSwap(_ context.Context, id string) (*entity.Swap, error) {
	var sw entity.Swap
	if err := s.get(KindSwap, id, &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

func (s *MemoryStore) SaveSwap(_ context.Context, sw *entity.Swap) error {
	return s.put(KindSwap, sw.ID, sw)
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := s.get(KindUser, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, u *entity.User) error {
	return s.put(KindUser, u.ID, u)
}

func (s *MemoryStore) GetLiquidityPosition(_ context.Context, id string) (*entity.LiquidityPosition, error) {
	var p entity.LiquidityPosition
	if err := s.get(KindLiquidityPosition, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) SaveLiquidityPosition(_ context.Context, p *entity.LiquidityPosition) error {
	return s.put(KindLiquidityPosition, p.ID, p)
}

func (s *MemoryStore) GetLiquidityPositionSnapshot(_ context.Context, id string) (*entity.LiquidityPositionSnapshot, error) {
	var snap entity.LiquidityPositionSnapshot
	if err := s.get(KindLiquiditySnapshot, id, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *MemoryStore) SaveLiquidityPositionSnapshot(_ context.Context, snap *entity.LiquidityPositionSnapshot) error {
	return s.put(KindLiquiditySnapshot, snap.ID, snap)
}

func (s *MemoryStore) GetStableSwapByLPToken(_ context.Context, lpToken string) (*entity.StableSwap, error) {
	s.mu.RLock()
	id, ok := s.stableSwap[lpToken]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var ss entity.StableSwap
	if err := s.get(KindStableSwap, id, &ss); err != nil {
		return nil, err
	}
	return &ss, nil
}

func (s *MemoryStore) SaveStableSwap(_ context.Context, ss *entity.StableSwap) error {
	if err := s.put(KindStableSwap, ss.ID, ss); err != nil {
		return err
	}
	s.mu.Lock()
	s.stableSwap[ss.LPToken] = ss.ID
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetPairDayData(_ context.Context, id string) (*entity.PairDayData, error) {
	var d entity.PairDayData
	if err := s.get(KindPairDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SavePairDayData(_ context.Context, d *entity.PairDayData) error {
	return s.put(KindPairDayData, d.ID, d)
}

func (s *MemoryStore) GetPairHourData(_ context.Context, id string) (*entity.PairHourData, error) {
	var d entity.PairHourData
	if err := s.get(KindPairHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SavePairHourData(_ context.Context, d *entity.PairHourData) error {
	return s.put(KindPairHourData, d.ID, d)
}

func (s *MemoryStore) GetFactoryDayData(_ context.Context, id string) (*entity.FactoryDayData, error) {
	var d entity.FactoryDayData
	if err := s.get(KindFactoryDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SaveFactoryDayData(_ context.Context, d *entity.FactoryDayData) error {
	return s.put(KindFactoryDayData, d.ID, d)
}

func (s *MemoryStore) GetFactoryHourData(_ context.Context, id string) (*entity.FactoryHourData, error) {
	var d entity.FactoryHourData
	if err := s.get(KindFactoryHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SaveFactoryHourData(_ context.Context, d *entity.FactoryHourData) error {
	return s.put(KindFactoryHourData, d.ID, d)
}

func (s *MemoryStore) GetTokenDayData(_ context.Context, id string) (*entity.TokenDayData, error) {
	var d entity.TokenDayData
	if err := s.get(KindTokenDayData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SaveTokenDayData(_ context.Context, d *entity.TokenDayData) error {
	return s.put(KindTokenDayData, d.ID, d)
}

func (s *MemoryStore) GetTokenHourData(_ context.Context, id string) (*entity.TokenHourData, error) {
	var d entity.TokenHourData
	if err := s.get(KindTokenHourData, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) SaveTokenHourData(_ context.Context, d *entity.TokenHourData) error {
	return s.put(KindTokenHourData, d.ID, d)
}
