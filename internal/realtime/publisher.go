package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/centrifugal/gocent/v3"
	"github.com/rs/zerolog"

	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

// Publisher pushes pair updates to Centrifugo. Swap events go out
// immediately; reserve changes are coalesced per pair and flushed on a
// short ticker so a busy block produces one update per pair.
type Publisher struct {
	gc           *gocent.Client
	store        store.Store
	logger       zerolog.Logger
	mu           sync.Mutex
	pending      map[string]struct{}
	flushCh      chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	currentBlock uint64
}

type PublishConfig struct {
	APIURL string
	APIKey string
}

func NewPublisher(config PublishConfig, st store.Store, logger zerolog.Logger) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Publisher{
		gc: gocent.New(gocent.Config{
			Addr: config.APIURL,
			Key:  config.APIKey,
		}),
		store:   st,
		logger:  logger.With().Str("component", "realtime-publisher").Logger(),
		pending: make(map[string]struct{}),
		flushCh: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.startFlusher()
	return p
}

func (p *Publisher) startFlusher() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				p.logger.Info().Msg("Stopping publisher flusher")
				return
			case <-ticker.C:
				p.flush(p.ctx)
			case <-p.flushCh:
				p.flush(p.ctx)
			}
		}
	}()
}

// EnqueuePairChanged schedules a coalesced pair.update for the address.
func (p *Publisher) EnqueuePairChanged(address string) {
	addr := strings.ToLower(address)
	p.mu.Lock()
	p.pending[addr] = struct{}{}
	p.mu.Unlock()

	select {
	case p.flushCh <- struct{}{}:
	default:
	}
}

// PublishEvent sends a single pair event (swap, mint, burn) without
// coalescing. Best effort: failures are logged and dropped.
func (p *Publisher) PublishEvent(address string, eventType string, data interface{}) {
	payload := map[string]any{
		"type":       "pair.event",
		"event_type": eventType,
		"data":       data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to marshal event payload")
		return
	}

	channel := fmt.Sprintf("dex.pair.%s", strings.ToLower(address))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.gc.Publish(p.ctx, channel, payloadBytes); err != nil {
			if p.ctx.Err() != nil {
				return
			}
			p.logger.Warn().
				Err(err).
				Str("pair", address).
				Str("channel", channel).
				Msg("Failed to publish pair event")
		}
	}()
}

func (p *Publisher) SetCurrentBlock(blockNumber uint64) {
	p.mu.Lock()
	p.currentBlock = blockNumber
	p.mu.Unlock()
}

func (p *Publisher) Flush() {
	p.flush(p.ctx)
}

func (p *Publisher) flush(ctx context.Context) {
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}

	addrs := make([]string, 0, len(p.pending))
	for addr := range p.pending {
		addrs = append(addrs, addr)
	}
	currentBlock := p.currentBlock
	p.pending = make(map[string]struct{})
	p.mu.Unlock()

	p.logger.Debug().
		Int("count", len(addrs)).
		Uint64("block", currentBlock).
		Msg("Flushing pair updates")

	now := time.Now().UTC().Unix()
	items := make([]any, 0, len(addrs))

	for _, addr := range addrs {
		pair, err := p.store.GetPair(ctx, addr)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				p.logger.Error().Err(err).Str("pair", addr).Msg("Failed to fetch pair summary")
			}
			continue
		}

		summary := map[string]any{
			"address":     pair.ID,
			"token0":      pair.Token0,
			"token1":      pair.Token1,
			"reserve0":    pair.Reserve0,
			"reserve1":    pair.Reserve1,
			"token0Price": pair.Token0Price,
			"token1Price": pair.Token1Price,
			"reserveUSD":  pair.ReserveUSD,
			"volumeUSD":   pair.VolumeUSD,
			"txCount":     pair.TxCount,
		}
		items = append(items, summary)

		payload := map[string]any{
			"type":         "pair.update",
			"block_number": currentBlock,
			"ts":           now,
			"pair":         summary,
		}

		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			p.logger.Warn().Err(err).Msg("Failed to marshal pair payload")
			continue
		}

		channel := fmt.Sprintf("dex.pair.%s", pair.ID)
		if _, err := p.gc.Publish(ctx, channel, payloadBytes); err != nil {
			p.logger.Warn().
				Err(err).
				Str("pair", pair.ID).
				Str("channel", channel).
				Msg("Failed to publish pair update")
		}
	}

	if len(items) == 0 {
		return
	}

	batchPayload := map[string]any{
		"type":         "pair.batch",
		"block_number": currentBlock,
		"ts":           now,
		"items":        items,
	}

	batchPayloadBytes, err := json.Marshal(batchPayload)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to marshal batch payload")
		return
	}

	if _, err := p.gc.Publish(ctx, "dex.pairs", batchPayloadBytes); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to publish batch update")
	} else {
		p.logger.Debug().
			Int("count", len(items)).
			Uint64("block", currentBlock).
			Msg("Published batch update")
	}
}

func (p *Publisher) Close() error {
	p.logger.Info().Msg("Closing publisher")
	p.cancel()
	p.wg.Wait()
	return nil
}
