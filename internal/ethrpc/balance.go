// Package ethrpc provides the on-chain reads the entity engine needs
// beyond the event stream itself.
package ethrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// balanceOfSelector is the 4-byte selector of balanceOf(address).
var balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

// BalanceReader reads an ERC-20 balance at a specific block. Liquidity
// position updates use it to read live LP token balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, owner common.Address, blockNumber uint64) (*big.Int, error)
}

// Client is an ethclient-backed BalanceReader.
type Client struct {
	client   *ethclient.Client
	endpoint string
	logger   zerolog.Logger
}

func Dial(ctx context.Context, endpoint string, logger zerolog.Logger) (*Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	return &Client{
		client:   client,
		endpoint: endpoint,
		logger:   logger.With().Str("component", "ethrpc").Logger(),
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address, blockNumber uint64) (*big.Int, error) {
	data := make([]byte, 0, 36)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return nil, fmt.Errorf("balanceOf call failed for %s on %s: %w", owner.Hex(), token.Hex(), err)
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("balanceOf returned %d bytes for %s on %s", len(result), owner.Hex(), token.Hex())
	}

	return new(big.Int).SetBytes(result[0:32]), nil
}
