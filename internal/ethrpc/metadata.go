package ethrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

var (
	nameSelector     = []byte{0x06, 0xfd, 0xde, 0x03} // name()
	symbolSelector   = []byte{0x95, 0xd8, 0x9b, 0x41} // symbol()
	decimalsSelector = []byte{0x31, 0x3c, 0xe5, 0x67} // decimals()
)

// TokenMetadata holds ERC-20 metadata read from the contract.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals int32
}

// MetadataReader reads ERC-20 metadata for newly discovered tokens.
type MetadataReader interface {
	TokenMetadata(ctx context.Context, token common.Address) (*TokenMetadata, error)
}

// TokenMetadata reads name, symbol and decimals at the latest block. Tokens
// with broken metadata calls fall back to empty strings and 18 decimals.
func (c *Client) TokenMetadata(ctx context.Context, token common.Address) (*TokenMetadata, error) {
	meta := &TokenMetadata{Decimals: 18}

	if raw, err := c.call(ctx, token, nameSelector); err == nil {
		meta.Name = decodeString(raw)
	} else {
		c.logger.Debug().Err(err).Str("token", token.Hex()).Msg("name() call failed")
	}

	if raw, err := c.call(ctx, token, symbolSelector); err == nil {
		meta.Symbol = decodeString(raw)
	} else {
		c.logger.Debug().Err(err).Str("token", token.Hex()).Msg("symbol() call failed")
	}

	raw, err := c.call(ctx, token, decimalsSelector)
	if err != nil {
		return nil, fmt.Errorf("decimals call failed for %s: %w", token.Hex(), err)
	}
	if len(raw) >= 32 {
		meta.Decimals = int32(new(big.Int).SetBytes(raw[0:32]).Int64())
	}

	return meta, nil
}

func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// decodeString unpacks a single ABI-encoded string return value. Some
// legacy tokens return bytes32 instead; those decode as the trimmed raw
// bytes.
func decodeString(raw []byte) string {
	if len(raw) == 32 {
		return string(trimRightZeros(raw))
	}
	if len(raw) < 64 {
		return ""
	}
	offset := new(big.Int).SetBytes(raw[0:32]).Uint64()
	if offset+32 > uint64(len(raw)) {
		return ""
	}
	length := new(big.Int).SetBytes(raw[offset : offset+32]).Uint64()
	if offset+32+length > uint64(len(raw)) {
		return ""
	}
	return string(raw[offset+32 : offset+32+length])
}

func trimRightZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
