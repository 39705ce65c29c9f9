package zenlinkv2

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event signature hashes for the factory and pair contracts.
var (
	// PairCreated(address indexed token0, address indexed token1, address pair, uint256)
	pairCreatedSig = common.HexToHash("0x0d3648bd0f6ba80134a33ba9275ac585d9d315f0ad8355cddefde31afa28d0e9")
	// Transfer(address indexed from, address indexed to, uint256 value)
	transferSig = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	// Sync(uint112 reserve0, uint112 reserve1)
	syncSig = common.HexToHash("0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1")
	// Swap(address indexed sender, uint256 amount0In, uint256 amount1In, uint256 amount0Out, uint256 amount1Out, address indexed to)
	swapSig = common.HexToHash("0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822")
	// Mint(address indexed sender, uint256 amount0, uint256 amount1)
	mintSig = common.HexToHash("0x4c209b5fc8ad50758f13e2e1088ba56a560dff690a1c6fef26394f4c03821c4f")
	// Burn(address indexed sender, uint256 amount0, uint256 amount1, address indexed to)
	burnSig = common.HexToHash("0xdccd412f0b1252819cb1fd330b93224ca42612892bb3f4f789976e6d81936496")
)

const addressZero = "0x0000000000000000000000000000000000000000"

func topicAddress(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}

func dataWord(data []byte, index int) (*big.Int, error) {
	start := index * 32
	if len(data) < start+32 {
		return nil, fmt.Errorf("log data too short: want word %d, have %d bytes", index, len(data))
	}
	return new(big.Int).SetBytes(data[start : start+32]), nil
}

type pairCreatedEvent struct {
	Token0 string
	Token1 string
	Pair   string
}

func decodePairCreated(log *types.Log) (*pairCreatedEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("PairCreated log has %d topics, want 3", len(log.Topics))
	}
	if len(log.Data) < 32 {
		return nil, fmt.Errorf("PairCreated log data too short: %d bytes", len(log.Data))
	}
	return &pairCreatedEvent{
		Token0: topicAddress(log.Topics[1]),
		Token1: topicAddress(log.Topics[2]),
		Pair:   strings.ToLower(common.BytesToAddress(log.Data[0:32]).Hex()),
	}, nil
}

type transferEvent struct {
	From  string
	To    string
	Value *big.Int
}

func decodeTransfer(log *types.Log) (*transferEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("Transfer log has %d topics, want 3", len(log.Topics))
	}
	value, err := dataWord(log.Data, 0)
	if err != nil {
		return nil, err
	}
	return &transferEvent{
		From:  topicAddress(log.Topics[1]),
		To:    topicAddress(log.Topics[2]),
		Value: value,
	}, nil
}

type syncEvent struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

func decodeSync(log *types.Log) (*syncEvent, error) {
	reserve0, err := dataWord(log.Data, 0)
	if err != nil {
		return nil, err
	}
	reserve1, err := dataWord(log.Data, 1)
	if err != nil {
		return nil, err
	}
	return &syncEvent{Reserve0: reserve0, Reserve1: reserve1}, nil
}

type swapEvent struct {
	Sender     string
	To         string
	Amount0In  *big.Int
	Amount1In  *big.Int
	Amount0Out *big.Int
	Amount1Out *big.Int
}

func decodeSwap(log *types.Log) (*swapEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("Swap log has %d topics, want 3", len(log.Topics))
	}
	amounts := make([]*big.Int, 4)
	for i := range amounts {
		v, err := dataWord(log.Data, i)
		if err != nil {
			return nil, err
		}
		amounts[i] = v
	}
	return &swapEvent{
		Sender:     topicAddress(log.Topics[1]),
		To:         topicAddress(log.Topics[2]),
		Amount0In:  amounts[0],
		Amount1In:  amounts[1],
		Amount0Out: amounts[2],
		Amount1Out: amounts[3],
	}, nil
}

type mintEvent struct {
	Sender  string
	Amount0 *big.Int
	Amount1 *big.Int
}

func decodeMint(log *types.Log) (*mintEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("Mint log has %d topics, want 2", len(log.Topics))
	}
	amount0, err := dataWord(log.Data, 0)
	if err != nil {
		return nil, err
	}
	amount1, err := dataWord(log.Data, 1)
	if err != nil {
		return nil, err
	}
	return &mintEvent{
		Sender:  topicAddress(log.Topics[1]),
		Amount0: amount0,
		Amount1: amount1,
	}, nil
}

type burnEvent struct {
	Sender  string
	To      string
	Amount0 *big.Int
	Amount1 *big.Int
}

func decodeBurn(log *types.Log) (*burnEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("Burn log has %d topics, want 3", len(log.Topics))
	}
	amount0, err := dataWord(log.Data, 0)
	if err != nil {
		return nil, err
	}
	amount1, err := dataWord(log.Data, 1)
	if err != nil {
		return nil, err
	}
	return &burnEvent{
		Sender:  topicAddress(log.Topics[1]),
		To:      topicAddress(log.Topics[2]),
		Amount0: amount0,
		Amount1: amount1,
	}, nil
}
