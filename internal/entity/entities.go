// Package entity defines the derived state written by the Zenlink V2
// module. Decimal-valued fields are stored as strings with six fractional
// digits; raw on-chain integer amounts (reserves, LP supply, balances) are
// stored as base-10 integer strings.
package entity

// BundleID is the id of the singleton native-price bundle.
const BundleID = "1"

// Bundle holds the USD price of the wrapped native token. There is exactly
// one bundle per deployment.
type Bundle struct {
	ID       string `json:"id"`
	ETHPrice string `json:"ethPrice"`
}

// Factory aggregates exchange-wide totals.
type Factory struct {
	ID                 string `json:"id"`
	PairCount          int    `json:"pairCount"`
	TotalVolumeETH     string `json:"totalVolumeETH"`
	TotalVolumeUSD     string `json:"totalVolumeUSD"`
	UntrackedVolumeUSD string `json:"untrackedVolumeUSD"`
	TotalLiquidityETH  string `json:"totalLiquidityETH"`
	TotalLiquidityUSD  string `json:"totalLiquidityUSD"`
	TxCount            int    `json:"txCount"`
}

type Token struct {
	ID                 string `json:"id"`
	Symbol             string `json:"symbol"`
	Name               string `json:"name"`
	Decimals           int32  `json:"decimals"`
	DerivedETH         string `json:"derivedETH"`
	TradeVolume        string `json:"tradeVolume"`
	TradeVolumeUSD     string `json:"tradeVolumeUSD"`
	UntrackedVolumeUSD string `json:"untrackedVolumeUSD"`
	TotalLiquidity     string `json:"totalLiquidity"`
	TxCount            int    `json:"txCount"`
}

// Pair is one trading pair contract. Token0Price is the amount of token1
// one unit of token0 buys (reserve1/reserve0), and vice versa.
type Pair struct {
	ID                     string `json:"id"`
	Token0                 string `json:"token0"`
	Token1                 string `json:"token1"`
	Reserve0               string `json:"reserve0"`
	Reserve1               string `json:"reserve1"`
	TotalSupply            string `json:"totalSupply"`
	ReserveETH             string `json:"reserveETH"`
	ReserveUSD             string `json:"reserveUSD"`
	TrackedReserveETH      string `json:"trackedReserveETH"`
	Token0Price            string `json:"token0Price"`
	Token1Price            string `json:"token1Price"`
	VolumeToken0           string `json:"volumeToken0"`
	VolumeToken1           string `json:"volumeToken1"`
	VolumeUSD              string `json:"volumeUSD"`
	UntrackedVolumeUSD     string `json:"untrackedVolumeUSD"`
	TxCount                int    `json:"txCount"`
	LiquidityProviderCount int    `json:"liquidityProviderCount"`
	CreatedAtTimestamp     int64  `json:"createdAtTimestamp"`
	CreatedAtBlockNumber   uint64 `json:"createdAtBlockNumber"`
}

// Transaction groups the mints, burns and swaps observed for one tx hash,
// in log order.
type Transaction struct {
	ID          string   `json:"id"`
	BlockNumber uint64   `json:"blockNumber"`
	Timestamp   int64    `json:"timestamp"`
	Mints       []string `json:"mints"`
	Burns       []string `json:"burns"`
	Swaps       []string `json:"swaps"`
}

// Mint records one liquidity deposit. It is created as a skeleton by the
// LP-token mint transfer and completed by the pair Mint event; Sender is
// empty until completion.
type Mint struct {
	ID          string `json:"id"`
	Transaction string `json:"transaction"`
	Pair        string `json:"pair"`
	To          string `json:"to"`
	Liquidity   string `json:"liquidity"`
	Timestamp   int64  `json:"timestamp"`
	Sender      string `json:"sender"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	AmountUSD   string `json:"amountUSD"`
	LogIndex    uint   `json:"logIndex"`
}

// Burn records one liquidity withdrawal. A fee-mint absorbed into a burn
// leaves its receiver and liquidity in FeeTo/FeeLiquidity.
type Burn struct {
	ID            string `json:"id"`
	Transaction   string `json:"transaction"`
	Pair          string `json:"pair"`
	Liquidity     string `json:"liquidity"`
	Timestamp     int64  `json:"timestamp"`
	NeedsComplete bool   `json:"needsComplete"`
	Sender        string `json:"sender"`
	To            string `json:"to"`
	Amount0       string `json:"amount0"`
	Amount1       string `json:"amount1"`
	AmountUSD     string `json:"amountUSD"`
	LogIndex      uint   `json:"logIndex"`
	FeeTo         string `json:"feeTo"`
	FeeLiquidity  string `json:"feeLiquidity"`
}

type Swap struct {
	ID          string `json:"id"`
	Transaction string `json:"transaction"`
	Pair        string `json:"pair"`
	Timestamp   int64  `json:"timestamp"`
	Sender      string `json:"sender"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount0In   string `json:"amount0In"`
	Amount1In   string `json:"amount1In"`
	Amount0Out  string `json:"amount0Out"`
	Amount1Out  string `json:"amount1Out"`
	AmountUSD   string `json:"amountUSD"`
	LogIndex    uint   `json:"logIndex"`
}

type User struct {
	ID                 string   `json:"id"`
	LiquidityPositions []string `json:"liquidityPositions"`
	USDSwapped         string   `json:"usdSwapped"`
}

// LiquidityPosition tracks one user's LP token balance in one pair.
// The id is "<pair>-<user>".
type LiquidityPosition struct {
	ID                    string `json:"id"`
	Pair                  string `json:"pair"`
	User                  string `json:"user"`
	LiquidityTokenBalance string `json:"liquidityTokenBalance"`
}

type LiquidityPositionSnapshot struct {
	ID                        string `json:"id"`
	LiquidityPosition         string `json:"liquidityPosition"`
	User                      string `json:"user"`
	Pair                      string `json:"pair"`
	Timestamp                 int64  `json:"timestamp"`
	Block                     uint64 `json:"block"`
	Token0PriceUSD            string `json:"token0PriceUSD"`
	Token1PriceUSD            string `json:"token1PriceUSD"`
	Reserve0                  string `json:"reserve0"`
	Reserve1                  string `json:"reserve1"`
	ReserveUSD                string `json:"reserveUSD"`
	LiquidityTokenTotalSupply string `json:"liquidityTokenTotalSupply"`
	LiquidityTokenBalance     string `json:"liquidityTokenBalance"`
}

// StableSwap is a stable-basket pool used as a price fallback for tokens
// without a usable whitelist route. Tokens lists the basket members.
type StableSwap struct {
	ID      string   `json:"id"`
	LPToken string   `json:"lpToken"`
	Tokens  []string `json:"tokens"`
}
