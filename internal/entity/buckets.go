package entity

// Time-bucketed rollups. Day buckets key on the UTC day index
// (timestamp/86400), hour buckets on the hour index (timestamp/3600); both
// store the bucket's start unix time.

type PairDayData struct {
	ID                string `json:"id"`
	Date              int64  `json:"date"`
	Pair              string `json:"pairAddress"`
	Token0            string `json:"token0"`
	Token1            string `json:"token1"`
	Reserve0          string `json:"reserve0"`
	Reserve1          string `json:"reserve1"`
	TotalSupply       string `json:"totalSupply"`
	ReserveUSD        string `json:"reserveUSD"`
	DailyVolumeToken0 string `json:"dailyVolumeToken0"`
	DailyVolumeToken1 string `json:"dailyVolumeToken1"`
	DailyVolumeUSD    string `json:"dailyVolumeUSD"`
	DailyTxns         int    `json:"dailyTxns"`
}

type PairHourData struct {
	ID                 string `json:"id"`
	HourStartUnix      int64  `json:"hourStartUnix"`
	Pair               string `json:"pair"`
	Reserve0           string `json:"reserve0"`
	Reserve1           string `json:"reserve1"`
	TotalSupply        string `json:"totalSupply"`
	ReserveUSD         string `json:"reserveUSD"`
	HourlyVolumeToken0 string `json:"hourlyVolumeToken0"`
	HourlyVolumeToken1 string `json:"hourlyVolumeToken1"`
	HourlyVolumeUSD    string `json:"hourlyVolumeUSD"`
	HourlyTxns         int    `json:"hourlyTxns"`
}

type FactoryDayData struct {
	ID                   string `json:"id"`
	Date                 int64  `json:"date"`
	DailyVolumeETH       string `json:"dailyVolumeETH"`
	DailyVolumeUSD       string `json:"dailyVolumeUSD"`
	DailyVolumeUntracked string `json:"dailyVolumeUntracked"`
	TotalVolumeETH       string `json:"totalVolumeETH"`
	TotalVolumeUSD       string `json:"totalVolumeUSD"`
	TotalLiquidityETH    string `json:"totalLiquidityETH"`
	TotalLiquidityUSD    string `json:"totalLiquidityUSD"`
	TxCount              int    `json:"txCount"`
}

type FactoryHourData struct {
	ID                    string `json:"id"`
	HourStartUnix         int64  `json:"hourStartUnix"`
	HourlyVolumeETH       string `json:"hourlyVolumeETH"`
	HourlyVolumeUSD       string `json:"hourlyVolumeUSD"`
	HourlyVolumeUntracked string `json:"hourlyVolumeUntracked"`
	TotalVolumeETH        string `json:"totalVolumeETH"`
	TotalVolumeUSD        string `json:"totalVolumeUSD"`
	TotalLiquidityETH     string `json:"totalLiquidityETH"`
	TotalLiquidityUSD     string `json:"totalLiquidityUSD"`
	TxCount               int    `json:"txCount"`
}

type TokenDayData struct {
	ID                  string `json:"id"`
	Date                int64  `json:"date"`
	Token               string `json:"token"`
	DailyVolumeToken    string `json:"dailyVolumeToken"`
	DailyVolumeETH      string `json:"dailyVolumeETH"`
	DailyVolumeUSD      string `json:"dailyVolumeUSD"`
	DailyTxns           int    `json:"dailyTxns"`
	TotalLiquidityToken string `json:"totalLiquidityToken"`
	TotalLiquidityETH   string `json:"totalLiquidityETH"`
	TotalLiquidityUSD   string `json:"totalLiquidityUSD"`
	PriceUSD            string `json:"priceUSD"`
}

type TokenHourData struct {
	ID                  string `json:"id"`
	HourStartUnix       int64  `json:"hourStartUnix"`
	Token               string `json:"token"`
	HourlyVolumeToken   string `json:"hourlyVolumeToken"`
	HourlyVolumeETH     string `json:"hourlyVolumeETH"`
	HourlyVolumeUSD     string `json:"hourlyVolumeUSD"`
	HourlyTxns          int    `json:"hourlyTxns"`
	TotalLiquidityToken string `json:"totalLiquidityToken"`
	TotalLiquidityETH   string `json:"totalLiquidityETH"`
	TotalLiquidityUSD   string `json:"totalLiquidityUSD"`
	PriceUSD            string `json:"priceUSD"`
}
