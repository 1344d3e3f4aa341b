package domain

import "github.com/shopspring/decimal"

// MarketRates is the full current pricing view of the platform: the global
// BTC/USD reference price and the platform's own INR buy/sell rates.
type MarketRates struct {
	BTCUSDPrice decimal.Decimal `json:"btc_usd_price"`
	BuyRateINR  decimal.Decimal `json:"buy_rate_inr"`
	SellRateINR decimal.Decimal `json:"sell_rate_inr"`
	Timestamp   int64           `json:"timestamp"`
}

// Spread is the difference between the platform buy and sell rates.
func (r *MarketRates) Spread() decimal.Decimal {
	return r.BuyRateINR.Sub(r.SellRateINR)
}
