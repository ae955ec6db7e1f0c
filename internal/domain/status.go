package domain

import (
	"strings"
	"time"
)

// CryptoQuote is one row of the CoinGecko top-market listing. JSON tags match
// the upstream field names so the API response can pass through unchanged.
type CryptoQuote struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
}

// MarketStatusSnapshot is the best-effort composite of the cross-market
// pricing signals. Every pointer field is independently nullable: a failed
// source degrades its own fields and nothing else. Each fetch replaces the
// prior snapshot wholesale.
type MarketStatusSnapshot struct {
	IsOpen           bool          `json:"isOpen"`
	IbitPrice        *float64      `json:"ibitPrice"`
	IbitChange       *float64      `json:"ibitChange"`
	IbitNav          *float64      `json:"ibitNav"`
	IbitNavDate      *string       `json:"ibitNavDate"`
	CoinbaseBtcPrice *float64      `json:"coinbaseBtcPrice"`
	Crypto           []CryptoQuote `json:"crypto"`
	FetchedAt        time.Time     `json:"fetchedAt"`
}

// statusStableSymbols are stablecoins hidden from the volatile-movers view.
var statusStableSymbols = map[string]bool{
	"usdt":  true,
	"usdc":  true,
	"dai":   true,
	"fdusd": true,
	"tusd":  true,
	"usde":  true,
}

// VolatileCrypto returns the crypto list minus BTC and stablecoins, in the
// original market-cap order. BTC is shown separately alongside the ETF cards.
func (s *MarketStatusSnapshot) VolatileCrypto() []CryptoQuote {
	out := make([]CryptoQuote, 0, len(s.Crypto))
	for _, q := range s.Crypto {
		sym := strings.ToLower(q.Symbol)
		if sym == "btc" || statusStableSymbols[sym] {
			continue
		}
		out = append(out, q)
	}
	return out
}
