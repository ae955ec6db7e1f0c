package provider

// ETFQuote is a parsed Nasdaq quote for an exchange-traded fund. Either field
// may be nil when the upstream string was missing or malformed.
type ETFQuote struct {
	Price  *float64
	Change *float64
}

// NavQuote is the net asset value scraped from the fund issuer's product
// page. Best-effort: the page has no structured API, so both fields may be
// nil whenever the markup drifts.
type NavQuote struct {
	Nav      *float64
	AsOfDate *string
}

// DerivativeTicker is one row of the CoinGecko derivatives listing. Price is
// a string upstream.
type DerivativeTicker struct {
	Market string `json:"market"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}
