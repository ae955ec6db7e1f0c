package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"morpho-monitor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

const defaultTopMarkets = 20

// CoinGeckoProvider fetches spot and derivatives listings from the CoinGecko
// free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchTopMarkets returns the top coins by market cap quoted in USD.
func (p *CoinGeckoProvider) FetchTopMarkets(ctx context.Context, perPage int) ([]domain.CryptoQuote, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-top-markets")
	defer span.End()

	if perPage <= 0 {
		perPage = defaultTopMarkets
	}

	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false",
		p.baseURL, perPage)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch top markets: %w", err)
	}

	var quotes []domain.CryptoQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("parse top markets: %w", err)
	}

	return quotes, nil
}

// FetchDerivatives returns the cross-exchange derivatives listing. Callers
// select the instrument they care about; the full list is a few hundred rows.
func (p *CoinGeckoProvider) FetchDerivatives(ctx context.Context) ([]DerivativeTicker, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-derivatives")
	defer span.End()

	body, err := p.doRequest(ctx, p.baseURL+"/derivatives")
	if err != nil {
		return nil, fmt.Errorf("fetch derivatives: %w", err)
	}

	var tickers []DerivativeTicker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("parse derivatives: %w", err)
	}

	return tickers, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
