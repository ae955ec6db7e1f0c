package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	nasdaqBaseURL = "https://api.nasdaq.com"

	// Nasdaq's quote API rejects non-browser clients.
	nasdaqUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// NasdaqProvider fetches ETF quotes from the Nasdaq quote API.
type NasdaqProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
}

func NewNasdaqProvider(tracer trace.Tracer) *NasdaqProvider {
	return &NasdaqProvider{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   nasdaqBaseURL,
		userAgent: nasdaqUserAgent,
		tracer:    tracer,
	}
}

// FetchETFQuote returns the last sale price and net change for an ETF ticker.
// Upstream quotes prices as display strings ("$51.20"); a malformed string
// leaves that field nil rather than failing the whole quote.
func (p *NasdaqProvider) FetchETFQuote(ctx context.Context, ticker string) (*ETFQuote, error) {
	_, span := p.tracer.Start(ctx, "nasdaq.fetch-etf-quote")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	u := fmt.Sprintf("%s/api/quote/%s/info?assetclass=etf", strings.TrimRight(p.baseURL, "/"), url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nasdaq API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			PrimaryData struct {
				LastSalePrice string `json:"lastSalePrice"`
				NetChange     string `json:"netChange"`
			} `json:"primaryData"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode nasdaq quote: %w", err)
	}

	return &ETFQuote{
		Price:  parsePriceString(payload.Data.PrimaryData.LastSalePrice),
		Change: parsePriceString(payload.Data.PrimaryData.NetChange),
	}, nil
}

// parsePriceString converts a display price ("$51.20", "1,234.56", "-0.90")
// to a number. Returns nil when the string is empty or not a number.
func parsePriceString(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
