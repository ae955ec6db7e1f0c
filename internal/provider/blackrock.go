package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const blackRockIBITURL = "https://www.blackrock.com/us/individual/products/333011/ishares-bitcoin-trust"

// The product page renders NAV as
//   <span>NAV as of Dec 12, 2025</span> <span class="header-nav-data">$51.13</span>
// The primary pattern anchors on the date context; the fallback matches any
// header-nav-data span in case the surrounding markup changes.
var (
	navDateRe          = regexp.MustCompile(`(?i)NAV as of\s+([A-Za-z]{3}\s+\d{1,2},\s+\d{4})`)
	navPriceRe         = regexp.MustCompile(`(?i)NAV as of[^<]*</span>\s*<span class="header-nav-data">\s*\$([\d,.]+)`)
	navPriceFallbackRe = regexp.MustCompile(`(?i)class="header-nav-data">\s*\$([\d,.]+)`)
)

// BlackRockProvider scrapes the IBIT product page for the fund's NAV. There
// is no structured endpoint for this; the extraction is best-effort and a
// changed page yields nil fields, never an error from parsing.
type BlackRockProvider struct {
	client    *http.Client
	pageURL   string
	userAgent string
	tracer    trace.Tracer
}

func NewBlackRockProvider(tracer trace.Tracer) *BlackRockProvider {
	return &BlackRockProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		pageURL:   blackRockIBITURL,
		userAgent: nasdaqUserAgent,
		tracer:    tracer,
	}
}

// FetchNav downloads the product page and extracts the NAV and its as-of
// date. Network and HTTP failures are errors; an unmatchable page is not.
func (p *BlackRockProvider) FetchNav(ctx context.Context) (*NavQuote, error) {
	_, span := p.tracer.Start(ctx, "blackrock.fetch-nav")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blackrock page error %d", resp.StatusCode)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blackrock page: %w", err)
	}

	return ParseNavPage(string(html)), nil
}

// ParseNavPage runs the two-stage pattern match over the raw page. First
// match wins; no match leaves the field nil.
func ParseNavPage(html string) *NavQuote {
	quote := &NavQuote{}

	if m := navDateRe.FindStringSubmatch(html); len(m) > 1 {
		date := m[1]
		quote.AsOfDate = &date
	}

	m := navPriceRe.FindStringSubmatch(html)
	if len(m) < 2 {
		m = navPriceFallbackRe.FindStringSubmatch(html)
	}
	if len(m) > 1 {
		quote.Nav = parsePriceString(m[1])
	}

	return quote
}
