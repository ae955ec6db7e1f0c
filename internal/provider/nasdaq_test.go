package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newTestNasdaqProvider(rt roundTripFunc) *NasdaqProvider {
	p := NewNasdaqProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: rt}
	return p
}

func TestFetchETFQuote(t *testing.T) {
	t.Parallel()

	payload := `{"data":{"primaryData":{"lastSalePrice":"$51.20","netChange":"-0.90"}}}`
	p := newTestNasdaqProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/api/quote/IBIT/info") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.Header.Get("User-Agent") == "" {
			t.Fatal("expected a browser user agent")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(payload))),
			Header:     make(http.Header),
		}, nil
	})

	quote, err := p.FetchETFQuote(context.Background(), "ibit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price == nil || *quote.Price != 51.20 {
		t.Fatalf("unexpected price: %+v", quote.Price)
	}
	if quote.Change == nil || *quote.Change != -0.90 {
		t.Fatalf("unexpected change: %+v", quote.Change)
	}
}

func TestFetchETFQuoteMalformedPrice(t *testing.T) {
	t.Parallel()

	payload := `{"data":{"primaryData":{"lastSalePrice":"N/A","netChange":""}}}`
	p := newTestNasdaqProvider(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(payload))),
			Header:     make(http.Header),
		}, nil
	})

	quote, err := p.FetchETFQuote(context.Background(), "IBIT")
	if err != nil {
		t.Fatalf("malformed prices should not error: %v", err)
	}
	if quote.Price != nil || quote.Change != nil {
		t.Fatalf("expected nil fields, got %+v", quote)
	}
}

func TestFetchETFQuoteRequiresTicker(t *testing.T) {
	t.Parallel()

	p := newTestNasdaqProvider(nil)
	if _, err := p.FetchETFQuote(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty ticker")
	}
}

func TestParsePriceString(t *testing.T) {
	cases := map[string]*float64{
		"$51.20":    ptr(51.20),
		"1,234.56":  ptr(1234.56),
		"$1,234.56": ptr(1234.56),
		"-0.90":     ptr(-0.90),
		"":          nil,
		"N/A":       nil,
		"$":         nil,
	}
	for in, want := range cases {
		got := parsePriceString(in)
		switch {
		case want == nil && got != nil:
			t.Fatalf("%q: expected nil, got %f", in, *got)
		case want != nil && (got == nil || *got != *want):
			t.Fatalf("%q: expected %f, got %v", in, *want, got)
		}
	}
}

func ptr(v float64) *float64 { return &v }
