package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func rawMarket(key, loan, collateral string, borrowApy float64) provider.RawMarket {
	m := provider.RawMarket{UniqueKey: key}
	m.LoanAsset = domain.Token{Symbol: loan, Decimals: 6}
	if collateral != "" {
		m.CollateralAsset = &domain.Token{Symbol: collateral, Decimals: 18}
	}
	m.State = &provider.RawMarketState{
		BorrowApy:    borrowApy,
		SupplyAssets: "900000000000",
		BorrowAssets: "0",
	}
	m.MorphoBlue.Chain.ID = 1
	return m
}

type mockMarketProvider struct {
	markets    []provider.RawMarket
	err        error
	fetchCalls int
}

func (m *mockMarketProvider) FetchAllMarkets(ctx context.Context) ([]provider.RawMarket, error) {
	m.fetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.markets, nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func TestMarketService_GetMarketsCacheHit(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	cached := []domain.Market{{UniqueKey: "0xcached"}}
	data, _ := json.Marshal(cached)
	_ = fake.Set(context.Background(), marketCacheKey, data, 0)

	prov := &mockMarketProvider{}
	svc := NewMarketService(testTracer, prov, fake, 60)

	got, err := svc.GetMarkets(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UniqueKey != "0xcached" {
		t.Fatalf("unexpected markets: %+v", got)
	}
	if prov.fetchCalls != 0 {
		t.Fatalf("expected no provider calls on cache hit, got %d", prov.fetchCalls)
	}
}

func TestMarketService_GetMarketsFetchesOnMiss(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	prov := &mockMarketProvider{
		markets: []provider.RawMarket{rawMarket("0xaaa", "USDC", "WETH", 0.03)},
	}
	svc := NewMarketService(testTracer, prov, fake, 60)

	got, err := svc.GetMarkets(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UniqueKey != "0xaaa" {
		t.Fatalf("unexpected markets: %+v", got)
	}
	if prov.fetchCalls != 1 {
		t.Fatalf("expected one provider call, got %d", prov.fetchCalls)
	}
	if _, ok := fake.data[marketCacheKey]; !ok {
		t.Fatal("markets not cached after fetch")
	}
}

func TestMarketService_ForceRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	stale := []domain.Market{{UniqueKey: "0xstale"}}
	data, _ := json.Marshal(stale)
	_ = fake.Set(context.Background(), marketCacheKey, data, 0)

	prov := &mockMarketProvider{
		markets: []provider.RawMarket{rawMarket("0xfresh", "USDC", "WETH", 0.03)},
	}
	svc := NewMarketService(testTracer, prov, fake, 60)

	got, err := svc.GetMarkets(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UniqueKey != "0xfresh" {
		t.Fatalf("expected fresh markets, got %+v", got)
	}
	if prov.fetchCalls != 1 {
		t.Fatalf("expected one provider call, got %d", prov.fetchCalls)
	}
}

func TestMarketService_NilRedis(t *testing.T) {
	t.Parallel()

	prov := &mockMarketProvider{
		markets: []provider.RawMarket{rawMarket("0xaaa", "USDC", "WETH", 0.03)},
	}
	svc := NewMarketService(testTracer, prov, nil, 0)

	got, err := svc.GetMarkets(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected markets: %+v", got)
	}
}

func TestMarketService_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	prov := &mockMarketProvider{err: errors.New("morpho down")}
	svc := NewMarketService(testTracer, prov, newFakeRedis(), 60)

	if _, err := svc.GetMarkets(context.Background(), false); err == nil {
		t.Fatal("expected error when provider fails")
	}
}

func TestMarketService_RedisErrorsAreSoft(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	fake.setErr = errors.New("connection refused")

	prov := &mockMarketProvider{
		markets: []provider.RawMarket{rawMarket("0xaaa", "USDC", "WETH", 0.03)},
	}
	svc := NewMarketService(testTracer, prov, fake, 60)

	got, err := svc.GetMarkets(context.Background(), false)
	if err != nil {
		t.Fatalf("expected redis failures to fall through to fetch, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected markets: %+v", got)
	}
}

func TestMarketService_GetRankedMarketsAppliesPipeline(t *testing.T) {
	t.Parallel()

	prov := &mockMarketProvider{
		markets: []provider.RawMarket{
			rawMarket("0xhigh", "USDC", "WETH", 0.09),
			rawMarket("0xlow", "USDC", "wstETH", 0.02),
			rawMarket("0xnocollat", "USDC", "", 0.01),
		},
	}
	svc := NewMarketService(testTracer, prov, nil, 0)

	got, err := svc.GetRankedMarkets(context.Background(), lending.FilterConfig{
		BorrowAsset:      lending.BorrowUSDC,
		CollateralFamily: lending.FamilyETH,
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 markets after filtering, got %d", len(got))
	}
	if got[0].UniqueKey != "0xlow" || got[1].UniqueKey != "0xhigh" {
		t.Fatalf("expected ascending rate order, got %s then %s", got[0].UniqueKey, got[1].UniqueKey)
	}
}
