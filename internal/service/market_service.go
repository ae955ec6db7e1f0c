package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	marketCacheKey        = "markets:all"
	defaultMarketCacheTTL = 60 * time.Second
)

// MarketProvider fetches the raw market listing from the Morpho API.
type MarketProvider interface {
	FetchAllMarkets(ctx context.Context) ([]provider.RawMarket, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MarketService orchestrates market fetching, caching, and ranking.
type MarketService struct {
	tracer   trace.Tracer
	provider MarketProvider
	redis    RedisClient
	cacheTTL time.Duration
}

func NewMarketService(
	tracer trace.Tracer,
	marketProvider MarketProvider,
	redisClient RedisClient,
	cacheTTLSecs int,
) *MarketService {
	ttl := defaultMarketCacheTTL
	if cacheTTLSecs > 0 {
		ttl = time.Duration(cacheTTLSecs) * time.Second
	}
	return &MarketService{
		tracer:   tracer,
		provider: marketProvider,
		redis:    redisClient,
		cacheTTL: ttl,
	}
}

// GetMarkets returns the normalized market listing, served from Redis when a
// fresh copy exists. forceRefresh bypasses the cache.
func (s *MarketService) GetMarkets(ctx context.Context, forceRefresh bool) ([]domain.Market, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-markets")
	defer span.End()

	if !forceRefresh && s.redis != nil {
		cached, err := s.getMarketCache(ctx)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	return s.RefreshMarkets(ctx)
}

// GetRankedMarkets runs the filter-and-sort pipeline over the latest listing.
// An upstream fetch failure returns an error rather than a partial table.
func (s *MarketService) GetRankedMarkets(ctx context.Context, cfg lending.FilterConfig, forceRefresh bool) ([]domain.Market, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-ranked-markets")
	defer span.End()

	markets, err := s.GetMarkets(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return lending.Rank(markets, cfg), nil
}

// RefreshMarkets fetches every page from the Morpho API, normalizes the
// result, and replaces the cached copy.
func (s *MarketService) RefreshMarkets(ctx context.Context) ([]domain.Market, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-markets")
	defer span.End()

	raw, err := s.provider.FetchAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	markets := lending.NormalizeAll(raw)
	if s.redis != nil {
		if err := s.setMarketCache(ctx, markets); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}

	log.Printf("Refreshed %d lending markets", len(markets))
	return markets, nil
}

func (s *MarketService) setMarketCache(ctx context.Context, markets []domain.Market) error {
	data, err := json.Marshal(markets)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, marketCacheKey, data, s.cacheTTL).Err()
}

func (s *MarketService) getMarketCache(ctx context.Context) ([]domain.Market, error) {
	data, err := s.redis.Get(ctx, marketCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
