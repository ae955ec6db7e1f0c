package marketstatus

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

type CryptoLister interface {
	FetchTopMarkets(ctx context.Context, perPage int) ([]domain.CryptoQuote, error)
}

type ETFQuoter interface {
	FetchETFQuote(ctx context.Context, ticker string) (*provider.ETFQuote, error)
}

type NavReader interface {
	FetchNav(ctx context.Context) (*provider.NavQuote, error)
}

type DerivativesLister interface {
	FetchDerivatives(ctx context.Context) ([]provider.DerivativeTicker, error)
}

type Config struct {
	ETFTicker       string
	TopMarkets      int
	FuturesExchange string
	FuturesSymbol   string
}

// Service assembles the best-effort market-status snapshot. The four sources
// are independent and unreliable; a failed source nulls only its own fields
// and never fails the snapshot as a whole.
type Service struct {
	tracer      trace.Tracer
	crypto      CryptoLister
	etf         ETFQuoter
	nav         NavReader
	derivatives DerivativesLister
	cfg         Config
	now         func() time.Time

	mu      sync.RWMutex
	current *domain.MarketStatusSnapshot
}

func NewService(
	tracer trace.Tracer,
	crypto CryptoLister,
	etf ETFQuoter,
	nav NavReader,
	derivatives DerivativesLister,
	cfg Config,
) *Service {
	if cfg.ETFTicker == "" {
		cfg.ETFTicker = "IBIT"
	}
	if cfg.TopMarkets <= 0 {
		cfg.TopMarkets = 20
	}
	if cfg.FuturesExchange == "" {
		cfg.FuturesExchange = "coinbase"
	}
	if cfg.FuturesSymbol == "" {
		cfg.FuturesSymbol = "BTC-PERP"
	}
	return &Service{
		tracer:      tracer,
		crypto:      crypto,
		etf:         etf,
		nav:         nav,
		derivatives: derivatives,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Snapshot fetches all four sources concurrently and assembles a composite.
// It never returns an error: each source degrades its own fields to nil.
// The snapshot is only handed out after every source has settled; there is
// no partial or streaming result.
func (s *Service) Snapshot(ctx context.Context) *domain.MarketStatusSnapshot {
	ctx, span := s.tracer.Start(ctx, "market-status.snapshot")
	defer span.End()

	now := s.now()
	snap := &domain.MarketStatusSnapshot{
		IsOpen:    IsTradingOpen(now),
		Crypto:    []domain.CryptoQuote{},
		FetchedAt: now.UTC(),
	}

	// Each goroutine writes a disjoint set of snapshot fields; the WaitGroup
	// is the single synchronization point before the snapshot is returned.
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		if s.crypto == nil {
			return
		}
		quotes, err := s.crypto.FetchTopMarkets(ctx, s.cfg.TopMarkets)
		if err != nil {
			log.Printf("market-status: crypto list fetch failed: %v", err)
			return
		}
		snap.Crypto = quotes
	}()

	go func() {
		defer wg.Done()
		if s.etf == nil {
			return
		}
		quote, err := s.etf.FetchETFQuote(ctx, s.cfg.ETFTicker)
		if err != nil {
			log.Printf("market-status: %s quote fetch failed: %v", s.cfg.ETFTicker, err)
			return
		}
		snap.IbitPrice = quote.Price
		snap.IbitChange = quote.Change
	}()

	go func() {
		defer wg.Done()
		if s.nav == nil {
			return
		}
		quote, err := s.nav.FetchNav(ctx)
		if err != nil {
			log.Printf("market-status: NAV fetch failed: %v", err)
			return
		}
		snap.IbitNav = quote.Nav
		snap.IbitNavDate = quote.AsOfDate
	}()

	go func() {
		defer wg.Done()
		if s.derivatives == nil {
			return
		}
		tickers, err := s.derivatives.FetchDerivatives(ctx)
		if err != nil {
			log.Printf("market-status: derivatives fetch failed: %v", err)
			return
		}
		snap.CoinbaseBtcPrice = findFuturesPrice(tickers, s.cfg.FuturesExchange, s.cfg.FuturesSymbol)
	}()

	wg.Wait()
	return snap
}

// Refresh builds a new snapshot and atomically replaces the published one.
// Safe to call while a previous cycle is still settling: readers see either
// the old complete snapshot or the new complete one.
func (s *Service) Refresh(ctx context.Context) *domain.MarketStatusSnapshot {
	snap := s.Snapshot(ctx)
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap
}

// Current returns the last published snapshot, refreshing synchronously the
// first time when the background poller has not produced one yet.
func (s *Service) Current(ctx context.Context) *domain.MarketStatusSnapshot {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap
	}
	return s.Refresh(ctx)
}

// findFuturesPrice selects a derivative quote by exchange-name substring and
// exact instrument symbol. Absence of a match, or an unparsable price, is
// nil, not an error.
func findFuturesPrice(tickers []provider.DerivativeTicker, exchange, symbol string) *float64 {
	exchange = strings.ToLower(exchange)
	for _, t := range tickers {
		if t.Symbol != symbol || !strings.Contains(strings.ToLower(t.Market), exchange) {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(t.Price), 64)
		if err != nil {
			return nil
		}
		return &price
	}
	return nil
}
