package job

import (
	"context"
	"log"
	"time"

	"morpho-monitor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// StatusPoller runs background goroutines that keep the market-status
// snapshot and the cached market listing warm.
type StatusPoller struct {
	tracer        trace.Tracer
	statusService StatusRefresher
	marketService MarketRefresher
	pollInterval  time.Duration
}

// StatusRefresher rebuilds the market-status snapshot. Individual source
// failures surface as nil fields on the snapshot, not as errors.
type StatusRefresher interface {
	Refresh(ctx context.Context) *domain.MarketStatusSnapshot
}

type MarketRefresher interface {
	RefreshMarkets(ctx context.Context) ([]domain.Market, error)
}

func NewStatusPoller(
	tracer trace.Tracer,
	statusService StatusRefresher,
	marketService MarketRefresher,
	pollIntervalSecs int,
) *StatusPoller {
	interval := 30 * time.Second
	if pollIntervalSecs > 0 {
		interval = time.Duration(pollIntervalSecs) * time.Second
	}
	return &StatusPoller{
		tracer:        tracer,
		statusService: statusService,
		marketService: marketService,
		pollInterval:  interval,
	}
}

// Start launches the polling goroutines. Blocks until ctx is cancelled.
func (p *StatusPoller) Start(ctx context.Context) {
	log.Println("Status poller starting...")

	go p.pollLoop(ctx, "market-status", p.pollInterval, func(ctx context.Context) error {
		p.statusService.Refresh(ctx)
		return nil
	})

	if p.marketService != nil {
		// Markets move slower than the status sources, so warm the cache
		// on a gentler cadence.
		go p.pollLoop(ctx, "markets", 2*p.pollInterval, func(ctx context.Context) error {
			_, err := p.marketService.RefreshMarkets(ctx)
			return err
		})
	}

	<-ctx.Done()
	log.Println("Status poller stopped")
}

func (p *StatusPoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}
