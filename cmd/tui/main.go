package main

import (
	"context"
	"log"

	"morpho-monitor/internal/config"
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/marketstatus"
	"morpho-monitor/internal/provider"
	"morpho-monitor/internal/service"
	"morpho-monitor/internal/tui"
	"morpho-monitor/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initTracerFunc        = tracing.InitTracer
	newMorphoProviderFunc = func(tracer trace.Tracer, apiURL string, pageSize, maxItems int) service.MarketProvider {
		return provider.NewMorphoProvider(tracer, apiURL, pageSize, maxItems)
	}
	runProgramFunc = func(model tea.Model) error {
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
)

// The local dashboard talks straight to the upstream APIs; no Redis and no
// background pollers.
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx := context.Background()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	morpho := newMorphoProviderFunc(tracer, cfg.MorphoAPIURL, cfg.MarketPageSize, cfg.MarketMaxItems)
	marketService := service.NewMarketService(tracer, morpho, nil, cfg.MarketCacheTTLSecs)

	cg := provider.NewCoinGeckoProvider(tracer)
	statusService := marketstatus.NewService(
		tracer,
		cg,
		provider.NewNasdaqProvider(tracer),
		provider.NewBlackRockProvider(tracer),
		cg,
		marketstatus.Config{},
	)

	model := tui.NewAppModel(tui.Services{
		Markets: marketService,
		Status:  statusService,
		BaseFilter: lending.FilterConfig{
			MinLiquidity:  cfg.MinLiquidityUSD,
			StableSymbols: cfg.StableSymbols,
		},
	})

	if err := runProgramFunc(model); err != nil {
		log.Fatalf("dashboard error: %v", err)
	}
}
