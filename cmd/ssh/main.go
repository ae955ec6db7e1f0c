package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"morpho-monitor/internal/cache"
	"morpho-monitor/internal/config"
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/marketstatus"
	"morpho-monitor/internal/provider"
	"morpho-monitor/internal/service"
	"morpho-monitor/internal/tui"
	"morpho-monitor/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newMorphoProviderFunc = func(tracer trace.Tracer, apiURL string, pageSize, maxItems int) service.MarketProvider {
		return provider.NewMorphoProvider(tracer, apiURL, pageSize, maxItems)
	}
	newStatusServiceFunc = func(tracer trace.Tracer) *marketstatus.Service {
		cg := provider.NewCoinGeckoProvider(tracer)
		return marketstatus.NewService(
			tracer,
			cg,
			provider.NewNasdaqProvider(tracer),
			provider.NewBlackRockProvider(tracer),
			cg,
			marketstatus.Config{},
		)
	}
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create services
	morpho := newMorphoProviderFunc(tracer, cfg.MorphoAPIURL, cfg.MarketPageSize, cfg.MarketMaxItems)
	marketService := service.NewMarketService(tracer, morpho, cache.Client, cfg.MarketCacheTTLSecs)
	statusService := newStatusServiceFunc(tracer)
	baseFilter := lending.FilterConfig{
		MinLiquidity:  cfg.MinLiquidityUSD,
		StableSymbols: cfg.StableSymbols,
	}

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewAppModel(tui.Services{
					Markets:    marketService,
					Status:     statusService,
					BaseFilter: baseFilter,
					Username:   s.User(),
				})
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
