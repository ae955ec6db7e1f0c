package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"morpho-monitor/internal/bot"
	"morpho-monitor/internal/cache"
	"morpho-monitor/internal/config"
	"morpho-monitor/internal/handler"
	"morpho-monitor/internal/job"
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/marketstatus"
	"morpho-monitor/internal/provider"
	"morpho-monitor/internal/service"
	"morpho-monitor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "morpho-monitor/docs"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newMorphoProviderFunc = func(tracer trace.Tracer, apiURL string, pageSize, maxItems int) service.MarketProvider {
		return provider.NewMorphoProvider(tracer, apiURL, pageSize, maxItems)
	}
	newMarketServiceFunc = func(tracer trace.Tracer, p service.MarketProvider, r service.RedisClient, ttlSecs int) *service.MarketService {
		return service.NewMarketService(tracer, p, r, ttlSecs)
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
	newStatusPollerFunc    = job.NewStatusPoller
	startPollerFunc        = func(p *job.StatusPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Morpho Monitor API
// @version         1.0
// @description     Borrow-rate rankings for Morpho Blue markets with a composite market-status feed.

// @host      localhost:8080
// @BasePath  /
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

	// Create providers and services
	morpho := newMorphoProviderFunc(tracer, cfg.MorphoAPIURL, cfg.MarketPageSize, cfg.MarketMaxItems)
	marketService := newMarketServiceFunc(tracer, morpho, cache.Client, cfg.MarketCacheTTLSecs)
	statusService := newStatusServiceFunc(tracer)
	baseFilter := lending.FilterConfig{
		MinLiquidity:  cfg.MinLiquidityUSD,
		StableSymbols: cfg.StableSymbols,
	}

	// Start background polling (stopped by ctx cancel)
	poller := newStatusPollerFunc(tracer, statusService, marketService, cfg.StatusPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, marketService, statusService, baseFilter)

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, statusService, baseFilter)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("morpho-monitor"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
