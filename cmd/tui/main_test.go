package main

import (
	"context"
	"testing"
	"time"

	"morpho-monitor/internal/config"
	"morpho-monitor/internal/provider"
	"morpho-monitor/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitTracer := initTracerFunc
	origNewProvider := newMorphoProviderFunc
	origRun := runProgramFunc
	defer func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initTracerFunc = origInitTracer
		newMorphoProviderFunc = origNewProvider
		runProgramFunc = origRun
	}()

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return &config.Config{} }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMorphoProviderFunc = func(trace.Tracer, string, int, int) service.MarketProvider {
		return stubMarketProvider{}
	}

	var ranModel tea.Model
	runProgramFunc = func(model tea.Model) error {
		ranModel = model
		return nil
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if ranModel == nil {
		t.Fatal("expected the dashboard model to run")
	}
}

type stubMarketProvider struct{}

func (stubMarketProvider) FetchAllMarkets(ctx context.Context) ([]provider.RawMarket, error) {
	return []provider.RawMarket{}, nil
}
