package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/lending"

	tea "github.com/charmbracelet/bubbletea"
)

type stubMarkets struct {
	markets    []domain.Market
	err        error
	lastCfg    lending.FilterConfig
	lastForce  bool
	fetchCalls int
}

func (s *stubMarkets) GetRankedMarkets(ctx context.Context, cfg lending.FilterConfig, forceRefresh bool) ([]domain.Market, error) {
	s.fetchCalls++
	s.lastCfg = cfg
	s.lastForce = forceRefresh
	return s.markets, s.err
}

type stubStatus struct {
	snap         *domain.MarketStatusSnapshot
	refreshCalls int
}

func (s *stubStatus) Current(ctx context.Context) *domain.MarketStatusSnapshot {
	return s.snap
}

func (s *stubStatus) Refresh(ctx context.Context) *domain.MarketStatusSnapshot {
	s.refreshCalls++
	return s.snap
}

func tuiMarket(loan, collateral string, apy float64) domain.Market {
	return domain.Market{
		LoanAsset:       domain.Token{Symbol: loan, Decimals: 6},
		CollateralAsset: &domain.Token{Symbol: collateral, Decimals: 18},
		State: &domain.MarketState{
			BorrowApy:    apy,
			SupplyAssets: "500000000000",
			BorrowAssets: "0",
		},
		ChainID: 1,
	}
}

func TestAppModelRendersMarkets(t *testing.T) {
	t.Parallel()

	m := NewAppModel(Services{Markets: &stubMarkets{}, Status: &stubStatus{}})

	updated, _ := m.Update(marketsMsg{tuiMarket("USDC", "WETH", 0.031)})
	view := updated.View()

	for _, want := range []string{"WETH", "USDC", "3.10%", "Ethereum", "Morpho Borrow Rates"} {
		if !strings.Contains(view, want) {
			t.Errorf("missing %q in view:\n%s", want, view)
		}
	}
}

func TestAppModelShowsError(t *testing.T) {
	t.Parallel()

	m := NewAppModel(Services{Markets: &stubMarkets{}, Status: &stubStatus{}})

	updated, _ := m.Update(marketsErrMsg{err: errors.New("morpho down")})
	if view := updated.View(); !strings.Contains(view, "morpho down") {
		t.Fatalf("expected error in view:\n%s", view)
	}
}

func TestAppModelFamilyKeys(t *testing.T) {
	t.Parallel()

	stub := &stubMarkets{markets: []domain.Market{tuiMarket("USDC", "cbBTC", 0.02)}}
	m := NewAppModel(Services{Markets: stub, Status: &stubStatus{}})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if cmd == nil {
		t.Fatal("expected a fetch command after changing family")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("expected a message from the fetch command")
	}
	if stub.lastCfg.CollateralFamily != lending.FamilyBTC {
		t.Fatalf("expected BTC family, got %s", stub.lastCfg.CollateralFamily)
	}
	if !strings.Contains(updated.View(), "[BTC]") {
		t.Fatal("expected BTC family in view")
	}

	// Same family again is a no-op
	model := updated.(*AppModel)
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if cmd != nil {
		t.Fatal("expected no command when family is unchanged")
	}
}

func TestAppModelRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	stub := &stubMarkets{}
	m := NewAppModel(Services{Markets: stub, Status: &stubStatus{}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	cmd()
	if !stub.lastForce {
		t.Fatal("expected refresh to bypass the cache")
	}
}

func TestAppModelStatusLine(t *testing.T) {
	t.Parallel()

	price := 51.2
	btc := 97000.0
	snap := &domain.MarketStatusSnapshot{IsOpen: true, IbitPrice: &price, CoinbaseBtcPrice: &btc}

	m := NewAppModel(Services{Markets: &stubMarkets{}, Status: &stubStatus{snap: snap}})
	updated, _ := m.Update(statusMsg(snap))

	view := updated.View()
	for _, want := range []string{"NYSE open", "IBIT $51.20", "BTC-PERP $97000"} {
		if !strings.Contains(view, want) {
			t.Errorf("missing %q in view:\n%s", want, view)
		}
	}
}

// runTick feeds a status tick through Update and executes the scheduled
// commands until the resulting status message arrives. The rescheduled tick
// command is left running; it only fires after the test is long gone.
func runTick(t *testing.T, m *AppModel) statusMsg {
	t.Helper()

	_, cmd := m.Update(statusTickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected the status tick to schedule work")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a command batch from the tick, got %T", cmd())
	}

	msgs := make(chan tea.Msg, len(batch))
	for _, c := range batch {
		go func(c tea.Cmd) { msgs <- c() }(c)
	}
	for {
		select {
		case msg := <-msgs:
			if snap, ok := msg.(statusMsg); ok {
				return snap
			}
		case <-time.After(time.Second):
			t.Fatal("tick never produced a status message")
		}
	}
}

func TestAppModelStatusTickRefreshes(t *testing.T) {
	first, second := 50.0, 64.5
	stub := &stubStatus{snap: &domain.MarketStatusSnapshot{IsOpen: true, IbitPrice: &first}}
	m := NewAppModel(Services{Markets: &stubMarkets{}, Status: stub})

	updated, _ := m.Update(runTick(t, m))
	model := updated.(*AppModel)
	if stub.refreshCalls != 1 {
		t.Fatalf("expected 1 refresh after the first tick, got %d", stub.refreshCalls)
	}
	if view := model.View(); !strings.Contains(view, "IBIT $50.00") {
		t.Fatalf("expected first snapshot in view:\n%s", view)
	}

	stub.snap = &domain.MarketStatusSnapshot{IsOpen: false, IbitPrice: &second}
	updated, _ = model.Update(runTick(t, model))
	if stub.refreshCalls != 2 {
		t.Fatalf("expected 2 refreshes after the second tick, got %d", stub.refreshCalls)
	}
	if view := updated.View(); !strings.Contains(view, "IBIT $64.50") {
		t.Fatalf("expected second tick to replace the snapshot:\n%s", view)
	}
}

func TestAppModelQuit(t *testing.T) {
	t.Parallel()

	m := NewAppModel(Services{Markets: &stubMarkets{}, Status: &stubStatus{}})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Fatalf("expected quit message, got %T", msg)
	}
}
