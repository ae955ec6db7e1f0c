package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/lending"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const statusRefreshEvery = 30 * time.Second

type MarketLister interface {
	GetRankedMarkets(ctx context.Context, cfg lending.FilterConfig, forceRefresh bool) ([]domain.Market, error)
}

// StatusReader serves the composite market-status snapshot. Current is the
// cheap read; Refresh rebuilds from the upstream sources.
type StatusReader interface {
	Current(ctx context.Context) *domain.MarketStatusSnapshot
	Refresh(ctx context.Context) *domain.MarketStatusSnapshot
}

// Services bundles everything the dashboard reads from. BaseFilter carries
// the deployment-configured filter defaults (liquidity floor, stable set).
type Services struct {
	Markets    MarketLister
	Status     StatusReader
	BaseFilter lending.FilterConfig
	Username   string
}

type marketsMsg []domain.Market

type marketsErrMsg struct{ err error }

type statusMsg *domain.MarketStatusSnapshot

type statusTickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// AppModel is the borrow-rate dashboard shared by the local and SSH frontends.
type AppModel struct {
	svc    Services
	table  table.Model
	family lending.CollateralFamily
	status *domain.MarketStatusSnapshot

	width   int
	height  int
	loading bool
	err     error
}

func NewAppModel(svc Services) *AppModel {
	columns := []table.Column{
		{Title: "Collateral", Width: 14},
		{Title: "Borrow", Width: 8},
		{Title: "Net APY", Width: 9},
		{Title: "Liquidity", Width: 14},
		{Title: "Chain", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return &AppModel{
		svc:     svc,
		table:   t,
		family:  lending.FamilyAll,
		loading: true,
	}
}

func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 10 {
		m.table.SetHeight(height - 8)
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchMarkets(false),
		m.fetchStatus(),
		statusTick(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetchMarkets(true)
		case "a":
			return m.setFamily(lending.FamilyAll)
		case "b":
			return m.setFamily(lending.FamilyBTC)
		case "e":
			return m.setFamily(lending.FamilyETH)
		}

	case marketsMsg:
		m.loading = false
		m.err = nil
		m.table.SetRows(marketRows(msg))
		return m, nil

	case marketsErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case statusMsg:
		m.status = msg
		return m, nil

	case statusTickMsg:
		return m, tea.Batch(m.refreshStatus(), statusTick())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Morpho Borrow Rates"))
	fmt.Fprintf(&sb, "  [%s]\n", m.family)
	sb.WriteString(m.statusLine())
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	case m.loading:
		sb.WriteString(statusStyle.Render("loading markets..."))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("a/b/e filter collateral • r refresh • q quit"))
	return sb.String()
}

func (m *AppModel) statusLine() string {
	if m.status == nil {
		return statusStyle.Render("market status: loading...")
	}

	var parts []string
	if m.status.IsOpen {
		parts = append(parts, openStyle.Render("NYSE open"))
	} else {
		parts = append(parts, closedStyle.Render("NYSE closed"))
	}
	if m.status.IbitPrice != nil {
		parts = append(parts, fmt.Sprintf("IBIT $%.2f", *m.status.IbitPrice))
	}
	if m.status.IbitNav != nil {
		parts = append(parts, fmt.Sprintf("NAV $%.2f", *m.status.IbitNav))
	}
	if m.status.CoinbaseBtcPrice != nil {
		parts = append(parts, fmt.Sprintf("BTC-PERP $%.0f", *m.status.CoinbaseBtcPrice))
	}
	return statusStyle.Render(strings.Join(parts, "  |  "))
}

func (m *AppModel) setFamily(family lending.CollateralFamily) (tea.Model, tea.Cmd) {
	if m.family == family {
		return m, nil
	}
	m.family = family
	m.loading = true
	return m, m.fetchMarkets(false)
}

func (m *AppModel) fetchMarkets(forceRefresh bool) tea.Cmd {
	cfg := m.svc.BaseFilter
	cfg.CollateralFamily = m.family
	return func() tea.Msg {
		markets, err := m.svc.Markets.GetRankedMarkets(context.Background(), cfg, forceRefresh)
		if err != nil {
			return marketsErrMsg{err: err}
		}
		return marketsMsg(markets)
	}
}

func (m *AppModel) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		if m.svc.Status == nil {
			return statusMsg(nil)
		}
		return statusMsg(m.svc.Status.Current(context.Background()))
	}
}

// refreshStatus rebuilds the snapshot from upstream. The periodic tick uses
// this so the status line stays live even without a background poller.
func (m *AppModel) refreshStatus() tea.Cmd {
	return func() tea.Msg {
		if m.svc.Status == nil {
			return statusMsg(nil)
		}
		return statusMsg(m.svc.Status.Refresh(context.Background()))
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(statusRefreshEvery, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func marketRows(markets []domain.Market) []table.Row {
	rows := make([]table.Row, 0, len(markets))
	for _, m := range markets {
		collateral := "?"
		if m.CollateralAsset != nil {
			collateral = m.CollateralAsset.Symbol
		}
		rows = append(rows, table.Row{
			collateral,
			m.LoanAsset.Symbol,
			fmt.Sprintf("%.2f%%", m.NetApy()*100),
			fmt.Sprintf("%.0f", m.Liquidity()),
			domain.ChainName(m.ChainID),
		})
	}
	return rows
}
