package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/lending"

	tele "gopkg.in/telebot.v3"
)

const rateListLimit = 5

type MarketRater interface {
	GetRankedMarkets(ctx context.Context, cfg lending.FilterConfig, forceRefresh bool) ([]domain.Market, error)
}

type StatusReader interface {
	Current(ctx context.Context) *domain.MarketStatusSnapshot
}

// StartTelegramBot launches the bot with its long-poller. baseFilter carries
// the deployment-configured filter defaults applied to every /rates query.
// An empty token skips startup.
func StartTelegramBot(token string, marketService MarketRater, statusService StatusReader, baseFilter lending.FilterConfig) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/rates", func(c tele.Context) error {
		family := lending.FamilyAll
		if args := c.Args(); len(args) > 0 {
			switch f := lending.CollateralFamily(strings.ToUpper(args[0])); f {
			case lending.FamilyAll, lending.FamilyBTC, lending.FamilyETH:
				family = f
			default:
				return c.Send("Usage: /rates [BTC|ETH]")
			}
		}
		cfg := baseFilter
		cfg.CollateralFamily = family
		markets, err := marketService.GetRankedMarkets(context.Background(), cfg, false)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching rates: %v", err))
		}
		return c.Send(formatRates(family, markets))
	})

	b.Handle("/status", func(c tele.Context) error {
		return c.Send(formatStatus(statusService.Current(context.Background())))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatRates(family lending.CollateralFamily, markets []domain.Market) string {
	if len(markets) == 0 {
		return fmt.Sprintf("No %s markets match the current filters", family)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Cheapest %s borrow rates:\n", family)
	for i, m := range markets {
		if i == rateListLimit {
			break
		}
		collateral := "?"
		if m.CollateralAsset != nil {
			collateral = m.CollateralAsset.Symbol
		}
		fmt.Fprintf(&sb, "%d. %s / %s: %.2f%% net (%s)\n",
			i+1, collateral, m.LoanAsset.Symbol, m.NetApy()*100, domain.ChainName(m.ChainID))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatStatus(snap *domain.MarketStatusSnapshot) string {
	var sb strings.Builder

	if snap.IsOpen {
		sb.WriteString("NYSE: open\n")
	} else {
		sb.WriteString("NYSE: closed\n")
	}

	if snap.IbitPrice != nil {
		fmt.Fprintf(&sb, "IBIT: $%.2f", *snap.IbitPrice)
		if snap.IbitChange != nil {
			fmt.Fprintf(&sb, " (%+.2f)", *snap.IbitChange)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("IBIT: unavailable\n")
	}

	if snap.IbitNav != nil {
		fmt.Fprintf(&sb, "IBIT NAV: $%.2f", *snap.IbitNav)
		if snap.IbitNavDate != nil {
			fmt.Fprintf(&sb, " as of %s", *snap.IbitNavDate)
		}
		sb.WriteString("\n")
	}

	if snap.CoinbaseBtcPrice != nil {
		fmt.Fprintf(&sb, "BTC-PERP: $%.2f\n", *snap.CoinbaseBtcPrice)
	}

	for _, q := range snap.VolatileCrypto() {
		fmt.Fprintf(&sb, "%s: $%.2f (%+.2f%%)\n",
			strings.ToUpper(q.Symbol), q.CurrentPrice, q.PriceChangePct24h)
	}

	return strings.TrimRight(sb.String(), "\n")
}
