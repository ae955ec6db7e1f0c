package lending

import (
	"sort"
	"strings"

	"morpho-monitor/internal/domain"
)

type BorrowAsset string

const (
	BorrowAny  BorrowAsset = "ANY"
	BorrowUSDC BorrowAsset = "USDC"
	BorrowUSDT BorrowAsset = "USDT"
)

type CollateralFamily string

const (
	FamilyAll CollateralFamily = "ALL"
	FamilyBTC CollateralFamily = "BTC"
	FamilyETH CollateralFamily = "ETH"
)

// collateralFamilies maps each family to the symbol tokens it accepts. A
// collateral belongs to a family when its upper-cased symbol equals a token
// or contains it as a substring, which covers wrapped and staked variants
// like wstETH or cbBTC.
var collateralFamilies = map[CollateralFamily][]string{
	FamilyBTC: {"BTC", "CBTC", "WBTC", "CBBTC", "TACBTC"},
	FamilyETH: {"ETH", "WETH"},
}

// Structured products that nominally contain an ETH-family token but do not
// behave as plain collateral for rate shopping: Pendle principal tokens,
// GMX GM pools, GLV vaults.
var ethExcludedPrefixes = []string{"PT-", "GM:", "GLV"}

// DefaultMinLiquidity filters out junk and near-empty markets, assuming one
// stable unit is roughly one dollar.
const DefaultMinLiquidity = 200000.0

// DefaultStableSymbols is the accepted stable set for the ANY borrow filter.
var DefaultStableSymbols = []string{"USDC", "USDT"}

// FilterConfig selects and orders markets. The zero value means: any stable
// loan asset, any collateral, no search, default liquidity floor.
type FilterConfig struct {
	BorrowAsset      BorrowAsset
	CollateralFamily CollateralFamily
	SearchQuery      string
	MinLiquidity     float64
	StableSymbols    []string
}

func (c FilterConfig) withDefaults() FilterConfig {
	if c.BorrowAsset == "" {
		c.BorrowAsset = BorrowAny
	}
	if c.CollateralFamily == "" {
		c.CollateralFamily = FamilyAll
	}
	if c.MinLiquidity == 0 {
		c.MinLiquidity = DefaultMinLiquidity
	}
	if len(c.StableSymbols) == 0 {
		c.StableSymbols = DefaultStableSymbols
	}
	return c
}

// Rank applies the filter pipeline and returns surviving markets ordered by
// ascending net borrow APY (lowest cost first). The sort is stable: equal
// rates keep their upstream order. The input slice is never modified.
//
// Pipeline, in order: collateral presence, borrow-asset, minimum liquidity,
// collateral family, free-text search, sort. Every market is evaluated
// against every stage independently.
func Rank(markets []domain.Market, cfg FilterConfig) []domain.Market {
	cfg = cfg.withDefaults()

	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if survives(m, cfg) {
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetApy() < out[j].NetApy()
	})
	return out
}

func survives(m domain.Market, cfg FilterConfig) bool {
	if !m.HasCollateral() {
		return false
	}
	if !matchesBorrowAsset(m.LoanAsset.Symbol, cfg) {
		return false
	}
	// Markets with no state have zero liquidity by definition.
	if m.State == nil || m.Liquidity() <= cfg.MinLiquidity {
		return false
	}
	if !matchesFamily(m.CollateralAsset.Symbol, cfg.CollateralFamily) {
		return false
	}
	return matchesSearch(m, cfg.SearchQuery)
}

func matchesBorrowAsset(loanSymbol string, cfg FilterConfig) bool {
	upper := strings.ToUpper(loanSymbol)
	if cfg.BorrowAsset == BorrowAny {
		for _, stable := range cfg.StableSymbols {
			if strings.Contains(upper, strings.ToUpper(stable)) {
				return true
			}
		}
		return false
	}
	return upper == strings.ToUpper(string(cfg.BorrowAsset))
}

func matchesFamily(collateralSymbol string, family CollateralFamily) bool {
	if family == FamilyAll {
		return true
	}
	upper := strings.ToUpper(collateralSymbol)

	if family == FamilyETH {
		for _, prefix := range ethExcludedPrefixes {
			if strings.HasPrefix(upper, prefix) {
				return false
			}
		}
	}

	for _, token := range collateralFamilies[family] {
		if upper == token || strings.Contains(upper, token) {
			return true
		}
	}
	return false
}

func matchesSearch(m domain.Market, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.LoanAsset.Symbol), query) {
		return true
	}
	return m.CollateralAsset != nil &&
		strings.Contains(strings.ToLower(m.CollateralAsset.Symbol), query)
}
