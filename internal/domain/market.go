package domain

import (
	"math"
	"strconv"
	"strings"
)

// Token is an on-chain asset as reported by the Morpho API. Decimals defines
// the fixed-point scale of every raw integer amount quoted in this token.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// MarketReward is a borrow-side incentive that offsets borrowing cost.
type MarketReward struct {
	BorrowApr   float64 `json:"borrowApr"`
	AssetSymbol string  `json:"assetSymbol"`
}

// MarketState carries the point-in-time rate and balance figures for a market.
// SupplyAssets and BorrowAssets are raw fixed-point integer strings scaled by
// the loan asset's decimals; convert with ParseScaled before doing arithmetic.
type MarketState struct {
	BorrowApy    float64        `json:"borrowApy"`
	Utilization  float64        `json:"utilization"`
	SupplyAssets string         `json:"supplyAssets"`
	BorrowAssets string         `json:"borrowAssets"`
	Rewards      []MarketReward `json:"rewards"`
}

// Market is a single Morpho Blue lending market. UniqueKey is its immutable
// identity across chains. CollateralAsset is nil for idle markets.
type Market struct {
	UniqueKey       string       `json:"uniqueKey"`
	LoanAsset       Token        `json:"loanAsset"`
	CollateralAsset *Token       `json:"collateralAsset"`
	State           *MarketState `json:"state"`
	ChainID         int64        `json:"chainId"`
}

// Idle markets carry either a nil collateral or this sentinel symbol.
const collateralSentinel = "N/A"

// HasCollateral reports whether the market is backed by a real collateral asset.
func (m Market) HasCollateral() bool {
	return m.CollateralAsset != nil && m.CollateralAsset.Symbol != collateralSentinel
}

// NetApy is the effective borrowing cost after incentives: base borrow APY
// minus the sum of reward APRs. Negative when a market is net-incentivized.
// Always recomputed, never stored.
func (m Market) NetApy() float64 {
	if m.State == nil {
		return 0
	}
	apy := m.State.BorrowApy
	for _, r := range m.State.Rewards {
		apy -= r.BorrowApr
	}
	return apy
}

// Liquidity is unborrowed capacity in loan-asset units: scaled supply minus
// scaled borrow. Raw amounts that fail to parse count as zero rather than
// poisoning comparisons with NaN.
func (m Market) Liquidity() float64 {
	if m.State == nil {
		return 0
	}
	supply, _ := ParseScaled(m.State.SupplyAssets, m.LoanAsset.Decimals)
	borrow, _ := ParseScaled(m.State.BorrowAssets, m.LoanAsset.Decimals)
	return supply - borrow
}

// ParseScaled converts a raw fixed-point integer string into asset units:
// raw / 10^decimals. The second return is false for amounts that do not parse
// as a finite number, in which case the value is zero.
func ParseScaled(raw string, decimals int) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v / math.Pow(10, float64(decimals)), true
}

// ChainNames maps EVM chain IDs to display names for the chains Morpho Blue
// is deployed on.
var ChainNames = map[int64]string{
	1:        "Ethereum",
	8453:     "Base",
	10:       "Optimism",
	42161:    "Arbitrum",
	56:       "BSC",
	137:      "Polygon",
	250:      "Fantom",
	43114:    "Avalanche",
	100:      "Gnosis",
	1101:     "Polygon zkEVM",
	59144:    "Linea",
	534352:   "Scroll",
	5000:     "Mantle",
	11155111: "Sepolia",
	130:      "Unichain",
	747474:   "Katana",
	999:      "Hyperliquid",
}

// ChainName returns the display name for a chain ID, or the numeric ID for
// deployments we have no name for.
func ChainName(id int64) string {
	if name, ok := ChainNames[id]; ok {
		return name
	}
	return strconv.FormatInt(id, 10)
}
