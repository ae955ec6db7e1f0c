package lending

import (
	"morpho-monitor/internal/domain"
	"morpho-monitor/internal/provider"
)

// Normalize flattens a raw GraphQL market into the domain shape. Identity
// fields are copied verbatim and nothing is precomputed: raw integer-string
// amounts stay untouched so the guarded conversion happens at the point of
// use. Nested pointers are copied so normalized markets never alias the raw
// payload.
func Normalize(raw provider.RawMarket) domain.Market {
	m := domain.Market{
		UniqueKey: raw.UniqueKey,
		LoanAsset: raw.LoanAsset,
		ChainID:   raw.MorphoBlue.Chain.ID,
	}

	if raw.CollateralAsset != nil {
		collateral := *raw.CollateralAsset
		m.CollateralAsset = &collateral
	}

	if raw.State != nil {
		rewards := make([]domain.MarketReward, 0, len(raw.State.Rewards))
		for _, r := range raw.State.Rewards {
			rewards = append(rewards, domain.MarketReward{
				BorrowApr:   r.BorrowApr,
				AssetSymbol: r.Asset.Symbol,
			})
		}
		m.State = &domain.MarketState{
			BorrowApy:    raw.State.BorrowApy,
			Utilization:  raw.State.Utilization,
			SupplyAssets: raw.State.SupplyAssets,
			BorrowAssets: raw.State.BorrowAssets,
			Rewards:      rewards,
		}
	}

	return m
}

// NormalizeAll converts a full fetch, preserving upstream order.
func NormalizeAll(raw []provider.RawMarket) []domain.Market {
	markets := make([]domain.Market, 0, len(raw))
	for _, r := range raw {
		markets = append(markets, Normalize(r))
	}
	return markets
}
