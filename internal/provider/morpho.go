package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"morpho-monitor/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const morphoBaseURL = "https://blue-api.morpho.org/graphql"

const (
	defaultMarketPageSize = 1000
	defaultMarketMaxItems = 5000
)

// marketsQuery pages through every Morpho Blue market with an offset cursor.
const marketsQuery = `query GetMarkets($first: Int, $skip: Int) {
  markets(first: $first, skip: $skip) {
    items {
      uniqueKey
      loanAsset { address symbol decimals }
      collateralAsset { address symbol decimals }
      state {
        borrowApy
        utilization
        supplyAssets
        borrowAssets
        rewards { borrowApr asset { symbol } }
      }
      morphoBlue { chain { id } }
    }
  }
}`

// RawMarketReward mirrors the nested GraphQL reward shape.
type RawMarketReward struct {
	BorrowApr float64 `json:"borrowApr"`
	Asset     struct {
		Symbol string `json:"symbol"`
	} `json:"asset"`
}

type RawMarketState struct {
	BorrowApy    float64           `json:"borrowApy"`
	Utilization  float64           `json:"utilization"`
	SupplyAssets string            `json:"supplyAssets"`
	BorrowAssets string            `json:"borrowAssets"`
	Rewards      []RawMarketReward `json:"rewards"`
}

// RawMarket is a market exactly as the GraphQL API returns it, before
// normalization into domain.Market.
type RawMarket struct {
	UniqueKey       string          `json:"uniqueKey"`
	LoanAsset       domain.Token    `json:"loanAsset"`
	CollateralAsset *domain.Token   `json:"collateralAsset"`
	State           *RawMarketState `json:"state"`
	MorphoBlue      struct {
		Chain struct {
			ID int64 `json:"id"`
		} `json:"chain"`
	} `json:"morphoBlue"`
}

// MorphoProvider fetches lending markets from the Morpho Blue GraphQL API.
type MorphoProvider struct {
	client   *http.Client
	baseURL  string
	tracer   trace.Tracer
	limiter  *RateLimiter
	pageSize int
	maxItems int
}

// NewMorphoProvider creates a provider paging pageSize markets per request
// and refusing to accumulate more than maxItems in one fetch. An empty
// apiURL and zero or negative sizes select the defaults (the public API,
// 1000 per page, 5000 total).
func NewMorphoProvider(tracer trace.Tracer, apiURL string, pageSize, maxItems int) *MorphoProvider {
	if apiURL == "" {
		apiURL = morphoBaseURL
	}
	if pageSize <= 0 {
		pageSize = defaultMarketPageSize
	}
	if maxItems <= 0 {
		maxItems = defaultMarketMaxItems
	}
	return &MorphoProvider{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  apiURL,
		tracer:   tracer,
		limiter:  NewRateLimiter(10, time.Second),
		pageSize: pageSize,
		maxItems: maxItems,
	}
}

// FetchAllMarkets pages through the full market listing. Pagination stops on
// an empty page, a short page, or once maxItems have accumulated (a guard
// against a misbehaving upstream paginating forever). Any page failure is a
// hard error: a partial market list would produce misleading rankings.
func (p *MorphoProvider) FetchAllMarkets(ctx context.Context) ([]RawMarket, error) {
	_, span := p.tracer.Start(ctx, "morpho.fetch-all-markets")
	defer span.End()

	all := make([]RawMarket, 0, p.pageSize)
	skip := 0
	for {
		items, err := p.fetchPage(ctx, p.pageSize, skip)
		if err != nil {
			return nil, fmt.Errorf("fetch markets page skip=%d: %w", skip, err)
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		// Advance the cursor by what actually came back, not by the
		// requested page size, so a partially-filled page cannot skip rows.
		skip += len(items)
		if len(items) < p.pageSize {
			break
		}
		if len(all) >= p.maxItems {
			log.Printf("morpho pagination reached the %d item cap, stopping", p.maxItems)
			break
		}
	}
	return all, nil
}

func (p *MorphoProvider) fetchPage(ctx context.Context, first, skip int) ([]RawMarket, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"query": marketsQuery,
		"variables": map[string]int{
			"first": first,
			"skip":  skip,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("morpho API error %d: %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		Data struct {
			Markets struct {
				Items []RawMarket `json:"items"`
			} `json:"markets"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode markets page: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("morpho GraphQL error: %s", decoded.Errors[0].Message)
	}

	return decoded.Data.Markets.Items, nil
}
