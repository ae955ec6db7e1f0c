package handler

import (
	"net/http"
	"strconv"
	"strings"

	"morpho-monitor/internal/lending"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetMarkets godoc
// @Summary      List borrowable lending markets
// @Description  Returns Morpho Blue markets filtered by borrow asset, collateral family, and liquidity, sorted by net borrow rate ascending
// @Tags         markets
// @Produce      json
// @Param        borrow         query  string   false  "Borrow asset (ANY, USDC, USDT)"  default(ANY)
// @Param        collateral     query  string   false  "Collateral family (ALL, BTC, ETH)"  default(ALL)
// @Param        q              query  string   false  "Case-insensitive symbol search"
// @Param        min_liquidity  query  number   false  "Minimum available liquidity in loan-asset units"
// @Param        refresh        query  bool     false  "Bypass the cache and refetch upstream"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-markets")
	defer span.End()

	cfg := h.baseFilter
	cfg.BorrowAsset = lending.BorrowAsset(strings.ToUpper(c.DefaultQuery("borrow", string(lending.BorrowAny))))
	cfg.CollateralFamily = lending.CollateralFamily(strings.ToUpper(c.DefaultQuery("collateral", string(lending.FamilyAll))))
	cfg.SearchQuery = c.Query("q")
	span.SetAttributes(
		attribute.String("borrow", string(cfg.BorrowAsset)),
		attribute.String("collateral", string(cfg.CollateralFamily)),
	)

	switch cfg.BorrowAsset {
	case lending.BorrowAny, lending.BorrowUSDC, lending.BorrowUSDT:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported borrow asset: " + string(cfg.BorrowAsset)})
		return
	}
	switch cfg.CollateralFamily {
	case lending.FamilyAll, lending.FamilyBTC, lending.FamilyETH:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported collateral family: " + string(cfg.CollateralFamily)})
		return
	}

	if raw := c.Query("min_liquidity"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_liquidity: " + raw})
			return
		}
		cfg.MinLiquidity = min
	}

	forceRefresh := false
	if raw := c.Query("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refresh: " + raw})
			return
		}
		forceRefresh = v
	}

	markets, err := h.marketService.GetRankedMarkets(ctx, cfg, forceRefresh)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(markets), "markets": markets})
}

// GetMarketStatus godoc
// @Summary      Composite market status
// @Description  Returns NYSE session state, IBIT quote and NAV, BTC futures price, and top crypto movers. Unavailable sources appear as null fields.
// @Tags         markets
// @Produce      json
// @Success      200  {object}  domain.MarketStatusSnapshot
// @Router       /api/market-status [get]
func (h *Handler) GetMarketStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-status")
	defer span.End()

	c.JSON(http.StatusOK, h.statusService.Current(ctx))
}
