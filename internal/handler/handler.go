package handler

import (
	"morpho-monitor/internal/lending"
	"morpho-monitor/internal/marketstatus"
	"morpho-monitor/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer        trace.Tracer
	marketService *service.MarketService
	statusService *marketstatus.Service
	baseFilter    lending.FilterConfig
}

// New wires the API handlers. baseFilter carries the deployment-configured
// filter defaults (liquidity floor, accepted stable set); query parameters
// override it per request.
func New(tracer trace.Tracer, marketService *service.MarketService, statusService *marketstatus.Service, baseFilter lending.FilterConfig) *Handler {
	return &Handler{
		tracer:        tracer,
		marketService: marketService,
		statusService: statusService,
		baseFilter:    baseFilter,
	}
}

// RegisterRoutes mounts the API. The health probe stays unauthenticated;
// an empty apiKey disables auth on the rest as well.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/markets", h.GetMarkets)
	api.GET("/market-status", h.GetMarketStatus)
}
