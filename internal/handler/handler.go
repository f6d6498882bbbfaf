package handler

import (
	"context"

	"walletscope/internal/domain"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PortfolioReader is the slice of PortfolioService the HTTP layer needs.
type PortfolioReader interface {
	GetPortfolio(ctx context.Context, wallets []string) *domain.Portfolio
	GetChainAssets(ctx context.Context, chainName, addr string) (domain.ChainResult, error)
	Chains() []domain.ChainDescriptor
}

// SnapshotReader reads persisted portfolio snapshots. Nil when Postgres
// is not configured.
type SnapshotReader interface {
	LatestSnapshots(ctx context.Context, wallet string) ([]*domain.PortfolioSnapshot, error)
}

type Handler struct {
	tracer    trace.Tracer
	portfolio PortfolioReader
	snapshots SnapshotReader
	relay     *ContentRelay
	apiKey    string
}

func New(tracer trace.Tracer, portfolio PortfolioReader, snapshots SnapshotReader, relay *ContentRelay, apiKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		portfolio: portfolio,
		snapshots: snapshots,
		relay:     relay,
		apiKey:    apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	// Inscription content is consumed by browsers cross-origin, so it
	// stays outside API-key auth and gets a permissive CORS policy.
	content := r.Group("/api/content", cors.Default())
	content.GET("/:inscriptionID", h.relay.Relay)

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/portfolio", h.GetPortfolio)
	api.GET("/chains", h.GetChains)
	api.GET("/assets/:chain/:address", h.GetChainAssets)
	api.GET("/snapshots/:address", h.GetSnapshots)
}
