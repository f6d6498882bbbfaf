package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletscope/internal/cache"
	"walletscope/internal/chain"
	"walletscope/internal/config"
	"walletscope/internal/db"
	"walletscope/internal/handler"
	"walletscope/internal/job"
	"walletscope/internal/ordinals"
	"walletscope/internal/provider"
	"walletscope/internal/repository"
	"walletscope/internal/service"
	"walletscope/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "walletscope/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newSnapshotRepoFunc    = repository.NewSnapshotRepository
	newPortfolioService    = service.NewPortfolioService
	newPortfolioPollerFunc = job.NewPortfolioPoller
	startPollerFunc        = func(p *job.PortfolioPoller, ctx context.Context) { go p.Start(ctx) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// buildChainHandlers wires one handler per enabled chain from configuration.
func buildChainHandlers(tracer trace.Tracer, cfg *config.Config) []chain.Handler {
	var handlers []chain.Handler
	for _, desc := range config.Chains() {
		switch desc.Name {
		case "ethereum":
			rpc := provider.NewEVMRPCClient(tracer, cfg.EVMRPCURL, cfg.TokenScanPerMin)
			var nfts chain.NFTProvider
			if cfg.AlchemyAPIKey != "" {
				nfts = provider.NewAlchemyNFTProvider(tracer, cfg.AlchemyBaseURL, cfg.AlchemyAPIKey)
			}
			handlers = append(handlers, chain.NewEVMHandler(tracer, desc, config.ERC20Tokens(), rpc, nfts))
		case "bitcoin":
			utxo := provider.NewBlockstreamClient(tracer, cfg.BlockstreamURL)
			resolver := ordinals.NewResolver(tracer,
				ordinals.NewHiroSource(tracer, cfg.HiroURL),
				ordinals.NewMagicEdenSource(tracer, cfg.MagicEdenURL),
			)
			handlers = append(handlers, chain.NewBitcoinHandler(tracer, desc, utxo, resolver))
		default:
			log.Printf("no handler wired for chain %q, skipping", desc.Name)
		}
	}
	return handlers
}

// @title           WalletScope API
// @version         1.0
// @description     Multi-chain wallet asset discovery with ordinal support and OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL != "" {
		initPostgresFunc(ctx, cfg.DatabaseURL)
	}
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Snapshot persistence is optional: without Postgres the API still
	// serves live data, only /api/snapshots degrades.
	var snapshotRepo *repository.SnapshotRepository
	var repoForService service.SnapshotRepository
	var snapshotsForAPI handler.SnapshotReader
	if db.Pool != nil {
		snapshotRepo = newSnapshotRepoFunc(db.Pool, tracer)
		if err := snapshotRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repoForService = snapshotRepo
		snapshotsForAPI = snapshotRepo
	}

	chainHandlers := buildChainHandlers(tracer, cfg)
	portfolioService := newPortfolioService(
		tracer,
		chainHandlers,
		cache.Client,
		repoForService,
		time.Duration(cfg.PortfolioCacheTTL)*time.Second,
	)

	poller := newPortfolioPollerFunc(tracer, portfolioService, cfg.WatchAddresses, cfg.RefreshSecs)
	startPollerFunc(poller, ctx)

	relay := handler.NewContentRelay(tracer, cfg.OrdinalsContent, cfg.RelayTimeoutSecs)
	h := newHandlerFunc(tracer, portfolioService, snapshotsForAPI, relay, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("walletscope"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
