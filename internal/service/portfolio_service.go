package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"walletscope/internal/chain"
	"walletscope/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultPortfolioCacheTTL = 60 * time.Second

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, snap *domain.PortfolioSnapshot) error
}

// PortfolioService aggregates per-chain asset discovery across wallets,
// caches chain results in Redis, and optionally persists snapshots.
type PortfolioService struct {
	tracer   trace.Tracer
	handlers []chain.Handler
	redis    RedisClient
	repo     SnapshotRepository
	cacheTTL time.Duration
}

func NewPortfolioService(
	tracer trace.Tracer,
	handlers []chain.Handler,
	redisClient RedisClient,
	repo SnapshotRepository,
	cacheTTL time.Duration,
) *PortfolioService {
	if cacheTTL <= 0 {
		cacheTTL = defaultPortfolioCacheTTL
	}
	return &PortfolioService{
		tracer:   tracer,
		handlers: handlers,
		redis:    redisClient,
		repo:     repo,
		cacheTTL: cacheTTL,
	}
}

// GetPortfolio fans out one fetch per (wallet, accepting chain) pair, fully
// concurrently, and merges the results. A failing chain contributes zero
// assets and an error note; the siblings are unaffected. Merge order is
// deterministic: wallets in input order, chains in configured order.
func (s *PortfolioService) GetPortfolio(ctx context.Context, wallets []string) *domain.Portfolio {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.get-portfolio")
	defer span.End()
	span.SetAttributes(attribute.Int("wallet_count", len(wallets)))

	type slot struct {
		wallet  string
		handler chain.Handler
		result  domain.ChainResult
	}

	var slots []*slot
	portfolio := &domain.Portfolio{LastUpdated: time.Now().UTC()}

	for _, wallet := range wallets {
		matched := false
		for _, h := range s.handlers {
			if !h.Accepts(wallet) {
				continue
			}
			matched = true
			slots = append(slots, &slot{wallet: wallet, handler: h})
		}
		if !matched {
			portfolio.Errors = append(portfolio.Errors, domain.FetchError{
				Scope:   domain.ScopeChain,
				Message: fmt.Sprintf("no enabled chain accepts address %q", wallet),
			})
		}
	}

	done := make(chan *slot, len(slots))
	for _, sl := range slots {
		go func(sl *slot) {
			sl.result = s.fetchChain(ctx, sl.handler, sl.wallet, false)
			done <- sl
		}(sl)
	}
	for range slots {
		<-done
	}

	for _, sl := range slots {
		portfolio.Assets = append(portfolio.Assets, sl.result.Assets...)
		portfolio.Errors = append(portfolio.Errors, sl.result.Errors...)
	}
	portfolio.TotalAssets = len(portfolio.Assets)
	return portfolio
}

// GetChainAssets fetches one chain for one address, for the single-chain API.
func (s *PortfolioService) GetChainAssets(ctx context.Context, chainName, addr string) (domain.ChainResult, error) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.get-chain-assets")
	defer span.End()

	for _, h := range s.handlers {
		if h.Descriptor().Name == chainName {
			return s.fetchChain(ctx, h, addr, false), nil
		}
	}
	return domain.ChainResult{}, fmt.Errorf("unsupported chain: %s", chainName)
}

// Chains lists the descriptors of the configured handlers.
func (s *PortfolioService) Chains() []domain.ChainDescriptor {
	descs := make([]domain.ChainDescriptor, 0, len(s.handlers))
	for _, h := range s.handlers {
		descs = append(descs, h.Descriptor())
	}
	return descs
}

// RefreshPortfolio bypasses the cache, repopulates it, and persists one
// snapshot per (wallet, chain) when a repository is configured.
func (s *PortfolioService) RefreshPortfolio(ctx context.Context, wallets []string) {
	ctx, span := s.tracer.Start(ctx, "portfolio-service.refresh-portfolio")
	defer span.End()

	for _, wallet := range wallets {
		for _, h := range s.handlers {
			if !h.Accepts(wallet) {
				continue
			}
			result := s.fetchChain(ctx, h, wallet, true)
			if s.repo == nil {
				continue
			}
			snap, err := snapshotFromResult(wallet, result)
			if err != nil {
				log.Printf("snapshot encode for %s/%s failed: %v", result.Chain, wallet, err)
				continue
			}
			if err := s.repo.InsertSnapshot(ctx, snap); err != nil {
				log.Printf("snapshot insert for %s/%s failed: %v", result.Chain, wallet, err)
			}
		}
	}
}

// fetchChain is the cache-aside read of one (chain, wallet) pair. Cache read
// errors are treated as misses; refresh skips the read entirely.
func (s *PortfolioService) fetchChain(ctx context.Context, h chain.Handler, wallet string, bypassCache bool) domain.ChainResult {
	key := cacheKey(h.Descriptor().Name, wallet)

	if s.redis != nil && !bypassCache {
		cached, err := s.getResultCache(ctx, key)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return *cached
		}
	}

	result := h.GetAllAssets(ctx, wallet)

	// Only clean results are cached; a degraded result would pin its error
	// notes for the full TTL.
	if s.redis != nil && len(result.Errors) == 0 {
		if err := s.setResultCache(ctx, key, result); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return result
}

func (s *PortfolioService) getResultCache(ctx context.Context, key string) (*domain.ChainResult, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.ChainResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PortfolioService) setResultCache(ctx context.Context, key string, result domain.ChainResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, s.cacheTTL).Err()
}

func cacheKey(chainName, wallet string) string {
	return fmt.Sprintf("portfolio:%s:%s", chainName, wallet)
}

func snapshotFromResult(wallet string, result domain.ChainResult) (*domain.PortfolioSnapshot, error) {
	assetsJSON, err := json.Marshal(result.Assets)
	if err != nil {
		return nil, err
	}
	native := "0"
	for _, a := range result.Assets {
		if a.Type == domain.AssetNative {
			native = a.Balance
			break
		}
	}
	return &domain.PortfolioSnapshot{
		WalletAddress: wallet,
		Chain:         result.Chain,
		AssetCount:    len(result.Assets),
		NativeBalance: native,
		AssetsJSON:    string(assetsJSON),
		FetchedAt:     time.Now().UTC(),
	}, nil
}
