package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// PortfolioRefresher re-fetches watched wallets and repopulates the cache.
type PortfolioRefresher interface {
	RefreshPortfolio(ctx context.Context, wallets []string)
}

// PortfolioPoller periodically refreshes the portfolios of configured watch
// addresses so API reads stay warm and snapshots accumulate.
type PortfolioPoller struct {
	tracer       trace.Tracer
	service      PortfolioRefresher
	wallets      []string
	pollInterval time.Duration
}

func NewPortfolioPoller(tracer trace.Tracer, service PortfolioRefresher, wallets []string, pollIntervalSecs int) *PortfolioPoller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 300
	}
	return &PortfolioPoller{
		tracer:       tracer,
		service:      service,
		wallets:      wallets,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start blocks until ctx is cancelled. With no watch addresses configured
// it returns immediately.
func (p *PortfolioPoller) Start(ctx context.Context) {
	if len(p.wallets) == 0 {
		log.Println("Portfolio poller disabled: no watch addresses configured")
		return
	}

	log.Printf("Portfolio poller starting for %d watched address(es)...", len(p.wallets))

	p.refresh(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Portfolio poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *PortfolioPoller) refresh(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "poller.refresh-portfolios")
	defer span.End()

	p.service.RefreshPortfolio(ctx, p.wallets)
}
