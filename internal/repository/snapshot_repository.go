package repository

import (
	"context"

	"walletscope/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS portfolio_snapshots (
    id              BIGSERIAL   PRIMARY KEY,
    wallet_address  TEXT        NOT NULL,
    chain           TEXT        NOT NULL,
    asset_count     INT         NOT NULL,
    native_balance  NUMERIC     NOT NULL,
    assets          JSONB       NOT NULL,
    fetched_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_wallet_chain_time
    ON portfolio_snapshots (wallet_address, chain, fetched_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SnapshotRepository stores point-in-time portfolio snapshots in Postgres.
type SnapshotRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSnapshotRepository(pool PgxPool, tracer trace.Tracer) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, tracer: tracer}
}

func (r *SnapshotRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "snapshot-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSnapshotsTable)
	return err
}

func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, snap *domain.PortfolioSnapshot) error {
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_snapshots (wallet_address, chain, asset_count, native_balance, assets, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.WalletAddress, snap.Chain, snap.AssetCount, snap.NativeBalance, snap.AssetsJSON, snap.FetchedAt,
	)
	return err
}

// LatestSnapshots returns the newest snapshot per chain for a wallet.
func (r *SnapshotRepository) LatestSnapshots(ctx context.Context, wallet string) ([]*domain.PortfolioSnapshot, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (chain)
		        id, wallet_address, chain, asset_count, native_balance::TEXT, assets::TEXT, fetched_at
		 FROM portfolio_snapshots
		 WHERE wallet_address = $1
		 ORDER BY chain, fetched_at DESC`,
		wallet,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.PortfolioSnapshot
	for rows.Next() {
		s := &domain.PortfolioSnapshot{}
		if err := rows.Scan(&s.ID, &s.WalletAddress, &s.Chain, &s.AssetCount, &s.NativeBalance, &s.AssetsJSON, &s.FetchedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// SnapshotHistory returns snapshots for one wallet and chain, newest first.
func (r *SnapshotRepository) SnapshotHistory(ctx context.Context, wallet, chainName string, limit int) ([]*domain.PortfolioSnapshot, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.history")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, wallet_address, chain, asset_count, native_balance::TEXT, assets::TEXT, fetched_at
		 FROM portfolio_snapshots
		 WHERE wallet_address = $1 AND chain = $2
		 ORDER BY fetched_at DESC
		 LIMIT $3`,
		wallet, chainName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.PortfolioSnapshot
	for rows.Next() {
		s := &domain.PortfolioSnapshot{}
		if err := rows.Scan(&s.ID, &s.WalletAddress, &s.Chain, &s.AssetCount, &s.NativeBalance, &s.AssetsJSON, &s.FetchedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
