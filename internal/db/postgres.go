package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, connString)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the package-level pool to the given connection URL.
func InitPostgres(ctx context.Context, connString string) {
	if connString == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := newPool(ctx, connString)
	if err != nil {
		log.Fatalf("failed to create Postgres pool: %v", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
}

// Close releases the pool if it was initialized.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
