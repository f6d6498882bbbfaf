package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestInitPostgres(t *testing.T) {
	origNew := newPool
	origPing := pingPool
	t.Cleanup(func() {
		newPool = origNew
		pingPool = origPing
		Pool = nil
	})

	var capturedConn string
	newPool = func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
		capturedConn = connString
		return &pgxpool.Pool{}, nil
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return nil
	}

	InitPostgres(context.Background(), "postgres://user:pass@db:5432/walletscope")
	if capturedConn != "postgres://user:pass@db:5432/walletscope" {
		t.Fatalf("unexpected conn string: %s", capturedConn)
	}
	if Pool == nil {
		t.Fatal("expected pool to be set")
	}
}
