package localstore

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"hakey-storefront/internal/migrate"
)

func TestPostgres_Contract(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	exerciseRepository(t, NewPostgres(pool, "device-a", nil))
}

func TestPostgres_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	a := NewPostgres(pool, "device-a", nil)
	b := NewPostgres(pool, "device-b", nil)
	if err := a.Set(ctx, CartKey, []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := b.Get(ctx, CartKey); err == nil {
		t.Fatalf("expected device-b to see no cart")
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE local_storage`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
