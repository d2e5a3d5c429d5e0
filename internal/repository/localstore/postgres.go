package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"hakey-storefront/internal/db"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/migrate"
)

// DefaultNamespace scopes records when no device/profile namespace is set.
const DefaultNamespace = "default"

type postgresRepo struct {
	pool      *pgxpool.Pool
	namespace string
	logger    *log.Logger
	ownsPool  bool
}

// NewPostgres stores records in the local_storage table under namespace.
func NewPostgres(pool *pgxpool.Pool, namespace string, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &postgresRepo{pool: pool, namespace: namespace, logger: logger}
}

// OpenPostgres connects to dsn and returns a repository that closes the pool
// on Close. With applyMigrations set the schema is brought up first.
func OpenPostgres(ctx context.Context, dsn, namespace string, applyMigrations bool, logger *log.Logger) (Repository, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if applyMigrations {
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("localstore: %w", err)
		}
	}
	repo := NewPostgres(pool, namespace, logger).(*postgresRepo)
	repo.ownsPool = true
	return repo, nil
}

func (r *postgresRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value
FROM local_storage
WHERE namespace = $1 AND key = $2
`
	var value []byte
	err := r.pool.QueryRow(ctx, q, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("localstore repo: get namespace=%s key=%s error=%v", r.namespace, key, err)
		return nil, err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO local_storage (namespace, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (namespace, key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = now()
`
	if _, err := r.pool.Exec(ctx, q, r.namespace, key, value); err != nil {
		r.logger.Printf("localstore repo: set namespace=%s key=%s error=%v", r.namespace, key, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM local_storage WHERE namespace = $1 AND key = $2`
	if _, err := r.pool.Exec(ctx, q, r.namespace, key); err != nil {
		r.logger.Printf("localstore repo: delete namespace=%s key=%s error=%v", r.namespace, key, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepo) Close() error {
	if r.ownsPool {
		r.pool.Close()
	}
	return nil
}
