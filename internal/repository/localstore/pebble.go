package localstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"hakey-storefront/internal/domain"
)

type pebbleRepo struct {
	db     *pebble.DB
	logger *log.Logger
}

// NewPebble opens (or creates) a Pebble database in dir.
func NewPebble(dir string, logger *log.Logger) (Repository, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	logger.Printf("localstore: pebble opened dir=%s", dir)
	return &pebbleRepo{db: d, logger: logger}, nil
}

func (p *pebbleRepo) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

// Set syncs the WAL so a record survives a crash right after the call.
func (p *pebbleRepo) Set(_ context.Context, key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		p.logger.Printf("localstore: pebble set key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (p *pebbleRepo) Delete(_ context.Context, key string) error {
	return p.db.Delete([]byte(key), pebble.Sync)
}

func (p *pebbleRepo) Close() error { return p.db.Close() }
