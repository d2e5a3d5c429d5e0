package localstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"hakey-storefront/internal/domain"
)

type badgerRepo struct {
	db     *badger.DB
	logger *log.Logger
}

// NewBadger opens (or creates) a Badger database in dir.
func NewBadger(dir string, logger *log.Logger) (Repository, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir)).
		WithLogger(nil).
		WithSyncWrites(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	logger.Printf("localstore: badger opened dir=%s", dir)
	return &badgerRepo{db: db, logger: logger}, nil
}

func (b *badgerRepo) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *badgerRepo) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		b.logger.Printf("localstore: badger set key=%s error=%v", key, err)
	}
	return err
}

func (b *badgerRepo) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *badgerRepo) Close() error { return b.db.Close() }
