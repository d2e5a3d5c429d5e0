// Package app assembles the storefront core from configuration. Both the
// HTTP shell and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"hakey-storefront/internal/catalog"
	"hakey-storefront/internal/config"
	"hakey-storefront/internal/events"
	"hakey-storefront/internal/metrics"
	"hakey-storefront/internal/repository/localstore"
	"hakey-storefront/internal/service/account"
	"hakey-storefront/internal/service/admin"
	"hakey-storefront/internal/service/cart"
	"hakey-storefront/internal/service/product"
	"hakey-storefront/internal/service/session"
)

type App struct {
	Storage   localstore.Repository
	Catalog   *catalog.Client
	Publisher events.Publisher
	Metrics   *metrics.Registry

	Cart     *cart.Store
	Session  *session.Store
	Products *product.Service
	Accounts *account.Service
	Admin    *admin.Service

	logger *log.Logger
}

// New opens local storage, hydrates both stores and wires the services.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	storage, err := localstore.Open(ctx, localstore.Options{
		Backend:   cfg.StorageBackend,
		Dir:       cfg.StorageDir,
		DSN:       cfg.DBConnString,
		Namespace: cfg.StorageNamespace,
		Migrate:   cfg.AutoMigrate,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	reg := metrics.NewRegistry()
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Printf("app: publishing events to kafka topic=%s", cfg.KafkaTopic)
	}

	client := catalog.New(catalog.Config{
		GamesURL:   cfg.CatalogGamesURL,
		CreateURL:  cfg.CatalogCreateURL,
		HTTPClient: &http.Client{Timeout: cfg.CatalogTimeout},
		Logger:     logger,
		Metrics:    reg,
	})

	cartStore := cart.New(ctx, storage, cart.Options{
		Logger:          logger,
		NotificationTTL: cfg.NotificationTTL,
		Publisher:       publisher,
		Metrics:         reg,
	})
	sessions := session.Open(ctx, storage, session.Options{
		Logger:    logger,
		Publisher: publisher,
		Metrics:   reg,
	})
	if cartStore.Recovered() {
		logger.Printf("app: cart state recovered from malformed storage")
	}
	if sessions.Recovered() {
		logger.Printf("app: session state recovered from malformed storage")
	}

	return &App{
		Storage:   storage,
		Catalog:   client,
		Publisher: publisher,
		Metrics:   reg,
		Cart:      cartStore,
		Session:   sessions,
		Products:  product.New(client),
		Accounts:  account.New(sessions, cfg.AdminEmails, logger),
		Admin:     admin.New(client, logger),
		logger:    logger,
	}, nil
}

// Close stops timers and releases storage and the event publisher.
func (a *App) Close() {
	a.Cart.Close()
	if err := a.Publisher.Close(); err != nil {
		a.logger.Printf("app: close publisher error=%v", err)
	}
	if err := a.Storage.Close(); err != nil {
		a.logger.Printf("app: close storage error=%v", err)
	}
}
