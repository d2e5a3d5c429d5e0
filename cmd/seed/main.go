package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"hakey-storefront/internal/catalog"
	"hakey-storefront/internal/config"
	"hakey-storefront/internal/seed"
	"hakey-storefront/internal/service/admin"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "YAML fixture file (defaults to the built-in demo games)")
	flag.Parse()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	fixtures := seed.Defaults()
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			logger.Fatalf("read fixtures: %v", err)
		}
		if fixtures, err = seed.Parse(data); err != nil {
			logger.Fatalf("%v", err)
		}
	}

	client := catalog.New(catalog.Config{
		GamesURL:   cfg.CatalogGamesURL,
		CreateURL:  cfg.CatalogCreateURL,
		HTTPClient: &http.Client{Timeout: cfg.CatalogTimeout},
		Logger:     logger,
	})

	ctx := context.Background()
	n, err := seed.Apply(ctx, admin.New(client, logger), fixtures, logger)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied created=%d", n)
}
