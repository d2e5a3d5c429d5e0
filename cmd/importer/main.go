package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"hakey-storefront/internal/catalog"
	"hakey-storefront/internal/config"
	"hakey-storefront/internal/importer"
	"hakey-storefront/internal/service/admin"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to games CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	client := catalog.New(catalog.Config{
		GamesURL:   cfg.CatalogGamesURL,
		CreateURL:  cfg.CatalogCreateURL,
		HTTPClient: &http.Client{Timeout: cfg.CatalogTimeout},
		Logger:     logger,
	})
	imp := importer.NewCSVImporter(f, admin.New(client, logger))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d games: %v", count, err)
	}

	fmt.Printf("Imported %d games into %s in %s\n", count, cfg.CatalogCreateURL, time.Since(start).Truncate(time.Millisecond))
}
