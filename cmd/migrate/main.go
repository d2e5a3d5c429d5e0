package main

import (
	"context"
	"flag"
	"log"
	"os"

	"hakey-storefront/internal/config"
	"hakey-storefront/internal/db"
	"hakey-storefront/internal/migrate"
)

// Manages the local_storage schema used by STORAGE_BACKEND=postgres.
func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	status := flag.Bool("status", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	switch {
	case *status:
		st, err := migrate.Current(ctx, pool)
		if err != nil {
			logger.Fatalf("read version: %v", err)
		}
		if !st.Applied {
			logger.Println("no migrations applied")
			return
		}
		logger.Printf("schema version=%d dirty=%t", st.Version, st.Dirty)
	case *down > 0:
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			logger.Fatalf("rollback: %v", err)
		}
		logger.Printf("rolled back steps=%d", *down)
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}
}
