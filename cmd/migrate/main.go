// Command migrate creates the portal schema. Run once at deployment; the
// server never touches the schema at runtime.
package main

import (
	"context"
	"log"
	"time"

	"github.com/classbridge/portal/internal/config"
	"github.com/classbridge/portal/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	if err := db.Migrate(ctx, dbh, db.Driver(cfg.DBDriver)); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	log.Printf("schema up to date (db=%s)", cfg.DBDriver)
}
