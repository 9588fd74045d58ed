package main

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"
	"vtts-analysis/internal/adapters/repositories"
	"vtts-analysis/internal/config"
	"vtts-analysis/internal/platform/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := initSchema(ctx, db); err != nil {
		log.Fatal(err)
	}
}

func initSchema(ctx context.Context, db *sql.DB) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, db); err != nil {
		return err
	}
	log.Println("Schema ready.")
	return nil
}
