package main

import (
	"context"
	"delivery-delay-service/internal/adapters/repositories"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/platform/db"
	"flag"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// dbtool initialises the Postgres schema and optionally imports a model
// parameter file written by cmd/train.
func main() {
	importPath := flag.String("import-model", "", "JSON model parameter file to store as the active model")
	flag.Parse()

	config.LoadEnv()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *importPath == "" {
		return
	}

	log.Printf("Importing model params from %s...", *importPath)
	params, err := repositories.ReadParamsFile(*importPath)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	if err := repositories.NewSQLModelStore(conn).SaveParams(context.Background(), params); err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("Import complete. model_id=%s", params.ID)
}
