package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"studio-storefront/app"
	"studio-storefront/config"
	"studio-storefront/db"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	config.LoadEnv(os.Getenv("ENV_FILE"))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize application
	if err := app.Initialize(ctx, cfg, http.DefaultServeMux); err != nil {
		log.Fatal(err)
	}
	defer db.CloseDB()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	addr := "0.0.0.0:" + cfg.Port
	log.Printf("Server starting on %s (env=%s)", addr, cfg.Env)
	log.Printf("Catalog endpoint: GET %s/catalog", cfg.BaseURL)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
