package main

import (
	"flag"
	"log"
	"os"

	"ShipQuote/internal/di"
	"ShipQuote/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	// Local development secrets; absence is fine in deployed environments.
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run blocks until a shutdown signal.
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
