package main

import (
	"context"
	"log"
	"os"

	"alfredoptarigan/tender-evaluator/internal/config"
	"alfredoptarigan/tender-evaluator/internal/repositories"
	"alfredoptarigan/tender-evaluator/internal/services"
)

// Registers the evaluation templates from a YAML seed file in the database.
// Usage: go run ./scripts [path], defaulting to TEMPLATE_SEED_PATH.
func main() {
	log.Println("🚀 Starting template seeding...")

	cfg := config.Load()

	path := cfg.Store.TemplateSeedPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal("❌ No seed file given, pass a path or set TEMPLATE_SEED_PATH")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	store := repositories.NewGormStore(db)
	registry := services.NewTemplateRegistry(store.Templates)

	created, err := services.SeedTemplatesFromFile(context.Background(), path, registry, store.Templates)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("🎉 Seeding completed, %d new templates\n", created)
}
