package main

import (
	"context"
	"log"

	"placement-engine-be/internal/bootstrap"
	"placement-engine-be/internal/config"
	"placement-engine-be/internal/model"
	"placement-engine-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogQueries, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Extensions
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Reference data. Seeding emits nothing, so no broker is needed.
	cfg.Events.Sink = bootstrap.SinkChannel
	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		log.Fatalf("Error: Unable to build container: %v", err)
	}
	defer container.Close()

	inserted, err := container.PremisesService.SeedReferenceData(context.Background())
	if err != nil {
		log.Fatalf("Error: Seeding reference data failed: %v", err)
	}

	log.Printf("Success: migration completed, %d reference rows inserted", inserted)
}
