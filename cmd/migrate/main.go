package main

import (
	"context"
	"log"
	"time"

	"symptom-checker-be/internal/config"
	"symptom-checker-be/internal/model"
	"symptom-checker-be/internal/repository/implementation"
	"symptom-checker-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Running AutoMigrate for users...")
	if err := db.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	if cfg.Database.SessionStore == "memory" {
		log.Println("Step 2: Skipped (SESSION_STORE=memory)")
		log.Println("Migration finished")
		return
	}

	log.Println("Step 2: Ensuring MongoDB session indexes...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewMongoClient(ctx, cfg.Database.MongoURL)
	if err != nil {
		log.Fatalf("Error: Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := implementation.EnsureSessionIndexes(ctx, client.Database(cfg.Database.MongoDatabase)); err != nil {
		log.Fatalf("Error: Failed to create session indexes: %v", err)
	}

	log.Println("Migration finished")
}
