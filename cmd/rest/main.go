package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"symptom-checker-be/internal/bootstrap"
	"symptom-checker-be/internal/config"
	"symptom-checker-be/internal/server"
	"symptom-checker-be/internal/tracer"
	"symptom-checker-be/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// 0. Load Configuration
	cfg := config.Load()

	// 1. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(tracer.Config{
		Enabled:  cfg.Otel.Enabled,
		Endpoint: cfg.Otel.Endpoint,
	})
	defer shutdownTracer(context.Background())

	// 2. Initialize Databases
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	var mongoDB *mongo.Database
	if cfg.Database.SessionStore != "memory" {
		mongoClient, err := database.NewMongoClient(context.Background(), cfg.Database.MongoURL)
		if err != nil {
			log.Panicf("Unable to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mongoDB = mongoClient.Database(cfg.Database.MongoDatabase)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, mongoDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()
	defer container.Logger.Sync()

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	// let in-flight commits and event forwarding settle
	time.Sleep(200 * time.Millisecond)
}
