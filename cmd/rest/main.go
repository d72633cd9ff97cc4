package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement-engine-be/internal/bootstrap"
	"placement-engine-be/internal/config"
	"placement-engine-be/internal/server"
	"placement-engine-be/internal/tracer"
	"placement-engine-be/pkg/database"

	"gorm.io/gorm"
)

const moduleMain = "MAIN"

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogQueries, database.DefaultPoolConfig())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	// 4. Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	container.StartEventStream(ctx)
	go func() {
		container.Logger.Info(moduleMain, "Starting consumer service", nil)
		if err := container.ConsumerService.Consume(ctx); err != nil && ctx.Err() == nil {
			container.Logger.Error(moduleMain, "Consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Initialize and Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			container.Logger.Error(moduleMain, "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	container.Logger.Info(moduleMain, "Shutting down", nil)

	done := make(chan struct{})
	go func() {
		_ = srv.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		container.Logger.Warn(moduleMain, "Server shutdown timed out", nil)
	}
}
