// cmd/worker/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	appConfig "bookshelf-backend/internal/config"
	"bookshelf-backend/pkg/container"
	"bookshelf-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	app, err := appConfig.Load()
	if err != nil {
		log.Fatalf("[Config] Failed to load: %v", err)
	}
	logger.Init(app.App.Environment, app.App.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	cfg, err := loadConfig(app)
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	c, err := container.NewContainerWithConfig(app)
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	if err := startServices(c, cfg); err != nil {
		log.Fatalf("[Startup] Health check failed: %v", err)
	}

	srv := setupAsynqServer(cfg, initializeHandlers(c))
	scheduler := setupScheduler(cfg)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
