package main

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"bookshelf-backend/internal/config"
)

// Config holds the worker settings derived from the application config
type Config struct {
	Redis       asynq.RedisClientOpt
	AuditCron   string
	AuditQueue  string
	Concurrency int
	HealthPort  string
}

// loadConfig derives the worker configuration. The worker cannot run
// without Redis.
func loadConfig(app *config.Config) (*Config, error) {
	if !app.Redis.Enabled {
		return nil, fmt.Errorf("worker requires Redis: set REDIS_ENABLED=true")
	}

	cfg := &Config{
		Redis: asynq.RedisClientOpt{
			Addr:     app.Redis.Host,
			Password: app.Redis.Password,
			DB:       app.Redis.DB,
		},
		AuditCron:   app.Audit.Cron,
		AuditQueue:  app.Audit.Queue,
		Concurrency: 5,
		HealthPort:  "9999",
	}

	log.Printf("[Config] Redis: %s, audit: %q on queue %s",
		cfg.Redis.Addr, cfg.AuditCron, cfg.AuditQueue)

	return cfg, nil
}
