package main

import (
	"log"
	"time"

	"shipment-status/internal/core/cache"
	"shipment-status/internal/core/config"
	"shipment-status/internal/core/logger"
	"shipment-status/internal/core/server"
	"shipment-status/internal/features/shipment/adapters"
	"shipment-status/internal/features/shipment/domain"
	"shipment-status/internal/features/shipment/handler"
	"shipment-status/internal/features/shipment/ports"
	"shipment-status/internal/features/shipment/service"

	"go.uber.org/zap"
)

// @title Shipment Status API
// @version 1.0
// @description This API enriches shipment tracking numbers with carrier-derived status information.
// @contact.name API Support
// @contact.email support@shipmentstatus.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Pick the payload source: live carrier API behind a Redis cache when
	// credentials are configured, recorded replay payloads otherwise.
	var fetcher ports.PayloadFetcher
	if cfg.FedEx.HasCredentials() {
		redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
		if err != nil {
			l.Fatal("Failed to connect payload cache", zap.Error(err))
		}
		defer redisCache.Close()

		ttl := time.Duration(cfg.Redis.PayloadTTLSeconds) * time.Second
		fetcher = adapters.NewCachedFetcher(adapters.NewFedExAdapter(cfg.FedEx), redisCache, ttl)
		l.Info("Using live carrier API with payload cache",
			zap.String("api_url", cfg.FedEx.APIURL),
			zap.Duration("cache_ttl", ttl),
		)
	} else {
		fetcher = adapters.NewReplayStore(cfg.Replay.Dir)
		l.Info("No carrier credentials configured, using replay store",
			zap.String("replay_dir", cfg.Replay.Dir),
		)
	}

	ruleSet := domain.DefaultRuleSet()
	ruleSet.StalledThresholdDays = cfg.Rules.StalledThresholdDays
	ruleSet.IncludeStalledReason = cfg.Rules.IncludeStalledReason

	enricher := service.NewEnricher(fetcher, ruleSet)
	statusHandler := handler.NewStatusHandler(enricher)

	srv := server.New(cfg)

	srv.App.Get("/shipments/:number/status", statusHandler.GetShipmentStatus)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
