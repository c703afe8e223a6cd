package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/internal/infrastructure/config"
	"flightsurety-service/internal/infrastructure/oauth"
	"flightsurety-service/internal/infrastructure/persistence"
	"flightsurety-service/internal/infrastructure/router"
	"flightsurety-service/internal/interface/httpapi"
	ledgerRepo "flightsurety-service/internal/interface/repository"
	"flightsurety-service/internal/usecase"
	"flightsurety-service/pkg/logger"
	"flightsurety-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting FlightSurety ledger", "version", cfg.AppVersion, "db", cfg.DBDriver)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up ledger database
	gormDB, err := persistence.OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to open ledger database", "error", err)
	}
	store := ledgerRepo.NewGormStore(gormDB)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("Failed to migrate ledger database", "error", err)
	}

	// Set up event publishers
	var mongoClient *mongo.Client
	var mongoEvents repository.EventPublisher
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		mongoEvents = ledgerRepo.NewMongoEventRepository(db)
	}

	var natsEvents repository.EventPublisher
	if cfg.NatsURL != "" {
		log.Info("Connecting to NATS", "url", cfg.NatsURL)
		conn, err := persistence.NewNatsConn(cfg.NatsURL, "flightsurety-ledger", log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", "error", err)
		}
		defer conn.Drain()
		natsEvents = ledgerRepo.NewNatsEventPublisher(conn, cfg.NatsSubjectPrefix)
	}

	var redisEvents repository.EventPublisher
	if cfg.RedisURL != "" {
		log.Info("Connecting to Redis")
		client, err := persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer client.Close()
		redisEvents = ledgerRepo.NewRedisStreamPublisher(client, cfg.RedisStream, int64(cfg.RedisStreamMaxLen))
	}

	publisher := ledgerRepo.NewFanoutPublisher(mongoEvents, natsEvents, redisEvents)
	log.Info("Event publishers configured", "count", publisher.Len())

	// Set up payout gateway
	var payouts repository.PayoutGateway
	if cfg.PayoutEndpoint != "" {
		client := oauth.NewClientCredentialsClient(ctx, cfg.PayoutClientID, cfg.PayoutClientSecret, cfg.PayoutTokenURL, cfg.PayoutTimeout)
		payouts = ledgerRepo.NewHTTPPayoutGateway(cfg.PayoutEndpoint, client, log)
	} else {
		payouts = ledgerRepo.NewLoggingPayoutGateway(log)
	}

	// Set up ledger
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("flightsurety", registry)

	ledger, err := usecase.NewLedger(store, publisher, payouts, cfg.Ledger, m, log)
	if err != nil {
		log.Fatal("Failed to create ledger", "error", err)
	}
	if err := ledger.Initialize(ctx); err != nil {
		log.Fatal("Failed to initialize ledger", "error", err)
	}

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(ledger, log)
	engine := router.NewRouter(handler, registry, cfg.AppVersion, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("FlightSurety ledger stopped")
}
