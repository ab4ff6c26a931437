package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mercantil/storefront/config"
	"github.com/mercantil/storefront/db/migrations"
	"github.com/mercantil/storefront/internal/app"
	cartRepoPkg "github.com/mercantil/storefront/internal/cart/repository"
	catRepoPkg "github.com/mercantil/storefront/internal/catalog/repository"
	catUCPkg "github.com/mercantil/storefront/internal/catalog/usecase"
	searchRepoPkg "github.com/mercantil/storefront/internal/search/repository"
	stockListenerPkg "github.com/mercantil/storefront/internal/stock/listener"
	"github.com/mercantil/storefront/pkg/broker"
	"github.com/mercantil/storefront/pkg/cache"
	"github.com/mercantil/storefront/pkg/i18n"
	"github.com/mercantil/storefront/pkg/logger"
	"github.com/mercantil/storefront/pkg/postgres"
	"github.com/mercantil/storefront/pkg/searchindex"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n
	translator, err := i18n.New(cfg.App.Locale)
	if err != nil {
		log.Fatalf("failed to load locales: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.App.Env == "dev" || cfg.App.Env == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 3.5 Apply Migrations
	if err := postgres.Migrate(db, migrations.Files); err != nil {
		appLogger.Fatal("Could not apply migrations", zap.Error(err))
	}

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 4.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 4.8 Initialize Elasticsearch
	esClient, err := searchindex.NewClient(&searchindex.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to database)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 5. Initialize Repositories and UseCases
	catRepo := catRepoPkg.NewPGRepository(db)
	catUC := catUCPkg.NewCatalogUseCase(catRepo, redisClient, appLogger)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	searchRepo := searchRepoPkg.NewPGRepository(db)
	recentStore := searchRepoPkg.NewRedisRecentStore(redisClient, cfg.Search.RecentKeyPrefix, cfg.Search.RecentLimit)

	application := app.New(cfg, catUC, cartRepo, searchRepo, recentStore, esClient, translator, appLogger)

	// 5.5 Initialize Listeners
	stockListener := stockListenerPkg.NewStockListener(kafkaConsumer, catUC, application.Registry, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stockListener.Start(ctx)

	appLogger.Info("Storefront sync core running")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	appLogger.Info("Stopped")
}
