package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/config"
	"auctionhouse/auction-service/internal/app/auctions/handler"
	"auctionhouse/auction-service/internal/app/auctions/messaging"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/auction-service/internal/app/auctions/service"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "auction-service"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		logger.Info().Msg("Database schema is up to date")
	}
	if err := repository.RegisterMetrics(db, serviceName); err != nil {
		logger.Warn().Err(err).Msg("Failed to register database metrics")
	}

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.AuctionTopic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.AuctionTopic).Msg("Initialized Kafka producer")

	categoryRepo := repository.NewCategoryRepository(db)
	auctionRepo := repository.NewAuctionRepository(db)
	bidRepo := repository.NewBidRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userDataRepo := repository.NewUserDataRepository(db)
	txManager := repository.NewTxManager(db)

	categoryService := service.NewCategoryService(categoryRepo, redisClient, cfg.Redis.CategoriesTTL)
	auctionService := service.NewAuctionService(auctionRepo, categoryRepo, bidRepo, ratingRepo, txManager, kafkaProducer)
	bidService := service.NewBidService(auctionRepo, bidRepo, txManager, kafkaProducer)
	engagementService := service.NewEngagementService(auctionRepo, ratingRepo, commentRepo, txManager, kafkaProducer)
	userDataService := service.NewUserDataService(userDataRepo, txManager)

	consumer := messaging.NewUserEventsConsumer(messaging.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.UserTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: cfg.Kafka.MinBytes,
		MaxBytes: cfg.Kafka.MaxBytes,
	}, userDataService)
	consumer.Start(context.Background())

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret, redisClient)
	router := handler.SetupRoutes(handler.Handlers{
		Category:   handler.NewCategoryHandler(categoryService),
		Auction:    handler.NewAuctionHandler(auctionService),
		Bid:        handler.NewBidHandler(bidService),
		Engagement: handler.NewEngagementHandler(engagementService),
	}, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Auction Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Auction Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop user events consumer")
	}

	logger.Info().Msg("Auction Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if err = sqlDB.Ping(); err == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(time.Minute)
				return db, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
