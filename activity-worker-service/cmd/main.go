package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/config"
	"auctionhouse/activity-worker-service/internal/app/activity/handler"
	"auctionhouse/activity-worker-service/internal/app/activity/processor"
	"auctionhouse/activity-worker-service/internal/app/activity/repository"
	"auctionhouse/activity-worker-service/internal/app/activity/service"
	"auctionhouse/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "activity-worker-service"

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
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	collection := mongoClient.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
	activityRepo := repository.NewActivityRepository(collection)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer indexCancel()
	if err := activityRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create indexes")
	}

	activityService := service.NewActivityService(activityRepo, cfg.Activity.Retention)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := processor.NewKafkaConsumer(processor.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.AuctionTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: cfg.Kafka.MinBytes,
		MaxBytes: cfg.Kafka.MaxBytes,
	}, activityService)
	consumer.Start(ctx)

	scheduler := processor.NewCronScheduler(activityService)
	if err := scheduler.Start(ctx, cfg.Activity.PruneSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}

	healthHandler := handler.NewHealthCheckHandler(func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	router := handler.SetupRoutes(handler.NewActivityHandler(activityService), healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	logger.Info().Msg("Activity worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down activity worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	scheduler.Stop()
	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop consumer")
	}
	cancel()

	logger.Info().Msg("Activity worker stopped")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(serviceName).
		SetServerSelectionTimeout(5 * time.Second)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = mongo.Connect(context.Background(), clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, readpref.Primary())
			pingCancel()
			if err == nil {
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
