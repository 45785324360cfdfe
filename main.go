// main.go
package main

import (
	"context"
	"log"
	"time"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Bool("conditional_stock", config.Reservation.ConditionalStock),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	var integ usecase.Integrations

	if config.Redis.Enabled() {
		locker := cache.NewSeatLocker(config.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := locker.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn("Redis unreachable, seat locks disabled", zap.Error(err), zap.String("addr", config.Redis.Addr))
			locker.Close()
		} else {
			defer locker.Close()
			integ.Locker = locker
			logger.Info("Seat locks enabled", zap.String("addr", config.Redis.Addr), zap.Duration("ttl", config.Redis.SeatLockTTL))
		}
	}

	if config.Kafka.Enabled() {
		producer := event.NewProducer(config.Kafka.Brokers, config.Kafka.Topic, logger)
		defer producer.Close()
		integ.Events = producer
		logger.Info("Event publishing enabled", zap.Strings("brokers", config.Kafka.Brokers), zap.String("topic", config.Kafka.Topic))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, integ, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
