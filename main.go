// main.go
package main

import (
	"context"
	"log"
	"time"

	"museum-admission/cmd"
	"museum-admission/internal/data/repository"
	"museum-admission/internal/wire"
	"museum-admission/pkg/cache"
	"museum-admission/pkg/database"
	"museum-admission/pkg/events"
	"museum-admission/pkg/utils"

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
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Availability projection; the ledger table stays authoritative when
	// redis is down, so this is non-fatal.
	availability, err := cache.NewAvailabilityStore(
		config.Redis.Addr, config.Redis.Password, config.Redis.DB, 24*time.Hour)
	if err != nil {
		logger.Warn("Availability projection unavailable", zap.Error(err))
		availability = nil
	} else {
		defer availability.Close()
	}

	// Event bus for the notification and reporting services
	bus, err := events.NewNATSEventBus(config.NATS.URL)
	if err != nil {
		logger.Warn("Event bus unavailable, events will be dropped", zap.Error(err))
	} else {
		defer bus.Close()
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	var app *wire.App
	if bus != nil {
		app = wire.Wiring(repos, availability, bus, config, logger)
	} else {
		app = wire.Wiring(repos, availability, nil, config, logger)
	}

	// Background expiry sweeper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Service.Sweeper.Run(ctx)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
