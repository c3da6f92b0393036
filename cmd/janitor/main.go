package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/captures"
)

// Standalone capture sweep, for deployments where the server runs without
// filesystem access to the captures directory.
func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	store, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	files, err := captures.NewStorage(config.Captures.Dir)
	if err != nil {
		logger.Error.Fatalf("Failed to open captures dir: %v", err)
	}

	janitor := captures.NewJanitor(
		store,
		files,
		time.Duration(config.Captures.SweepIntervalMinutes)*time.Minute,
	)
	if err := janitor.Start(); err != nil {
		logger.Error.Fatalf("Failed to start janitor: %v", err)
	}
	defer janitor.Stop()

	logger.Info.Println("Capture janitor running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Capture janitor stopped")
}
