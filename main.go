package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"city-weather/api"
	"city-weather/bootstrap"
	"city-weather/config"
	"city-weather/logger"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "city-weather: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	// Parse command line arguments
	port := flag.Int("port", 0, "Port to run the server on (overrides config)")
	configFile := flag.String("config", "", "Path to configuration file")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	flag.Parse()

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *port > 0 {
		cfg.App.Port = *port
	}
	if !*enableRateLimiting {
		cfg.RateLimit.Enabled = false
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)
	if envErr != nil {
		log.Warnf("No .env file loaded: %v", envErr)
	}
	log.Infof("Environment: %s", cfg.App.Env)
	log.Infof("Log level: %s", cfg.App.LogLevel)

	app := bootstrap.New(cfg, log)
	stopPruning := app.StartCachePruning()
	defer stopPruning()

	server := api.NewServer(app.Aggregator, app.Search, app.Locator, api.Config{
		Port:            cfg.App.Port,
		Env:             cfg.App.Env,
		ShutdownTimeout: cfg.App.ShutdownTimeout,
	}, log)

	// Set up channels for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case sig := <-shutdownChan:
		log.Infof("Shutting down due to %s signal", sig)
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	if err := server.Stop(context.Background()); err != nil {
		return err
	}

	if app.SearchCache != nil {
		hits, misses := app.SearchCache.CacheStats()
		log.Infof("Search cache: %d hits, %d misses", hits, misses)
	}
	if app.AirCache != nil {
		hits, misses := app.AirCache.CacheStats()
		log.Infof("Air quality cache: %d hits, %d misses", hits, misses)
	}

	log.Info("Shutdown complete")
	return nil
}
