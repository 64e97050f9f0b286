package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/skyharbor/flightdeck/internal/api"
	"github.com/skyharbor/flightdeck/internal/config"
	"github.com/skyharbor/flightdeck/internal/storage/sqlite"
	"github.com/skyharbor/flightdeck/internal/traffic"
	"github.com/skyharbor/flightdeck/internal/tts"
	"github.com/skyharbor/flightdeck/internal/websocket"
	"github.com/skyharbor/flightdeck/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Flightdeck server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Companion storage
	db, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Error("Failed to open companion database", logger.Error(err))
		os.Exit(1)
	}
	companionStorage, err := sqlite.NewCompanionStorage(db, log)
	if err != nil {
		log.Error("Failed to create companion storage", logger.Error(err))
		os.Exit(1)
	}
	defer companionStorage.Close()
	log.Info("Using SQLite companion storage", logger.String("path", cfg.Storage.SQLitePath))

	// WebSocket fanout server
	wsServer := websocket.NewServer(cfg.Traffic.SubscriberBufferSize, log)

	// Traffic pipeline
	trafficService := traffic.NewService(cfg.Traffic, wsServer, log)
	wsServer.SetSnapshotProvider(trafficService)
	go wsServer.Run()

	trafficService.Start()

	// TTS client (disabled without an API key)
	ttsClient := tts.NewClient(cfg.TTS, log)
	if !ttsClient.Enabled() {
		log.Info("TTS disabled: no API key configured")
	}

	// API router
	router := api.NewRouter(trafficService, companionStorage, ttsClient, cfg, log, wsServer)

	// --- Setup for multiple HTTP servers ---
	var servers []*http.Server
	allPorts := []int{cfg.Server.Port}
	if len(cfg.Server.AdditionalPorts) > 0 {
		allPorts = append(allPorts, cfg.Server.AdditionalPorts...)
	}

	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	for _, port := range allPorts {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		server := &http.Server{
			Addr:         addr,
			Handler:      router.Routes(), // All servers use the same main router
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}
		servers = append(servers, server)

		go func(s *http.Server) {
			log.Info("Starting HTTP server", logger.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", s.Addr), logger.Error(err))
			}
		}(server)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	log.Info("Stopping traffic service...")
	trafficService.Stop()
	log.Info("Traffic service stopped.")

	// Shutdown all HTTP servers
	log.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
			} else {
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
			}
		}(s)
	}
	wg.Wait()

	log.Info("Server fully stopped")
}
