/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the benefit engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load TOML config, apply command-line flag overrides
  2. Initialize SQLite data service
  3. Create handler + debounced syncer, hydrate the dataset
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to TOML config file (optional)
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: benefits.db, ":memory:" works)
  -mode    Dataset mode: prod or test (default: prod)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush any pending debounced save
  4. Close database connection
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homeperks/benefit-engine/api"
	"github.com/homeperks/benefit-engine/benefit"
	"github.com/homeperks/benefit-engine/config"
	"github.com/homeperks/benefit-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	mode := flag.String("mode", "", "Dataset mode: prod or test (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
	}

	dsMode := benefit.Mode(cfg.Server.Mode)
	if !dsMode.Valid() {
		log.Fatalf("Invalid mode %q (use prod or test)", cfg.Server.Mode)
	}

	// Initialize data service
	svc, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer svc.Close()

	// Debounced persistence
	syncer := api.NewSyncer(svc, dsMode, time.Duration(cfg.Sync.DebounceMillis)*time.Millisecond)

	// Handler with hydrated dataset
	handler := api.NewHandler(svc, dsMode, syncer)
	if err := handler.LoadDataset(context.Background()); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	// Shared "today" value, refreshed every minute so the date rolls over
	// at local midnight without restarting.
	loc := time.UTC
	if tz := os.Getenv("TZ"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	today := benefit.NewObservableDate(benefit.Today(loc))
	today.Subscribe(func(d benefit.Date) {
		log.Printf("Date rolled over to %s", d)
	})
	handler.Today = today

	refresher := time.NewTicker(time.Minute)
	defer refresher.Stop()
	go func() {
		for range refresher.C {
			today.Set(benefit.Today(loc))
		}
	}()

	router := api.NewRouter(handler, cfg.CORS.Origins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (mode: %s)", cfg.Server.Port, dsMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := syncer.Flush(ctx); err != nil {
		log.Printf("Warning: failed to flush pending save: %v", err)
	}

	log.Println("Server stopped")
}
