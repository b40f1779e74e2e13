/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the finance ledger API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize SQLite store
  3. Load import header variants and build the profile registry
  4. Connect the Kafka event publisher when brokers are configured
  5. Start the periodic balance audit (AUDIT_INTERVAL, 0 disables)
  6. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -env     Path to a .env file (default: ./.env if present)
  -port    HTTP server port (PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: finance.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  DEFAULT_CURRENCY, CORS_ORIGINS, KAFKA_BROKERS, KAFKA_TOPIC,
  IMPORT_VARIANTS_FILE, IMPORT_MAX_ERRORS, AUDIT_INTERVAL. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the audit scheduler
  4. Flush the event publisher and close the database
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
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

	"github.com/warp/finance-ledger/api"
	"github.com/warp/finance-ledger/config"
	"github.com/warp/finance-ledger/events/kafka"
	"github.com/warp/finance-ledger/importer"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/store/sqlite"
)

func main() {
	// Flags
	envPath := flag.String("env", "", "Path to .env file")
	port := flag.Int("port", 0, "HTTP server port (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Import profiles
	variants := importer.DefaultVariants()
	if cfg.Import.VariantsFile != "" {
		variants, err = importer.LoadVariants(cfg.Import.VariantsFile)
		if err != nil {
			log.Fatalf("Failed to load header variants: %v", err)
		}
	}

	// Events
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled() {
		p := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()
		publisher = p
		log.Printf("Publishing entry events to %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	// Initialize handler
	handler := api.NewHandler(store, api.Options{
		DefaultCurrency: cfg.DefaultCurrency,
		Publisher:       publisher,
		Profiles:        importer.NewRegistry(variants),
		MaxImportErrors: cfg.Import.MaxErrors,
		Logger:          log.Default(),
	})

	// Periodic balance audit
	scheduler := api.NewAuditScheduler(store, handler.Engine, cfg.AuditInterval)
	scheduler.Start()

	// Create router
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	scheduler.Stop()

	log.Println("Server stopped")
}
