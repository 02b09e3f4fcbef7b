/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize the blob store (SQLite or filesystem)
  3. Optionally wrap it in the write batcher
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: roster.db)
               Use ":memory:" for an in-memory database
  -data        Directory for filesystem storage; overrides -db
  -flush       Write-batch flush interval; 0 disables batching

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Drain the write batcher and close the store
  4. Exit

EXAMPLES:
  # Run with a SQLite file store
  ./server -db="./data/roster.db"

  # Run over plain JSON files with batched writes
  ./server -data="./data" -flush=2s

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store: Storage implementations
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

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/store"
	"github.com/warp/roster-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "roster.db", "SQLite database path")
	dataDir := flag.String("data", "", "directory for filesystem storage (overrides -db)")
	flushEvery := flag.Duration("flush", 0, "write-batch flush interval; 0 disables batching")
	flag.Parse()

	// Initialize blob store
	var blobs store.BlobStore
	var closeStore func() error

	if *dataDir != "" {
		fsStore, err := store.NewFileSystem(*dataDir)
		if err != nil {
			log.Fatalf("Failed to initialize filesystem storage: %v", err)
		}
		blobs = fsStore
		closeStore = func() error { return nil }
	} else {
		sqlStore, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		blobs = sqlStore
		closeStore = sqlStore.Close
	}

	var batcher *store.Batcher
	if *flushEvery > 0 {
		batcher = store.NewBatcher(blobs, *flushEvery)
		batcher.OnError = func(key string, err error) {
			log.Printf("Deferred write failed for %s: %v", key, err)
		}
		blobs = batcher
	}

	// Initialize handler and router
	handler := api.NewHandler(store.NewCatalog(blobs))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Roster engine starting on http://localhost:%d", *port)
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
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if batcher != nil {
		batcher.Close()
	}
	if err := closeStore(); err != nil {
		log.Printf("Store close failed: %v", err)
	}

	log.Println("Server stopped")
}
