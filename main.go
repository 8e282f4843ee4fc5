package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickpaste/quickpaste/config"
	"github.com/quickpaste/quickpaste/handlers"
	"github.com/quickpaste/quickpaste/internal/index"
	"github.com/quickpaste/quickpaste/internal/services"
	"github.com/quickpaste/quickpaste/internal/storage"
)

// Version/build info (set via -ldflags at build time)
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "none"
)

func main() {
	log.Printf("Quick Paste Version: %s", Version)
	log.Printf("Build Time:          %s", BuildTime)
	log.Printf("Commit Hash:         %s", CommitHash)

	cfg := config.LoadConfig()
	cfg.Version = Version
	cfg.BuildTime = BuildTime
	cfg.CommitHash = CommitHash

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Content blobs go to S3 when a bucket is configured; the index
	// snapshot always stays on the local filesystem.
	var blobs storage.BlobStore
	var err error
	if cfg.S3Bucket != "" {
		blobs, err = storage.NewS3Store(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		log.Printf("Using S3 content storage (bucket %s)", cfg.S3Bucket)
	} else {
		blobs, err = storage.NewFilesystemStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to initialize filesystem storage: %v", err)
		}
		log.Printf("Using filesystem content storage (%s)", cfg.DataDir)
	}

	ix := index.New(cfg.DataDir)
	pasteService := services.NewPasteService(ix, blobs, cfg)

	// Startup sweep: drop records that expired while the process was down.
	if err := pasteService.Load(); err != nil {
		log.Fatalf("Failed to load paste index: %v", err)
	}
	log.Printf("Quick Paste started with %d pastes", pasteService.Total())

	router := setupRouter(pasteService, cfg)
	runHTTPServer(router, cfg, pasteService, blobs)
}

// setupRouter creates and configures the Gin router
func setupRouter(pasteService *services.PasteService, cfg *config.Config) *gin.Engine {
	pasteHandler := handlers.NewPasteHandler(pasteService, cfg)
	retrievalHandler := handlers.NewRetrievalHandler(pasteService, cfg)
	systemHandler := handlers.NewSystemHandler(pasteService, cfg)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// System routes
	router.GET("/", systemHandler.Root)
	router.GET("/health", systemHandler.Health)
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Paste API
	router.POST("/api/paste", pasteHandler.Create)
	router.GET("/api/pastes", pasteHandler.List)
	router.GET("/api/paste/:id", pasteHandler.Meta)
	router.DELETE("/api/paste/:id", pasteHandler.Delete)

	// Content retrieval
	router.GET("/:id", retrievalHandler.View)
	router.GET("/:id/raw", retrievalHandler.Raw)

	// Global 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	})

	return router
}

// runHTTPServer starts the HTTP server and the periodic expiry sweeper,
// and shuts both down gracefully on SIGINT/SIGTERM.
func runHTTPServer(router *gin.Engine, cfg *config.Config, pasteService *services.PasteService, blobs storage.BlobStore) {
	defer func() {
		if err := blobs.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	done := make(chan struct{})
	if cfg.SweepInterval > 0 {
		go runSweeper(pasteService, cfg.SweepInterval, done)
	}

	go func() {
		log.Printf("Starting Quick Paste server on port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	} else {
		log.Println("Server shutdown complete")
	}
}

// runSweeper removes expired pastes on a timer. Correctness does not
// depend on it: expiry is also enforced lazily on every read and at
// startup. The sweeper only bounds how long dead data sits on disk.
func runSweeper(pasteService *services.PasteService, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := pasteService.Sweep(time.Now()); removed > 0 {
				log.Printf("Expiry sweep removed %d pastes", removed)
			}
		case <-done:
			return
		}
	}
}
