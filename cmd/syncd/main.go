package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/teledrop/syncd/internal/config"
	"github.com/teledrop/syncd/internal/handlers"
	custommw "github.com/teledrop/syncd/internal/middleware"
	"github.com/teledrop/syncd/internal/observability"
	"github.com/teledrop/syncd/internal/repository"
	"github.com/teledrop/syncd/internal/services"
	"github.com/teledrop/syncd/internal/telegram"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	telemetryCtx, telemetryCancel := context.WithTimeout(context.Background(), 30*time.Second)
	telemetry, err := observability.Initialize(telemetryCtx, observability.NewConfig("teledrop-syncd", serviceVersion))
	telemetryCancel()
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
	}

	// Initialize database and repositories
	var uploadRepo repository.UploadRecordRepo
	var folderRepo repository.SyncFolderRepo
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer db.Close()

		traced, err := observability.NewTraceDB(db, "postgresql")
		if err != nil {
			log.Fatalf("Failed to initialize database tracing: %v", err)
		}
		uploadRepo = repository.NewUploadRecordRepositoryPostgres(traced)
		folderRepo = repository.NewSyncFolderRepositoryPostgres(traced)
	} else {
		log.Println("Using SQLite database")
		db, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer db.Close()

		traced, err := observability.NewTraceDB(db, "sqlite")
		if err != nil {
			log.Fatalf("Failed to initialize database tracing: %v", err)
		}
		uploadRepo = repository.NewUploadRecordRepository(traced)
		folderRepo = repository.NewSyncFolderRepository(traced)
	}

	// Initialize services
	settingsService, err := services.NewSettingsService(cfg.SettingsPath())
	if err != nil {
		log.Fatalf("Failed to initialize settings store: %v", err)
	}

	syncMetrics, err := observability.NewSyncMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize sync metrics: %v", err)
	}

	library := services.NewMediaLibrary(cfg.MediaRoots)
	catalogService := services.NewCatalogService(folderRepo, library)
	hashService := services.NewHashService()
	captionService := services.NewCaptionService()
	hub := services.NewWebSocketHub()
	go hub.Run()

	uploaderService := services.NewUploaderService(
		settingsService,
		library,
		uploadRepo,
		folderRepo,
		hashService,
		captionService,
		telegram.NewClient,
		hub,
		syncMetrics,
		cfg.Uploader.TempDir,
		cfg.Uploader.SpoolThreshold,
	)

	schedulerService := services.NewSchedulerService(uploaderService, settingsService, folderRepo, nil)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(schedulerService, uploaderService, settingsService, uploadRepo)
	folderHandler := handlers.NewFolderHandler(catalogService)
	setupHandler := handlers.NewSetupHandler(settingsService, telegram.NewClient)
	wsHandler := handlers.NewWebSocketHandler(hub)
	healthHandler := handlers.NewHealthHandler()

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize HTTP metrics: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.TracingMiddleware())
	r.Use(observability.MetricsMiddleware(httpMetrics))
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)

	r.Route("/api/sync", func(r chi.Router) {
		r.Post("/run", syncHandler.TriggerSync)
		r.Get("/status", syncHandler.GetSyncStatus)
	})

	r.Route("/api/folders", func(r chi.Router) {
		r.Get("/", folderHandler.ListFolders)
		r.Post("/", folderHandler.AddFolder)
		r.Delete("/", folderHandler.RemoveFolder)
		r.Get("/auto-sync", folderHandler.ListAutoSyncFolders)
		r.Put("/auto-sync", folderHandler.SetAutoSync)
	})

	r.Route("/api/setup", func(r chi.Router) {
		r.Post("/validate-token", setupHandler.ValidateToken)
		r.Post("/detect-chat", setupHandler.DetectChat)
		r.Post("/complete", setupHandler.CompleteSetup)
	})

	r.Get("/api/settings", setupHandler.GetSettings)
	r.Put("/api/settings", setupHandler.UpdateSettings)

	r.Get("/ws", wsHandler.HandleConnection)

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("TeleDrop sync daemon starting on %s", cfg.ServerAddress)
		log.Printf("Media roots: %v", cfg.MediaRoots)
		log.Printf("Data dir: %s", cfg.DataDir)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(ctx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}

	log.Println("Daemon stopped")
}
