// Package main is the entry point for the Lorelight server.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/lorelight/lorelight-go/internal/api"
	"github.com/lorelight/lorelight-go/internal/auth"
	"github.com/lorelight/lorelight-go/internal/config"
	"github.com/lorelight/lorelight-go/internal/database"
	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/internal/metrics"
	"github.com/lorelight/lorelight-go/internal/services/ambience"
	"github.com/lorelight/lorelight-go/internal/services/export"
	"github.com/lorelight/lorelight-go/internal/services/hue"
	importservice "github.com/lorelight/lorelight-go/internal/services/import"
	"github.com/lorelight/lorelight-go/internal/services/playback"
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
	"github.com/lorelight/lorelight-go/internal/services/scene"
	"github.com/lorelight/lorelight-go/internal/services/version"
	"github.com/lorelight/lorelight-go/internal/storage"
	"github.com/lorelight/lorelight-go/internal/store"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	// Auto-migrate database schema
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	campaignRepo := repositories.NewCampaignRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	sceneRepo := repositories.NewSceneRepository(db)
	audioRepo := repositories.NewAudioRepository(db)
	lightRepo := repositories.NewLightConfigRepository(db)
	blockRepo := repositories.NewSceneBlockRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// Event bus and metrics
	ps := pubsub.New()
	reg := metrics.New()

	// Hue bridge service; a previously paired bridge reconnects on boot
	hueClient := &http.Client{Timeout: cfg.HueRequestTimeout}
	hueService := hue.NewService(hueClient, cfg.HueDiscoveryURL, settingRepo)
	hueService.SetStatusCallback(func(status hue.Status) {
		ps.PublishAll(pubsub.TopicHueStatus, status)
	})
	if err := hueService.Restore(context.Background()); err != nil {
		log.Printf("Warning: Hue bridge restore failed: %v", err)
	}

	// Playback service driving the browser's audio element over the event bus
	playbackService := playback.NewService(playback.NewRemotePlayer(ps))
	playbackService.SetUpdateCallback(func(status *playback.Status) {
		ps.PublishAll(pubsub.TopicPlaybackUpdated, status)
	})
	playbackService.SetNotifyCallback(func(message string) {
		log.Printf("Playback notice: %s", message)
	})

	// Gradient derivation and the scene orchestrator
	ambienceService := ambience.NewService(ps)
	sceneStore := store.NewSceneStore()
	campaignStore := store.NewCampaignStore()
	sessionStore := store.NewSessionStore()
	audioFileStore := store.NewAudioFileStore()
	orchestrator := scene.NewOrchestrator(scene.Deps{
		SceneRepo:       sceneRepo,
		AudioRepo:       audioRepo,
		Playback:        playbackService,
		Hue:             hueService,
		Ambience:        ambienceService,
		SceneStore:      sceneStore,
		PubSub:          ps,
		Metrics:         reg,
		WarnThreshold:   cfg.ActivationWarnThreshold,
		SeekSettleDelay: cfg.SeekSettleDelay,
	})
	playbackService.SetSceneDeactivator(orchestrator)

	// Object storage is optional; without it audio uploads are disabled
	var uploader *storage.Uploader
	if cfg.StorageConfigured() {
		r2 := storage.NewR2Store(storage.Config{
			Endpoint:    cfg.R2Endpoint,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			Bucket:      cfg.R2Bucket,
			Region:      cfg.R2Region,
		})
		uploader = storage.NewUploader(r2, cfg.R2PublicBaseURL, cfg.UploadMaxAttempts, cfg.UploadRetryBase)
	} else {
		log.Println("Object storage not configured, audio uploads disabled")
	}

	buildInfo := version.Get()
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	exportService := export.NewService(campaignRepo, sessionRepo, sceneRepo, blockRepo, lightRepo, buildInfo.Version)
	importService := importservice.NewService(campaignRepo, sessionRepo, sceneRepo, blockRepo, lightRepo)

	// Create router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	server := api.NewServer(api.Deps{
		Auth:         authService,
		Users:        userRepo,
		Campaigns:    campaignRepo,
		Sessions:     sessionRepo,
		Scenes:       sceneRepo,
		Audio:        audioRepo,
		LightConfigs: lightRepo,
		SceneBlocks:  blockRepo,

		CampaignStore:  campaignStore,
		SessionStore:   sessionStore,
		AudioFileStore: audioFileStore,

		Hue:          hueService,
		Playback:     playbackService,
		Orchestrator: orchestrator,
		Ambience:     ambienceService,
		Export:       exportService,
		Import:       importService,
		Uploader:     uploader,
		PubSub:       ps,
		Metrics:      reg,
		Version:      buildInfo.String(),
	})
	server.Routes(router)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		log.Printf("API endpoint: http://localhost:%s/api\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop any running playback before the socket closes
	playbackService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	info := version.Get()
	fmt.Println("============================================")
	fmt.Println("  Lorelight Server")
	fmt.Printf("  Version: %s\n", info.String())
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Storage:     %v\n", cfg.StorageConfigured())
	fmt.Println("============================================")
}
