package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/panel_api/internal/cache"
	"github.com/GTDGit/panel_api/internal/config"
	"github.com/GTDGit/panel_api/internal/database"
	"github.com/GTDGit/panel_api/internal/handler"
	"github.com/GTDGit/panel_api/internal/media"
	"github.com/GTDGit/panel_api/internal/middleware"
	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/sse"
	"github.com/GTDGit/panel_api/internal/worker"
)

// main is the entrypoint for the product testing admin API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("db", cfg.DB.Driver).Msg("starting panel api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Locks: Redis when configured, in-process otherwise
	var (
		locker service.Locker = cache.NewLocalLocker()
		redis  handler.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		locker = cache.NewRedisLocker(redisClient, cfg.LockTTL)
		redis = redisClient
		log.Info().Msg("redis connected successfully")
	} else {
		log.Warn().Msg("redis disabled; lifecycle locks are in-process only")
	}

	// 4. Media host for feedback photos
	uploader, err := media.New(context.Background(), &cfg.Media)
	if err != nil {
		log.Error().Err(err).Msg("media initialization failed")
		fmt.Fprintf(os.Stderr, "media initialization failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("driver", cfg.Media.Driver).Msg("media uploader ready")

	// 5. Delete policies
	manufacturerPolicy, err := service.ParseDeletePolicy(cfg.Policy.Manufacturer)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid manufacturer delete policy")
	}
	productPolicy, err := service.ParseDeletePolicy(cfg.Policy.Product)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid product delete policy")
	}
	testerPolicy, err := service.ParseDeletePolicy(cfg.Policy.Tester)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid tester delete policy")
	}

	// 6. Initialize repositories and services
	store := repository.NewStore(db)

	authSvc := service.NewAuthService(&cfg.Auth)
	lifecycleSvc := service.NewLifecycleService(store, locker)
	manufacturerSvc := service.NewManufacturerService(store, locker, manufacturerPolicy)
	productSvc := service.NewProductService(store, locker, productPolicy)
	testerSvc := service.NewTesterService(store, locker, testerPolicy)
	feedbackSvc := service.NewFeedbackService(store, uploader, cfg.Media.Folder)
	exportSvc := service.NewExportService(store)
	dashboardSvc := service.NewDashboardService(store)

	// Push lifecycle changes to connected dashboards
	hub := sse.NewHub()
	lifecycleSvc.SetNotifier(sse.NewHubNotifier(hub))

	// 7. Initialize handlers
	handlers := &handler.Handlers{
		Health:       handler.NewHealthHandler(store, redis),
		Auth:         handler.NewAuthHandler(authSvc, cfg.Auth.SecureCookies),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Manufacturer: handler.NewManufacturerHandler(manufacturerSvc),
		Product:      handler.NewProductHandler(productSvc),
		Tester:       handler.NewTesterHandler(testerSvc),
		Test:         handler.NewTestHandler(lifecycleSvc, exportSvc),
		Feedback:     handler.NewFeedbackHandler(feedbackSvc),
		Events:       handler.NewEventsHandler(hub),
	}

	// 8. Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(authSvc)
	loginLimiter := middleware.NewDefaultLoginRateLimiter()

	// 9. Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// 10. Setup routes
	handler.SetupRoutes(router, handlers, sessionMiddleware.Handle(), loginLimiter.Handle())

	// 11. Start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ExpiryInterval > 0 {
		go worker.NewExpiryWorker(lifecycleSvc, cfg.ExpiryInterval).Start(ctx)
	}
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				loginLimiter.Cleanup(time.Hour)
			}
		}
	}()

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
