package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dibyendu2004/BrightPath/api"
	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/router"
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/services/assets"
	"github.com/dibyendu2004/BrightPath/services/cron"
	"github.com/dibyendu2004/BrightPath/utils/auth"
	"github.com/dibyendu2004/BrightPath/utils/cache"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/webhook"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log, err := logger.New(getEnv.LOG_MODE)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv, log)
	if err != nil {
		log.Error("Failed to connect to the database. Check whether Postgres is running or set DB_DRIVER=sqlite", "driver", getEnv.DB_DRIVER)
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database tables", "error", err)
		return err
	}

	// Optional collaborators: every one of them degrades gracefully when unset
	var catalogCache services.CatalogCache
	if getEnv.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL, "brightpath")
		if err != nil {
			log.Warn("Redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer redisCache.Close()
			catalogCache = redisCache
		}
	}

	var uploader services.ImageUploader
	if getEnv.AssetStorageConfigured() {
		spaces, err := assets.NewSpacesClient(assets.SpacesConfig{
			AccessKey: getEnv.ASSET_ACCESS_KEY,
			SecretKey: getEnv.ASSET_SECRET_KEY,
			Bucket:    getEnv.ASSET_BUCKET,
			Region:    getEnv.ASSET_REGION,
			Endpoint:  getEnv.ASSET_ENDPOINT,
			CDNURL:    getEnv.ASSET_CDN_URL,
		})
		if err != nil {
			log.Warn("Asset host unavailable, course creation disabled", "error", err)
		} else {
			uploader = spaces
		}
	} else {
		log.Warn("ASSET_* settings missing, course creation disabled")
	}

	var verifier *webhook.Verifier
	if getEnv.CLERK_WEBHOOK_SECRET != "" {
		verifier, err = webhook.NewVerifier(getEnv.CLERK_WEBHOOK_SECRET)
		if err != nil {
			return fmt.Errorf("invalid CLERK_WEBHOOK_SECRET: %w", err)
		}
	}

	var jwtManager *auth.JWTManager
	if getEnv.AUTH_MODE == config.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(auth.JWTConfig{
			Secret: getEnv.JWT_SECRET,
			Issuer: getEnv.JWT_ISSUER,
		})
		if err != nil {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET: %w", err)
		}
	} else {
		log.Warn("AUTH_MODE=header trusts the userid header; use only behind a trusted gateway")
	}

	svc := services.NewServices(store.GetDB(), log, catalogCache, uploader)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store.GetDB(), svc.Enrollment, svc.Progress, log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("Failed to start cron jobs", "error", err)
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), log)
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, svc, router.Config{
		AuthMode:          getEnv.AUTH_MODE,
		JWTManager:        jwtManager,
		WebhookVerifier:   verifier,
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: getEnv.RATE_LIMIT_REQUESTS,
		Log:               log,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down API server")
		if err := server.Shutdown(10 * time.Second); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}()

	// Start the Server
	return server.Run()
}
