package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/veritum/veritum-pro/internal/ai"
	"github.com/veritum/veritum-pro/internal/api"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/catalog"
	"github.com/veritum/veritum-pro/internal/database"
	"github.com/veritum/veritum-pro/internal/storage"
	"github.com/veritum/veritum-pro/internal/tenant"
	"github.com/veritum/veritum-pro/pkg/config"
	"github.com/veritum/veritum-pro/pkg/crypto"
	"github.com/veritum/veritum-pro/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Veritum Pro server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, catalog updates and background jobs disabled", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
		})
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)
	oauthService := auth.NewOAuthService(db, jwtService, &cfg.OAuth)

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}
	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, using generated key - stored credentials will be lost on restart")
	}

	tenantService := tenant.NewService(db, encryptor, tenant.Credentials{
		Endpoint: cfg.Tenant.DefaultEndpoint,
		Key:      cfg.Tenant.DefaultKey,
	})

	gateway := ai.NewGateway(cfg.Gemini.APIKey, func(ctx context.Context, apiKey string) (ai.ContentGenerator, error) {
		return ai.NewGeminiGenerator(ctx, apiKey, cfg.Gemini.Model)
	})

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Catalog snapshot: serve suites from memory, refresh on redis broadcasts.
	catalogService := catalog.NewService(db, redisClient)
	snapshot := catalog.NewSnapshot(catalogService.ListActive, logger)
	if err := snapshot.Refresh(context.Background()); err != nil {
		logger.Warn("initial catalog refresh failed", "error", err)
	}
	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()
	if redisClient != nil {
		go snapshot.Listen(listenCtx, redisClient)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:              db,
		Redis:           redisClient,
		Logger:          logger,
		JWTService:      jwtService,
		AuthService:     authService,
		OAuthService:    oauthService,
		Encryptor:       encryptor,
		TenantService:   tenantService,
		CatalogSnapshot: snapshot,
		AIGateway:       gateway,
		Storage:         store,
		AsynqClient:     asynqClient,
		CookieDomain:    cfg.Tenant.CookieDomain,
		RateLimitReqs:   cfg.RateLimit.Requests,
		RateLimitSecs:   cfg.RateLimit.WindowSeconds,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	stopListen()

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
