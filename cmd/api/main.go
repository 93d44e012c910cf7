package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"marketplace-api/internal/config"
	"marketplace-api/internal/db"
	apihttp "marketplace-api/internal/http"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/service"
	"marketplace-api/internal/upload"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	offerRepo := repository.NewPgOfferRepository(pool)

	uploader := upload.NewDisabledUploader("image uploader not configured")
	if cfg.S3Configured() {
		s3Uploader, err := upload.NewS3Uploader(ctx, cfg)
		if err != nil {
			logger.Warn("s3 uploader init failed", zap.Error(err))
		} else {
			uploader = s3Uploader
		}
	}

	tokenCache := service.NewMemoryTokenCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenCache = service.NewRedisTokenCache(redisClient)
		}
		cancel()
	}

	userSvc := service.NewUserService(logger, userRepo, tokenCache)
	offerSvc := service.NewOfferService(logger, offerRepo, uploader)

	userHandler := apihttp.NewUserHandler(logger, userSvc)
	offerHandler := apihttp.NewOfferHandler(logger, offerSvc)
	router := apihttp.NewRouter(logger, userSvc, userHandler, offerHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
