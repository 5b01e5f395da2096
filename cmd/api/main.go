package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"learnoted/internal/ai"
	"learnoted/internal/config"
	"learnoted/internal/db"
	apihttp "learnoted/internal/http"
	"learnoted/internal/paypal"
	"learnoted/internal/repository"
	"learnoted/internal/service"

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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(ctxPing, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	cancelPing()

	userRepo := repository.NewPgUserRepository(pool)
	wordRepo := repository.NewPgWordRepository(pool)
	highlightRepo := repository.NewPgHighlightRepository(pool)
	videoNoteRepo := repository.NewPgVideoNoteRepository(pool)

	var (
		tokenStore  service.RefreshTokenStore
		eventStore  service.ProcessedEventStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			eventStore = service.NewRedisProcessedEventStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	paypalClient := paypal.NewHTTPClient(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalWebhookID, cfg.PayPalMode)
	aiClient := ai.NewHTTPClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AIEmbeddingModel, logger)

	userSvc := service.NewUserService(logger, userRepo)
	quotaSvc := service.NewQuotaService(logger, userRepo, cfg.FreeMonthlySearchLimit)
	subSvc := service.NewSubscriptionService(logger, userRepo, paypalClient, eventStore, quotaSvc)
	wordSvc := service.NewWordService(logger, wordRepo, quotaSvc, aiClient)
	highlightSvc := service.NewHighlightService(logger, highlightRepo)
	videoNoteSvc := service.NewVideoNoteService(logger, videoNoteRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	subHandler := apihttp.NewSubscriptionHandler(logger, subSvc)
	wordHandler := apihttp.NewWordHandler(logger, userSvc, wordSvc, quotaSvc)
	highlightHandler := apihttp.NewHighlightHandler(logger, highlightSvc)
	videoNoteHandler := apihttp.NewVideoNoteHandler(logger, videoNoteSvc)
	router := apihttp.NewRouter(logger, authHandler, subHandler, wordHandler, highlightHandler, videoNoteHandler)

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
