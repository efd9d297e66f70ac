package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finwise-backend/advice"
	"finwise-backend/bootstrap"
	"finwise-backend/cache"
	"finwise-backend/config"
	"finwise-backend/handlers"
	"finwise-backend/logger"
	"finwise-backend/marketdata"
	"finwise-backend/metrics"
	"finwise-backend/repository"
	"finwise-backend/sentiment"
	"finwise-backend/service"
	"finwise-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	// Initialize database connections
	pool, err := bootstrap.OpenPostgres(ctx, cfg.Database.URL, zl)
	if err != nil {
		zl.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	profileRepo := repository.NewProfileRepository(db)

	// Market corpus and similarity index
	embedder, err := bootstrap.NewEmbedder(cfg)
	if err != nil {
		zl.Fatal("Failed to initialize embedder", zap.Error(err))
	}
	index, err := bootstrap.NewIndex(cfg, pool)
	if err != nil {
		zl.Fatal("Failed to initialize index", zap.Error(err))
	}
	build := cfg.Index.BuildOnStart || cfg.Index.Backend == "memory"
	if _, err := bootstrap.LoadIndex(ctx, bootstrap.NewMarketDataProvider(cfg), embedder, index,
		bootstrap.CorpusOptions{Build: build}, zl); err != nil {
		zl.Fatal("Failed to load market index", zap.Error(err))
	}

	// Advice generation
	geminiClient, err := initGemini(ctx, cfg.Gemini.APIKey, zl)
	if err != nil {
		zl.Fatal("Failed to initialize Gemini", zap.Error(err))
	}
	defer geminiClient.Close()
	generator := advice.NewGeminiGenerator(geminiClient, cfg.Gemini.Model, cfg.Gemini.Temperature, cfg.Gemini.Timeout)

	adviceOpts := []service.AdviceServiceOption{
		service.WithProfileStore(profileRepo),
		service.WithAdviceComposer(advice.NewComposer(generator, zl)),
		service.WithAdviceLogger(zl),
	}
	if store, err := storage.NewStorage(ctx, cfg.Storage); err != nil {
		zl.Warn("Advice archive disabled", zap.Error(err))
	} else {
		adviceOpts = append(adviceOpts, service.WithAdviceArchive(storage.NewAdviceArchive(store)))
		zl.Info("Advice archive initialized", zap.String("type", cfg.Storage.Type))
	}

	// Market sentiment
	classifier := sentiment.NewHuggingFaceClassifier(sentiment.HuggingFaceConfig{
		BaseURL:  cfg.Sentiment.BaseURL,
		Model:    cfg.Sentiment.Model,
		APIToken: cfg.Sentiment.APIToken,
		Timeout:  cfg.Sentiment.Timeout,
	})
	sentimentOpts := []service.SentimentServiceOption{
		service.WithNewsSource(bootstrap.NewAlphaVantageClient(cfg)),
		service.WithSocialSource(marketdata.NewXClient(marketdata.XConfig{
			BaseURL:     cfg.Social.BaseURL,
			BearerToken: cfg.Social.BearerToken,
			Timeout:     cfg.Social.Timeout,
		})),
		service.WithAggregator(sentiment.NewAggregator(classifier)),
		service.WithSentimentLogger(zl),
	}
	healthChecks := map[string]handlers.Pinger{"postgres": profileRepo}
	if cfg.Redis.Enabled {
		redisClient := cache.NewRedisClient(cfg.Redis)
		sentimentCache := cache.NewSentimentCache(redisClient, cfg.Sentiment.CacheTTL)
		if err := sentimentCache.Ping(ctx); err != nil {
			zl.Warn("Redis unavailable, sentiment cache disabled", zap.Error(err))
			_ = redisClient.Close()
		} else {
			defer sentimentCache.Close()
			sentimentOpts = append(sentimentOpts, service.WithSentimentCache(sentimentCache))
			healthChecks["redis"] = sentimentCache
		}
	}

	// Initialize services
	adviceService := service.NewAdviceService(adviceOpts...)
	sentimentService := service.NewSentimentService(sentimentOpts...)
	recommendationService := service.NewRecommendationService(
		service.WithQueryEmbedder(embedder),
		service.WithSearcher(index),
		service.WithSearchK(cfg.Recommendations.SearchK),
		service.WithTopK(cfg.Recommendations.TopK),
		service.WithRecommendationLogger(zl),
	)

	// Initialize handlers
	advisorHandler := handlers.NewAdvisorHandler(adviceService, sentimentService, recommendationService, zl)

	// Setup Gin router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(zl))
	r.Use(metrics.GinMiddleware())
	r.Use(handlers.RequestTimeout(cfg.Server.RequestTimeout))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.NewHealthHandler(healthChecks, zl).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	advisorHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
	}

	go func() {
		zl.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
}

func initGemini(ctx context.Context, apiKey string, zl *zap.Logger) (*genai.Client, error) {
	if apiKey == "" {
		zl.Warn("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	zl.Info("Gemini client initialized")
	return client, nil
}
