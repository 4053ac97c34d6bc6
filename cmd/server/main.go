package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/config"
	"github.com/aaronshaf/churches-sub000/internal/handler"
	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/messaging"
	"github.com/aaronshaf/churches-sub000/internal/middleware"
	"github.com/aaronshaf/churches-sub000/internal/repository"
	"github.com/aaronshaf/churches-sub000/internal/service"
	"github.com/aaronshaf/churches-sub000/internal/settings"
	"github.com/aaronshaf/churches-sub000/migrations"
	"github.com/aaronshaf/churches-sub000/pkg/ai"
	"github.com/aaronshaf/churches-sub000/pkg/database"
	"github.com/aaronshaf/churches-sub000/pkg/logger"
	"github.com/aaronshaf/churches-sub000/pkg/migration"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zap.ReplaceGlobals(zapLogger)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))
	zap.L().Info("Configuration loaded")

	// --- External Connections ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.Config{
		DSN:      cfg.GetDSN(),
		MaxConns: cfg.DBMaxConns,
	}, zapLogger.Named("Database"))
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	// Применяем миграции схемы перед стартом сервера
	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, db.Pool)
	if err := migrator.Up(ctx); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}
	zap.L().Info("Database migrations applied")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zap.L().Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	// RabbitMQ опционален: без URL события просто не публикуются.
	var publisher interfaces.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.ConnectWithRetry(cfg.RabbitMQURL, 10, 3*time.Second, zapLogger.Named("RabbitMQ"))
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		pub, err := messaging.NewRabbitMQEventPublisher(mqConn, zapLogger.Named("EventPublisher"))
		if err != nil {
			zap.L().Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
		zap.L().Info("Connected to RabbitMQ")
	} else {
		zap.L().Info("RABBITMQ_URL not set, event publishing disabled")
	}

	// OpenAI тоже опционален: без ключа извлечение проповедей выключено.
	var aiClient *ai.Client
	if cfg.OpenAIAPIKey != "" {
		aiClient, err = ai.New(ai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			ModelName: cfg.OpenAIModel,
		})
		if err != nil {
			zap.L().Fatal("Failed to create AI client", zap.Error(err))
		}
		zap.L().Info("AI client initialized", zap.String("model", cfg.OpenAIModel))
	} else {
		zap.L().Info("OPENAI_API_KEY not set, sermon extraction disabled")
	}

	// --- Dependency Injection ---
	settingsRepo := repository.NewPgSettingsRepository(db.Pool, zapLogger.Named("PgSettingsRepo"))
	churchRepo := repository.NewPgChurchRepository(db.Pool, zapLogger.Named("PgChurchRepo"))
	countyRepo := repository.NewPgCountyRepository(db.Pool, zapLogger.Named("PgCountyRepo"))
	affiliationRepo := repository.NewPgAffiliationRepository(db.Pool, zapLogger.Named("PgAffiliationRepo"))
	commentRepo := repository.NewPgCommentRepository(db.Pool, zapLogger.Named("PgCommentRepo"))
	userRepo := repository.NewPgUserRepository(db.Pool, zapLogger.Named("PgUserRepo"))
	tokenRepo := repository.NewRedisTokenRepository(redisClient, zapLogger.Named("RedisTokenRepo"))

	settingsCache := settings.NewCache(settings.NewRedisKV(redisClient), settingsRepo, zapLogger.Named("SettingsCache"))
	provider := settings.NewProvider(settingsCache, zapLogger.Named("SettingsProvider"))

	churchSvc := service.NewChurchService(churchRepo, countyRepo, affiliationRepo, zapLogger.Named("ChurchService"))
	feedbackSvc := service.NewFeedbackService(commentRepo, provider, publisher, zapLogger.Named("FeedbackService"))
	settingsSvc := service.NewSettingsService(settingsRepo, settingsCache, publisher, zapLogger.Named("SettingsService"))
	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg, zapLogger.Named("AuthService"))
	sermonSvc := service.NewSermonService(aiClient, service.NewYouTubeTranscriptFetcher(zapLogger), zapLogger.Named("SermonService"))

	appHandler := handler.NewHandler(churchSvc, feedbackSvc, settingsSvc, authSvc, sermonSvc, userRepo, provider, cfg, zapLogger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())

	// Configure CORS Middleware
	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.LoadHTMLGlob(cfg.TemplatesGlob)
	router.Static("/static", "./web/static")

	// Ограничение частоты анонимной записи: 10 запросов в минуту с IP
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       10,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	appHandler.RegisterRoutes(router, rateLimitMiddleware)

	// Prometheus middleware регистрируем после роутов
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}
