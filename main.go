package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashrajoria/storefront/config"
	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/database"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/repository"
	"github.com/yashrajoria/storefront/routes"
	"github.com/yashrajoria/storefront/services"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// --- AWS + logging ---
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var cwSink io.Writer
	if cfg.CloudWatchEnabled && awsErr == nil {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, "", controllers.ServiceName)
		if err != nil {
			log.Printf("CloudWatch Logs init failed: %v", err)
		} else {
			cwSink = cwLogs
		}
	}

	zapLogger, err := logger.New(cfg.Env, cwSink)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if awsErr != nil {
		zapLogger.Warn("AWS config unavailable; AWS features disabled", zap.Error(awsErr))
	}

	var metricsClient *aws_pkg.MetricsClient
	var events aws_pkg.SNSPublisher
	if awsErr == nil {
		metricsClient = aws_pkg.NewMetricsClient(awsCfg, "", cfg.CloudWatchEnabled)
		if cfg.UserEventsTopicARN != "" {
			events = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	// --- Database ---
	mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDatabase, zapLogger)
	if err != nil {
		zapLogger.Fatal("MongoDB connection failed", zap.Error(err))
	}

	productRepo := repository.NewProductRepository(mongoDB.DB)
	userRepo := repository.NewUserRepository(mongoDB.DB)

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := productRepo.EnsureIndexes(indexCtx); err != nil {
		zapLogger.Warn("Failed to ensure product indexes", zap.Error(err))
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		zapLogger.Warn("Failed to ensure user indexes", zap.Error(err))
	}
	cancel()

	// Redis is optional; without it /allproducts always reads through.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Warn("Redis unavailable; product cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			zapLogger.Info("Connected to Redis")
		}
	}

	// --- Services ---
	tokenService, err := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		zapLogger.Fatal("Token service init failed", zap.Error(err))
	}

	uploader, err := newImageUploader(cfg, awsCfg, awsErr)
	if err != nil {
		zapLogger.Fatal("Media uploader init failed", zap.Error(err))
	}

	accountService := services.NewAccountService(userRepo, tokenService, events, cfg.UserEventsTopicARN, zapLogger)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(userRepo)

	handlers := routes.Handlers{
		Products: controllers.NewProductController(productService, controllers.NewCacheManager(redisClient, cfg.ProductCacheTTL, zapLogger), metricsClient, zapLogger),
		Upload:   controllers.NewUploadController(uploader, metricsClient, zapLogger),
		Auth:     controllers.NewAuthController(accountService, metricsClient, zapLogger),
		Cart:     controllers.NewCartController(cartService, metricsClient, zapLogger),
	}

	// --- HTTP server & middleware ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.MetricsMiddleware(metricsClient, controllers.ServiceName))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	authLimiter := middleware.PerMinute(cfg.RateLimitPerMinute)
	go authLimiter.Cleanup(limiterCtx)

	routes.RegisterRoutes(r, handlers, tokenService, authLimiter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zapLogger.Info("Storefront service starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down storefront service...")
	stopLimiter()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zapLogger.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := mongoDB.Close(); err != nil {
		zapLogger.Error("Failed to close MongoDB", zap.Error(err))
	}

	zapLogger.Info("Storefront service stopped gracefully")
}

func newImageUploader(cfg *config.Config, awsCfg sdkaws.Config, awsErr error) (services.ImageUploader, error) {
	if cfg.MediaProvider == config.MediaProviderS3 {
		if awsErr != nil {
			return nil, awsErr
		}
		return services.NewS3Uploader(aws_pkg.NewS3Client(awsCfg), cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL), nil
	}
	return services.NewCloudinaryUploader(cfg.CloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.AuthTokenHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}
