package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-backend/controllers"
	"storefront-backend/database"
	"storefront-backend/logger"
	"storefront-backend/middleware"
	"storefront-backend/repository"
	"storefront-backend/routes"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		// Logger is not up yet.
		panic("failed to load configuration: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	// --- 1. Infrastructure ---

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	// Redis backs the catalog cache; the service runs fine without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zap.L().Warn("Failed to parse REDIS_URL, catalog cache disabled", zap.Error(err))
		} else {
			redisClient = redis.NewClient(redisOpts)
		}
	}

	// --- 2. Dependency Injection ---

	userRepo := repository.NewMongoUserRepository(database.DB)
	productRepo := repository.NewMongoProductRepository(database.DB)
	orderRepo := repository.NewMongoOrderRepository(database.DB)
	counterRepo := repository.NewMongoCounterRepository(database.DB)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		zap.L().Warn("Failed to ensure user indexes", zap.Error(err))
	}
	if err := orderRepo.EnsureIndexes(indexCtx); err != nil {
		zap.L().Warn("Failed to ensure order indexes", zap.Error(err))
	}
	indexCancel()

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(userRepo, tokenService, logger.Log)
	userService := services.NewUserService(userRepo, logger.Log)
	productService := services.NewProductService(productRepo, logger.Log)
	orderService := services.NewOrderService(orderRepo, productRepo, counterRepo, logger.Log)

	var cacheManager *controllers.CacheManager
	if redisClient != nil {
		cacheManager = controllers.NewCacheManager(redisClient)
	}

	ctrl := routes.Controllers{
		Auth:    controllers.NewAuthController(authService),
		Users:   controllers.NewUserController(userService),
		Product: controllers.NewProductController(productService, cacheManager),
		Order:   controllers.NewOrderController(orderService),
	}

	// --- 3. HTTP Server & Middleware ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(logger.Log))

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- 4. Route Registration ---

	authLimiter := middleware.NewRateLimiter(rate.Limit(5), 10)
	routes.Register(r, ctrl, tokenService, authLimiter)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- 5. Graceful Shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Storefront backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zap.L().Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := database.Close(); err != nil {
		zap.L().Error("Failed to close MongoDB", zap.Error(err))
	}

	zap.L().Info("Storefront backend stopped gracefully")
}
