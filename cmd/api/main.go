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

	"storefront-backend/config"
	"storefront-backend/controllers"
	"storefront-backend/events"
	"storefront-backend/logger"
	"storefront-backend/middleware"
	"storefront-backend/repository"
	"storefront-backend/routes"
	"storefront-backend/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig) error {
	ctx := context.Background()

	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Log.Warn("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	logger.Log.Info("Connected to MongoDB", zap.String("mode", cfg.MongoMode), zap.String("database", cfg.MongoDB))

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	media, err := newUploader(cfg)
	if err != nil {
		return err
	}

	var cache services.ProductCache = services.NopCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Warn("Redis unavailable, product cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = services.NewRedisProductCache(rdb, cfg.CacheTTL)
			logger.Log.Info("Product cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		logger.Log.Info("Publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Log.Warn("error closing event publisher", zap.Error(err))
		}
	}()

	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	orders := repository.NewOrderRepository(db)
	promos := repository.NewPromoCodeRepository(db)

	tokens := services.NewTokenService(string(cfg.PasetoSecretKey), string(cfg.JWTSecret), cfg.JWTTTL)
	ctrl := &controllers.Controller{
		Admins:    services.NewAdminService(admins, tokens),
		Customers: services.NewCustomerService(users, carts, tokens),
		Products:  services.NewProductService(products, cache, media),
		Carts:     services.NewCartService(carts, products),
		Orders:    services.NewOrderService(orders, products, carts, promos, cache, publisher),
		Promos:    services.NewPromoService(promos),
		Stats:     services.NewStatsService(admins, users, products, orders),
		DB:        controllers.MongoPinger(client),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, 10, 10*time.Minute)
	defer limiter.Stop()

	opts := routes.Options{
		Env:            cfg.Env,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginLimiter:   limiter,
	}
	if _, ok := media.(*services.LocalUploader); ok {
		opts.UploadDir = cfg.UploadDir
	}
	router := routes.Setup(ctrl, tokens, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Log.Info("Server exited")
	return nil
}

// newUploader stores images on Cloudinary when configured, else on local disk.
func newUploader(cfg *config.AppConfig) (services.MediaUploader, error) {
	if cfg.CloudinaryURL != "" {
		cld, err := services.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			return nil, err
		}
		logger.Log.Info("Image uploads go to Cloudinary")
		return cld, nil
	}
	logger.Log.Info("Image uploads stored locally", zap.String("dir", cfg.UploadDir))
	return services.NewLocalUploader(cfg.UploadDir, routes.StaticPrefix)
}
