package main

import (
	"strings"

	"shopora-be/internal/cart"
	"shopora-be/internal/category"
	"shopora-be/internal/config"
	"shopora-be/internal/db"
	"shopora-be/internal/events"
	"shopora-be/internal/logger"
	"shopora-be/internal/order"
	"shopora-be/internal/product"
	"shopora-be/internal/review"
	"shopora-be/internal/transport"
	"shopora-be/internal/user"
	"shopora-be/internal/wishlist"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	idem := order.NewNoopIdempotencyStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()
		idem = order.NewRedisIdempotencyStore(client)
	}

	publisher := events.NewNoopPublisher()
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer publisher.Close()
	}

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	categoryRepo := category.NewRepository(database)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	wishlistRepo := wishlist.NewRepository(database)
	wishlistSvc := wishlist.NewService(wishlistRepo, productRepo)

	reviewRepo := review.NewRepository(database)
	reviewSvc := review.NewService(reviewRepo, productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, cartRepo, idem, publisher, cfg.CheckoutTimeout, cfg.DefaultCountry)

	router := transport.NewRouter(transport.Handlers{
		User:     user.NewHandler(userSvc),
		Category: category.NewHandler(categoryRepo),
		Product:  product.NewHandler(productSvc),
		Cart:     cart.NewHandler(cartSvc),
		Wishlist: wishlist.NewHandler(wishlistSvc),
		Review:   review.NewHandler(reviewSvc),
		Order:    order.NewHandler(orderSvc),
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
