package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketcart-be/internal/auth"
	"marketcart-be/internal/cart"
	"marketcart-be/internal/checkout"
	"marketcart-be/internal/config"
	"marketcart-be/internal/db"
	"marketcart-be/internal/httpapi"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/middleware"
	"marketcart-be/internal/order"
	"marketcart-be/internal/product"
	"marketcart-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	handler, limiter := setupRouter(cfg, database, newCartStore(cfg, database))

	stop := make(chan struct{})
	go limiter.Run(stop)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("cart_store", cfg.CartStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited")
}

func newCartStore(cfg *config.Config, database *sql.DB) cart.Store {
	if cfg.CartStore == config.StoreMemory {
		return cart.NewMemoryStore()
	}
	return cart.NewRepository(database)
}

func setupRouter(cfg *config.Config, database *sql.DB, store cart.Store) (http.Handler, *middleware.RateLimiter) {
	products := product.NewGuardedProvider(product.NewRepository(database), product.BreakerSettings{
		MaxFailures:   cfg.ProductBreakerMaxFailures,
		OpenTimeout:   cfg.ProductBreakerOpenTimeout,
		LookupTimeout: cfg.ProductLookupTimeout,
	})

	userRepo := user.NewRepository(database)
	cartSvc := cart.NewService(store, products)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := httpapi.NewRouter(httpapi.Deps{
		Carts:          cartSvc,
		Checkout:       checkout.NewService(cartSvc, products, order.NewRepository(database)),
		Users:          user.NewService(userRepo, store),
		Guard:          auth.NewGuard(userRepo),
		Limiter:        limiter,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
	})

	return handler, limiter
}
