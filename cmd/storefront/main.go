package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SantiagoArteche/off-eccom-api/internal/cache"
	"github.com/SantiagoArteche/off-eccom-api/internal/cart"
	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/config"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/events"
	httpapi "github.com/SantiagoArteche/off-eccom-api/internal/http"
	"github.com/SantiagoArteche/off-eccom-api/internal/logx"
	"github.com/SantiagoArteche/off-eccom-api/internal/order"
	"github.com/SantiagoArteche/off-eccom-api/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	logx.Init(cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logx.Fatal().Err(err).Msg("run migrations")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("open db")
	}
	defer pool.Close()

	// Optional product cache.
	var productCache *cache.Products
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logx.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
		productCache = cache.NewProducts(rdb, cfg.ProductCacheTTL)
	}

	// Optional order events.
	var publisher order.Publisher
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			logx.Fatal().Err(err).Msg("connect rabbitmq")
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logx.Fatal().Err(err).Msg("create publisher")
		}
		defer pub.Close()
		publisher = pub
	}

	cartSvc := cart.NewService(cart.NewPostgresRepository(pool), nilInvalidator(productCache))
	orderSvc := order.NewService(order.NewPostgresRepository(pool), publisher)
	catalogSvc := catalog.NewService(catalog.NewPostgresRepository(pool), nilCache(productCache))
	userSvc := user.NewService(user.NewPostgresRepository(pool))

	router := httpapi.NewRouter(
		httpapi.NewCartHandler(cartSvc),
		httpapi.NewOrderHandler(orderSvc, userSvc),
		httpapi.NewCatalogHandler(catalogSvc),
		httpapi.NewUserHandler(userSvc),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logx.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// nilCache keeps a typed-nil *cache.Products from sneaking into a non-nil
// interface value.
func nilCache(c *cache.Products) catalog.ProductCache {
	if c == nil {
		return nil
	}
	return c
}

func nilInvalidator(c *cache.Products) cart.Invalidator {
	if c == nil {
		return nil
	}
	return c
}
