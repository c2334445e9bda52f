package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "inventoryflow/docs"
	"inventoryflow/pkg/api"
	"inventoryflow/pkg/cache"
	"inventoryflow/pkg/config"
	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/inventory/cached"
	"inventoryflow/pkg/inventory/memory"
	pg "inventoryflow/pkg/inventory/postgres"
	"inventoryflow/pkg/ledger"
	"inventoryflow/pkg/logger"
	"inventoryflow/pkg/order"
	"inventoryflow/pkg/otel"
)

// @title InventoryFlow API
// @version 1.0
// @description Products, suppliers and orders with stock that never goes negative
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ctx := context.Background()

	level, lerr := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(os.Stdout, level, cfg.ServiceName, otel.GetTraceID)
	defer log.Sync()
	if lerr != nil {
		log.Warn(ctx, "log level", "error", lerr)
	}

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.ServiceName,
		Host:        cfg.OTELHost,
		Probability: cfg.TraceProbability,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdownTracing(context.Background())
	tracer := tp.Tracer(cfg.ServiceName)

	var store inventory.Store
	if cfg.DatabaseURL != "" {
		db, err := pg.Open(ctx, cfg.DatabaseURL, pg.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		})
		if err != nil {
			log.Error(ctx, "db connect", "error", err)
			return err
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			log.Error(ctx, "create schema", "error", err)
			return err
		}
		store = pg.New(db)
		log.Info(ctx, "using postgres store")
	} else {
		store = memory.New()
		log.Warn(ctx, "DATABASE_URL not set, records are kept in memory")
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		rc := cache.NewRedis(redisClient, cfg.RedisCacheTTL)
		if err := rc.Ping(ctx); err != nil {
			log.Warn(ctx, "redis unreachable, cache reads will fall back to the store", "addr", cfg.RedisAddr, "error", err)
		}
		store = cached.New(store, rc, log)
		log.Info(ctx, "product cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RedisCacheTTL.String())
	}

	stock := ledger.New(store)
	router := api.NewRouter(api.Deps{
		Store:  store,
		Orders: order.NewService(store, stock, log),
		Stock:  stock,
		Log:    log,
		Tracer: tracer,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "tls", cfg.TLS())
		if cfg.TLS() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			return err
		}
		return nil
	case s := <-sig:
		log.Info(ctx, "shutting down", "signal", s.String())
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error(ctx, "shutdown", "error", err)
		return err
	}
	log.Info(ctx, "stopped")
	return nil
}
