package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/backend"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/neko-engine/internal/config"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"github.com/comitanigiacomo/neko-engine/internal/platform/observability"
)

// @title                       NÈKO Progress Engine API
// @version                     1.0
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	startTime := time.Now()

	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.App.Env,
	})
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			log.Info("redis connected", "host", cfg.Redis.Host)
		}
	}

	log.Info("opening store", "driver", cfg.Database.Driver)
	st, err := openStores(ctx, cfg.Database, rdb, log)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.Database.Driver, "error", err)
	}
	defer st.close()

	provider := backend.NewProvider(log, backend.Config{
		URL:     cfg.Backend.URL,
		AnonKey: cfg.Backend.AnonKey,
		Timeout: cfg.Backend.Timeout,
	})
	client, err := provider.Client()
	if err != nil {
		log.Fatal("invalid backend configuration", "error", err)
	}

	a, err := newApp(cfg, st, rdb, client, log, startTime)
	if err != nil {
		log.Fatal("failed to build app", "error", err)
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	a.worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("NÈKO engine listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("critical server error", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	cancelWorker()
	a.worker.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing flush failed", "error", err)
	}

	log.Info("server stopped gracefully")
}
