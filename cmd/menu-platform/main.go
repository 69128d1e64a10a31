package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-menu-platform/internal/cache"
	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/mail"
	"github.com/pribylovaa/go-menu-platform/internal/metrics"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/storage/postgres"
	transport "github.com/pribylovaa/go-menu-platform/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Миграции схемы до подключения пула.
	if err := postgres.RunMigrations(cfg.DB.DatabaseURL); err != nil {
		log.Error("migrations_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("migrations_applied")

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer str.Close()
	log.Info("postgres_connected")

	// Почтовый клиент: работает только когда доставка включена,
	// но клиент собираем всегда — конфигурация валидируется на старте.
	mailer, err := mail.NewSMTPMailer(cfg.Mail)
	if err != nil {
		log.Error("mailer_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// Сервис.
	srvc := service.New(str, mailer, cfg.Auth, cfg.Mail)
	log.Info("service_initialized")

	// Кэш сессий — опционально, по наличию REDIS_URL.
	var scache cache.SessionCache
	if cfg.Redis.RedisURL != "" {
		scache, err = cache.NewRedisCache(cfg.Redis.RedisURL, "")
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = scache.Close() }()
		srvc.SetSessionCache(scache)
		log.Info("session_cache_enabled")
	}

	// Метрики.
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	srvc.SetMetrics(collector)

	if scache != nil {
		startCacheHeartbeat(rootCtx, scache, collector, log, time.Minute)
	}

	var ready atomic.Bool

	router := transport.NewRouter(srvc, cfg.Mail, transport.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		Metrics:  collector,
		Gatherer: registry,
		Ready:    ready.Load,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	log.Info("service_stopped")
}

// startCacheHeartbeat запускает фоновую задачу, которая периодически пингует
// кэш сессий и отражает его доступность в метриках. Протухшие записи Redis
// вычищает сам по TTL, отдельной чистки не требуется.
func startCacheHeartbeat(ctx context.Context, scache cache.SessionCache, collector *metrics.Collector, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := scache.Ping(ctx); err != nil {
					collector.SetCacheUp(false)
					log.Error("session_cache_ping_failed", slog.String("err", err.Error()))
					continue
				}
				collector.SetCacheUp(true)
			}
		}
	}()
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
