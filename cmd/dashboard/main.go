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

	"StockDashboard/internal/collector"
	"StockDashboard/internal/config"
	"StockDashboard/internal/dashboard"
	"StockDashboard/internal/directory"
	"StockDashboard/internal/logger"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/resolver"
	"StockDashboard/internal/scheduler"
	"StockDashboard/internal/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	lg, err := logger.Init("dashboard", cfg.Log.Level)
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("StockDashboard starting", zap.String("title", cfg.Title), zap.String("config", cfgPath))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.NewRegistry())

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Name {
	case config.SourceREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.SourceYahoo:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	case config.SourceMock:
		fetcher = &collector.MockFetcher{Price: 70000}
	default:
		fetcher = collector.NewNaverFetcher(cfg.Proxy)
	}
	if cfg.Redis.Addr != "" {
		client, err := collector.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lg.Warn("redis unavailable, price cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			cached := collector.NewCachedFetcher(fetcher, client, cfg.Redis.TTL, lg)
			cached.OnHit = m.CacheHits.Inc
			cached.OnMiss = m.CacheMisses.Inc
			fetcher = cached
		}
	}
	lg.Info("data source ready", zap.String("source", fetcher.Name()))

	// Init company directory
	loader := directory.NewKRXLoader(cfg.Directory.URL, cfg.Directory.Encoding, cfg.Proxy, lg)
	dir := directory.NewCache(loader, *cfg.Directory.TTL, lg)
	dir.OnLoad = func(n int) { m.DirectorySize.Set(float64(n)) }

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, lg)
		if err != nil {
			lg.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	svc := dashboard.NewService(resolver.New(dir), fetcher, rec, m, lg)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, dir, lg)
	if err := sched.RegisterAll(cfg.Schedule.DirectoryRefreshCron); err != nil {
		lg.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Optional: warm the directory on start
	if os.Getenv("RUN_ON_START") == "true" {
		lg.Info("RUN_ON_START enabled, loading company directory now")
		go func() {
			if err := sched.RunNow(); err != nil {
				lg.Warn("directory warm-up failed", zap.Error(err))
			}
		}()
	}

	srv, err := web.NewServer(cfg.Title, svc, rec, m, lg)
	if err != nil {
		lg.Fatal("init web server", zap.Error(err))
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server", zap.Error(err))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		lg.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	lg.Info("StockDashboard stopped")
}
