package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/HeadlineHub/internal/api"
	"github.com/LJTian/HeadlineHub/internal/collector"
	"github.com/LJTian/HeadlineHub/internal/config"
	"github.com/LJTian/HeadlineHub/internal/logging"
	"github.com/LJTian/HeadlineHub/internal/processor"
	"github.com/LJTian/HeadlineHub/internal/scheduler"
	"github.com/LJTian/HeadlineHub/internal/storage"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, storage.Options{
		Backend:     cfg.StoreBackend,
		RedisURL:    cfg.RedisTarget(),
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		slog.Error("init store failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	queries, err := collector.LoadQueries(cfg.QueriesFile)
	if err != nil {
		slog.Error("load queries failed", "path", cfg.QueriesFile, "error", err)
		os.Exit(1)
	}

	client := collector.NewHTTPClient(cfg.FetchTimeout)
	fetchers := collector.NewFetchers(cfg.Credentials, queries, client, cfg.DisabledSources)

	aggOpts := []scheduler.Option{scheduler.WithSourceTimeout(cfg.SourceTimeout)}
	var serverOpts []api.Option
	if store.Channels != nil {
		// 确保各个数据源在登记表中存在
		for _, f := range fetchers {
			if err := store.Channels.EnsureChannel(ctx, f.Name(), true); err != nil {
				slog.Warn("ensure channel failed", "source", f.Name(), "error", err)
			}
		}
		aggOpts = append(aggOpts, scheduler.WithRecorder(store.Channels))
		serverOpts = append(serverOpts, api.WithChannels(store.Channels))
	}

	snapshots := storage.NewSnapshotStore(store.KV, cfg.SnapshotKey)
	agg := scheduler.NewAggregator(fetchers, processor.NewProcessor(cfg.MaxArticles), snapshots, aggOpts...)

	s, err := scheduler.New(cfg.CronSpec, agg, 0)
	if err != nil {
		slog.Error("init scheduler failed", "cron", cfg.CronSpec, "error", err)
		os.Exit(1)
	}
	s.Start(cfg.StartupDelay)
	defer s.Stop()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(api.CORS(cfg.CORSOrigins))
	}
	// 若配置了全局访问密码，则启用 Basic Auth 保护
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	serverOpts = append(serverOpts, api.WithCacheMaxAge(cfg.ReadCacheMaxAge))
	api.NewServer(snapshots, s, serverOpts...).RegisterRoutes(r)

	if cfg.WebRoot != "" {
		api.ServeSPA(r, cfg.WebRoot)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("starting api server", "addr", srv.Addr, "sources", len(fetchers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exit", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
}
