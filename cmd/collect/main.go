package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LJTian/HeadlineHub/internal/collector"
	"github.com/LJTian/HeadlineHub/internal/config"
	"github.com/LJTian/HeadlineHub/internal/logging"
	"github.com/LJTian/HeadlineHub/internal/processor"
	"github.com/LJTian/HeadlineHub/internal/scheduler"
	"github.com/LJTian/HeadlineHub/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	os.Exit(run())
}

func run() int {
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
		return 1
	}
	defer store.Close()

	queries, err := collector.LoadQueries(cfg.QueriesFile)
	if err != nil {
		slog.Error("load queries failed", "path", cfg.QueriesFile, "error", err)
		return 1
	}

	fetchers := collector.NewFetchers(cfg.Credentials, queries, collector.NewHTTPClient(cfg.FetchTimeout), cfg.DisabledSources)

	opts := []scheduler.Option{scheduler.WithSourceTimeout(cfg.SourceTimeout)}
	if store.Channels != nil {
		for _, f := range fetchers {
			if err := store.Channels.EnsureChannel(ctx, f.Name(), true); err != nil {
				slog.Warn("ensure channel failed", "source", f.Name(), "error", err)
			}
		}
		opts = append(opts, scheduler.WithRecorder(store.Channels))
	}

	snapshots := storage.NewSnapshotStore(store.KV, cfg.SnapshotKey)
	agg := scheduler.NewAggregator(fetchers, processor.NewProcessor(cfg.MaxArticles), snapshots, opts...)

	// 只执行一轮采集任务后退出
	report, err := agg.RunOnce(ctx)
	if err != nil {
		slog.Error("collect failed", "run_id", report.RunID, "error", err)
		return 1
	}
	slog.Info("collect done", "run_id", report.RunID, "published", report.Stats.Published)
	return 0
}
