package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/LJTian/HeadlineHub/internal/collector"
	"github.com/LJTian/HeadlineHub/internal/processor"
	"github.com/LJTian/HeadlineHub/internal/storage"
)

const defaultSourceTimeout = 2 * time.Minute

// ErrNoArticles 本轮没有任何可发布的文章，保留上一份快照
var ErrNoArticles = errors.New("no articles to publish")

// Publisher 快照写入方
type Publisher interface {
	Publish(ctx context.Context, articles []collector.Article) (storage.Snapshot, error)
}

// RunRecorder 记录每个数据源的最近一次结果
type RunRecorder interface {
	RecordRuns(ctx context.Context, runs []storage.SourceRun) error
}

type SourceReport struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

type RunReport struct {
	RunID      string          `json:"runId"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Sources    []SourceReport  `json:"sources"`
	Stats      processor.Stats `json:"stats"`
	Published  bool            `json:"published"`
	Error      string          `json:"error,omitempty"`
}

// Aggregator 一次完整的采集、过滤、去重、排序与发布
type Aggregator struct {
	fetchers      []collector.Fetcher
	processor     *processor.Processor
	publisher     Publisher
	recorder      RunRecorder
	sourceTimeout time.Duration
}

type Option func(*Aggregator)

// WithSourceTimeout 单个数据源整体耗时上限，超时视为空贡献
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.sourceTimeout = d
		}
	}
}

func WithRecorder(r RunRecorder) Option {
	return func(a *Aggregator) {
		a.recorder = r
	}
}

func NewAggregator(fetchers []collector.Fetcher, p *processor.Processor, pub Publisher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetchers:      fetchers,
		processor:     p,
		publisher:     pub,
		sourceTimeout: defaultSourceTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) RunOnce(ctx context.Context) (RunReport, error) {
	return a.Run(ctx, uuid.NewString())
}

// Run 并发调用所有数据源，等待全部结束后按注册顺序拼接，再串行处理并发布。
// 单个数据源失败只会让它的贡献为空，不影响其它数据源；只有发布失败会作为本轮错误返回。
func (a *Aggregator) Run(ctx context.Context, runID string) (RunReport, error) {
	report := RunReport{RunID: runID, StartedAt: time.Now()}
	log := slog.With("run_id", runID)
	log.Info("start collect job", "sources", len(a.fetchers))

	results := make([][]collector.Article, len(a.fetchers))
	report.Sources = make([]SourceReport, len(a.fetchers))

	var g errgroup.Group
	for i, f := range a.fetchers {
		i, f := i, f
		g.Go(func() error {
			results[i], report.Sources[i] = a.fetchOne(ctx, log, f)
			return nil
		})
	}
	_ = g.Wait()

	var all []collector.Article
	for _, items := range results {
		all = append(all, items...)
	}

	final, stats := a.processor.Process(all)
	report.Stats = stats
	log.Info("articles processed",
		"collected", stats.Collected,
		"valid", stats.Valid,
		"english", stats.English,
		"unique", stats.Unique,
		"kept", stats.Published,
	)

	var runErr error
	if len(final) == 0 {
		runErr = ErrNoArticles
		log.Warn("nothing to publish, keeping previous snapshot")
	} else if _, err := a.publisher.Publish(ctx, final); err != nil {
		runErr = fmt.Errorf("publish snapshot: %w", err)
		log.Error("publish snapshot failed", "error", err)
	} else {
		report.Published = true
		log.Info("snapshot published", "count", len(final))
	}

	report.FinishedAt = time.Now()
	if runErr != nil {
		report.Error = runErr.Error()
	}
	a.record(ctx, log, report)

	log.Info("collect job done", "duration", report.FinishedAt.Sub(report.StartedAt), "published", report.Published)
	return report, runErr
}

// fetchOne 捕获单个数据源的错误、超时与 panic，任何情况下都返回其已取得的结果
func (a *Aggregator) fetchOne(ctx context.Context, log *slog.Logger, f collector.Fetcher) (items []collector.Article, rep SourceReport) {
	name := f.Name()
	rep.Name = name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("source panicked", "source", name, "panic", r)
			items = nil
			rep.Count = 0
			rep.Error = fmt.Sprintf("panic: %v", r)
		}
		rep.DurationMs = time.Since(start).Milliseconds()
	}()

	fctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	log.Info("fetch source", "source", name)
	items, err := f.Fetch(fctx)
	rep.Count = len(items)
	switch {
	case errors.Is(err, collector.ErrMissingAPIKey):
		rep.Skipped = true
		log.Info("source skipped, api key not configured", "source", name)
	case err != nil:
		rep.Error = err.Error()
		log.Warn("source finished with errors", "source", name, "count", len(items), "error", err)
	default:
		log.Info("source done", "source", name, "count", len(items))
	}
	return items, rep
}

func (a *Aggregator) record(ctx context.Context, log *slog.Logger, report RunReport) {
	if a.recorder == nil {
		return
	}
	runs := make([]storage.SourceRun, 0, len(report.Sources))
	for _, s := range report.Sources {
		runs = append(runs, storage.SourceRun{
			Code:     s.Name,
			Count:    s.Count,
			Error:    s.Error,
			Duration: time.Duration(s.DurationMs) * time.Millisecond,
			At:       report.FinishedAt,
		})
	}
	if err := a.recorder.RecordRuns(ctx, runs); err != nil {
		log.Warn("record source runs failed", "error", err)
	}
}
