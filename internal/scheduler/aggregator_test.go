package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/HeadlineHub/internal/collector"
	"github.com/LJTian/HeadlineHub/internal/processor"
	"github.com/LJTian/HeadlineHub/internal/storage"
)

type fakeFetcher struct {
	name  string
	items []collector.Article
	err   error
	delay time.Duration
	panic bool
	block chan struct{}
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context) ([]collector.Article, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panic {
		panic("boom")
	}
	return f.items, f.err
}

type fakePublisher struct {
	mu        sync.Mutex
	published [][]collector.Article
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, articles []collector.Article) (storage.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return storage.Snapshot{}, p.err
	}
	p.published = append(p.published, articles)
	return storage.Snapshot{Articles: articles, TotalResults: len(articles)}, nil
}

func (p *fakePublisher) last() []collector.Article {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return nil
	}
	return p.published[len(p.published)-1]
}

type fakeRecorder struct {
	runs []storage.SourceRun
	err  error
}

func (r *fakeRecorder) RecordRuns(ctx context.Context, runs []storage.SourceRun) error {
	r.runs = runs
	return r.err
}

func makeArticles(prefix string, n int, day int) []collector.Article {
	out := make([]collector.Article, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, collector.Article{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Title:       fmt.Sprintf("%s distinct headline number %d", prefix, i),
			URL:         fmt.Sprintf("https://%s/%d", prefix, i),
			PublishedAt: time.Date(2025, 1, day, i, 0, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	return out
}

func TestRunToleratesPartialFailure(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", items: makeArticles("a", 5, 1)},
		&fakeFetcher{name: "broken", err: errors.New("upstream down")},
		&fakeFetcher{name: "b", items: makeArticles("b", 5, 2)},
	}, processor.NewProcessor(200), pub)

	report, err := agg.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Published)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, pub.last(), 10)
	assert.Equal(t, "upstream down", report.Sources[1].Error)
	assert.Equal(t, 5, report.Sources[2].Count)
}

func TestRunRecoversPanickingSource(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", items: makeArticles("a", 5, 1)},
		&fakeFetcher{name: "boom", items: makeArticles("x", 3, 1), panic: true},
		&fakeFetcher{name: "b", items: makeArticles("b", 5, 2)},
	}, processor.NewProcessor(200), pub)

	report, err := agg.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, pub.last(), 10)
	assert.Contains(t, report.Sources[1].Error, "panic")
	assert.Zero(t, report.Sources[1].Count)
}

func TestRunSourceTimeoutDegradesToEmpty(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "slow", items: makeArticles("s", 2, 1), delay: time.Minute},
		&fakeFetcher{name: "fast", items: makeArticles("f", 4, 1)},
	}, processor.NewProcessor(200), pub, WithSourceTimeout(50*time.Millisecond))

	report, err := agg.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, pub.last(), 4)
	assert.NotEmpty(t, report.Sources[0].Error)
}

func TestRunEndToEndFirstSeenWins(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		// 第一个数据源最后完成，但仍按注册顺序参与去重
		&fakeFetcher{name: "one", delay: 30 * time.Millisecond, items: []collector.Article{
			{ID: "one-1", URL: "https://a/1", Title: "Senate Passes Bill", PublishedAt: "2025-01-02T10:00:00Z"},
		}},
		&fakeFetcher{name: "two", items: []collector.Article{
			{ID: "two-2", URL: "https://b/2", Title: "senate passes bill", PublishedAt: "2025-01-01T10:00:00Z"},
		}},
	}, processor.NewProcessor(200), pub)

	_, err := agg.RunOnce(context.Background())
	require.NoError(t, err)
	got := pub.last()
	require.Len(t, got, 1)
	assert.Equal(t, "one-1", got[0].ID)
	assert.Equal(t, "2025-01-02T10:00:00Z", got[0].PublishedAt)
}

func TestRunRankingAndTruncation(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", items: makeArticles("a", 20, 1)},
		&fakeFetcher{name: "b", items: makeArticles("b", 20, 3)},
		&fakeFetcher{name: "c", items: makeArticles("c", 20, 2)},
	}, processor.NewProcessor(25), pub)

	report, err := agg.RunOnce(context.Background())
	require.NoError(t, err)
	got := pub.last()
	require.Len(t, got, 25)
	assert.Equal(t, 25, report.Stats.Published)
	for i := 1; i < len(got); i++ {
		prev, _ := got[i-1].PublishedTime()
		cur, _ := got[i].PublishedTime()
		assert.False(t, cur.After(prev), "index %d", i)
	}
}

func TestRunWithNothingCollectedKeepsPreviousSnapshot(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", err: collector.ErrMissingAPIKey},
		&fakeFetcher{name: "b", err: errors.New("down")},
	}, processor.NewProcessor(200), pub)

	report, err := agg.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrNoArticles)
	assert.False(t, report.Published)
	assert.True(t, report.Sources[0].Skipped)
	assert.Empty(t, pub.published)
}

func TestRunSurfacesPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	rec := &fakeRecorder{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", items: makeArticles("a", 2, 1)},
	}, processor.NewProcessor(200), pub, WithRecorder(rec))

	report, err := agg.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, err.Error(), report.Error)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, "a", rec.runs[0].Code)
	assert.Equal(t, 2, rec.runs[0].Count)
}
