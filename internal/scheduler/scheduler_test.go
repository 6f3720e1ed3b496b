package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/HeadlineHub/internal/collector"
	"github.com/LJTian/HeadlineHub/internal/processor"
)

func TestNewRejectsBadCronSpec(t *testing.T) {
	_, err := New("not a cron", NewAggregator(nil, processor.NewProcessor(0), &fakePublisher{}), 0)
	assert.Error(t, err)
}

func TestTriggerRunsAsyncAndRejectsOverlap(t *testing.T) {
	block := make(chan struct{})
	pub := &fakePublisher{}
	agg := NewAggregator([]collector.Fetcher{
		&fakeFetcher{name: "a", items: makeArticles("a", 3, 1), block: block},
	}, processor.NewProcessor(200), pub)

	s, err := New("@every 1h", agg, time.Minute)
	require.NoError(t, err)

	_, ok := s.LastReport()
	assert.False(t, ok)

	runID, err := s.Trigger()
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	_, err = s.Trigger()
	assert.ErrorIs(t, err, ErrRunInProgress)

	// 定时触发在运行期间同样被跳过
	s.runScheduled()

	close(block)
	require.Eventually(t, func() bool {
		r, ok := s.LastReport()
		return ok && r.RunID == runID
	}, 2*time.Second, 10*time.Millisecond)

	report, _ := s.LastReport()
	assert.True(t, report.Published)
	assert.Len(t, pub.last(), 3)
	assert.Len(t, pub.published, 1)

	require.Eventually(t, func() bool { return !s.running.Load() }, time.Second, 5*time.Millisecond)
	_, err = s.Trigger()
	assert.NoError(t, err)
	s.Stop()
}
