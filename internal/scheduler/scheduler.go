package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 5 * time.Minute

// ErrRunInProgress 已有一轮采集在执行
var ErrRunInProgress = errors.New("aggregation already in progress")

// Scheduler 负责触发采集：cron 定时触发与手动触发共用同一个运行标记，不会重叠执行
type Scheduler struct {
	cron       *cron.Cron
	agg        *Aggregator
	runTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup
	last    atomic.Pointer[RunReport]
}

func New(spec string, agg *Aggregator, runTimeout time.Duration) (*Scheduler, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       c,
		agg:        agg,
		runTimeout: runTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}

	if _, err := c.AddFunc(spec, s.runScheduled); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// Start 启动 cron；startupDelay > 0 时延迟执行首轮采集
func (s *Scheduler) Start(startupDelay time.Duration) {
	s.cron.Start()
	if startupDelay > 0 {
		time.AfterFunc(startupDelay, s.runScheduled)
	}
}

// Stop 停止 cron，取消正在执行的采集并等待其退出
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// Trigger 异步启动一轮采集并立即返回 run id
func (s *Scheduler) Trigger() (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}
	runID := uuid.NewString()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.execute(runID)
	}()
	return runID, nil
}

// LastReport 最近一次完成的采集报告
func (s *Scheduler) LastReport() (RunReport, bool) {
	r := s.last.Load()
	if r == nil {
		return RunReport{}, false
	}
	return *r, true
}

func (s *Scheduler) runScheduled() {
	if !s.running.CompareAndSwap(false, true) {
		slog.Info("skip scheduled run, previous run still in progress")
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer s.running.Store(false)
	s.execute(uuid.NewString())
}

func (s *Scheduler) execute(runID string) {
	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	report, err := s.agg.Run(ctx, runID)
	s.last.Store(&report)
	if err != nil {
		slog.Error("aggregation run failed", "run_id", runID, "error", err)
	}
}

// cronLogger 把 robfig/cron 的日志转到 slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
