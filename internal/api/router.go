package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/HeadlineHub/internal/scheduler"
	"github.com/LJTian/HeadlineHub/internal/storage"
)

const defaultCacheMaxAge = 300

// SnapshotReader 读取已发布快照的原始 JSON
type SnapshotReader interface {
	Raw(ctx context.Context) ([]byte, error)
}

// Runner 手动触发采集并查询最近一次结果
type Runner interface {
	Trigger() (string, error)
	LastReport() (scheduler.RunReport, bool)
}

// ChannelLister 数据源登记表，未配置 Postgres 时为 nil
type ChannelLister interface {
	ListChannels(ctx context.Context) ([]storage.Channel, error)
}

type Server struct {
	snapshots   SnapshotReader
	runner      Runner
	channels    ChannelLister
	cacheMaxAge int
	now         func() time.Time
}

type Option func(*Server)

// WithCacheMaxAge 读接口 Cache-Control 的 max-age 秒数
func WithCacheMaxAge(seconds int) Option {
	return func(s *Server) {
		if seconds >= 0 {
			s.cacheMaxAge = seconds
		}
	}
}

func WithChannels(c ChannelLister) Option {
	return func(s *Server) {
		s.channels = c
	}
}

func NewServer(snapshots SnapshotReader, runner Runner, opts ...Option) *Server {
	s := &Server{
		snapshots:   snapshots,
		runner:      runner,
		cacheMaxAge: defaultCacheMaxAge,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	r.GET("/trigger-update", s.triggerUpdate)
	r.POST("/trigger-update", s.triggerUpdate)

	v := r.Group("/api")
	{
		v.GET("/news", s.latestNews)
		v.GET("/status", s.status)
		v.GET("/sources", s.listSources)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// latestNews 原样返回快照；键不存在或存储出错时返回空快照，不向调用方暴露错误
func (s *Server) latestNews(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(s.cacheMaxAge))

	raw, err := s.snapshots.Raw(c.Request.Context())
	if err == nil && len(raw) > 0 {
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("read snapshot failed", "error", err)
	}
	c.JSON(http.StatusOK, storage.EmptySnapshot(s.now()))
}

func (s *Server) triggerUpdate(c *gin.Context) {
	runID, err := s.runner.Trigger()
	if errors.Is(err, scheduler.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "conflict",
			"message": "an update is already running",
		})
		return
	}
	if err != nil {
		slog.Error("trigger update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	slog.Info("manual update triggered", "run_id", runID)
	c.JSON(http.StatusAccepted, gin.H{
		"code":    "ok",
		"message": "update started",
		"data":    gin.H{"runId": runID},
	})
}

func (s *Server) status(c *gin.Context) {
	report, ok := s.runner.LastReport()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    report,
	})
}

func (s *Server) listSources(c *gin.Context) {
	if s.channels == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "source registry not configured",
		})
		return
	}
	list, err := s.channels.ListChannels(c.Request.Context())
	if err != nil {
		slog.Error("list sources failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    list,
	})
}
