package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound key 不存在
var ErrNotFound = errors.New("key not found")

// KV 快照所需的最小键值接口：整值覆盖写、整值读取
type KV interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend     string
	RedisURL    string
	PostgresDSN string
}

// Store 持有快照所用的 KV 以及可选的 Postgres 数据源登记表
type Store struct {
	KV       KV
	Channels *ChannelRegistry

	redis *redis.Client
}

// NewStore 按 backend 建立 KV。配置了 PostgresDSN 时同时启用数据源登记表。
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendRedis
	}

	s := &Store{}

	var db *gorm.DB
	if opts.PostgresDSN != "" {
		var err error
		db, err = openPostgres(opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s.Channels = NewChannelRegistry(db)
	}

	switch backend {
	case BackendRedis:
		rdb := newRedisClient(opts.RedisURL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("redis ping failed", "error", err)
		}
		s.redis = rdb
		s.KV = NewRedisKV(rdb)
	case BackendPostgres:
		if db == nil {
			return nil, errors.New("postgres backend requires POSTGRES_DSN")
		}
		s.KV = NewPostgresKV(db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// newRedisClient 支持 redis:// URL，解析失败时按 host:port 处理
func newRedisClient(addr string) *redis.Client {
	if addr == "" {
		addr = "localhost:6379"
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	return redis.NewClient(opt)
}

func openPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&KVEntry{}, &Channel{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}
