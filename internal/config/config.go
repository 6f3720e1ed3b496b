package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LJTian/HeadlineHub/internal/collector"
)

type Config struct {
	AppPort string

	StoreBackend string
	RedisURL     string
	RedisAddr    string
	PostgresDSN  string
	SnapshotKey  string

	MaxArticles     int
	CronSpec        string
	StartupDelay    time.Duration
	FetchTimeout    time.Duration
	SourceTimeout   time.Duration
	ReadCacheMaxAge int

	// 全站 Basic Auth，两项都配置时才启用
	BasicAuthUser string
	BasicAuthPass string

	WebRoot     string
	CORSOrigins []string

	QueriesFile     string
	DisabledSources []string

	LogLevel  string
	LogFormat string

	Credentials collector.Credentials
}

// Load 从环境变量读取配置；当前目录存在 .env 时先加载它，已有环境变量优先
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg := &Config{
		AppPort: getEnv("APP_PORT", "9000"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "redis")),
		RedisURL:     getEnv("REDIS_URL", ""),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		SnapshotKey:  getEnv("SNAPSHOT_KEY", "latest-articles"),

		MaxArticles:     getEnvInt("MAX_ARTICLES", 200),
		CronSpec:        getEnv("CRON_SPEC", "*/30 * * * *"),
		StartupDelay:    getEnvDuration("STARTUP_DELAY", 15*time.Second),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		SourceTimeout:   getEnvDuration("SOURCE_TIMEOUT", 2*time.Minute),
		ReadCacheMaxAge: getEnvInt("READ_CACHE_MAX_AGE", 300),

		BasicAuthUser: getEnv("APP_BASIC_USER", ""),
		BasicAuthPass: getEnv("APP_BASIC_PASS", ""),

		WebRoot:     getEnv("WEB_ROOT", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS"),

		QueriesFile:     getEnv("QUERIES_FILE", ""),
		DisabledSources: getEnvList("DISABLED_SOURCES"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Credentials: collector.Credentials{
			NewsAPIOrg: getEnv("NEWSAPI_ORG_KEY", ""),
			GNews:      getEnv("GNEWS_KEY", ""),
			TheNewsAPI: getEnv("THENEWSAPI_KEY", ""),
			NewsData:   getEnv("NEWSDATA_KEY", ""),
			NewsAPIAI:  getEnv("NEWSAPI_AI_KEY", ""),
			APITube:    getEnv("APITUBE_KEY", ""),
		},
	}

	slog.Info("config loaded",
		"port", cfg.AppPort,
		"store", cfg.StoreBackend,
		"cron", cfg.CronSpec,
		"max_articles", cfg.MaxArticles,
	)
	return cfg
}

// RedisTarget REDIS_URL 优先，否则使用 REDIS_ADDR
func (c *Config) RedisTarget() string {
	if c.RedisURL != "" {
		return c.RedisURL
	}
	return c.RedisAddr
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("invalid int env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// getEnvDuration 支持 "90s" 这类写法，纯数字按秒处理
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// getEnvList 逗号分隔，忽略空项
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
