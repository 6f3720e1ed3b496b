package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "8080")
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetEnvDuration(t *testing.T) {
	const key = "TEST_DURATION"

	t.Setenv(key, "45")
	if got := getEnvDuration(key, time.Second); got != 45*time.Second {
		t.Fatalf("plain seconds: got %v", got)
	}

	t.Setenv(key, "1m30s")
	if got := getEnvDuration(key, time.Second); got != 90*time.Second {
		t.Fatalf("duration string: got %v", got)
	}

	t.Setenv(key, "soon")
	if got := getEnvDuration(key, time.Second); got != time.Second {
		t.Fatalf("invalid value should fall back to default, got %v", got)
	}
}

func TestGetEnvIntAndList(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Fatalf("getEnvInt invalid = %d, want 7", got)
	}
	t.Setenv("TEST_INT", " 12 ")
	if got := getEnvInt("TEST_INT", 7); got != 12 {
		t.Fatalf("getEnvInt = %d, want 12", got)
	}

	t.Setenv("TEST_LIST", " reddit, ,RSS ,")
	want := []string{"reddit", "RSS"}
	if got := getEnvList("TEST_LIST"); !reflect.DeepEqual(got, want) {
		t.Fatalf("getEnvList = %#v, want %#v", got, want)
	}
}

func TestLoadReadsAuthAndPorts(t *testing.T) {
	t.Setenv("APP_PORT", "1234")
	t.Setenv("APP_BASIC_USER", "user")
	t.Setenv("APP_BASIC_PASS", "pass")
	t.Setenv("GNEWS_KEY", "g-key")
	t.Setenv("MAX_ARTICLES", "50")

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.BasicAuthUser != "user" || cfg.BasicAuthPass != "pass" {
		t.Fatalf("BasicAuthUser/Pass not loaded correctly: %+v", cfg)
	}
	if cfg.Credentials.GNews != "g-key" {
		t.Fatalf("GNews key = %q", cfg.Credentials.GNews)
	}
	if cfg.MaxArticles != 50 {
		t.Fatalf("MaxArticles = %d, want 50", cfg.MaxArticles)
	}
}

func TestRedisTargetPrefersURL(t *testing.T) {
	cfg := &Config{RedisAddr: "localhost:6379"}
	if got := cfg.RedisTarget(); got != "localhost:6379" {
		t.Fatalf("RedisTarget = %q", got)
	}
	cfg.RedisURL = "redis://cache:6379/1"
	if got := cfg.RedisTarget(); got != "redis://cache:6379/1" {
		t.Fatalf("RedisTarget = %q", got)
	}
}
