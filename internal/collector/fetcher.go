package collector

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMissingAPIKey 表示数据源未配置凭证，本轮贡献为空
var ErrMissingAPIKey = errors.New("api key not configured")

// Source 文章来源
type Source struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Article 统一后的文章结构，JSON 字段名与前端保持一致
type Article struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	ImageURL    *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Content     *string `json:"content"`
	Category    string  `json:"category,omitempty"`
}

// PublishedTime 解析 PublishedAt，无法解析时 ok 为 false
func (a Article) PublishedTime() (time.Time, bool) {
	t, err := parseTime(a.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Article, error)
}

// BuildID 生成 {provider}-{subquery}-{natural key}，subquery 为空时省略
func BuildID(provider, subquery, key string) string {
	parts := make([]string, 0, 3)
	parts = append(parts, provider)
	if subquery != "" {
		parts = append(parts, subquery)
	}
	parts = append(parts, key)
	return strings.Join(parts, "-")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
