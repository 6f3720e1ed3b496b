package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxResponseBytes     = 4 << 20 // 4MB
	defaultClientTimeout = 20 * time.Second
	userAgent            = "HeadlineHubBot/1.0"
)

// errNotJSON 上游返回了非 JSON 内容（例如被拦截时的 HTML 页面）
var errNotJSON = errors.New("response is not json")

// NewHTTPClient 返回带单次请求超时的客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &http.Client{Timeout: timeout}
}

func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return NewHTTPClient(0)
}

type jsonRequest struct {
	method      string
	url         string
	header      http.Header
	body        any
	requireJSON bool
}

// doJSON 发送请求并把 2xx 响应解码到 out
func doJSON(ctx context.Context, client *http.Client, r jsonRequest, out any) error {
	method := r.method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.body != nil {
		bs, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", redact(err))
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return redact(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if r.requireJSON && !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return errNotJSON
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redact 去掉 *url.Error 中携带的完整 URL，避免把 query 里的 key 写进日志
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s %s: %w", uerr.Op, stripQuery(uerr.URL), uerr.Err)
	}
	return err
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// sleepCtx 在 ctx 取消时提前返回
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
