package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

const newsAPIOrgBaseURL = "https://newsapi.org/v2"

// NewsAPIOrgFetcher 抓取 NewsAPI.org：美国政治头条 + 若干国际关键词
type NewsAPIOrgFetcher struct {
	APIKey   string
	Keywords []string
	Client   *http.Client
	BaseURL  string
}

func (f *NewsAPIOrgFetcher) Name() string {
	return "newsapi_org"
}

type newsAPIOrgResponse struct {
	Status   string              `json:"status"`
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Articles []newsAPIOrgArticle `json:"articles"`
}

type newsAPIOrgArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (f *NewsAPIOrgFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = newsAPIOrgBaseURL
	}

	var (
		out  []Article
		errs []error
	)

	headlines := url.Values{}
	headlines.Set("country", "us")
	headlines.Set("category", "politics")
	headlines.Set("language", "en")
	headlines.Set("pageSize", "50")
	items, err := f.query(ctx, base+"/top-headlines?"+headlines.Encode(), "", "US Politics")
	if err != nil {
		slog.Warn("newsapi.org sub-query failed", "source", f.Name(), "query", "top-headlines", "error", err)
		errs = append(errs, err)
	}
	out = append(out, items...)

	for _, kw := range f.Keywords {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		q := url.Values{}
		q.Set("q", kw)
		q.Set("language", "en")
		q.Set("sortBy", "publishedAt")
		q.Set("pageSize", "15")
		items, err := f.query(ctx, base+"/everything?"+q.Encode(), kw, kw)
		if err != nil {
			slog.Warn("newsapi.org sub-query failed", "source", f.Name(), "query", kw, "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, items...)
	}

	return out, errors.Join(errs...)
}

func (f *NewsAPIOrgFetcher) query(ctx context.Context, endpoint, subquery, category string) ([]Article, error) {
	var resp newsAPIOrgResponse
	err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{
		url:    endpoint,
		header: http.Header{"X-Api-Key": []string{f.APIKey}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("provider error %s: %s", resp.Code, resp.Message)
	}
	if resp.Articles == nil {
		return nil, errors.New("response has no articles field")
	}

	out := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		// 已下架内容 NewsAPI 用 "[Removed]" 占位
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		src := Source{Name: a.Source.Name}
		if a.Source.ID != nil {
			src.ID = *a.Source.ID
		}
		out = append(out, Article{
			ID:          BuildID("newsapi-org", subquery, a.URL),
			Title:       cleanText(a.Title),
			Description: cleanText(a.Description),
			URL:         a.URL,
			ImageURL:    optional(a.URLToImage),
			PublishedAt: normalizeTime(a.PublishedAt),
			Source:      src,
			Author:      optional(a.Author),
			Content:     optional(a.Content),
			Category:    category,
		})
	}
	return out, nil
}
