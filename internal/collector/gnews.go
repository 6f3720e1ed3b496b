package collector

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
)

const gnewsBaseURL = "https://gnews.io/api/v4"

// GNewsFetcher 按 topic 抓取 GNews.io 头条
type GNewsFetcher struct {
	APIKey  string
	Topics  []string
	Client  *http.Client
	BaseURL string
}

func (f *GNewsFetcher) Name() string {
	return "gnews"
}

type gnewsResponse struct {
	Errors   []string       `json:"errors"`
	Articles []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func (f *GNewsFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = gnewsBaseURL
	}

	var (
		out  []Article
		errs []error
	)
	for _, topic := range f.Topics {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		q := url.Values{}
		q.Set("category", topic)
		q.Set("lang", "en")
		q.Set("country", "us")
		q.Set("max", "15")
		q.Set("apikey", f.APIKey)

		var resp gnewsResponse
		if err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{url: base + "/top-headlines?" + q.Encode()}, &resp); err != nil {
			slog.Warn("gnews sub-query failed", "source", f.Name(), "query", topic, "error", err)
			errs = append(errs, err)
			continue
		}
		if resp.Articles == nil {
			err := errors.New("response has no articles field")
			slog.Warn("gnews sub-query failed", "source", f.Name(), "query", topic, "error", err, "provider_errors", resp.Errors)
			errs = append(errs, err)
			continue
		}

		for _, a := range resp.Articles {
			if a.URL == "" || a.Title == "" {
				continue
			}
			out = append(out, Article{
				ID:          BuildID("gnews", topic, a.URL),
				Title:       cleanText(a.Title),
				Description: cleanText(a.Description),
				URL:         a.URL,
				ImageURL:    optional(a.Image),
				PublishedAt: normalizeTime(a.PublishedAt),
				Source:      Source{Name: a.Source.Name, ID: a.Source.URL},
				Author:      nil,
				Content:     optional(a.Content),
				Category:    topic,
			})
		}
	}
	return out, errors.Join(errs...)
}
