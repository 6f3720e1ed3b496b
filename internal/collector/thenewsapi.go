package collector

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
)

const theNewsAPIBaseURL = "https://api.thenewsapi.com/v1"

// TheNewsAPIFetcher 按分类抓取 TheNewsAPI.com
type TheNewsAPIFetcher struct {
	APIKey     string
	Categories []string
	Client     *http.Client
	BaseURL    string
}

func (f *TheNewsAPIFetcher) Name() string {
	return "thenewsapi"
}

type theNewsAPIResponse struct {
	Data []struct {
		UUID        string `json:"uuid"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Snippet     string `json:"snippet"`
		URL         string `json:"url"`
		ImageURL    string `json:"image_url"`
		PublishedAt string `json:"published_at"`
		Source      string `json:"source"`
	} `json:"data"`
}

func (f *TheNewsAPIFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = theNewsAPIBaseURL
	}

	var (
		out  []Article
		errs []error
	)
	for _, category := range f.Categories {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		q := url.Values{}
		q.Set("api_token", f.APIKey)
		q.Set("locale", "us")
		q.Set("language", "en")
		q.Set("categories", category)
		q.Set("limit", "20")

		var resp theNewsAPIResponse
		if err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{url: base + "/news/top?" + q.Encode()}, &resp); err != nil {
			slog.Warn("thenewsapi sub-query failed", "source", f.Name(), "query", category, "error", err)
			errs = append(errs, err)
			continue
		}
		if resp.Data == nil {
			err := errors.New("response has no data field")
			slog.Warn("thenewsapi sub-query failed", "source", f.Name(), "query", category, "error", err)
			errs = append(errs, err)
			continue
		}

		for _, a := range resp.Data {
			if a.UUID == "" || a.URL == "" || a.Title == "" {
				continue
			}
			name := a.Source
			if name == "" {
				name = "TheNewsAPI"
			}
			out = append(out, Article{
				ID:          BuildID("thenewsapi", category, a.UUID),
				Title:       cleanText(a.Title),
				Description: cleanText(a.Description),
				URL:         a.URL,
				ImageURL:    optional(a.ImageURL),
				PublishedAt: normalizeTime(a.PublishedAt),
				Source:      Source{Name: name},
				Content:     optional(cleanText(a.Snippet)),
				Category:    category,
			})
		}
	}
	return out, errors.Join(errs...)
}
