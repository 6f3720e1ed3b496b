package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const newsDataBaseURL = "https://newsdata.io/api/1"

// NewsDataFetcher 单次请求 NewsData.io，分类合并为一个参数
type NewsDataFetcher struct {
	APIKey     string
	Categories []string
	Client     *http.Client
	BaseURL    string
}

func (f *NewsDataFetcher) Name() string {
	return "newsdata"
}

type newsDataResponse struct {
	Status  string `json:"status"`
	Results []struct {
		ArticleID   string   `json:"article_id"`
		Title       string   `json:"title"`
		Link        string   `json:"link"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		ImageURL    string   `json:"image_url"`
		PubDate     string   `json:"pubDate"`
		SourceID    string   `json:"source_id"`
		Creator     []string `json:"creator"`
		Category    []string `json:"category"`
	} `json:"results"`
}

func (f *NewsDataFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = newsDataBaseURL
	}

	q := url.Values{}
	q.Set("apikey", f.APIKey)
	q.Set("country", "us")
	q.Set("language", "en")
	if len(f.Categories) > 0 {
		q.Set("category", strings.Join(f.Categories, ","))
	}
	q.Set("size", "30")

	var resp newsDataResponse
	if err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{url: base + "/news?" + q.Encode()}, &resp); err != nil {
		return nil, fmt.Errorf("newsdata: %w", err)
	}
	if resp.Results == nil {
		return nil, errors.New("newsdata: response has no results field")
	}

	out := make([]Article, 0, len(resp.Results))
	for _, a := range resp.Results {
		if a.ArticleID == "" || a.Link == "" || a.Title == "" {
			continue
		}
		name := a.SourceID
		if name == "" {
			name = "NewsData"
		}
		var author *string
		if len(a.Creator) > 0 {
			author = optional(a.Creator[0])
		}
		category := "general"
		if len(a.Category) > 0 && a.Category[0] != "" {
			category = a.Category[0]
		}
		out = append(out, Article{
			ID:          BuildID("newsdata", "", a.ArticleID),
			Title:       cleanText(a.Title),
			Description: cleanText(a.Description),
			URL:         a.Link,
			ImageURL:    optional(a.ImageURL),
			PublishedAt: normalizeTime(a.PubDate),
			Source:      Source{Name: name},
			Author:      author,
			Content:     optional(cleanText(a.Content)),
			Category:    category,
		})
	}
	return out, nil
}
