package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const apiTubeBaseURL = "https://api.apitube.io/v1"

// APITubeFetcher 抓取 APITube.io 的全量检索接口
type APITubeFetcher struct {
	APIKey  string
	Query   string
	Client  *http.Client
	BaseURL string
}

func (f *APITubeFetcher) Name() string {
	return "apitube"
}

type apiTubeResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Author      string `json:"author"`
		Content     string `json:"content"`
		Source      *struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (f *APITubeFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = apiTubeBaseURL
	}

	q := url.Values{}
	q.Set("q", f.Query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "30")

	var resp apiTubeResponse
	err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{
		url:    base + "/news/everything?" + q.Encode(),
		header: http.Header{"X-Api-Key": []string{f.APIKey}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("apitube: %w", err)
	}
	if resp.Articles == nil {
		return nil, errors.New("apitube: response has no articles field")
	}

	out := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.URL == "" || a.Title == "" {
			continue
		}
		name := "APITube"
		if a.Source != nil && a.Source.Name != "" {
			name = a.Source.Name
		}
		out = append(out, Article{
			ID:          BuildID("apitube", "", a.URL),
			Title:       cleanText(a.Title),
			Description: cleanText(a.Description),
			URL:         a.URL,
			ImageURL:    optional(a.URLToImage),
			PublishedAt: normalizeTime(a.PublishedAt),
			Source:      Source{Name: name},
			Author:      optional(a.Author),
			Content:     optional(cleanText(a.Content)),
			Category:    "general",
		})
	}
	return out, nil
}
