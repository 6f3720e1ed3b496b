package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const newsAPIAIBaseURL = "https://eventregistry.org/api/v1"

// NewsAPIAIFetcher 通过 EventRegistry（NewsAPI.ai）的 POST 接口按关键词检索美国来源文章
type NewsAPIAIFetcher struct {
	APIKey  string
	Keyword string
	Client  *http.Client
	BaseURL string
}

func (f *NewsAPIAIFetcher) Name() string {
	return "newsapi_ai"
}

type newsAPIAIRequest struct {
	APIKey            string `json:"apiKey"`
	Keyword           string `json:"keyword"`
	SourceLocationURI string `json:"sourceLocationUri"`
	Lang              string `json:"lang"`
	ArticlesPage      int    `json:"articlesPage"`
	ArticlesCount     int    `json:"articlesCount"`
	ArticlesSortBy    string `json:"articlesSortBy"`
	ResultType        string `json:"resultType"`
}

type newsAPIAIResponse struct {
	Articles *struct {
		Results []struct {
			URI      string `json:"uri"`
			Title    string `json:"title"`
			Body     string `json:"body"`
			URL      string `json:"url"`
			Image    string `json:"image"`
			DateTime string `json:"dateTime"`
			Source   *struct {
				Title string `json:"title"`
			} `json:"source"`
		} `json:"results"`
	} `json:"articles"`
}

func (f *NewsAPIAIFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if f.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := f.BaseURL
	if base == "" {
		base = newsAPIAIBaseURL
	}

	var resp newsAPIAIResponse
	err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{
		method: http.MethodPost,
		url:    base + "/article/getArticles",
		body: newsAPIAIRequest{
			APIKey:            f.APIKey,
			Keyword:           f.Keyword,
			SourceLocationURI: "http://en.wikipedia.org/wiki/United_States",
			Lang:              "eng",
			ArticlesPage:      1,
			ArticlesCount:     30,
			ArticlesSortBy:    "date",
			ResultType:        "articles",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("newsapi.ai: %w", err)
	}
	if resp.Articles == nil || resp.Articles.Results == nil {
		return nil, errors.New("newsapi.ai: response has no articles.results field")
	}

	out := make([]Article, 0, len(resp.Articles.Results))
	for _, a := range resp.Articles.Results {
		if a.URI == "" || a.URL == "" || a.Title == "" {
			continue
		}
		name := "NewsAPI.ai"
		if a.Source != nil && a.Source.Title != "" {
			name = a.Source.Title
		}
		body := cleanText(a.Body)
		out = append(out, Article{
			ID:          BuildID("newsapi-ai", "", a.URI),
			Title:       cleanText(a.Title),
			Description: truncateRunes(body, 200),
			URL:         a.URL,
			ImageURL:    optional(a.Image),
			PublishedAt: normalizeTime(a.DateTime),
			Source:      Source{Name: name},
			Content:     optional(body),
			Category:    "politics",
		})
	}
	return out, nil
}
