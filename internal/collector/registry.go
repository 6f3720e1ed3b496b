package collector

import (
	"net/http"
	"strings"
	"time"
)

// Credentials 各带 key 数据源的凭证，缺失的数据源本轮贡献为空
type Credentials struct {
	NewsAPIOrg string
	GNews      string
	TheNewsAPI string
	NewsData   string
	NewsAPIAI  string
	APITube    string
}

// NewFetchers 按固定注册顺序返回所有启用的数据源。
// 顺序决定去重时谁先被看到，不能依赖完成顺序。
func NewFetchers(creds Credentials, q Queries, client *http.Client, disabled []string) []Fetcher {
	all := []Fetcher{
		&NewsAPIOrgFetcher{APIKey: creds.NewsAPIOrg, Keywords: q.NewsAPIOrgKeywords, Client: client},
		&GNewsFetcher{APIKey: creds.GNews, Topics: q.GNewsTopics, Client: client},
		&TheNewsAPIFetcher{APIKey: creds.TheNewsAPI, Categories: q.TheNewsAPICategories, Client: client},
		&NewsDataFetcher{APIKey: creds.NewsData, Categories: q.NewsDataCategories, Client: client},
		&NewsAPIAIFetcher{APIKey: creds.NewsAPIAI, Keyword: q.NewsAPIAIKeyword, Client: client},
		&APITubeFetcher{APIKey: creds.APITube, Query: q.APITubeQuery, Client: client},
		&RedditFetcher{Subreddits: q.Subreddits, ExcludeKeywords: q.RedditExcludeKeywords, Client: client},
		&HackerNewsFetcher{MaxItems: q.HackerNewsMaxItems, Client: client},
		&RSSFetcher{Feeds: q.RSSFeeds, Timeout: clientTimeout(client)},
	}

	skip := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		skip[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	out := make([]Fetcher, 0, len(all))
	for _, f := range all {
		if _, ok := skip[f.Name()]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func clientTimeout(c *http.Client) time.Duration {
	if c == nil {
		return 0
	}
	return c.Timeout
}
