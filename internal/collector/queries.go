package collector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed 一个 RSS 订阅源
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// Queries 各数据源固定的子查询集合；YAML 中未出现的字段沿用默认值
type Queries struct {
	NewsAPIOrgKeywords    []string `yaml:"newsapi_org_keywords"`
	GNewsTopics           []string `yaml:"gnews_topics"`
	TheNewsAPICategories  []string `yaml:"thenewsapi_categories"`
	NewsDataCategories    []string `yaml:"newsdata_categories"`
	NewsAPIAIKeyword      string   `yaml:"newsapi_ai_keyword"`
	APITubeQuery          string   `yaml:"apitube_query"`
	Subreddits            []string `yaml:"subreddits"`
	RedditExcludeKeywords []string `yaml:"reddit_exclude_keywords"`
	HackerNewsMaxItems    int      `yaml:"hackernews_max_items"`
	RSSFeeds              []Feed   `yaml:"rss_feeds"`
}

func DefaultQueries() Queries {
	return Queries{
		NewsAPIOrgKeywords:   []string{"Russia", "China", "Middle East", "Ukraine", "Israel", "Iran", "Syria"},
		GNewsTopics:          []string{"breaking-news", "world", "nation"},
		TheNewsAPICategories: []string{"politics", "general", "world"},
		NewsDataCategories:   []string{"politics", "top", "world"},
		NewsAPIAIKeyword:     "politics OR breaking OR government OR military",
		APITubeQuery:         "politics OR breaking",
		Subreddits: []string{
			"news", "worldnews", "breakingnews", "qualitynews", "inthenews",
			"AnythingGoesNews", "politics", "PoliticalDiscussion", "NeutralPolitics",
			"geopolitics", "worldevents", "technology", "technews", "tech",
			"science", "Futurology", "business", "Economics", "OutOfTheLoop",
			"TrueReddit", "Journalism", "fednews", "law", "anime_titties",
		},
		RedditExcludeKeywords: []string{
			"movie", "film", "actor", "actress", "celebrity", "album", "song", "music",
			"concert", "tour", "grammy", "oscar", "emmy", "nfl", "nba", "mlb", "nhl",
			"soccer", "football", "basketball", "baseball", "hockey", "sports", "game",
			"playoff", "championship", "super bowl", "world series", "world cup",
		},
		HackerNewsMaxItems: 30,
		RSSFeeds: []Feed{
			{Name: "bbc-world", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Category: "world"},
			{Name: "npr-politics", URL: "https://feeds.npr.org/1014/rss.xml", Category: "politics"},
		},
	}
}

// LoadQueries 读取 YAML 覆盖默认子查询；path 为空时直接返回默认值
func LoadQueries(path string) (Queries, error) {
	q := DefaultQueries()
	if path == "" {
		return q, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return q, fmt.Errorf("read queries file: %w", err)
	}

	var override Queries
	if err := yaml.Unmarshal(data, &override); err != nil {
		return q, fmt.Errorf("parse queries file: %w", err)
	}
	q.merge(override)
	return q, nil
}

func (q *Queries) merge(o Queries) {
	if len(o.NewsAPIOrgKeywords) > 0 {
		q.NewsAPIOrgKeywords = o.NewsAPIOrgKeywords
	}
	if len(o.GNewsTopics) > 0 {
		q.GNewsTopics = o.GNewsTopics
	}
	if len(o.TheNewsAPICategories) > 0 {
		q.TheNewsAPICategories = o.TheNewsAPICategories
	}
	if len(o.NewsDataCategories) > 0 {
		q.NewsDataCategories = o.NewsDataCategories
	}
	if o.NewsAPIAIKeyword != "" {
		q.NewsAPIAIKeyword = o.NewsAPIAIKeyword
	}
	if o.APITubeQuery != "" {
		q.APITubeQuery = o.APITubeQuery
	}
	if len(o.Subreddits) > 0 {
		q.Subreddits = o.Subreddits
	}
	if len(o.RedditExcludeKeywords) > 0 {
		q.RedditExcludeKeywords = o.RedditExcludeKeywords
	}
	if o.HackerNewsMaxItems > 0 {
		q.HackerNewsMaxItems = o.HackerNewsMaxItems
	}
	if len(o.RSSFeeds) > 0 {
		q.RSSFeeds = o.RSSFeeds
	}
}
