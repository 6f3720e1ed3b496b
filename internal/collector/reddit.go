package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditDiscussURL   = "https://reddit.com"
	redditUserAgent    = "HeadlineHub News Aggregator/1.0"
	redditDefaultDelay = 100 * time.Millisecond
)

// RedditFetcher 抓取若干新闻/政治类 subreddit 的热帖，无需凭证
type RedditFetcher struct {
	Subreddits      []string
	ExcludeKeywords []string
	// Delay 子查询之间的间隔，避免触发限流；为 0 时使用默认值
	Delay   time.Duration
	Client  *http.Client
	BaseURL string
}

func (f *RedditFetcher) Name() string {
	return "reddit"
}

type redditListing struct {
	Data *struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	Permalink         string  `json:"permalink"`
	Selftext          string  `json:"selftext"`
	IsSelf            bool    `json:"is_self"`
	Stickied          bool    `json:"stickied"`
	Removed           bool    `json:"removed"`
	RemovedByCategory string  `json:"removed_by_category"`
	Thumbnail         string  `json:"thumbnail"`
	Author            string  `json:"author"`
	NumComments       int     `json:"num_comments"`
	CreatedUTC        float64 `json:"created_utc"`
}

func (f *RedditFetcher) Fetch(ctx context.Context) ([]Article, error) {
	base := f.BaseURL
	if base == "" {
		base = redditBaseURL
	}
	delay := f.Delay
	if delay <= 0 {
		delay = redditDefaultDelay
	}
	exclude := make([]string, 0, len(f.ExcludeKeywords))
	for _, kw := range f.ExcludeKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			exclude = append(exclude, kw)
		}
	}

	var (
		out  []Article
		errs []error
	)
	for i, sub := range f.Subreddits {
		if i > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				errs = append(errs, err)
				break
			}
		}

		posts, err := f.fetchSubreddit(ctx, base, sub)
		if err != nil {
			slog.Warn("reddit sub-query failed", "source", f.Name(), "subreddit", sub, "error", err)
			errs = append(errs, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		for _, p := range posts {
			if !keepRedditPost(p, exclude) {
				continue
			}
			out = append(out, redditToArticle(p, sub))
		}
	}
	return out, errors.Join(errs...)
}

func (f *RedditFetcher) fetchSubreddit(ctx context.Context, base, sub string) ([]redditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=20", base, url.PathEscape(sub))
	var listing redditListing
	err := doJSON(ctx, clientOrDefault(f.Client), jsonRequest{
		url:         endpoint,
		header:      http.Header{"User-Agent": []string{redditUserAgent}},
		requireJSON: true,
	}, &listing)
	if err != nil {
		return nil, err
	}
	if listing.Data == nil {
		return nil, errors.New("listing has no data field")
	}
	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		posts = append(posts, c.Data)
	}
	return posts, nil
}

// keepRedditPost 过滤置顶、已删除、空自述帖以及娱乐/体育类标题
func keepRedditPost(p redditPost, exclude []string) bool {
	if p.Stickied || p.Removed || p.RemovedByCategory != "" {
		return false
	}
	if p.ID == "" || p.URL == "" || p.Title == "" {
		return false
	}
	if p.IsSelf && p.Selftext == "" {
		return false
	}
	title := strings.ToLower(p.Title)
	for _, kw := range exclude {
		if strings.Contains(title, kw) {
			return false
		}
	}
	return true
}

func redditToArticle(p redditPost, sub string) Article {
	link := p.URL
	if p.IsSelf || strings.Contains(p.URL, "reddit.com") {
		link = redditDiscussURL + p.Permalink
	}

	var thumb *string
	if strings.HasPrefix(p.Thumbnail, "http") {
		thumb = optional(p.Thumbnail)
	}

	desc := fmt.Sprintf("%d comments on Reddit", p.NumComments)
	content := fmt.Sprintf("Reddit discussion: %d comments", p.NumComments)
	if p.Selftext != "" {
		desc = truncateRunes(p.Selftext, 200)
		content = p.Selftext
	}

	sec := int64(p.CreatedUTC)
	return Article{
		ID:          BuildID("reddit", "", p.ID),
		Title:       strings.TrimSpace(p.Title),
		Description: desc,
		URL:         link,
		ImageURL:    thumb,
		PublishedAt: formatTime(time.Unix(sec, 0)),
		Source:      Source{Name: "r/" + sub, ID: sub},
		Author:      optional(p.Author),
		Content:     optional(content),
		Category:    sub,
	}
}
