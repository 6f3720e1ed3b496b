package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	hnBaseURL         = "https://hacker-news.firebaseio.com/v0"
	hnItemPageURL     = "https://news.ycombinator.com/item?id="
	hnDefaultMaxItems = 30
	hnConcurrency     = 10
)

// HackerNewsFetcher 通过官方 Firebase API 抓取 Hacker News 热门故事
type HackerNewsFetcher struct {
	MaxItems int
	Client   *http.Client
	BaseURL  string
}

func (h *HackerNewsFetcher) Name() string {
	return "hackernews"
}

type hnItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
}

func (h *HackerNewsFetcher) Fetch(ctx context.Context) ([]Article, error) {
	base := h.BaseURL
	if base == "" {
		base = hnBaseURL
	}
	limit := h.MaxItems
	if limit <= 0 {
		limit = hnDefaultMaxItems
	}
	client := clientOrDefault(h.Client)

	var ids []int
	if err := doJSON(ctx, client, jsonRequest{url: base + "/topstories.json"}, &ids); err != nil {
		return nil, fmt.Errorf("hackernews: fetch top stories: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	// 按排名位置写入，结果顺序与榜单一致
	var (
		wg    sync.WaitGroup
		sem   = make(chan struct{}, hnConcurrency)
		items = make([]*hnItem, len(ids))
		errs  = make([]error, len(ids))
	)
	for i, id := range ids {
		wg.Add(1)
		go func(idx, id int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			var it hnItem
			if err := doJSON(ctx, client, jsonRequest{url: fmt.Sprintf("%s/item/%d.json", base, id)}, &it); err != nil {
				slog.Debug("hackernews item failed", "source", h.Name(), "item", id, "error", err)
				errs[idx] = fmt.Errorf("item %d: %w", id, err)
				return
			}
			items[idx] = &it
		}(i, id)
	}
	wg.Wait()

	results := make([]Article, 0, len(items))
	for _, it := range items {
		if it == nil || it.Title == "" || it.Type != "story" || it.Dead || it.Deleted {
			continue
		}
		results = append(results, hnToArticle(*it))
	}

	if len(results) == 0 {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

func hnToArticle(it hnItem) Article {
	discuss := hnItemPageURL + strconv.Itoa(it.ID)
	itemURL := it.URL
	if itemURL == "" {
		itemURL = discuss
	}
	desc := fmt.Sprintf("%d points, %d comments on Hacker News", it.Score, it.Descendants)
	content := optional(cleanText(it.Text))
	if content == nil {
		content = optional("Hacker News discussion: " + discuss)
	}
	return Article{
		ID:          BuildID("hackernews", "", strconv.Itoa(it.ID)),
		Title:       cleanText(it.Title),
		Description: desc,
		URL:         itemURL,
		PublishedAt: formatTime(time.Unix(it.Time, 0)),
		Source:      Source{Name: "Hacker News", ID: "hackernews"},
		Author:      optional(it.By),
		Content:     content,
		Category:    "technology",
	}
}
