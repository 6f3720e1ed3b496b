package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"
)

const rssRequestTimeout = 15 * time.Second

// RSSFetcher 用 colly 的 XML 回调解析若干 RSS 源，无需凭证
type RSSFetcher struct {
	Feeds   []Feed
	Timeout time.Duration
}

func (r *RSSFetcher) Name() string {
	return "rss"
}

func (r *RSSFetcher) Fetch(ctx context.Context) ([]Article, error) {
	var (
		out  []Article
		errs []error
	)
	for _, feed := range r.Feeds {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		items, err := r.fetchFeed(feed)
		if err != nil {
			slog.Warn("rss feed failed", "source", r.Name(), "feed", feed.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", feed.Name, err))
			continue
		}
		out = append(out, items...)
	}
	return out, errors.Join(errs...)
}

func (r *RSSFetcher) fetchFeed(feed Feed) ([]Article, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = rssRequestTimeout
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(timeout)

	var (
		items    []Article
		channel  string
		visitErr error
	)

	c.OnXML("//channel/title", func(e *colly.XMLElement) {
		if channel == "" {
			channel = e.Text
		}
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		link := e.ChildText("link")
		title := cleanText(e.ChildText("title"))
		if link == "" || title == "" {
			return
		}
		key := e.ChildText("guid")
		if key == "" {
			key = link
		}
		items = append(items, Article{
			ID:          BuildID("rss", feed.Name, key),
			Title:       title,
			Description: cleanText(e.ChildText("description")),
			URL:         link,
			ImageURL:    optional(e.ChildAttr("enclosure", "url")),
			PublishedAt: normalizeTime(e.ChildText("pubDate")),
			Author:      optional(e.ChildText("author")),
			Category:    feed.Category,
		})
	})

	c.OnError(func(resp *colly.Response, err error) {
		if resp != nil && resp.StatusCode != 0 {
			visitErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			return
		}
		visitErr = redact(err)
	})

	if err := c.Visit(feed.URL); err != nil && visitErr == nil {
		visitErr = redact(err)
	}
	if visitErr != nil {
		return nil, visitErr
	}

	name := channel
	if name == "" {
		name = feed.Name
	}
	for i := range items {
		items[i].Source = Source{Name: name, ID: feed.Name}
	}
	return items, nil
}
