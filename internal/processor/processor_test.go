package processor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func art(id, url, title, published string) Article {
	return Article{ID: id, URL: url, Title: title, PublishedAt: published}
}

func TestIsAcceptable(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"Breaking: Senate votes", true},
		{"Noticias de política", false},
		{"À la une", false},
		{"Grüße aus Berlin", false},
		{"Straße gesperrt", false},
		{"İstanbul'da toplantı", false},
		{"Новости дня", false},
		{"今日新闻", false},
		{"ニュース速報", false},
		{"오늘의 뉴스", false},
		{"NOTICIAS DE POLÍTICA", false},
		// 不含特征字符的非英语文本会被放行，属于已知限制
		{"Nyheter fra Oslo", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsAcceptable(c.text), "text %q", c.text)
	}
}

func TestDeduplicateEquivalenceRules(t *testing.T) {
	long := "Federal Reserve announces new interest rate policy for the coming year"
	items := []Article{
		art("1", "https://a/1", "Senate Passes Bill", "2025-01-02T10:00:00Z"),
		art("2", "https://a/1", "SENATE PASSES BILL today", "2025-01-02T10:00:00Z"),
		art("3", "https://b/3", "senate passes bill", "2025-01-01T10:00:00Z"),
		art("4", "https://c/4", long+" - Reuters", "2025-01-01T10:00:00Z"),
		art("5", "https://c/5", long+" - AP", "2025-01-01T10:00:00Z"),
		art("6", "https://d/6", "Short same prefix A", "2025-01-01T10:00:00Z"),
		art("7", "https://d/7", "Short same prefix B", "2025-01-01T10:00:00Z"),
	}

	out := Deduplicate(items)
	ids := make([]string, 0, len(out))
	for _, it := range out {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"1", "4", "6", "7"}, ids)
}

func TestDeduplicatePrefixBoundary(t *testing.T) {
	// 前 50 个字符相同、之后不同：去重
	base := strings.Repeat("Senate debate ", 4)[:50]
	assert.Len(t, Deduplicate([]Article{
		art("1", "u1", base+" continues tonight", ""),
		art("2", "u2", strings.ToUpper(base)+" ends without a vote", ""),
	}), 1)

	// 第 50 个字符之前就不同：保留
	assert.Len(t, Deduplicate([]Article{
		art("1", "u1", base[:40]+"X"+base[41:]+" more", ""),
		art("2", "u2", base+" more", ""),
	}), 2)

	// 15 个字符相同前缀、不同完整标题：不去重
	assert.Len(t, Deduplicate([]Article{
		art("1", "u1", "Breaking update: markets rally", ""),
		art("2", "u2", "Breaking updateXmarkets fall hard", ""),
	}), 2)
}

func TestDeduplicateIdempotentAndOrderPreserving(t *testing.T) {
	var items []Article
	for i := 0; i < 60; i++ {
		items = append(items, art(
			fmt.Sprintf("id-%d", i),
			fmt.Sprintf("https://x/%d", i%17),
			fmt.Sprintf("Headline number %d about the economy and more", i%23),
			"",
		))
	}

	once := Deduplicate(items)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)

	pos := make(map[string]int, len(items))
	for i, it := range items {
		pos[it.ID] = i
	}
	for i := 1; i < len(once); i++ {
		assert.Less(t, pos[once[i-1].ID], pos[once[i].ID])
	}
}

func TestDeduplicateMatchesPairwiseDefinition(t *testing.T) {
	titles := []string{
		"A fairly long headline about budget negotiations in congress",
		"a fairly long headline about budget negotiations in CONGRESS today",
		"Short one",
		"short ONE",
		"Completely different story about weather patterns",
		"Another different story about weather patterns ok",
	}
	var items []Article
	for i := 0; i < 24; i++ {
		items = append(items, art(fmt.Sprintf("%d", i), fmt.Sprintf("u%d", i%5), titles[i%len(titles)], ""))
	}
	assert.Equal(t, pairwiseDedup(items), Deduplicate(items))
}

// pairwiseDedup 逐对比较的参考实现
func pairwiseDedup(items []Article) []Article {
	equivalent := func(a, b Article) bool {
		if a.URL == b.URL {
			return true
		}
		ta, tb := []rune(strings.ToLower(a.Title)), []rune(strings.ToLower(b.Title))
		if string(ta) == string(tb) {
			return true
		}
		if len(ta) > titlePrefixLen {
			ta = ta[:titlePrefixLen]
		}
		if len(tb) > titlePrefixLen {
			tb = tb[:titlePrefixLen]
		}
		return string(ta) == string(tb) && len(ta) > titlePrefixMinLen
	}
	var out []Article
	for _, it := range items {
		dup := false
		for _, kept := range out {
			if equivalent(kept, it) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out
}

func TestRankSortsDescendingStableAndTruncates(t *testing.T) {
	items := []Article{
		art("old", "u1", "t1", "2025-01-01T00:00:00Z"),
		art("bad", "u2", "t2", "garbage"),
		art("new", "u3", "t3", "2025-01-03T00:00:00Z"),
		art("tie-a", "u4", "t4", "2025-01-02T00:00:00Z"),
		art("tie-b", "u5", "t5", "2025-01-02T00:00:00Z"),
		art("empty", "u6", "t6", ""),
	}

	out := Rank(items, 0)
	ids := make([]string, 0, len(out))
	for _, it := range out {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"new", "tie-a", "tie-b", "old", "bad", "empty"}, ids)

	top := Rank(items, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "new", top[0].ID)
	assert.Equal(t, "tie-b", top[2].ID)
}

func TestProcessorPipeline(t *testing.T) {
	p := NewProcessor(2)
	assert.Equal(t, 2, p.MaxArticles())

	items := []Article{
		art("a", "https://a/1", "Senate Passes Bill", "2025-01-02T10:00:00Z"),
		art("b", "https://b/2", "senate passes bill", "2025-01-01T10:00:00Z"),
		art("c", "https://c/3", "Noticias de política", "2025-01-05T10:00:00Z"),
		art("", "https://d/4", "Missing id", "2025-01-05T10:00:00Z"),
		art("e", "", "Missing url", "2025-01-05T10:00:00Z"),
		art("f", "https://f/6", "   ", "2025-01-05T10:00:00Z"),
		art("g", "https://g/7", "  Markets close higher  ", "2025-01-03T10:00:00Z"),
		art("h", "https://h/8", "Oldest story here", "2024-12-01T10:00:00Z"),
	}

	out, st := p.Process(items)
	require.Len(t, out, 2)
	assert.Equal(t, "g", out[0].ID)
	assert.Equal(t, "Markets close higher", out[0].Title)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, Stats{Collected: 8, Valid: 5, English: 4, Unique: 3, Published: 2}, st)

	assert.Equal(t, DefaultMaxArticles, NewProcessor(0).MaxArticles())
}
