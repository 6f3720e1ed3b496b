package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildID(t *testing.T) {
	assert.Equal(t, "gnews-world-https://a/1", BuildID("gnews", "world", "https://a/1"))
	assert.Equal(t, "newsdata-abc", BuildID("newsdata", "", "abc"))
	// 同一个自然键在不同子查询下不冲突
	assert.NotEqual(t, BuildID("newsapi-org", "Iran", "u"), BuildID("newsapi-org", "Syria", "u"))
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	assert.Nil(t, optional("   "))
	v := optional(" Jane ")
	require.NotNil(t, v)
	assert.Equal(t, "Jane", *v)
}

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"2025-01-02T10:00:00Z":            "2025-01-02T10:00:00Z",
		"2025-01-02T12:00:00+02:00":       "2025-01-02T10:00:00Z",
		"2025-01-02 10:00:00":             "2025-01-02T10:00:00Z",
		"2025-01-02T10:00:00.123456Z":     "2025-01-02T10:00:00Z",
		"Thu, 02 Jan 2025 10:00:00 +0000": "2025-01-02T10:00:00Z",
		"Thu, 02 Jan 2025 10:00:00 GMT":   "2025-01-02T10:00:00Z",
		"yesterday":                       "yesterday",
		"":                                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeTime(in), "input %q", in)
	}
}

func TestArticlePublishedTime(t *testing.T) {
	ts, ok := Article{PublishedAt: "2025-01-02T10:00:00Z"}.PublishedTime()
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)))

	_, ok = Article{PublishedAt: "not a date"}.PublishedTime()
	assert.False(t, ok)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Hello world & friends", cleanText("<p>Hello <b>world</b> &amp; friends</p>"))
	assert.Equal(t, "a b", cleanText("  a \n\t b "))
	assert.Equal(t, "", cleanText("   "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "", truncateRunes("x", 0))
}
