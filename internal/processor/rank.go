package processor

import (
	"sort"
	"time"
)

// Rank 按发布时间倒序稳定排序并截取前 n 条；n <= 0 表示不截断。
// 无法解析的发布时间视为最旧，排在末尾。
func Rank(items []Article, n int) []Article {
	type keyed struct {
		at  time.Time
		art Article
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		t, _ := it.PublishedTime()
		ks[i] = keyed{at: t, art: it}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		return ks[i].at.After(ks[j].at)
	})

	if n > 0 && len(ks) > n {
		ks = ks[:n]
	}
	out := make([]Article, len(ks))
	for i, k := range ks {
		out[i] = k.art
	}
	return out
}
