package processor

import "strings"

const (
	titlePrefixLen    = 50
	titlePrefixMinLen = 20
)

// Deduplicate 保留每组近似重复文章中最先出现的一条，保持幸存者的相对顺序。
// 两篇文章等价当且仅当：URL 相同；或标题忽略大小写后相同；
// 或小写标题前 50 个字符相同且该前缀长度超过 20。
// 用三张索引代替逐对比较，结果与逐对比较已保留文章完全一致。
func Deduplicate(items []Article) []Article {
	var (
		out      = make([]Article, 0, len(items))
		urls     = make(map[string]struct{}, len(items))
		titles   = make(map[string]struct{}, len(items))
		prefixes = make(map[string]struct{}, len(items))
	)

	for _, it := range items {
		title := strings.ToLower(it.Title)
		prefix, hasPrefix := titlePrefix(title)

		if _, ok := urls[it.URL]; ok {
			continue
		}
		if _, ok := titles[title]; ok {
			continue
		}
		if hasPrefix {
			if _, ok := prefixes[prefix]; ok {
				continue
			}
		}

		urls[it.URL] = struct{}{}
		titles[title] = struct{}{}
		if hasPrefix {
			prefixes[prefix] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// titlePrefix 返回小写标题的前 50 个字符；前缀不超过 20 个字符时不参与比较
func titlePrefix(lower string) (string, bool) {
	rs := []rune(lower)
	if len(rs) > titlePrefixLen {
		rs = rs[:titlePrefixLen]
	}
	if len(rs) <= titlePrefixMinLen {
		return "", false
	}
	return string(rs), true
}
