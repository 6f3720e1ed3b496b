package processor

import "regexp"

// 非英语文字的特征：西欧语种重音字母、西里尔、中日韩文字。
// 仅是启发式判断，不含这些特征的非英语文本会被放行。
var nonEnglishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[áéíóúñü]`),
	regexp.MustCompile(`(?i)[àèìòù]`),
	regexp.MustCompile(`(?i)[äöüß]`),
	regexp.MustCompile(`(?i)[çğışö]`),
	regexp.MustCompile(`[\x{0400}-\x{04FF}]`),
	regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`),
	regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]`),
	regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`),
}

// IsAcceptable 判断文本是否可视为英语；空文本无法判断，直接放行
func IsAcceptable(text string) bool {
	if text == "" {
		return true
	}
	for _, re := range nonEnglishPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// FilterLanguage 按标题过滤非英语文章，保持原有顺序
func FilterLanguage(items []Article) []Article {
	out := make([]Article, 0, len(items))
	for _, it := range items {
		if IsAcceptable(it.Title) {
			out = append(out, it)
		}
	}
	return out
}
