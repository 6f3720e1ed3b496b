package processor

import (
	"strings"

	"github.com/LJTian/HeadlineHub/internal/collector"
)

// DefaultMaxArticles 快照默认保留条数
const DefaultMaxArticles = 200

type Article = collector.Article

// Stats 每个阶段后剩余的条数
type Stats struct {
	Collected int `json:"collected"`
	Valid     int `json:"valid"`
	English   int `json:"english"`
	Unique    int `json:"unique"`
	Published int `json:"published"`
}

// Processor 依次做合法性检查、语言过滤、去重、排序截断
type Processor struct {
	maxArticles int
}

func NewProcessor(maxArticles int) *Processor {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &Processor{maxArticles: maxArticles}
}

func (p *Processor) MaxArticles() int {
	return p.maxArticles
}

func (p *Processor) Process(items []Article) ([]Article, Stats) {
	st := Stats{Collected: len(items)}

	valid := Validate(items)
	st.Valid = len(valid)

	english := FilterLanguage(valid)
	st.English = len(english)

	unique := Deduplicate(english)
	st.Unique = len(unique)

	out := Rank(unique, p.maxArticles)
	st.Published = len(out)
	return out, st
}

// Validate 丢弃缺少 id、url 或标题的条目，并去掉标题首尾空白
func Validate(items []Article) []Article {
	out := make([]Article, 0, len(items))
	for _, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		if it.ID == "" || strings.TrimSpace(it.URL) == "" || it.Title == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
