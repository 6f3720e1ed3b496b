package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LJTian/HeadlineHub/internal/collector"
)

// DefaultSnapshotKey 快照存放的固定 key
const DefaultSnapshotKey = "latest-articles"

// Snapshot 对外发布的排序后文章列表
type Snapshot struct {
	Articles     []collector.Article `json:"articles"`
	LastUpdated  string              `json:"lastUpdated"`
	TotalResults int                 `json:"totalResults"`
}

// EmptySnapshot key 不存在或读取失败时返回的默认文档
func EmptySnapshot(now time.Time) Snapshot {
	return Snapshot{
		Articles:     []collector.Article{},
		LastUpdated:  now.UTC().Format(time.RFC3339),
		TotalResults: 0,
	}
}

// SnapshotStore 快照唯一的写入方与读取方
type SnapshotStore struct {
	kv  KV
	key string
	now func() time.Time
}

func NewSnapshotStore(kv KV, key string) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{kv: kv, key: key, now: time.Now}
}

func (s *SnapshotStore) Key() string {
	return s.key
}

// Publish 序列化整份快照并覆盖写入，之前的快照整体被替换
func (s *SnapshotStore) Publish(ctx context.Context, articles []collector.Article) (Snapshot, error) {
	if articles == nil {
		articles = []collector.Article{}
	}
	snap := Snapshot{
		Articles:     articles,
		LastUpdated:  s.now().UTC().Format(time.RFC3339),
		TotalResults: len(articles),
	}
	bs, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, bs); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot %q: %w", s.key, err)
	}
	return snap, nil
}

// Raw 原样返回存储中的快照 JSON
func (s *SnapshotStore) Raw(ctx context.Context) ([]byte, error) {
	return s.kv.Get(ctx, s.key)
}

func (s *SnapshotStore) Latest(ctx context.Context) (Snapshot, error) {
	bs, err := s.Raw(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(bs, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
