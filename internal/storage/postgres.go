package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry 单行键值记录；快照只占一行
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// PostgresKV 以 upsert 单行实现整值覆盖
type PostgresKV struct {
	db *gorm.DB
}

func NewPostgresKV(db *gorm.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

func (p *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := p.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Channel 描述一个数据源及其最近一次采集结果
type Channel struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Code      string            `gorm:"size:64;uniqueIndex" json:"code"`
	Status    string            `gorm:"size:32;index" json:"status"` // active / disabled
	LastRunAt *time.Time        `json:"lastRunAt"`
	LastCount int               `json:"lastCount"`
	LastError string            `gorm:"size:1024" json:"lastError"`
	ExtraData datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SourceRun 一个数据源在一次采集中的结果
type SourceRun struct {
	Code     string
	Count    int
	Error    string
	Duration time.Duration
	At       time.Time
}

type ChannelRegistry struct {
	db *gorm.DB
}

func NewChannelRegistry(db *gorm.DB) *ChannelRegistry {
	return &ChannelRegistry{db: db}
}

// EnsureChannel 确保某个数据源存在，并同步启用状态
func (r *ChannelRegistry) EnsureChannel(ctx context.Context, code string, active bool) error {
	status := "active"
	if !active {
		status = "disabled"
	}
	ch := Channel{Code: code, Status: status}
	return r.db.WithContext(ctx).
		Where(Channel{Code: code}).
		Assign(Channel{Status: status}).
		FirstOrCreate(&ch).Error
}

// RecordRuns 写入本轮每个数据源的条数与错误，只保留最近一次
func (r *ChannelRegistry) RecordRuns(ctx context.Context, runs []SourceRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, run := range runs {
			at := run.At
			err := tx.Model(&Channel{}).Where("code = ?", run.Code).Updates(map[string]any{
				"last_run_at": &at,
				"last_count":  run.Count,
				"last_error":  truncateRunesDB(run.Error, 1024),
				"extra_data":  datatypes.JSONMap{"durationMs": run.Duration.Milliseconds()},
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ChannelRegistry) ListChannels(ctx context.Context) ([]Channel, error) {
	var list []Channel
	err := r.db.WithContext(ctx).Order("code ASC").Find(&list).Error
	return list, err
}

// truncateRunesDB 按 rune 数截断，防止超过字段长度
func truncateRunesDB(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
