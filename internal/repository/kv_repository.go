package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/florencebot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKVStore 基于数据库的键值存储
type GormKVStore struct {
	db *gorm.DB
}

// NewKVStore 创建键值存储
func NewKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

// WithTx 绑定事务
func (r *GormKVStore) WithTx(tx *gorm.DB) *GormKVStore {
	if tx == nil {
		return r
	}
	return &GormKVStore{db: tx}
}

// Get 读取
func (r *GormKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set 写入（存在则覆盖）
func (r *GormKVStore) Set(ctx context.Context, key, value string) error {
	now := time.Now()
	entry := models.KVEntry{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Remove 删除
func (r *GormKVStore) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KVEntry{}).Error
}

// DeleteStaleBefore 删除键名为 keySuffix 或以 ":<keySuffix>" 结尾、且在指定时间之前未更新的记录
func (r *GormKVStore) DeleteStaleBefore(ctx context.Context, keySuffix string, before time.Time) (int64, error) {
	keySuffix = strings.TrimSpace(keySuffix)
	if keySuffix == "" {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Where(`(key = ? OR key LIKE ? ESCAPE '\')`, keySuffix, "%:"+escapeLike(keySuffix)).
		Delete(&models.KVEntry{})
	return result.RowsAffected, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
