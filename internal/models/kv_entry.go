package models

import "time"

// KVEntry 键值存储记录（游客购物车、本地令牌等）
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(191)" json:"key"` // 存储键
	Value     string    `gorm:"type:text;not null" json:"value"`         // 存储值
	CreatedAt time.Time `json:"created_at"`                              // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                 // 更新时间
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return "kv_entries"
}
