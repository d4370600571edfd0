package models

import "time"

// CartEvent 购物车变更记录
type CartEvent struct {
	ID            uint        `gorm:"primarykey" json:"id"`                              // 主键
	GuestID       string      `gorm:"type:varchar(64);index;not null" json:"guest_id"`   // 游客标识
	Source        string      `gorm:"type:varchar(20);not null" json:"source"`           // 来源（guest/remote）
	ItemCount     int         `gorm:"not null" json:"item_count"`                        // 商品件数
	Subtotal      Money       `gorm:"type:decimal(20,2);not null" json:"subtotal"`       // 小计
	ProductIDs    StringArray `gorm:"type:json" json:"product_ids"`                      // 商品ID列表
	Authenticated bool        `gorm:"not null;default:false" json:"authenticated"`       // 是否登录用户
	ChangedAt     time.Time   `gorm:"index" json:"changed_at"`                           // 变更时间
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`                           // 创建时间
}

// TableName 指定表名
func (CartEvent) TableName() string {
	return "cart_events"
}
