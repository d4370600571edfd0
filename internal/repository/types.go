package repository

import "time"

// CartEventListFilter 查询购物车变更记录的过滤条件
type CartEventListFilter struct {
	Page      int
	PageSize  int
	GuestID   string
	Source    string
	ProductID string
	Since     *time.Time
}
