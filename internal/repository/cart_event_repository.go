package repository

import (
	"strings"

	"github.com/florencebot/internal/models"

	"gorm.io/gorm"
)

// CartEventRepository 购物车变更记录数据访问接口
type CartEventRepository interface {
	Create(event *models.CartEvent) error
	List(filter CartEventListFilter) ([]models.CartEvent, int64, error)
	WithTx(tx *gorm.DB) *GormCartEventRepository
}

// GormCartEventRepository GORM 实现
type GormCartEventRepository struct {
	db *gorm.DB
}

// NewCartEventRepository 创建购物车变更记录仓库
func NewCartEventRepository(db *gorm.DB) *GormCartEventRepository {
	return &GormCartEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartEventRepository) WithTx(tx *gorm.DB) *GormCartEventRepository {
	if tx == nil {
		return r
	}
	return &GormCartEventRepository{db: tx}
}

// Create 写入变更记录
func (r *GormCartEventRepository) Create(event *models.CartEvent) error {
	if event == nil {
		return nil
	}
	if event.ProductIDs == nil {
		event.ProductIDs = models.StringArray{}
	}
	return r.db.Create(event).Error
}

// List 按条件分页查询，最新的在前
func (r *GormCartEventRepository) List(filter CartEventListFilter) ([]models.CartEvent, int64, error) {
	query := r.db.Model(&models.CartEvent{})
	if guestID := strings.TrimSpace(filter.GuestID); guestID != "" {
		query = query.Where("guest_id = ?", guestID)
	}
	if source := strings.TrimSpace(filter.Source); source != "" {
		query = query.Where("source = ?", source)
	}
	if productID := strings.TrimSpace(filter.ProductID); productID != "" {
		query = query.Where(jsonArrayContainsExpr(r.db, "product_ids"), jsonArrayContainsArg(r.db, productID))
	}
	if filter.Since != nil {
		query = query.Where("changed_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.CartEvent
	query = applyPagination(query.Order("changed_at desc").Order("id desc"), filter.Page, filter.PageSize)
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
