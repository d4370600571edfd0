package queue

import (
	"encoding/json"
	"time"

	"github.com/florencebot/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartChanged 购物车变更记录任务
	TaskCartChanged = constants.TaskCartChanged
	// TaskCartPruneStale 清理过期游客购物车任务
	TaskCartPruneStale = constants.TaskCartPruneStale
)

// CartChangedPayload 购物车变更任务载荷
type CartChangedPayload struct {
	GuestID       string    `json:"guest_id"`
	Source        string    `json:"source"`
	ItemCount     int       `json:"item_count"`
	Subtotal      string    `json:"subtotal"`
	ProductIDs    []string  `json:"product_ids"`
	Authenticated bool      `json:"authenticated"`
	ChangedAt     time.Time `json:"changed_at"`
}

// CartPruneStalePayload 过期购物车清理任务载荷
type CartPruneStalePayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// NewCartChangedTask 创建购物车变更任务
func NewCartChangedTask(payload CartChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartChanged, body), nil
}

// NewCartPruneStaleTask 创建过期购物车清理任务
func NewCartPruneStaleTask(payload CartPruneStalePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartPruneStale, body), nil
}
