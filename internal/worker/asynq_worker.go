package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/provider"
	"github.com/florencebot/internal/queue"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartChanged, c.handleCartChanged)
	mux.HandleFunc(queue.TaskCartPruneStale, c.handleCartPruneStale)
}

func (c *Consumer) handleCartChanged(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_cart_changed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_changed_unmarshal_failed", "error", err)
		return err
	}
	event := buildCartEvent(payload)
	if event == nil {
		logger.Debugw("worker_cart_changed_skip_invalid_payload", "guest_id", payload.GuestID)
		return nil
	}
	if c.CartEventRepo == nil {
		logger.Warnw("worker_cart_changed_skip_repo_nil", "guest_id", event.GuestID)
		return nil
	}
	if err := c.CartEventRepo.Create(event); err != nil {
		logger.Warnw("worker_cart_changed_save_failed",
			"guest_id", event.GuestID,
			"item_count", event.ItemCount,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleCartPruneStale(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		return nil
	}
	var payload queue.CartPruneStalePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_prune_unmarshal_failed", "error", err)
		return err
	}
	if payload.OlderThanHours <= 0 || c.KVRepo == nil {
		logger.Debugw("worker_cart_prune_skip", "older_than_hours", payload.OlderThanHours, "repo_nil", c.KVRepo == nil)
		return nil
	}
	before := time.Now().Add(-time.Duration(payload.OlderThanHours) * time.Hour)
	storageKey := constants.GuestCartStorageKey
	if c.Config != nil && strings.TrimSpace(c.Config.Cart.StorageKey) != "" {
		storageKey = c.Config.Cart.StorageKey
	}
	removed, err := c.KVRepo.DeleteStaleBefore(ctx, storageKey, before)
	if err != nil {
		logger.Warnw("worker_cart_prune_failed", "before", before, "error", err)
		return err
	}
	logger.Infow("worker_cart_prune_done", "removed", removed, "key", storageKey, "before", before)
	return nil
}

// buildCartEvent 任务载荷转换为变更记录，缺少游客标识时返回 nil
func buildCartEvent(payload queue.CartChangedPayload) *models.CartEvent {
	guestID := strings.TrimSpace(payload.GuestID)
	if guestID == "" {
		return nil
	}
	source := strings.TrimSpace(payload.Source)
	if source == "" {
		source = constants.CartEventSourceGuest
	}
	subtotal, err := decimal.NewFromString(strings.TrimSpace(payload.Subtotal))
	if err != nil {
		subtotal = decimal.Zero
	}
	changedAt := payload.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now()
	}
	productIDs := models.StringArray{}
	for _, id := range payload.ProductIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			productIDs = append(productIDs, trimmed)
		}
	}
	return &models.CartEvent{
		GuestID:       guestID,
		Source:        source,
		ItemCount:     payload.ItemCount,
		Subtotal:      models.NewMoneyFromDecimal(subtotal),
		ProductIDs:    productIDs,
		Authenticated: payload.Authenticated,
		ChangedAt:     changedAt.UTC(),
	}
}
