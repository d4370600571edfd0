package service

import (
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/queue"

	"github.com/hibiken/asynq"
)

// CartActivityPublisher 购物车变更事件发布
type CartActivityPublisher interface {
	EnqueueCartChanged(payload queue.CartChangedPayload, opts ...asynq.Option) error
}

// NewCartActivityListener 创建把购物车变更推送到队列的订阅者
// 推送失败只记录日志，不影响购物车操作
func NewCartActivityListener(publisher CartActivityPublisher, guestID string, authenticated bool) CartListener {
	source := constants.CartEventSourceGuest
	if authenticated {
		source = constants.CartEventSourceRemote
	}
	return func(cart *models.Cart) {
		if publisher == nil || cart == nil {
			return
		}
		payload := BuildCartChangedPayload(cart, guestID, source, authenticated, time.Now())
		if err := publisher.EnqueueCartChanged(payload); err != nil {
			logger.Warnw("cart_activity_enqueue_failed", "guest_id", guestID, "error", err)
		}
	}
}

// BuildCartChangedPayload 构建购物车变更任务载荷
func BuildCartChangedPayload(cart *models.Cart, guestID, source string, authenticated bool, changedAt time.Time) queue.CartChangedPayload {
	return queue.CartChangedPayload{
		GuestID:       guestID,
		Source:        source,
		ItemCount:     cart.ItemCount,
		Subtotal:      cart.Subtotal.String(),
		ProductIDs:    cart.ProductIDs(),
		Authenticated: authenticated,
		ChangedAt:     changedAt.UTC(),
	}
}
