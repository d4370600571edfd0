package worker

import (
	"context"
	"errors"
	"time"

	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	cartPruneInterval = time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.KVRepo != nil {
		go s.runCartPruneLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runCartPruneLoop 定时投递过期游客购物车清理任务（数据库存储时）
func (s *Service) runCartPruneLoop(ctx context.Context) {
	container := s.consumer.Container
	if container.QueueClient == nil || container.Config == nil {
		return
	}
	hours := container.Config.Cart.GuestTTLHours
	if hours <= 0 {
		return
	}
	enqueue := func() {
		payload := queue.CartPruneStalePayload{OlderThanHours: hours}
		if err := container.QueueClient.EnqueueCartPruneStale(payload, cartPruneInterval); err != nil {
			logger.Warnw("worker_cart_prune_enqueue_failed", "error", err)
		}
	}
	enqueue()

	ticker := time.NewTicker(cartPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}
