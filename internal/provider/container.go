package provider

import (
	"strings"
	"time"

	"github.com/florencebot/internal/cache"
	"github.com/florencebot/internal/cartapi"
	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/queue"
	"github.com/florencebot/internal/repository"
	"github.com/florencebot/internal/service"

	"github.com/redis/go-redis/v9"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	RedisClient *redis.Client

	// Repositories
	CartEventRepo repository.CartEventRepository
	KVRepo        *repository.GormKVStore

	// Services
	GuestStore service.KVStore
	Pricing    *service.PricingPolicy
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		RedisClient: cache.Client(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	if db == nil {
		logger.Warnw("provider_database_unavailable")
		return
	}
	c.CartEventRepo = repository.NewCartEventRepository(db)
	c.KVRepo = repository.NewKVStore(db)
}

func (c *Container) initServices() {
	pricing, err := service.NewPricingPolicyFromConfig(c.Config.Pricing)
	if err != nil {
		logger.Errorw("provider_init_pricing_failed", "error", err)
		panic(err)
	}
	c.Pricing = pricing
	c.GuestStore = c.buildGuestStore()
}

func (c *Container) buildGuestStore() service.KVStore {
	driver := strings.ToLower(strings.TrimSpace(c.Config.Cart.Store))
	switch driver {
	case constants.CartStoreRedis:
		if c.RedisClient != nil {
			ttl := time.Duration(c.Config.Cart.GuestTTLHours) * time.Hour
			return cache.NewRedisStore(c.RedisClient, cache.Prefix()+":cart", ttl)
		}
		logger.Warnw("provider_cart_store_fallback", "driver", driver, "fallback", constants.CartStoreMemory, "reason", "redis_disabled")
	case constants.CartStoreDatabase, "":
		if c.KVRepo != nil {
			return c.KVRepo
		}
		logger.Warnw("provider_cart_store_fallback", "driver", driver, "fallback", constants.CartStoreMemory, "reason", "database_unavailable")
	case constants.CartStoreMemory:
	default:
		logger.Warnw("provider_cart_store_unknown", "driver", driver, "fallback", constants.CartStoreMemory)
	}
	return service.NewMemoryStore()
}

// NewCartManager 为单个访客创建购物车管理器
// 游客数据按 guestID 隔离，session 为空表示未登录；变更事件推送到队列
func (c *Container) NewCartManager(guestID string, session *service.TokenSession) *service.CartManager {
	var auth service.AuthChecker
	var remote service.RemoteCart
	authenticated := false
	if session != nil {
		auth = session
		authenticated = session.IsAuthenticated()
		if client := c.newCartAPIClient(session); client != nil {
			remote = client
		}
	}
	store := service.NamespacedStore(c.GuestStore, guestID)
	manager := service.NewCartManager(store, remote, auth, c.Pricing).WithStorageKey(c.Config.Cart.StorageKey)
	if c.QueueClient != nil {
		manager.Subscribe(service.NewCartActivityListener(c.QueueClient, guestID, authenticated))
	}
	return manager
}

func (c *Container) newCartAPIClient(tokens cartapi.TokenSource) *cartapi.Client {
	baseURL := strings.TrimSpace(c.Config.Cart.APIBaseURL)
	if baseURL == "" {
		return nil
	}
	client, err := cartapi.NewClient(cartapi.Config{
		BaseURL: baseURL,
		Timeout: time.Duration(c.Config.Cart.APITimeoutMS) * time.Millisecond,
	}, tokens)
	if err != nil {
		logger.Warnw("provider_init_cart_api_failed", "base_url", baseURL, "error", err)
		return nil
	}
	return client
}

// AuthLeeway 令牌过期容忍时间
func (c *Container) AuthLeeway() time.Duration {
	return time.Duration(c.Config.Auth.LeewaySeconds) * time.Second
}
