package constants

// 本地持久化 key（与站点前端保持一致）
const (
	GuestCartStorageKey    = "florencebot_guest_cart"
	AccessTokenStorageKey  = "florencebot_access_token"
	RefreshTokenStorageKey = "florencebot_refresh_token"
)

// 游客标识
const (
	GuestIDHeader = "X-Guest-ID"
	GuestIDCookie = "florencebot_guest_id"
	// GuestIDLocal 命令行客户端使用的固定游客命名空间
	GuestIDLocal = "local"
)

// MaxCartItemQuantity 单个购物车项数量上限
const MaxCartItemQuantity = 999

// 商品类型常量
const (
	ProductTypeIndividual = "individual"
	ProductTypeBundle     = "bundle"
)

// 购物车存储驱动
const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStoreDatabase = "database"
)

// 队列相关常量
const (
	QueueDefault = "default"

	TaskCartChanged    = "cart:changed"
	TaskCartPruneStale = "cart:prune_stale"
)

// 购物车事件来源
const (
	CartEventSourceGuest  = "guest"
	CartEventSourceRemote = "remote"
)

// 请求上下文 key
const (
	ContextKeyGuestID      = "guest_id"
	ContextKeyTokenSession = "token_session"
)
