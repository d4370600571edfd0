package config

import (
	"fmt"
	"strings"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Cart     CartConfig     `mapstructure:"cart"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Service    string `mapstructure:"service"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Service:    c.Service,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CartRateLimit RateLimitConfig `mapstructure:"cart_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Store           string `mapstructure:"store"`       // 游客购物车存储（memory/redis/database）
	StorageKey      string `mapstructure:"storage_key"` // 游客购物车存储键
	GuestCookie     string `mapstructure:"guest_cookie"`
	GuestCookieDays int    `mapstructure:"guest_cookie_days"`
	GuestTTLHours   int    `mapstructure:"guest_ttl_hours"` // Redis 存储过期时间，0 不过期
	APIBaseURL      string `mapstructure:"api_base_url"` // 远程购物车接口地址
	APITimeoutMS    int    `mapstructure:"api_timeout_ms"`
}

// AuthConfig 登录态配置
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"` // 为空时仅校验过期时间
	AccessTokenKey  string `mapstructure:"access_token_key"`
	RefreshTokenKey string `mapstructure:"refresh_token_key"`
	LeewaySeconds   int    `mapstructure:"leeway_seconds"`
}

// PricingConfig 定价配置
type PricingConfig struct {
	IndividualGuidePrice float64          `mapstructure:"individual_guide_price"`
	BulkTiers            []BulkTierConfig `mapstructure:"bulk_tiers"`
}

// BulkTierConfig 批量折扣档位配置
type BulkTierConfig struct {
	MinQty           int     `mapstructure:"min_qty"`
	BundlePrice      float64 `mapstructure:"bundle_price"`
	SavingsPerBundle float64 `mapstructure:"savings_per_bundle"`
}

// DefaultBulkTiers 默认批量折扣档位（按数量降序）
func DefaultBulkTiers() []map[string]interface{} {
	return []map[string]interface{}{
		{"min_qty": 10, "bundle_price": 50.00, "savings_per_bundle": 9.90},
		{"min_qty": 5, "bundle_price": 25.00, "savings_per_bundle": 4.95},
		{"min_qty": 3, "bundle_price": 15.00, "savings_per_bundle": 2.97},
	}
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.service", "florencebot-cart")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/florencebot.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fb")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueDefault: 1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		constants.GuestIDHeader,
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.cart_rate_limit.window_seconds", 60)
	v.SetDefault("security.cart_rate_limit.max_requests", 120)
	v.SetDefault("cart.store", constants.CartStoreDatabase)
	v.SetDefault("cart.storage_key", constants.GuestCartStorageKey)
	v.SetDefault("cart.guest_cookie", constants.GuestIDCookie)
	v.SetDefault("cart.guest_cookie_days", 30)
	v.SetDefault("cart.guest_ttl_hours", 720)
	v.SetDefault("cart.api_base_url", "")
	v.SetDefault("cart.api_timeout_ms", 8000)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_key", constants.AccessTokenStorageKey)
	v.SetDefault("auth.refresh_token_key", constants.RefreshTokenStorageKey)
	v.SetDefault("auth.leeway_seconds", 30)
	v.SetDefault("pricing.individual_guide_price", 5.99)
	v.SetDefault("pricing.bulk_tiers", DefaultBulkTiers())
}
