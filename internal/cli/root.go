package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/provider"

	"github.com/spf13/cobra"
)

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ContainerLoader 构建命令运行所需的依赖容器
type ContainerLoader func() (*provider.Container, error)

// RootOptions 全局参数
type RootOptions struct {
	Format string

	load      ContainerLoader
	once      sync.Once
	container *provider.Container
	loadErr   error
}

// Container 首次调用时构建容器，后续复用
func (o *RootOptions) Container() (*provider.Container, error) {
	o.once.Do(func() {
		if o.load == nil {
			o.loadErr = fmt.Errorf("container loader not configured")
			return
		}
		o.container, o.loadErr = o.load()
	})
	return o.container, o.loadErr
}

// NewRootCommand 创建 cartctl 根命令
func NewRootCommand(load ContainerLoader) *cobra.Command {
	if load == nil {
		load = LoadContainer
	}
	opts := &RootOptions{load: load}

	cmd := &cobra.Command{
		Use:           "cartctl",
		Short:         "FlorenceBot guest cart client",
		Long:          "Inspect and edit the local guest cart, preview bulk guide pricing and review cart activity.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
			if opts.Format != FormatText && opts.Format != FormatJSON {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")

	cmd.AddCommand(newTiersCommand(opts))
	cmd.AddCommand(newQuoteCommand(opts))
	cmd.AddCommand(newCartCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newActivityCommand(opts))
	return cmd
}

// LoadContainer 读取配置、初始化日志与数据库后构建容器
// 数据库不可用时继续运行，游客购物车回退到内存存储
func LoadContainer() (*provider.Container, error) {
	cfg := config.Load()
	logOptions := cfg.Log.ToLoggerOptions()
	logOptions.Service = "florencebot-cartctl"
	logger.Init("release", logOptions)

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		logger.Warnw("cartctl_database_unavailable", "error", err)
	} else if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return provider.NewContainer(cfg), nil
}
