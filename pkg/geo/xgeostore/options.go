package xgeostore

import (
	"context"
	"log/slog"
	"time"

	"github.com/omeyang/geokit/internal/storeopt"
)

// 默认配置值。
const (
	// DefaultQueryTimeout 单次查询的兜底超时。
	// 前驱查询走有序索引，正常耗时在毫秒级；超时说明后端异常。
	DefaultQueryTimeout = 3 * time.Second

	// DefaultSlowQueryThreshold 慢查询阈值，0 表示禁用检测。
	DefaultSlowQueryThreshold = 100 * time.Millisecond

	// DefaultKeyPrefix Redis 键前缀。
	DefaultKeyPrefix = "geokit:"
)

// Options 存储后端的通用配置。
type Options struct {
	// HealthTimeout 健康检查超时。
	HealthTimeout time.Duration

	// QueryTimeout 查询兜底超时，调用方 context 已有 deadline 时不生效。
	QueryTimeout time.Duration

	// SlowQueryThreshold 慢查询阈值，0 禁用检测。
	SlowQueryThreshold time.Duration

	// SlowQueryHook 慢查询回调。为 nil 且 Logger 非 nil 时，
	// 默认以 WARN 级别记录慢查询日志。
	SlowQueryHook SlowQueryHook

	// Logger 结构化日志记录器，nil 时不记录。
	Logger *slog.Logger

	// KeyPrefix Redis 键前缀，仅 Redis 后端使用。
	KeyPrefix string

	// LocalCacheSize Redis 本地热点缓存容量，0 禁用。仅 Redis 后端使用。
	LocalCacheSize int

	// LocalCacheTTL Redis 本地热点缓存过期时间。仅 Redis 后端使用。
	LocalCacheTTL time.Duration
}

// Option 配置选项函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HealthTimeout:      storeopt.DefaultHealthTimeout,
		QueryTimeout:       DefaultQueryTimeout,
		SlowQueryThreshold: DefaultSlowQueryThreshold,
		KeyPrefix:          DefaultKeyPrefix,
	}
}

func applyOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.SlowQueryHook == nil && o.Logger != nil {
		o.SlowQueryHook = defaultSlowQueryHook(o.Logger)
	}
	return o
}

// WithHealthTimeout 设置健康检查超时。
func WithHealthTimeout(d time.Duration) Option {
	return func(o *Options) { o.HealthTimeout = d }
}

// WithQueryTimeout 设置查询兜底超时。
func WithQueryTimeout(d time.Duration) Option {
	return func(o *Options) { o.QueryTimeout = d }
}

// WithSlowQueryThreshold 设置慢查询阈值，0 禁用检测。
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *Options) { o.SlowQueryThreshold = d }
}

// WithSlowQueryHook 设置慢查询回调。
func WithSlowQueryHook(hook SlowQueryHook) Option {
	return func(o *Options) { o.SlowQueryHook = hook }
}

// WithLogger 设置结构化日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithKeyPrefix 设置 Redis 键前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) { o.KeyPrefix = prefix }
}

// WithLocalCache 启用 Redis 本地热点缓存。
func WithLocalCache(size int, ttl time.Duration) Option {
	return func(o *Options) {
		o.LocalCacheSize = size
		o.LocalCacheTTL = ttl
	}
}

func defaultSlowQueryHook(logger *slog.Logger) SlowQueryHook {
	return func(ctx context.Context, info SlowQueryInfo) {
		logger.WarnContext(ctx, "slow range query",
			slog.String("backend", info.Backend),
			slog.String("operation", info.Operation),
			slog.String("key", info.Key),
			slog.Duration("duration", info.Duration),
		)
	}
}
