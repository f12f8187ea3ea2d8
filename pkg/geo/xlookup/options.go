package xlookup

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// 默认配置值。
const (
	// DefaultCacheEntries 结果缓存的条目容量，0 表示禁用缓存。
	DefaultCacheEntries = 1 << 17

	// DefaultCacheTTL 缓存条目过期时间。数据集不可变，
	// TTL 只用于限制冷键的驻留时间。
	DefaultCacheTTL = time.Hour

	// DefaultBatchConcurrency 批量查询的并发上限。
	DefaultBatchConcurrency = 16

	defaultInstrumentationName = "github.com/omeyang/geokit/xlookup"
)

// Options 查询引擎配置。
type Options struct {
	// CacheEntries 结果缓存容量（条目数），0 禁用缓存。
	CacheEntries int64

	// CacheTTL 缓存条目过期时间。
	CacheTTL time.Duration

	// BatchConcurrency 批量查询并发上限，最小为 1。
	BatchConcurrency int

	// MeterProvider OTel 指标提供者，nil 时使用全局默认。
	MeterProvider metric.MeterProvider

	// InstrumentationName OTel instrumentation 名称。
	InstrumentationName string

	// Logger 结构化日志记录器，nil 时不记录。
	Logger *slog.Logger
}

// Option 配置选项函数。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		CacheEntries:        DefaultCacheEntries,
		CacheTTL:            DefaultCacheTTL,
		BatchConcurrency:    DefaultBatchConcurrency,
		InstrumentationName: defaultInstrumentationName,
	}
}

func applyOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.BatchConcurrency < 1 {
		o.BatchConcurrency = 1
	}
	return o
}

// WithCache 设置结果缓存容量与过期时间，entries 为 0 禁用缓存。
func WithCache(entries int64, ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheEntries = entries
		o.CacheTTL = ttl
	}
}

// WithoutCache 禁用结果缓存。
func WithoutCache() Option {
	return func(o *Options) { o.CacheEntries = 0 }
}

// WithBatchConcurrency 设置批量查询并发上限。
func WithBatchConcurrency(n int) Option {
	return func(o *Options) { o.BatchConcurrency = n }
}

// WithMeterProvider 设置 OTel 指标提供者。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Options) {
		if provider != nil {
			o.MeterProvider = provider
		}
	}
}

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.InstrumentationName = name
		}
	}
}

// WithLogger 设置结构化日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
