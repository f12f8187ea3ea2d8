package xlookup

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricLookupTotal    = "geokit.lookup.total"
	metricLookupDuration = "geokit.lookup.duration"
	metricCacheTotal     = "geokit.lookup.cache.total"
)

// 查询结局，作为指标的 outcome 属性值。
const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// lookupMetrics 查询路径的 OTel 指标集。
type lookupMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	cache    metric.Int64Counter
}

func newLookupMetrics(provider metric.MeterProvider, name string) (*lookupMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(name)

	total, err := meter.Int64Counter(
		metricLookupTotal,
		metric.WithDescription("查询总数，按结局分类"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		metricLookupDuration,
		metric.WithDescription("单次查询耗时"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	cache, err := meter.Int64Counter(
		metricCacheTotal,
		metric.WithDescription("结果缓存访问数，按命中与否分类"),
		metric.WithUnit("{access}"),
	)
	if err != nil {
		return nil, err
	}
	return &lookupMetrics{total: total, duration: duration, cache: cache}, nil
}

func (m *lookupMetrics) observe(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *lookupMetrics) observeCache(ctx context.Context, hit bool) {
	m.cache.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
