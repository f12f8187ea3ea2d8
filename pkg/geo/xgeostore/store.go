package xgeostore

import (
	"context"
	"time"

	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// 后端标识，用于慢查询信息与日志字段。
const (
	BackendMemory     = "memory"
	BackendMongo      = "mongo"
	BackendRedis      = "redis"
	BackendClickHouse = "clickhouse"
)

// RangeStore 有序范围存储的统一接口。
// 实现必须保证 Predecessor 基于有序索引（对数复杂度），不做全量扫描。
type RangeStore interface {
	// Predecessor 返回起点不大于 key 的最后一个范围。
	// 不存在这样的范围时返回 (nil, nil)：候选缺失是正常负路径，不是错误。
	// 返回的范围是调用方私有的副本，可安全持有。
	Predecessor(ctx context.Context, key xipkey.Key) (*xgeo.Range, error)

	// ByStart 返回起点恰好等于 key 的范围，不存在时返回 (nil, nil)。
	ByStart(ctx context.Context, key xipkey.Key) (*xgeo.Range, error)

	// Health 检查存储连接健康状态。
	Health(ctx context.Context) error
}

// StatsProvider 暴露运行期计数的可选接口，后端实现均支持。
type StatsProvider interface {
	Stats() Stats
}

// SlowQueryInfo 慢查询信息，传递给 SlowQueryHook。
type SlowQueryInfo struct {
	Backend   string        // 后端标识（BackendMongo 等）
	Operation string        // 操作名（predecessor / by_start）
	Key       string        // 查询的规范化键
	Duration  time.Duration // 实际耗时
}

// SlowQueryHook 慢查询同步回调。钩子内禁止耗时操作。
type SlowQueryHook func(ctx context.Context, info SlowQueryInfo)

// Stats 存储运行期统计信息。
type Stats struct {
	PingCount   int64 `json:"ping_count"`
	PingErrors  int64 `json:"ping_errors"`
	QueryCount  int64 `json:"query_count"`
	QueryErrors int64 `json:"query_errors"`
	SlowQueries int64 `json:"slow_queries"`
}
