package storeopt

import (
	"sync/atomic"
	"time"
)

// HealthCounter 健康检查计数器。
type HealthCounter struct {
	pingCount  atomic.Int64
	pingErrors atomic.Int64
}

// IncPing 增加 ping 计数。
func (h *HealthCounter) IncPing() { h.pingCount.Add(1) }

// IncPingError 增加 ping 错误计数。
func (h *HealthCounter) IncPingError() { h.pingErrors.Add(1) }

// PingCount 返回 ping 计数。
func (h *HealthCounter) PingCount() int64 { return h.pingCount.Load() }

// PingErrors 返回 ping 错误计数。
func (h *HealthCounter) PingErrors() int64 { return h.pingErrors.Load() }

// QueryCounter 查询计数器，追踪前驱/精确查询的次数与错误数。
type QueryCounter struct {
	queryCount  atomic.Int64
	queryErrors atomic.Int64
}

// IncQuery 增加查询计数。
func (q *QueryCounter) IncQuery() { q.queryCount.Add(1) }

// IncQueryError 增加查询错误计数。
func (q *QueryCounter) IncQueryError() { q.queryErrors.Add(1) }

// QueryCount 返回查询计数。
func (q *QueryCounter) QueryCount() int64 { return q.queryCount.Load() }

// QueryErrors 返回查询错误计数。
func (q *QueryCounter) QueryErrors() int64 { return q.queryErrors.Load() }

// SlowQueryCounter 慢查询计数器。
type SlowQueryCounter struct {
	count atomic.Int64
}

// Inc 增加慢查询计数。
func (s *SlowQueryCounter) Inc() { s.count.Add(1) }

// Count 返回慢查询计数。
func (s *SlowQueryCounter) Count() int64 { return s.count.Load() }

// MeasureOperation 测量操作耗时，storage 后端统一的度量入口点。
func MeasureOperation(start time.Time) time.Duration {
	return time.Since(start)
}
