package storeopt

import (
	"context"
	"time"
)

// SlowQueryHook 慢查询同步回调钩子。
// 在请求路径上同步执行，钩子内禁止耗时操作（网络/磁盘 IO）。
type SlowQueryHook[T any] func(ctx context.Context, info T)

// SlowQueryDetector 慢查询检测器。
// 只读查询路径不携带异步 worker pool：钩子应当只做轻量记录，
// 异步处理由调用方在钩子里自行投递。
type SlowQueryDetector[T any] struct {
	threshold time.Duration
	hook      SlowQueryHook[T]
	counter   *SlowQueryCounter
}

// NewSlowQueryDetector 创建慢查询检测器。
// threshold 为 0 时检测被禁用；counter 可为 nil（不计数）。
func NewSlowQueryDetector[T any](threshold time.Duration, hook SlowQueryHook[T], counter *SlowQueryCounter) *SlowQueryDetector[T] {
	return &SlowQueryDetector[T]{
		threshold: threshold,
		hook:      hook,
		counter:   counter,
	}
}

// Maybe 检测并可能触发慢查询钩子，返回是否触发。
// duration >= threshold 时触发（threshold 为 0 时禁用）。
func (d *SlowQueryDetector[T]) Maybe(ctx context.Context, info T, duration time.Duration) bool {
	if d == nil || d.threshold == 0 || duration < d.threshold {
		return false
	}
	if d.counter != nil {
		d.counter.Inc()
	}
	if d.hook != nil {
		d.hook(ctx, info)
	}
	return true
}
