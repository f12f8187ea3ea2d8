package storeopt

import (
	"context"
	"time"
)

// DefaultHealthTimeout 默认健康检查超时时间。
const DefaultHealthTimeout = 5 * time.Second

// HealthContext 创建带健康检查超时的 context。
// timeout <= 0 时返回原始 context 和空的 cancel 函数。
//
// 使用示例：
//
//	ctx, cancel := storeopt.HealthContext(ctx, timeout)
//	defer cancel()
func HealthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// QueryContext 为查询操作添加兜底超时。
// 仅当调用方未设置 deadline 且 timeout > 0 时生效，
// 防止无 deadline 的 context 导致前驱查询长时间悬挂。
func QueryContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			return context.WithTimeout(ctx, timeout)
		}
	}
	return ctx, func() {}
}
