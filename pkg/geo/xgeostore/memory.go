package xgeostore

import (
	"context"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"github.com/omeyang/geokit/internal/storeopt"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// Memory 基于内存有序切片的范围存储。
// 构造时排序并校验不相交不变量，此后不可变，
// 前驱查询是纯二分，适合测试与能整体装入内存的数据集。
type Memory struct {
	ranges  []xgeo.Range
	opts    *Options
	queries storeopt.QueryCounter
	slow    storeopt.SlowQueryCounter
	detect  *storeopt.SlowQueryDetector[SlowQueryInfo]
	closed  atomic.Bool
}

var _ RangeStore = (*Memory)(nil)

// NewMemory 创建内存范围存储。
// ranges 会被复制并按起点排序；排序后仍存在重叠或非法条目时返回错误。
func NewMemory(ranges []xgeo.Range, opts ...Option) (*Memory, error) {
	o := applyOptions(opts...)

	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b xgeo.Range) int {
		return a.Start.Compare(b.Start)
	})
	if err := xgeo.ValidateRanges(sorted); err != nil {
		return nil, err
	}

	m := &Memory{
		ranges: sorted,
		opts:   o,
	}
	m.detect = storeopt.NewSlowQueryDetector(
		o.SlowQueryThreshold,
		storeopt.SlowQueryHook[SlowQueryInfo](o.SlowQueryHook),
		&m.slow,
	)
	return m, nil
}

// Predecessor 返回起点不大于 key 的最后一个范围，不存在时返回 (nil, nil)。
func (m *Memory) Predecessor(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	m.queries.IncQuery()

	// 第一个起点大于 key 的位置，其左邻即前驱。
	idx := sort.Search(len(m.ranges), func(i int) bool {
		return m.ranges[i].Start.Compare(key) > 0
	})
	m.observe(ctx, "predecessor", key, start)
	if idx == 0 {
		return nil, nil
	}
	r := m.ranges[idx-1]
	return &r, nil
}

// ByStart 返回起点恰好等于 key 的范围，不存在时返回 (nil, nil)。
func (m *Memory) ByStart(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	m.queries.IncQuery()

	idx, found := slices.BinarySearchFunc(m.ranges, key, func(r xgeo.Range, k xipkey.Key) int {
		return r.Start.Compare(k)
	})
	m.observe(ctx, "by_start", key, start)
	if !found {
		return nil, nil
	}
	r := m.ranges[idx]
	return &r, nil
}

// Health 内存存储永远健康，仅校验生命周期状态。
func (m *Memory) Health(ctx context.Context) error {
	return m.guard(ctx)
}

// Len 返回装载的范围条数。
func (m *Memory) Len() int {
	return len(m.ranges)
}

// Stats 返回运行期统计信息。
func (m *Memory) Stats() Stats {
	return Stats{
		QueryCount:  m.queries.QueryCount(),
		QueryErrors: m.queries.QueryErrors(),
		SlowQueries: m.slow.Count(),
	}
}

// Close 关闭存储，后续操作返回 ErrClosed。
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *Memory) guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if m.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (m *Memory) observe(ctx context.Context, op string, key xipkey.Key, start time.Time) {
	duration := storeopt.MeasureOperation(start)
	m.detect.Maybe(ctx, SlowQueryInfo{
		Backend:   BackendMemory,
		Operation: op,
		Key:       key.String(),
		Duration:  duration,
	}, duration)
}
