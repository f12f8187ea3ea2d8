package xlookup

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xgeostore"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// Engine IP 地理位置查询引擎。
// 并发安全；存储生命周期由调用方管理，Close 只释放引擎自身资源。
type Engine struct {
	store   xgeostore.RangeStore
	opts    *Options
	cache   *resultCache
	metrics *lookupMetrics
	closed  atomic.Bool
}

// Outcome 批量查询中单个输入的结果。
// Err 非 nil 时 Result 无意义；非法输入和存储故障都体现在这里，
// 不会让整个批量调用失败。
type Outcome struct {
	// Input 原样保留的输入文本。
	Input string `json:"input"`

	// Result 查询结果，Err 为 nil 时有效。
	Result xgeo.Result `json:"result"`

	// Err 该条输入的错误。
	Err error `json:"-"`
}

// New 创建查询引擎。
func New(store xgeostore.RangeStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := applyOptions(opts...)

	e := &Engine{store: store, opts: o}
	if o.CacheEntries > 0 {
		cache, err := newResultCache(o.CacheEntries, o.CacheTTL)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	metrics, err := newLookupMetrics(o.MeterProvider, o.InstrumentationName)
	if err != nil {
		return nil, err
	}
	e.metrics = metrics
	return e, nil
}

// LookupOne 查询单个文本地址。
// 地址非法返回 [ErrInvalidAddress]；落入空洞返回 Found=false 而非错误；
// 存储故障原样向上传播。
func (e *Engine) LookupOne(ctx context.Context, addr string) (xgeo.Result, error) {
	if err := e.guard(ctx); err != nil {
		return xgeo.Result{}, err
	}
	start := time.Now()

	key, err := xipkey.Encode(addr)
	if err != nil {
		e.metrics.observe(ctx, outcomeInvalid, time.Since(start))
		return xgeo.Result{}, err
	}
	return e.lookupKey(ctx, key, start)
}

// LookupKey 查询已规范化的键，跳过文本解析。
func (e *Engine) LookupKey(ctx context.Context, key xipkey.Key) (xgeo.Result, error) {
	if err := e.guard(ctx); err != nil {
		return xgeo.Result{}, err
	}
	return e.lookupKey(ctx, key, time.Now())
}

func (e *Engine) lookupKey(ctx context.Context, key xipkey.Key, start time.Time) (xgeo.Result, error) {
	ks := key.String()

	if res, ok := e.cache.get(ks); ok {
		e.metrics.observeCache(ctx, true)
		e.metrics.observe(ctx, resultOutcome(res), time.Since(start))
		return res, nil
	}
	if e.cache != nil {
		e.metrics.observeCache(ctx, false)
	}

	rng, err := e.store.Predecessor(ctx, key)
	if err != nil {
		e.metrics.observe(ctx, outcomeError, time.Since(start))
		if e.opts.Logger != nil {
			e.opts.Logger.ErrorContext(ctx, "range store lookup failed",
				slog.String("key", ks), slog.Any("error", err))
		}
		return xgeo.Result{}, err
	}

	// 范围两两不相交，前驱是唯一可能包含该键的候选。
	var res xgeo.Result
	if rng != nil && rng.Contains(key) {
		res = xgeo.Result{Found: true, Location: xgeo.LocationFromAttributes(rng.Attrs)}
	}
	e.cache.set(ks, res)
	e.metrics.observe(ctx, resultOutcome(res), time.Since(start))
	return res, nil
}

// LookupMany 批量查询，结果与输入按下标一一对应。
// 每个输入独立成功或失败，调用本身只在引擎不可用时返回错误。
func (e *Engine) LookupMany(ctx context.Context, addrs []string) ([]Outcome, error) {
	if err := e.guard(ctx); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(addrs))
	g := new(errgroup.Group)
	g.SetLimit(e.opts.BatchConcurrency)
	for i, addr := range addrs {
		g.Go(func() error {
			res, err := e.LookupOne(ctx, addr)
			outcomes[i] = Outcome{Input: addr, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() // 单条错误都落在各自槽位，这里恒为 nil
	return outcomes, nil
}

// CacheMetrics 返回结果缓存的运行统计，缓存禁用时为 nil。
func (e *Engine) CacheMetrics() *ristretto.Metrics {
	return e.cache.metrics()
}

// Health 检查底层存储健康状态。
func (e *Engine) Health(ctx context.Context) error {
	if err := e.guard(ctx); err != nil {
		return err
	}
	return e.store.Health(ctx)
}

// Close 关闭引擎并释放缓存。存储由调用方负责关闭。
func (e *Engine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.cache.close()
	}
	return nil
}

func (e *Engine) guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

func resultOutcome(res xgeo.Result) string {
	if res.Found {
		return outcomeFound
	}
	return outcomeNotFound
}
