package xgeostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/geokit/internal/storeopt"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// redisRangeDoc 范围在 Redis 中的 JSON 文档形态。
// 索引是一个全零分值的 Sorted Set，成员为范围起点键：
// 39 位零填充保证 ZRANGEBYLEX 的字典序与数值序一致，
// 前驱查询即 ZREVRANGEBYLEX [key 向下取一个成员。
type redisRangeDoc struct {
	IPFrom string          `json:"ip_from"`
	IPTo   string          `json:"ip_to"`
	Attrs  xgeo.Attributes `json:"attrs"`
}

// Redis 基于 Redis Sorted Set 的范围存储。
// 可选启用进程内 LRU 热点缓存，减少重复键的网络往返。
type Redis struct {
	client redis.UniversalClient
	opts   *Options

	indexKey string
	docKey   string
	local    *expirable.LRU[string, xgeo.Range]

	health  storeopt.HealthCounter
	queries storeopt.QueryCounter
	slow    storeopt.SlowQueryCounter
	detect  *storeopt.SlowQueryDetector[SlowQueryInfo]
	closed  atomic.Bool
}

var _ RangeStore = (*Redis)(nil)

// NewRedis 基于已连接的客户端创建 Redis 范围存储。
// 客户端生命周期由调用方管理，Close 不关闭客户端。
func NewRedis(client redis.UniversalClient, opts ...Option) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	o := applyOptions(opts...)
	r := &Redis{
		client:   client,
		opts:     o,
		indexKey: o.KeyPrefix + "ranges",
		docKey:   o.KeyPrefix + "range:",
	}
	if o.LocalCacheSize > 0 {
		r.local = expirable.NewLRU[string, xgeo.Range](o.LocalCacheSize, nil, o.LocalCacheTTL)
	}
	r.detect = storeopt.NewSlowQueryDetector(
		o.SlowQueryThreshold,
		storeopt.SlowQueryHook[SlowQueryInfo](o.SlowQueryHook),
		&r.slow,
	)
	return r, nil
}

// Predecessor 返回起点不大于 key 的最后一个范围，不存在时返回 (nil, nil)。
func (r *Redis) Predecessor(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	if err := r.guard(ctx); err != nil {
		return nil, err
	}
	qctx, cancel := storeopt.QueryContext(ctx, r.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	r.queries.IncQuery()

	members, err := r.client.ZRevRangeByLex(qctx, r.indexKey, &redis.ZRangeBy{
		Min:   "-",
		Max:   "[" + key.String(),
		Count: 1,
	}).Result()
	if err != nil {
		r.observe(ctx, "predecessor", key, start)
		r.queries.IncQueryError()
		return nil, err
	}
	if len(members) == 0 {
		r.observe(ctx, "predecessor", key, start)
		return nil, nil
	}

	rng, err := r.loadRange(qctx, members[0], false)
	r.observe(ctx, "predecessor", key, start)
	if err != nil {
		r.queries.IncQueryError()
		return nil, err
	}
	return rng, nil
}

// ByStart 返回起点恰好等于 key 的范围，不存在时返回 (nil, nil)。
func (r *Redis) ByStart(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	if err := r.guard(ctx); err != nil {
		return nil, err
	}
	qctx, cancel := storeopt.QueryContext(ctx, r.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	r.queries.IncQuery()

	rng, err := r.loadRange(qctx, key.String(), true)
	r.observe(ctx, "by_start", key, start)
	if err != nil {
		r.queries.IncQueryError()
		return nil, err
	}
	return rng, nil
}

// loadRange 按起点键取回范围文档。
// missOK 为 true 时文档缺失返回 (nil, nil)；为 false 时说明
// 索引成员存在而文档缺失，属于数据损坏。
func (r *Redis) loadRange(ctx context.Context, member string, missOK bool) (*xgeo.Range, error) {
	if r.local != nil {
		if cached, ok := r.local.Get(member); ok {
			rng := cached
			return &rng, nil
		}
	}

	payload, err := r.client.Get(ctx, r.docKey+member).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if missOK {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: index member %s has no document", ErrCorruptRange, member)
		}
		return nil, err
	}

	var doc redisRangeDoc
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRange, err)
	}
	rng, err := decodeRangeDoc(doc.IPFrom, doc.IPTo, doc.Attrs)
	if err != nil {
		return nil, err
	}
	if rng.Start.String() != member {
		return nil, fmt.Errorf("%w: document start %s does not match index member %s",
			ErrCorruptRange, rng.Start, member)
	}
	if r.local != nil {
		r.local.Add(member, *rng)
	}
	return rng, nil
}

// Load 批量写入范围，离线装载入口。
// ranges 会先按装载期不变量校验（有序、不相交），
// 再以 pipeline 一次性写入索引与文档。
func (r *Redis) Load(ctx context.Context, ranges []xgeo.Range) error {
	if err := r.guard(ctx); err != nil {
		return err
	}
	if err := xgeo.ValidateRanges(ranges); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	for _, rng := range ranges {
		member := rng.Start.String()
		payload, err := json.Marshal(redisRangeDoc{
			IPFrom: member,
			IPTo:   rng.End.String(),
			Attrs:  rng.Attrs,
		})
		if err != nil {
			return fmt.Errorf("marshal range %s: %w", rng, err)
		}
		pipe.ZAdd(ctx, r.indexKey, redis.Z{Score: 0, Member: member})
		pipe.Set(ctx, r.docKey+member, payload, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("load ranges: %w", err)
	}
	return nil
}

// Health 检查 Redis 连接健康状态。
func (r *Redis) Health(ctx context.Context) error {
	if err := r.guard(ctx); err != nil {
		return err
	}
	hctx, cancel := storeopt.HealthContext(ctx, r.opts.HealthTimeout)
	defer cancel()

	r.health.IncPing()
	if err := r.client.Ping(hctx).Err(); err != nil {
		r.health.IncPingError()
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Stats 返回运行期统计信息。
func (r *Redis) Stats() Stats {
	return Stats{
		PingCount:   r.health.PingCount(),
		PingErrors:  r.health.PingErrors(),
		QueryCount:  r.queries.QueryCount(),
		QueryErrors: r.queries.QueryErrors(),
		SlowQueries: r.slow.Count(),
	}
}

// Close 关闭存储。客户端由外部传入，此方法不关闭客户端。
func (r *Redis) Close() error {
	if r.closed.CompareAndSwap(false, true) && r.local != nil {
		r.local.Purge()
	}
	return nil
}

func (r *Redis) guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if r.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (r *Redis) observe(ctx context.Context, op string, key xipkey.Key, start time.Time) {
	duration := storeopt.MeasureOperation(start)
	r.detect.Maybe(ctx, SlowQueryInfo{
		Backend:   BackendRedis,
		Operation: op,
		Key:       key.String(),
		Duration:  duration,
	}, duration)
}
