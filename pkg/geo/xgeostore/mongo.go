package xgeostore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/omeyang/geokit/internal/storeopt"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// mongoRangeDoc 范围在 MongoDB 中的文档形态。
// ip_from 上建有唯一升序索引，前驱查询依赖该索引的降序遍历。
type mongoRangeDoc struct {
	IPFrom string          `bson:"ip_from"`
	IPTo   string          `bson:"ip_to"`
	Attrs  xgeo.Attributes `bson:",inline"`
}

// mongoCollection FindOne 的最小接口，便于单元测试注入。
type mongoCollection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

// mongoPinger 健康检查的最小接口。
type mongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Mongo 基于 MongoDB 的范围存储。
// 集合按 ip_from 唯一索引组织，前驱查询是
// FindOne({ip_from: {$lte: key}}, sort: {ip_from: -1})。
type Mongo struct {
	coll   mongoCollection
	pinger mongoPinger
	opts   *Options

	health  storeopt.HealthCounter
	queries storeopt.QueryCounter
	slow    storeopt.SlowQueryCounter
	detect  *storeopt.SlowQueryDetector[SlowQueryInfo]
	closed  atomic.Bool
}

var _ RangeStore = (*Mongo)(nil)

// NewMongo 基于已连接的集合创建 MongoDB 范围存储。
// 客户端生命周期由调用方管理，Close 不断开连接。
func NewMongo(coll *mongo.Collection, opts ...Option) (*Mongo, error) {
	if coll == nil {
		return nil, ErrNilClient
	}
	return newMongo(coll, coll.Database().Client(), opts...), nil
}

func newMongo(coll mongoCollection, pinger mongoPinger, opts ...Option) *Mongo {
	o := applyOptions(opts...)
	m := &Mongo{
		coll:   coll,
		pinger: pinger,
		opts:   o,
	}
	m.detect = storeopt.NewSlowQueryDetector(
		o.SlowQueryThreshold,
		storeopt.SlowQueryHook[SlowQueryInfo](o.SlowQueryHook),
		&m.slow,
	)
	return m
}

// Predecessor 返回起点不大于 key 的最后一个范围，不存在时返回 (nil, nil)。
func (m *Mongo) Predecessor(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	filter := bson.D{{Key: "ip_from", Value: bson.D{{Key: "$lte", Value: key.String()}}}}
	sort := options.FindOne().SetSort(bson.D{{Key: "ip_from", Value: -1}})
	return m.findOne(ctx, "predecessor", key, filter, sort)
}

// ByStart 返回起点恰好等于 key 的范围，不存在时返回 (nil, nil)。
func (m *Mongo) ByStart(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	filter := bson.D{{Key: "ip_from", Value: key.String()}}
	return m.findOne(ctx, "by_start", key, filter)
}

func (m *Mongo) findOne(ctx context.Context, op string, key xipkey.Key,
	filter bson.D, opts ...options.Lister[options.FindOneOptions]) (*xgeo.Range, error) {
	if err := m.guard(ctx); err != nil {
		return nil, err
	}
	qctx, cancel := storeopt.QueryContext(ctx, m.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	m.queries.IncQuery()

	var doc mongoRangeDoc
	err := m.coll.FindOne(qctx, filter, opts...).Decode(&doc)
	m.observe(ctx, op, key, start)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		m.queries.IncQueryError()
		return nil, err
	}
	return decodeRangeDoc(doc.IPFrom, doc.IPTo, doc.Attrs)
}

// Health 检查 MongoDB 连接健康状态。
func (m *Mongo) Health(ctx context.Context) error {
	if err := m.guard(ctx); err != nil {
		return err
	}
	hctx, cancel := storeopt.HealthContext(ctx, m.opts.HealthTimeout)
	defer cancel()

	m.health.IncPing()
	if err := m.pinger.Ping(hctx, readpref.Primary()); err != nil {
		m.health.IncPingError()
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// Stats 返回运行期统计信息。
func (m *Mongo) Stats() Stats {
	return Stats{
		PingCount:   m.health.PingCount(),
		PingErrors:  m.health.PingErrors(),
		QueryCount:  m.queries.QueryCount(),
		QueryErrors: m.queries.QueryErrors(),
		SlowQueries: m.slow.Count(),
	}
}

// Close 关闭存储。客户端由外部传入，此方法不断开连接。
func (m *Mongo) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *Mongo) guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if m.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (m *Mongo) observe(ctx context.Context, op string, key xipkey.Key, start time.Time) {
	duration := storeopt.MeasureOperation(start)
	m.detect.Maybe(ctx, SlowQueryInfo{
		Backend:   BackendMongo,
		Operation: op,
		Key:       key.String(),
		Duration:  duration,
	}, duration)
}

// decodeRangeDoc 将后端文档还原为范围，所有后端共用。
// 键宽度错误或 End < Start 一律视为数据损坏。
func decodeRangeDoc(ipFrom, ipTo string, attrs xgeo.Attributes) (*xgeo.Range, error) {
	startKey, err := xipkey.ParseKey(ipFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: ip_from %q: %w", ErrCorruptRange, ipFrom, err)
	}
	endKey, err := xipkey.ParseKey(ipTo)
	if err != nil {
		return nil, fmt.Errorf("%w: ip_to %q: %w", ErrCorruptRange, ipTo, err)
	}
	r, err := xgeo.NewRange(startKey, endKey, attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRange, err)
	}
	return &r, nil
}
