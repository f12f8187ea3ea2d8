package xgeostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/geokit/internal/storeopt"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// DefaultClickHouseTable 默认的范围表名。
const DefaultClickHouseTable = "geo_ranges"

// 表名只允许标识符与可选的库名限定，防止拼接注入。
var clickhouseTablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

const clickhouseRangeColumns = "ip_from, ip_to, country_code, country_name, " +
	"region_name, city_name, latitude, longitude, zip_code, time_zone"

// ClickHouse 基于 ClickHouse 的范围存储。
// 表按 ORDER BY ip_from 组织（FixedString(39) 或 String），
// 前驱查询是 WHERE ip_from <= ? ORDER BY ip_from DESC LIMIT 1，
// 主键索引保证只触达尾部一小段数据。
type ClickHouse struct {
	conn  driver.Conn
	table string
	opts  *Options

	health  storeopt.HealthCounter
	queries storeopt.QueryCounter
	slow    storeopt.SlowQueryCounter
	detect  *storeopt.SlowQueryDetector[SlowQueryInfo]
	closed  atomic.Bool
}

var _ RangeStore = (*ClickHouse)(nil)

// NewClickHouse 基于已建立的原生连接创建 ClickHouse 范围存储。
// table 为空时使用 [DefaultClickHouseTable]。
// 连接生命周期由调用方管理，Close 不关闭连接。
func NewClickHouse(conn driver.Conn, table string, opts ...Option) (*ClickHouse, error) {
	if conn == nil {
		return nil, ErrNilClient
	}
	if table == "" {
		table = DefaultClickHouseTable
	}
	if !clickhouseTablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	o := applyOptions(opts...)
	c := &ClickHouse{
		conn:  conn,
		table: table,
		opts:  o,
	}
	c.detect = storeopt.NewSlowQueryDetector(
		o.SlowQueryThreshold,
		storeopt.SlowQueryHook[SlowQueryInfo](o.SlowQueryHook),
		&c.slow,
	)
	return c, nil
}

// Predecessor 返回起点不大于 key 的最后一个范围，不存在时返回 (nil, nil)。
func (c *ClickHouse) Predecessor(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	query := "SELECT " + clickhouseRangeColumns + " FROM " + c.table +
		" WHERE ip_from <= ? ORDER BY ip_from DESC LIMIT 1"
	return c.queryOne(ctx, "predecessor", key, query)
}

// ByStart 返回起点恰好等于 key 的范围，不存在时返回 (nil, nil)。
func (c *ClickHouse) ByStart(ctx context.Context, key xipkey.Key) (*xgeo.Range, error) {
	query := "SELECT " + clickhouseRangeColumns + " FROM " + c.table +
		" WHERE ip_from = ? LIMIT 1"
	return c.queryOne(ctx, "by_start", key, query)
}

func (c *ClickHouse) queryOne(ctx context.Context, op string, key xipkey.Key, query string) (*xgeo.Range, error) {
	if err := c.guard(ctx); err != nil {
		return nil, err
	}
	qctx, cancel := storeopt.QueryContext(ctx, c.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	c.queries.IncQuery()

	var (
		ipFrom string
		ipTo   string
		attrs  xgeo.Attributes
	)
	err := c.conn.QueryRow(qctx, query, key.String()).Scan(
		&ipFrom, &ipTo,
		&attrs.CountryCode, &attrs.CountryName,
		&attrs.RegionName, &attrs.CityName,
		&attrs.Latitude, &attrs.Longitude,
		&attrs.ZipCode, &attrs.TimeZone,
	)
	c.observe(ctx, op, key, start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		c.queries.IncQueryError()
		return nil, err
	}
	return decodeRangeDoc(ipFrom, ipTo, attrs)
}

// Health 检查 ClickHouse 连接健康状态。
func (c *ClickHouse) Health(ctx context.Context) error {
	if err := c.guard(ctx); err != nil {
		return err
	}
	hctx, cancel := storeopt.HealthContext(ctx, c.opts.HealthTimeout)
	defer cancel()

	c.health.IncPing()
	if err := c.conn.Ping(hctx); err != nil {
		c.health.IncPingError()
		return fmt.Errorf("clickhouse ping: %w", err)
	}
	return nil
}

// Stats 返回运行期统计信息。
func (c *ClickHouse) Stats() Stats {
	return Stats{
		PingCount:   c.health.PingCount(),
		PingErrors:  c.health.PingErrors(),
		QueryCount:  c.queries.QueryCount(),
		QueryErrors: c.queries.QueryErrors(),
		SlowQueries: c.slow.Count(),
	}
}

// Close 关闭存储。连接由外部传入，此方法不关闭连接。
func (c *ClickHouse) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *ClickHouse) guard(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (c *ClickHouse) observe(ctx context.Context, op string, key xipkey.Key, start time.Time) {
	duration := storeopt.MeasureOperation(start)
	c.detect.Maybe(ctx, SlowQueryInfo{
		Backend:   BackendClickHouse,
		Operation: op,
		Key:       key.String(),
		Duration:  duration,
	}, duration)
}
