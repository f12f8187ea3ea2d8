package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	retry "github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/omeyang/geokit/internal/cliconf"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xgeostore"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// 连接期 ping 的重试参数。临时网络抖动重试即可恢复，
// 配置错误类失败重试无意义但也只多花一秒。
const (
	connectRetryAttempts = 3
	connectRetryDelay    = 500 * time.Millisecond
)

// openStore 按配置建立范围存储，返回存储与资源清理函数。
func openStore(ctx context.Context, cfg *cliconf.Config, logger *slog.Logger) (xgeostore.RangeStore, func(), error) {
	storeOpts := []xgeostore.Option{xgeostore.WithLogger(logger)}

	switch cfg.Backend {
	case xgeostore.BackendMemory:
		return openMemoryStore(cfg, storeOpts)
	case xgeostore.BackendMongo:
		return openMongoStore(ctx, cfg, storeOpts)
	case xgeostore.BackendRedis:
		return openRedisStore(ctx, cfg, storeOpts)
	case xgeostore.BackendClickHouse:
		return openClickHouseStore(ctx, cfg, storeOpts)
	default:
		return nil, nil, fmt.Errorf("未知后端 %q", cfg.Backend)
	}
}

// rangeFileEntry 内存后端范围文件中的一条记录。
type rangeFileEntry struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	Attrs xgeo.Attributes `json:"attrs"`
}

// loadRangesFile 从 JSON 文件装载范围集合。
// 文件是一个数组，start/end 为文本 IP 地址。
func loadRangesFile(path string) ([]xgeo.Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取范围文件: %w", err)
	}
	var entries []rangeFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("解析范围文件 %s: %w", path, err)
	}

	ranges := make([]xgeo.Range, 0, len(entries))
	for i, e := range entries {
		start, err := xipkey.Encode(e.Start)
		if err != nil {
			return nil, fmt.Errorf("范围文件第 %d 条 start: %w", i, err)
		}
		end, err := xipkey.Encode(e.End)
		if err != nil {
			return nil, fmt.Errorf("范围文件第 %d 条 end: %w", i, err)
		}
		r, err := xgeo.NewRange(start, end, e.Attrs)
		if err != nil {
			return nil, fmt.Errorf("范围文件第 %d 条: %w", i, err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func openMemoryStore(cfg *cliconf.Config, opts []xgeostore.Option) (xgeostore.RangeStore, func(), error) {
	ranges, err := loadRangesFile(cfg.Memory.RangesFile)
	if err != nil {
		return nil, nil, err
	}
	store, err := xgeostore.NewMemory(ranges, opts...)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func openMongoStore(ctx context.Context, cfg *cliconf.Config, opts []xgeostore.Option) (xgeostore.RangeStore, func(), error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}

	if err := pingWithRetry(ctx, func() error {
		return client.Ping(ctx, readpref.Primary())
	}); err != nil {
		disconnect()
		return nil, nil, err
	}

	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	store, err := xgeostore.NewMongo(coll, opts...)
	if err != nil {
		disconnect()
		return nil, nil, err
	}
	return store, func() {
		_ = store.Close()
		disconnect()
	}, nil
}

func openRedisStore(ctx context.Context, cfg *cliconf.Config, opts []xgeostore.Option) (xgeostore.RangeStore, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := pingWithRetry(ctx, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	opts = append(opts, xgeostore.WithKeyPrefix(cfg.Redis.KeyPrefix))
	if cfg.Redis.LocalCacheSize > 0 {
		opts = append(opts, xgeostore.WithLocalCache(cfg.Redis.LocalCacheSize, cfg.Redis.LocalCacheTTL))
	}
	store, err := xgeostore.NewRedis(client, opts...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() {
		_ = store.Close()
		_ = client.Close()
	}, nil
}

func openClickHouseStore(ctx context.Context, cfg *cliconf.Config, opts []xgeostore.Option) (xgeostore.RangeStore, func(), error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.ClickHouse.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	if err := pingWithRetry(ctx, func() error {
		return conn.Ping(ctx)
	}); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	store, err := xgeostore.NewClickHouse(conn, cfg.ClickHouse.Table, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return store, func() {
		_ = store.Close()
		_ = conn.Close()
	}, nil
}

// pingWithRetry 带固定间隔重试的连接检查。
func pingWithRetry(ctx context.Context, ping func() error) error {
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(connectRetryAttempts),
		retry.DelayType(func(_ uint, _ error, _ retry.DelayContext) time.Duration {
			return connectRetryDelay
		}),
	).Do(ping)
}
