package cliconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/geokit/pkg/geo/xgeostore"
	"github.com/omeyang/geokit/pkg/geo/xlookup"
)

// Format 配置文件格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("cliconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式。
	ErrUnsupportedFormat = errors.New("cliconf: unsupported config format")

	// ErrInvalidConfig 配置内容非法。
	ErrInvalidConfig = errors.New("cliconf: invalid config")
)

// Config geoctl 的顶层配置。
type Config struct {
	// Backend 范围存储后端：memory / mongo / redis / clickhouse。
	Backend string `koanf:"backend"`

	Memory     MemoryConfig     `koanf:"memory"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	ClickHouse ClickHouseConfig `koanf:"clickhouse"`
	Lookup     LookupConfig     `koanf:"lookup"`
	Log        LogConfig        `koanf:"log"`
}

// MemoryConfig 内存后端配置，范围集合从 JSON 文件装载。
type MemoryConfig struct {
	RangesFile string `koanf:"ranges_file"`
}

// MongoConfig MongoDB 后端配置。
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

// RedisConfig Redis 后端配置。
type RedisConfig struct {
	Addr           string        `koanf:"addr"`
	Password       string        `koanf:"password"`
	DB             int           `koanf:"db"`
	KeyPrefix      string        `koanf:"key_prefix"`
	LocalCacheSize int           `koanf:"local_cache_size"`
	LocalCacheTTL  time.Duration `koanf:"local_cache_ttl"`
}

// ClickHouseConfig ClickHouse 后端配置。
type ClickHouseConfig struct {
	Addr     []string `koanf:"addr"`
	Database string   `koanf:"database"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	Table    string   `koanf:"table"`
}

// LookupConfig 查询引擎配置。
type LookupConfig struct {
	CacheEntries     int64         `koanf:"cache_entries"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	BatchConcurrency int           `koanf:"batch_concurrency"`
}

// LogConfig 日志配置。File 为空时日志写到 stderr。
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// Default 返回全部取默认值的配置。
func Default() *Config {
	return &Config{
		Backend: xgeostore.BackendMemory,
		Mongo: MongoConfig{
			Database:   "geokit",
			Collection: "geo_ranges",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: xgeostore.DefaultKeyPrefix,
		},
		ClickHouse: ClickHouseConfig{
			Addr:     []string{"localhost:9000"},
			Database: "default",
			Table:    xgeostore.DefaultClickHouseTable,
		},
		Lookup: LookupConfig{
			CacheEntries:     xlookup.DefaultCacheEntries,
			CacheTTL:         xlookup.DefaultCacheTTL,
			BatchConcurrency: xlookup.DefaultBatchConcurrency,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load 从文件装载配置，格式由扩展名检测。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliconf: read %s: %w", path, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据装载配置。
// 未出现的键取默认值；装载后立即校验，缺少数据源视为错误。
func LoadBytes(data []byte, format Format) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = kyaml.Parser()
	case FormatJSON:
		parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	cfg := Default()
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查 CLI 启动必需的字段。
func (c *Config) Validate() error {
	switch c.Backend {
	case xgeostore.BackendMemory:
		if c.Memory.RangesFile == "" {
			return fmt.Errorf("%w: memory backend requires memory.ranges_file", ErrInvalidConfig)
		}
	case xgeostore.BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("%w: mongo backend requires mongo.uri", ErrInvalidConfig)
		}
	case xgeostore.BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis backend requires redis.addr", ErrInvalidConfig)
		}
	case xgeostore.BackendClickHouse:
		if len(c.ClickHouse.Addr) == 0 {
			return fmt.Errorf("%w: clickhouse backend requires clickhouse.addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	return nil
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
