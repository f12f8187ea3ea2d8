package cliconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
backend: redis
redis:
  addr: redis.internal:6379
  db: 2
  key_prefix: "geo:"
  local_cache_size: 1024
  local_cache_ttl: 5m
lookup:
  cache_entries: 4096
  batch_concurrency: 8
log:
  level: debug
  file: /var/log/geoctl.log
`

func TestLoadBytes_YAML(t *testing.T) {
	cfg, err := LoadBytes([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "geo:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 1024, cfg.Redis.LocalCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LocalCacheTTL)
	assert.Equal(t, int64(4096), cfg.Lookup.CacheEntries)
	assert.Equal(t, 8, cfg.Lookup.BatchConcurrency)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未出现的键保持默认值。
	assert.Equal(t, "geokit", cfg.Mongo.Database)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
}

func TestLoadBytes_JSON(t *testing.T) {
	data := []byte(`{
		"backend": "mongo",
		"mongo": {"uri": "mongodb://localhost:27017", "collection": "ranges_v6"}
	}`)
	cfg, err := LoadBytes(data, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Backend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "ranges_v6", cfg.Mongo.Collection)
}

func TestLoadBytes_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"未知后端", `backend: cassandra`},
		{"memory 缺数据文件", `backend: memory`},
		{"mongo 缺 uri", `backend: mongo`},
		{"redis 缺地址", "backend: redis\nredis:\n  addr: \"\""},
		{"clickhouse 缺地址", "backend: clickhouse\nclickhouse:\n  addr: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.data), FormatYAML)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadBytes_BadInput(t *testing.T) {
	_, err := LoadBytes([]byte("backend: ["), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadBytes(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "geoctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: memory\nmemory:\n  ranges_file: /data/ranges.json\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "/data/ranges.json", cfg.Memory.RangesFile)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Load("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
