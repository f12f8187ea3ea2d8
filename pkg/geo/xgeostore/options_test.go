package xgeostore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omeyang/geokit/internal/storeopt"
)

func TestApplyOptions_Defaults(t *testing.T) {
	o := applyOptions()
	assert.Equal(t, storeopt.DefaultHealthTimeout, o.HealthTimeout)
	assert.Equal(t, DefaultQueryTimeout, o.QueryTimeout)
	assert.Equal(t, DefaultSlowQueryThreshold, o.SlowQueryThreshold)
	assert.Equal(t, DefaultKeyPrefix, o.KeyPrefix)
	assert.Zero(t, o.LocalCacheSize)
	assert.Nil(t, o.SlowQueryHook)
}

func TestApplyOptions_Overrides(t *testing.T) {
	hook := func(context.Context, SlowQueryInfo) {}
	o := applyOptions(
		WithHealthTimeout(time.Second),
		WithQueryTimeout(2*time.Second),
		WithSlowQueryThreshold(time.Millisecond),
		WithSlowQueryHook(hook),
		WithKeyPrefix("geo:"),
		WithLocalCache(128, time.Minute),
	)
	assert.Equal(t, time.Second, o.HealthTimeout)
	assert.Equal(t, 2*time.Second, o.QueryTimeout)
	assert.Equal(t, time.Millisecond, o.SlowQueryThreshold)
	assert.NotNil(t, o.SlowQueryHook)
	assert.Equal(t, "geo:", o.KeyPrefix)
	assert.Equal(t, 128, o.LocalCacheSize)
	assert.Equal(t, time.Minute, o.LocalCacheTTL)
}

func TestApplyOptions_DefaultSlowQueryHookLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	o := applyOptions(WithLogger(logger))
	assert.NotNil(t, o.SlowQueryHook)

	o.SlowQueryHook(context.Background(), SlowQueryInfo{
		Backend:   BackendMemory,
		Operation: "predecessor",
		Key:       "0",
		Duration:  time.Second,
	})
	assert.Contains(t, buf.String(), "slow range query")
	assert.Contains(t, buf.String(), "backend=memory")
}
