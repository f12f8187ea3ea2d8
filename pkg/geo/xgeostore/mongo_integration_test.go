//go:build integration

package xgeostore_test

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xgeostore"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// =============================================================================
// 测试设置
// =============================================================================

// setupMongo 启动 MongoDB 容器或连接到已有实例。
// 如果设置了 GEOKIT_MONGO_URI 环境变量，直接使用外部 MongoDB。
func setupMongo(t *testing.T) *mongo.Collection {
	t.Helper()

	uri := os.Getenv("GEOKIT_MONGO_URI")
	if uri == "" {
		uri = startMongoContainer(t)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err, "连接 MongoDB 失败")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	})

	coll := client.Database("geokit_test").Collection("geo_ranges")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, coll.Drop(ctx))
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ip_from", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err, "创建 ip_from 索引失败")

	seedMongoRanges(t, coll)
	return coll
}

// startMongoContainer 使用 testcontainers 启动 MongoDB 容器。
func startMongoContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("无法启动 MongoDB 容器: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func seedMongoRanges(t *testing.T, coll *mongo.Collection) {
	t.Helper()

	ranges := []struct {
		cidr string
		cc   string
		city *string
	}{
		{"1.1.1.0/24", "AU", nil},
		{"8.8.8.0/24", "US", strPtr("Mountain View")},
		{"2001:db8::/64", "ZZ", nil},
	}
	docs := make([]any, 0, len(ranges))
	for _, r := range ranges {
		rng, err := xgeo.RangeFromPrefix(netip.MustParsePrefix(r.cidr), xgeo.Attributes{
			CountryCode: xgeo.StringPtr(r.cc),
			CityName:    r.city,
		})
		require.NoError(t, err)
		docs = append(docs, bson.D{
			{Key: "ip_from", Value: rng.Start.String()},
			{Key: "ip_to", Value: rng.End.String()},
			{Key: "country_code", Value: rng.Attrs.CountryCode},
			{Key: "country_name", Value: nil},
			{Key: "region_name", Value: nil},
			{Key: "city_name", Value: rng.Attrs.CityName},
			{Key: "latitude", Value: nil},
			{Key: "longitude", Value: nil},
			{Key: "zip_code", Value: nil},
			{Key: "time_zone", Value: nil},
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.InsertMany(ctx, docs)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func encodeKey(t *testing.T, addr string) xipkey.Key {
	t.Helper()
	k, err := xipkey.Encode(addr)
	require.NoError(t, err)
	return k
}

// =============================================================================
// 集成测试
// =============================================================================

func TestMongoIntegration_Predecessor(t *testing.T) {
	coll := setupMongo(t)
	store, err := xgeostore.NewMongo(coll)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("命中范围", func(t *testing.T) {
		key := encodeKey(t, "8.8.8.8")
		got, err := store.Predecessor(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Contains(key))
		require.NotNil(t, got.Attrs.CityName)
		assert.Equal(t, "Mountain View", *got.Attrs.CityName)
		assert.Nil(t, got.Attrs.Latitude)
	})

	t.Run("空洞", func(t *testing.T) {
		key := encodeKey(t, "5.5.5.5")
		got, err := store.Predecessor(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Contains(key))
	})

	t.Run("小于全部起点", func(t *testing.T) {
		got, err := store.Predecessor(ctx, encodeKey(t, "0.0.0.1"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("IPv6", func(t *testing.T) {
		key := encodeKey(t, "2001:db8::1234")
		got, err := store.Predecessor(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Contains(key))
	})
}

func TestMongoIntegration_ByStartAndHealth(t *testing.T) {
	coll := setupMongo(t)
	store, err := xgeostore.NewMongo(coll)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Health(ctx))

	got, err := store.ByStart(ctx, encodeKey(t, "8.8.8.0"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, encodeKey(t, "8.8.8.255"), got.End)

	miss, err := store.ByStart(ctx, encodeKey(t, "8.8.8.1"))
	require.NoError(t, err)
	assert.Nil(t, miss)
}
