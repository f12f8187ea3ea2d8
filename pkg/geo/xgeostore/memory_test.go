package xgeostore

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// mustKey 把点分/冒号文本转成规范化键，测试辅助。
func mustKey(t *testing.T, addr string) xipkey.Key {
	t.Helper()
	k, err := xipkey.Encode(addr)
	require.NoError(t, err)
	return k
}

// mustPrefixRange 从 CIDR 构建范围，测试辅助。
func mustPrefixRange(t *testing.T, cidr string, attrs xgeo.Attributes) xgeo.Range {
	t.Helper()
	r, err := xgeo.RangeFromPrefix(netip.MustParsePrefix(cidr), attrs)
	require.NoError(t, err)
	return r
}

// testRanges 两段不相邻的 IPv4 范围加一段 IPv6 范围，中间留有空洞。
func testRanges(t *testing.T) []xgeo.Range {
	t.Helper()
	return []xgeo.Range{
		mustPrefixRange(t, "1.1.1.0/24", xgeo.Attributes{
			CountryCode: xgeo.StringPtr("AU"),
			CountryName: xgeo.StringPtr("Australia"),
		}),
		mustPrefixRange(t, "8.8.8.0/24", xgeo.Attributes{
			CountryCode: xgeo.StringPtr("US"),
			CountryName: xgeo.StringPtr("United States"),
			RegionName:  xgeo.StringPtr("California"),
			CityName:    xgeo.StringPtr("Mountain View"),
			Latitude:    xgeo.Float64Ptr(37.386),
			Longitude:   xgeo.Float64Ptr(-122.0838),
			TimeZone:    xgeo.StringPtr("-07:00"),
		}),
		mustPrefixRange(t, "2001:db8::/64", xgeo.Attributes{
			CountryCode: xgeo.StringPtr("ZZ"),
		}),
	}
}

func newTestMemory(t *testing.T, opts ...Option) *Memory {
	t.Helper()
	m, err := NewMemory(testRanges(t), opts...)
	require.NoError(t, err)
	return m
}

func TestMemory_Predecessor(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		addr     string
		wantNil  bool
		contains bool
		wantCity string
	}{
		{
			name:     "落在范围中部",
			addr:     "8.8.8.8",
			contains: true,
			wantCity: "Mountain View",
		},
		{
			name:     "恰为范围起点",
			addr:     "8.8.8.0",
			contains: true,
		},
		{
			name:     "恰为范围终点",
			addr:     "8.8.8.255",
			contains: true,
		},
		{
			name:     "终点后一个地址落入空洞",
			addr:     "8.8.9.0",
			contains: false,
		},
		{
			name:     "两段之间的空洞",
			addr:     "5.5.5.5",
			contains: false,
		},
		{
			name:    "小于全部起点",
			addr:    "0.0.0.1",
			wantNil: true,
		},
		{
			name:     "IPv6 命中",
			addr:     "2001:db8::1",
			contains: true,
		},
		{
			name:     "IPv4 键不会落入 IPv6 范围",
			addr:     "9.9.9.9",
			contains: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := mustKey(t, tt.addr)
			got, err := m.Predecessor(ctx, key)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.contains, got.Contains(key))
			if tt.wantCity != "" {
				require.NotNil(t, got.Attrs.CityName)
				assert.Equal(t, tt.wantCity, *got.Attrs.CityName)
			}
		})
	}
}

func TestMemory_Predecessor_ReturnsCopy(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	key := mustKey(t, "8.8.8.8")

	first, err := m.Predecessor(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, first)
	*first.Attrs.CityName = "mutated"

	second, err := m.Predecessor(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, second)
	// 属性指针在条目间共享，但范围结构本身是副本。
	assert.NotSame(t, first, second)
}

func TestMemory_ByStart(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	got, err := m.ByStart(ctx, mustKey(t, "8.8.8.0"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mustKey(t, "8.8.8.255"), got.End)

	miss, err := m.ByStart(ctx, mustKey(t, "8.8.8.1"))
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestNewMemory_SortsInput(t *testing.T) {
	ranges := testRanges(t)
	// 逆序传入，构造函数负责排序。
	reversed := []xgeo.Range{ranges[2], ranges[1], ranges[0]}
	m, err := NewMemory(reversed)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	got, err := m.Predecessor(context.Background(), mustKey(t, "1.1.1.1"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Contains(mustKey(t, "1.1.1.1")))
}

func TestNewMemory_RejectsOverlap(t *testing.T) {
	overlapping := []xgeo.Range{
		mustPrefixRange(t, "8.8.0.0/16", xgeo.Attributes{}),
		mustPrefixRange(t, "8.8.8.0/24", xgeo.Attributes{}),
	}
	_, err := NewMemory(overlapping)
	assert.ErrorIs(t, err, xgeo.ErrOverlappingRanges)
}

func TestNewMemory_Empty(t *testing.T) {
	m, err := NewMemory(nil)
	require.NoError(t, err)
	got, err := m.Predecessor(context.Background(), mustKey(t, "8.8.8.8"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_Lifecycle(t *testing.T) {
	m := newTestMemory(t)

	//nolint:staticcheck // 刻意传 nil 验证防御
	_, err := m.Predecessor(nil, xipkey.Key{})
	assert.ErrorIs(t, err, ErrNilContext)

	require.NoError(t, m.Health(context.Background()))
	require.NoError(t, m.Close())

	_, err = m.Predecessor(context.Background(), xipkey.Key{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Health(context.Background()), ErrClosed)
}

func TestMemory_SlowQueryHook(t *testing.T) {
	var got SlowQueryInfo
	m, err := NewMemory(testRanges(t),
		WithSlowQueryThreshold(time.Nanosecond),
		WithSlowQueryHook(func(_ context.Context, info SlowQueryInfo) {
			got = info
		}),
	)
	require.NoError(t, err)

	key := mustKey(t, "8.8.8.8")
	_, err = m.Predecessor(context.Background(), key)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, got.Backend)
	assert.Equal(t, "predecessor", got.Operation)
	assert.Equal(t, key.String(), got.Key)
	assert.Equal(t, int64(1), m.Stats().SlowQueries)
}

func TestMemory_Stats(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, _ = m.Predecessor(ctx, mustKey(t, "8.8.8.8"))
	_, _ = m.ByStart(ctx, mustKey(t, "8.8.8.0"))

	s := m.Stats()
	assert.Equal(t, int64(2), s.QueryCount)
	assert.Equal(t, int64(0), s.QueryErrors)
}
