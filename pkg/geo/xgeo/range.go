package xgeo

import (
	"fmt"
	"net/netip"

	"go4.org/netipx"

	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

// Range 是地址空间划分中的一个条目：闭区间 [Start, End] 与其地理属性。
// 由离线装载过程一次性创建，进程生命周期内不可变。
type Range struct {
	// Start 闭区间下界。
	Start xipkey.Key

	// End 闭区间上界，End ≥ Start。
	End xipkey.Key

	// Attrs 该范围的地理属性。
	Attrs Attributes
}

// NewRange 构建范围并校验 End ≥ Start。
func NewRange(start, end xipkey.Key, attrs Attributes) (Range, error) {
	if end.Compare(start) < 0 {
		return Range{}, fmt.Errorf("%w: end %s < start %s", ErrInvalidRange, end, start)
	}
	return Range{Start: start, End: end, Attrs: attrs}, nil
}

// RangeFromPrefix 从 CIDR 前缀构建范围。
// 前缀会先做 Masked 规范化。
func RangeFromPrefix(prefix netip.Prefix, attrs Attributes) (Range, error) {
	if !prefix.IsValid() {
		return Range{}, fmt.Errorf("%w: invalid prefix", ErrInvalidRange)
	}
	return RangeFromIPRange(netipx.RangeOfPrefix(prefix.Masked()), attrs)
}

// RangeFromIPRange 从 [netipx.IPRange] 构建范围。
func RangeFromIPRange(r netipx.IPRange, attrs Attributes) (Range, error) {
	if !r.IsValid() {
		return Range{}, fmt.Errorf("%w: invalid IPRange", ErrInvalidRange)
	}
	start, err := xipkey.KeyFromAddr(r.From())
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	end, err := xipkey.KeyFromAddr(r.To())
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return NewRange(start, end, attrs)
}

// Contains 报告 key 是否落在 [Start, End] 内（闭区间）。
func (r Range) Contains(key xipkey.Key) bool {
	return r.Start.Compare(key) <= 0 && r.End.Compare(key) >= 0
}

// String 返回 "start-end" 的可读表示，用于日志与错误信息。
func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ValidateRanges 校验范围集合满足装载期不变量：
// 每个范围 End ≥ Start；按 Start 严格升序；两两不相交。
// 集合必须已按 Start 排序——这是存储层有序索引的前置条件，
// 乱序视为数据完整性错误而非待修复状态。
func ValidateRanges(ranges []Range) error {
	for i, r := range ranges {
		if r.End.Compare(r.Start) < 0 {
			return fmt.Errorf("%w: entry %d: %s", ErrInvalidRange, i, r)
		}
		if i == 0 {
			continue
		}
		prev := ranges[i-1]
		if r.Start.Compare(prev.Start) <= 0 {
			return fmt.Errorf("%w: entry %d start %s <= previous start %s",
				ErrUnorderedRanges, i, r.Start, prev.Start)
		}
		// 已知升序时，只需检查相邻两项：prev.End ≥ r.Start 即重叠。
		if prev.End.Compare(r.Start) >= 0 {
			return fmt.Errorf("%w: entry %d %s intersects previous %s",
				ErrOverlappingRanges, i, r, prev)
		}
	}
	return nil
}
