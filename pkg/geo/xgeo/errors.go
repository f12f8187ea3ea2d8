package xgeo

import "errors"

var (
	// ErrInvalidRange 表示范围本身非法（End < Start 或键无效）。
	ErrInvalidRange = errors.New("xgeo: invalid range")

	// ErrUnorderedRanges 表示范围集合未按 Start 严格升序排列。
	ErrUnorderedRanges = errors.New("xgeo: ranges not in ascending start order")

	// ErrOverlappingRanges 表示范围集合违反两两不相交不变量。
	ErrOverlappingRanges = errors.New("xgeo: overlapping ranges")
)
