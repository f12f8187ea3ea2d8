package xlookup

import (
	"errors"

	"github.com/omeyang/geokit/pkg/geo/xipkey"
)

var (
	// ErrNilStore 表示传入的范围存储为 nil。
	ErrNilStore = errors.New("xlookup: nil store")

	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xlookup: nil context")

	// ErrClosed 表示引擎已关闭。
	ErrClosed = errors.New("xlookup: engine closed")
)

// ErrInvalidAddress 非法地址错误，等同于 [xipkey.ErrInvalidAddress]。
// 调用方用 errors.Is 区分输入错误与存储故障。
var ErrInvalidAddress = xipkey.ErrInvalidAddress
