package xgeostore

import "errors"

var (
	// ErrNilClient 表示传入的底层客户端为 nil。
	ErrNilClient = errors.New("xgeostore: nil client")

	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xgeostore: nil context")

	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("xgeostore: store closed")

	// ErrCorruptRange 表示后端返回的范围文档无法解析
	// （键宽度错误、End < Start、索引成员与文档不一致等）。
	// 属于数据完整性故障，不是查询的正常负路径。
	ErrCorruptRange = errors.New("xgeostore: corrupt range document")

	// ErrInvalidTable 表示 ClickHouse 表名不合法。
	ErrInvalidTable = errors.New("xgeostore: invalid table name")
)
