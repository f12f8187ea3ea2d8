package xipkey

import "errors"

var (
	// ErrInvalidAddress 表示输入文本不是合法的 IPv4/IPv6 地址。
	ErrInvalidAddress = errors.New("xipkey: invalid IP address")

	// ErrInvalidKey 表示字符串不是合法的 39 位规范化键。
	ErrInvalidKey = errors.New("xipkey: invalid canonical key")

	// ErrKeyOverflow 表示后继运算越过了 128 位地址空间上界。
	ErrKeyOverflow = errors.New("xipkey: key overflow")
)
