package xipkey

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net/netip"
	"strconv"
	"strings"
)

// KeyLen 规范化键的字符串长度。
// 39 位十进制足以表示 2^128−1，所有键都零左填充到该长度。
const KeyLen = 39

// zeroPad 用于左填充的零串，长度与 KeyLen 一致。
const zeroPad = "000000000000000000000000000000000000000"

// Key 是 IP 地址的规范化定长键，128 位无符号整数的值语义表示。
// 零值表示地址 0（即 "::" 与 "0.0.0.0" 的公共键）。
//
// Key 可比较（==）、可作为 map 键；数值比较请使用 [Key.Compare]，
// 存储边界的文本形式由 [Key.String] 给出，保证字典序与数值序一致。
type Key struct {
	hi, lo uint64
}

// MaxKey 是键空间的上界（2^128−1）。
var MaxKey = Key{hi: ^uint64(0), lo: ^uint64(0)}

// KeyFromAddr 从 [netip.Addr] 构建规范化键。
// IPv4 地址取其 32 位整数值；其余（含 IPv4-mapped IPv6）取完整 128 位值。
// 无效地址返回 ErrInvalidAddress。
func KeyFromAddr(addr netip.Addr) (Key, error) {
	if !addr.IsValid() {
		return Key{}, ErrInvalidAddress
	}
	if addr.Is4() {
		b := addr.As4()
		return Key{lo: uint64(binary.BigEndian.Uint32(b[:]))}, nil
	}
	b := addr.As16()
	return Key{
		hi: binary.BigEndian.Uint64(b[0:8]),
		lo: binary.BigEndian.Uint64(b[8:16]),
	}, nil
}

// ParseKey 解析 39 位零左填充的十进制字符串。
// 宽度不等于 [KeyLen]、含非数字字符或数值超出 2^128−1 时
// 返回 ErrInvalidKey。
func ParseKey(s string) (Key, error) {
	if len(s) != KeyLen {
		return Key{}, fmt.Errorf("%w: want %d chars, got %d", ErrInvalidKey, KeyLen, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Key{}, fmt.Errorf("%w: non-digit at index %d", ErrInvalidKey, i)
		}
	}

	// 去掉前导零后若剩余部分仍在 uint64 范围内，走快速路径。
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return Key{}, nil
	}
	if len(trimmed) <= 19 {
		v, err := strconv.ParseUint(trimmed, 10, 64)
		if err == nil {
			return Key{lo: v}, nil
		}
	}

	bi, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if bi.BitLen() > 128 {
		return Key{}, fmt.Errorf("%w: value exceeds 128 bits", ErrInvalidKey)
	}
	var b [16]byte
	bi.FillBytes(b[:])
	return Key{
		hi: binary.BigEndian.Uint64(b[0:8]),
		lo: binary.BigEndian.Uint64(b[8:16]),
	}, nil
}

// MustParseKey 与 [ParseKey] 相同，但失败时 panic。
// 仅用于测试和已知合法的常量键。
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String 返回 39 位零左填充的十进制表示。
// 对所有可表示的值，字符串字典序等于数值序。
func (k Key) String() string {
	// hi == 0 时值在 uint64 范围内，避免 big.Int 分配。
	if k.hi == 0 {
		s := strconv.FormatUint(k.lo, 10)
		return zeroPad[:KeyLen-len(s)] + s
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.hi)
	binary.BigEndian.PutUint64(b[8:16], k.lo)
	s := new(big.Int).SetBytes(b[:]).String()
	return zeroPad[:KeyLen-len(s)] + s
}

// Compare 按数值比较两个键。
// k < o 返回 -1，k == o 返回 0，k > o 返回 1。
func (k Key) Compare(o Key) int {
	switch {
	case k.hi < o.hi:
		return -1
	case k.hi > o.hi:
		return 1
	case k.lo < o.lo:
		return -1
	case k.lo > o.lo:
		return 1
	default:
		return 0
	}
}

// Next 返回后继键（数值 +1）。
// 已是 [MaxKey] 时返回 ErrKeyOverflow。
func (k Key) Next() (Key, error) {
	if k == MaxKey {
		return Key{}, ErrKeyOverflow
	}
	k.lo++
	if k.lo == 0 {
		k.hi++
	}
	return k, nil
}

// Addr 将键还原为 [netip.Addr]。
// 值小于 2^32 时按 IPv4 解释，否则按 IPv6 解释。
// 该约定与 [KeyFromAddr] 的取值约定互为逆运算（IPv4-mapped IPv6
// 的键值不小于 2^32，会还原为 IPv4-mapped 形式的 IPv6 地址）。
func (k Key) Addr() netip.Addr {
	if k.hi == 0 && k.lo <= uint64(^uint32(0)) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(k.lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.hi)
	binary.BigEndian.PutUint64(b[8:16], k.lo)
	return netip.AddrFrom16(b)
}
