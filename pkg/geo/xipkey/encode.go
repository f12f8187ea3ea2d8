package xipkey

import (
	"fmt"
	"net/netip"
)

// Encode 将地址文本严格解析为规范化键。
// 接受 IPv4 点分十进制和 IPv6 标准冒分十六进制（含 "::" 压缩形式），
// 其余输入一律返回 ErrInvalidAddress。
//
// 设计决策: 采用 [netip.ParseAddr] 的严格文法而非宽松判断
// （如"含冒号即当作 IPv6"）。宽松文法会让畸形地址穿透到数值转换，
// 被静默定位到错误的范围——这是正确性问题，不是兼容性问题。
//
// zone ID（如 "fe80::1%eth0"）被显式拒绝：zone 不参与键空间，
// 接受它会让同一数值对应多个输入文本。
func Encode(s string) (Key, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if addr.Zone() != "" {
		return Key{}, fmt.Errorf("%w: zone ID is not supported: %q", ErrInvalidAddress, s)
	}
	return KeyFromAddr(addr)
}

// EncodeString 与 [Encode] 相同，但直接返回 39 位十进制字符串。
// 用于只关心存储边界文本形式的调用方。
func EncodeString(s string) (string, error) {
	k, err := Encode(s)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

// IsValid 报告 s 是否能被 [Encode] 接受。
func IsValid(s string) bool {
	_, err := Encode(s)
	return err == nil
}

// Normalize 返回地址的标准文本形式（展开/压缩到 netip 规范形）。
// 不合法输入返回 ErrInvalidAddress。
func Normalize(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || addr.Zone() != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return addr.String(), nil
}
