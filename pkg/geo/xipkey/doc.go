// Package xipkey 提供 IP 地址的规范化定长键（canonical key）。
//
// 规范化键将 IPv4/IPv6 地址统一映射为 128 位无符号整数（内部以 hi/lo
// 两个 uint64 表示），对外序列化为 39 位零左填充的十进制字符串。
// 39 位足以表示完整的 128 位地址空间（2^128−1 为 39 位十进制数），
// 零填充保证字符串的字典序与数值序一致——有序存储（MongoDB/Redis/
// ClickHouse 的有序索引）依赖这一性质做前驱查询。
//
// # 核心功能
//
//   - key.go: [Key] 类型（128 位值语义）、[ParseKey]/[MustParseKey]、
//     比较、后继、十进制序列化
//   - encode.go: [Encode] 将地址文本严格解析为 [Key]，
//     [KeyFromAddr] 从 [netip.Addr] 构建
//
// # 取值约定
//
// IPv4 地址取其 32 位整数值（a·2^24 + b·2^16 + c·2^8 + d），
// 不做 IPv4-mapped IPv6 映射；IPv4-mapped 形式的 IPv6 文本
// （如 "::ffff:8.8.8.8"）按其完整 128 位值处理。两者是不同的键，
// 与数据集的键空间约定保持一致。
//
// # 快速示例
//
//	k, _ := xipkey.Encode("8.8.8.8")
//	fmt.Println(k)  // 000000000000000000000000000000134744072
//
// 校验语法采用 [net/netip] 的严格文法并拒绝 zone ID，
// 不合法输入返回 [ErrInvalidAddress]，绝不静默转换。
package xipkey
