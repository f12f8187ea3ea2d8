// Package xgeo 定义地理位置范围查询的领域类型。
//
// 数据模型来自对整个地址空间的一次离线划分：每个 [Range] 是一段闭区间
// [Start, End] 的规范化键（见 [github.com/omeyang/geokit/pkg/geo/xipkey]），
// 携带一组可空的地理属性 [Attributes]。全集满足两两不相交
// （non-overlap）不变量——该不变量由装载方保证，查询引擎不做运行时检测，
// 但 [ValidateRanges] 提供装载期的校验入口。
//
// # 核心功能
//
//   - range.go: [Range] 类型、包含判断、装载期不变量校验、
//     从 CIDR/[netipx.IPRange] 构建范围
//   - attrs.go: [Attributes] 八个独立可空的地理字段
//   - result.go: [Location] 公开结果形状与纯映射投影、[Result]
//
// 可空字段使用指针表达"缺失"，序列化为显式 null，
// 绝不坍缩为空字符串或 0。
package xgeo
