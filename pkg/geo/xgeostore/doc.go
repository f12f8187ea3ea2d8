// Package xgeostore 提供地理范围的有序存储抽象与多种后端实现。
//
// 存储模型：以范围起点（39 位规范化键，见 xipkey）为主键的有序集合，
// 核心能力是前驱查询——"起点不大于给定键的最后一个范围"。
// 所有后端都基于有序索引实现该查询（对数复杂度），
// 绝不做全量扫描：数据集规模是百万级范围。
//
// # 后端
//
//   - memory.go: [Memory] 不可变有序切片 + 二分查找，
//     装载期校验排序与不相交不变量，适合测试与小数据集
//   - mongo.go: [Mongo] 基于 MongoDB（ip_from 有序索引 +
//     FindOne $lte 降序），xmongo 同款包装器形态
//   - redis.go: [Redis] 基于 Sorted Set 的字典序检索
//     （零填充键保证 ZRANGEBYLEX 的字典序即数值序），
//     可选本地 LRU 热点缓存
//   - clickhouse.go: [ClickHouse] 基于 ORDER BY ip_from 表的
//     降序 LIMIT 1 查询
//
// # 并发与生命周期
//
// 数据集由离线装载过程一次性写入，进程生命周期内只读；
// 并发 Predecessor 调用的安全性由底层客户端保证，
// 包装器不附加自己的同步。Close 后所有操作返回 [ErrClosed]。
//
// 存储不可达属于基础设施故障，错误原样向上传播——
// 范围查询算法无法也不应从中恢复，包装器不做重试或熔断。
package xgeostore
