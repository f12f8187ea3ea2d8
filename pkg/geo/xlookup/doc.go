// Package xlookup 提供 IP 地理位置查询引擎。
//
// 引擎把三段逻辑编排成一次查询：
//
//  1. 规范化：文本地址经 xipkey 编码为 39 位十进制键
//  2. 检索：对 xgeostore 做前驱查询（起点 ≤ 键的最后一个范围）
//  3. 判定：前驱存在且终点 ≥ 键才算命中，属性投影为 [xgeo.Location]
//
// 前驱与包含判定分离是刻意的：范围集合两两不相交，
// 因此唯一可能包含该键的候选就是前驱，包含性一次比较即可判定。
// 不命中（落入空洞或小于全部起点）是正常负路径，
// Found=false 而非错误；只有非法地址和存储故障才返回 error。
//
// # 缓存
//
// 同一规范化键的查询结果默认经 ristretto 缓存，
// 数据集进程生命周期内不可变，缓存无失效一致性问题。
// 返回的 Result 在缓存命中间共享，调用方只读。
//
// # 批量
//
// LookupMany 以受限并发（errgroup）对每个输入独立执行单次查询，
// 单条失败只影响该条的结果槽位，不影响同批其他输入。
//
// 使用示例：
//
//	engine, err := xlookup.New(store)
//	if err != nil { ... }
//	defer engine.Close()
//
//	res, err := engine.LookupOne(ctx, "8.8.8.8")
//	if err != nil { ... }
//	if res.Found {
//	    fmt.Println(*res.Location.CountryCode)
//	}
package xlookup
