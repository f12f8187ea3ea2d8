// Package storeopt 提供范围存储后端共享的基础设施：
// 健康检查超时、原子统计计数器、慢查询检测。
//
// 该包是 pkg/geo/xgeostore 各后端（Mongo/Redis/ClickHouse）的内部
// 公共层，不对外暴露。查询路径是只读的前驱检索，慢查询检测只提供
// 同步钩子：钩子应当只做轻量记录（计数、channel 投递），
// 耗时处理交给调用方自己的异步设施。
package storeopt
