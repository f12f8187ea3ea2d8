// Package cliconf 定义 geoctl 的配置文件结构与装载逻辑。
//
// 配置通过 koanf 从 YAML/JSON 文件装载，格式由扩展名检测。
// 未出现的键保持默认值，Validate 只做 CLI 启动必需的检查，
// 后端连接参数的正确性留给连接阶段报错。
package cliconf
