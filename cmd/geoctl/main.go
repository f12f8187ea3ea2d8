// geoctl 是 IP 地理位置查询的命令行工具。
//
// 用法:
//
//	geoctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径 (YAML/JSON)
//	-t, --timeout  命令超时时间 (默认: 30s)
//
// 命令:
//
//	lookup <addr>          查询单个 IP 地址
//	batch [addr...]        批量查询（参数或 --file 指定输入）
//	status                 查看存储后端健康状态与统计
//	help                   显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功（status 命令: 后端健康）
//	1: 执行失败或后端不健康（status 命令）
//	2: 参数错误（非法地址、缺少必需参数、未知命令等）
//
// 示例:
//
//	geoctl -c geoctl.yaml lookup 8.8.8.8
//	geoctl -c geoctl.yaml batch 8.8.8.8 1.1.1.1 2001:db8::1
//	geoctl -c geoctl.yaml batch --file addrs.txt
//	geoctl -c geoctl.yaml status
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "geoctl",
		Usage:   "IP 地理位置查询命令行工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (YAML/JSON)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "命令超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 退出码由 run() 统一映射，禁止框架直接 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情，此处仅设置退出码。
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// setupSignalHandler 设置信号处理。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 优雅取消

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130) // 第二次信号: 强制退出
	}()
}
