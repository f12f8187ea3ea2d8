package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/geokit/internal/cliconf"
	"github.com/omeyang/geokit/pkg/geo/xgeo"
	"github.com/omeyang/geokit/pkg/geo/xgeostore"
	"github.com/omeyang/geokit/pkg/geo/xlookup"
)

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 参数错误，统一映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createLookupCommand(),
		createBatchCommand(),
		createStatusCommand(),
	}
}

// createLookupCommand 创建 lookup 子命令。
func createLookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"l"},
		Usage:     "查询单个 IP 地址",
		ArgsUsage: "<addr>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 1 {
				return &usageError{msg: "lookup 需要恰好一个地址参数"}
			}
			return cmdLookup(ctx, cmd, args[0])
		},
	}
}

// createBatchCommand 创建 batch 子命令。
func createBatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Aliases:   []string{"b"},
		Usage:     "批量查询 IP 地址",
		ArgsUsage: "[addr...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "输入文件，每行一个地址（- 表示 stdin）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			addrs, err := collectBatchInput(cmd)
			if err != nil {
				return err
			}
			return cmdBatch(ctx, cmd, addrs)
		},
	}
}

// createStatusCommand 创建 status 子命令。
func createStatusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"s"},
		Usage:   "查看存储后端健康状态与统计",
		Action:  cmdStatus,
	}
}

// lookupOutput 单次查询的 JSON 输出。
type lookupOutput struct {
	Input    string         `json:"input"`
	Found    bool           `json:"found"`
	Location *xgeo.Location `json:"location"`
}

// batchItemOutput 批量查询中单条输入的 JSON 输出。
type batchItemOutput struct {
	Input    string         `json:"input"`
	Found    bool           `json:"found"`
	Location *xgeo.Location `json:"location,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// statusOutput status 命令的 JSON 输出。
type statusOutput struct {
	Backend string           `json:"backend"`
	Healthy bool             `json:"healthy"`
	Error   string           `json:"error,omitempty"`
	Stats   *xgeostore.Stats `json:"stats,omitempty"`
}

// cmdLookup 执行 lookup 命令。
func cmdLookup(ctx context.Context, cmd *cli.Command, addr string) error {
	env, err := setupEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := env.engine.LookupOne(env.ctx, addr)
	if err != nil {
		if errors.Is(err, xlookup.ErrInvalidAddress) {
			return &usageError{msg: fmt.Sprintf("非法地址 %q", addr)}
		}
		return fmt.Errorf("查询失败: %w", err)
	}
	return writeJSON(lookupOutput{Input: addr, Found: res.Found, Location: res.Location})
}

// cmdBatch 执行 batch 命令。
// 单条失败不影响其他条目，也不改变退出码；
// 每条的错误体现在对应输出项的 error 字段。
func cmdBatch(ctx context.Context, cmd *cli.Command, addrs []string) error {
	env, err := setupEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	outcomes, err := env.engine.LookupMany(env.ctx, addrs)
	if err != nil {
		return fmt.Errorf("批量查询失败: %w", err)
	}

	items := make([]batchItemOutput, len(outcomes))
	for i, out := range outcomes {
		items[i] = batchItemOutput{Input: out.Input}
		if out.Err != nil {
			items[i].Error = out.Err.Error()
			continue
		}
		items[i].Found = out.Result.Found
		items[i].Location = out.Result.Location
	}
	return writeJSON(items)
}

// cmdStatus 执行 status 命令。后端不健康时退出码为 1。
func cmdStatus(ctx context.Context, cmd *cli.Command) error {
	env, err := setupEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	out := statusOutput{Backend: env.cfg.Backend, Healthy: true}
	if herr := env.engine.Health(env.ctx); herr != nil {
		out.Healthy = false
		out.Error = herr.Error()
	}
	if sp, ok := env.store.(xgeostore.StatsProvider); ok {
		stats := sp.Stats()
		out.Stats = &stats
	}
	if err := writeJSON(out); err != nil {
		return err
	}
	if !out.Healthy {
		return &exitError{code: 1}
	}
	return nil
}

// collectBatchInput 汇总批量输入：位置参数优先，其次 --file。
func collectBatchInput(cmd *cli.Command) ([]string, error) {
	addrs := cmd.Args().Slice()
	file := cmd.String("file")
	if len(addrs) > 0 && file != "" {
		return nil, &usageError{msg: "地址参数与 --file 不能同时使用"}
	}
	if len(addrs) > 0 {
		return addrs, nil
	}
	if file == "" {
		return nil, &usageError{msg: "batch 需要地址参数或 --file"}
	}

	var r io.Reader
	if file == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("打开输入文件: %w", err)
		}
		defer f.Close()
		r = f
	}
	return readAddrLines(r)
}

// readAddrLines 逐行读取地址，跳过空行与 # 注释行。
func readAddrLines(r io.Reader) ([]string, error) {
	var addrs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取输入: %w", err)
	}
	if len(addrs) == 0 {
		return nil, &usageError{msg: "输入中没有任何地址"}
	}
	return addrs, nil
}

// cmdEnv 一次命令执行所需的运行环境。
type cmdEnv struct {
	ctx    context.Context
	cfg    *cliconf.Config
	store  xgeostore.RangeStore
	engine *xlookup.Engine
	close  func()
}

// setupEnv 装载配置并建立存储与查询引擎。
func setupEnv(ctx context.Context, cmd *cli.Command) (*cmdEnv, error) {
	configPath := cmd.String("config")
	if configPath == "" {
		return nil, &usageError{msg: "缺少 --config 参数"}
	}
	cfg, err := cliconf.Load(configPath)
	if err != nil {
		if errors.Is(err, cliconf.ErrInvalidConfig) ||
			errors.Is(err, cliconf.ErrUnsupportedFormat) {
			return nil, &usageError{msg: err.Error()}
		}
		return nil, err
	}

	logger, closeLogger := newLogger(cfg.Log)

	cmdCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))

	store, closeStore, err := openStore(cmdCtx, cfg, logger)
	if err != nil {
		cancel()
		closeLogger()
		return nil, fmt.Errorf("连接存储后端: %w", err)
	}

	engine, err := xlookup.New(store,
		xlookup.WithCache(cfg.Lookup.CacheEntries, cfg.Lookup.CacheTTL),
		xlookup.WithBatchConcurrency(cfg.Lookup.BatchConcurrency),
		xlookup.WithLogger(logger),
	)
	if err != nil {
		closeStore()
		cancel()
		closeLogger()
		return nil, err
	}

	return &cmdEnv{
		ctx:    cmdCtx,
		cfg:    cfg,
		store:  store,
		engine: engine,
		close: func() {
			_ = engine.Close()
			closeStore()
			cancel()
			closeLogger()
		},
	}, nil
}

// writeJSON 把结果以缩进 JSON 写到 stdout。
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
