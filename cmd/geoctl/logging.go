package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omeyang/geokit/internal/cliconf"
)

// newLogger 按配置创建结构化日志记录器。
// 配置了日志文件时经 lumberjack 轮转，否则写 stderr；
// stdout 保留给命令的 JSON 输出。
func newLogger(cfg cliconf.LogConfig) (*slog.Logger, func()) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w = rotator
		closeFn = func() { _ = rotator.Close() }
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})
	return slog.New(handler), closeFn
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
