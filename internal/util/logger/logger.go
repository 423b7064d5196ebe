package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dep2p/go-janus/pkg/lib/log"
)

// Setup 按配置构建 handler 并设为全局默认
//
// 返回的 io.Closer 用于在退出时关闭日志文件；输出到 stderr 时关闭无副作用。
func Setup(cfg *Config) io.Closer {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out, closer = rotating, rotating
	}

	log.SetDefault(slog.New(NewHandler(cfg, out)))
	return closer
}

// NewHandler 创建按组件过滤级别的 handler
func NewHandler(cfg *Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		// 由 subsystemHandler 决定级别，内层 handler 放行所有记录
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return newSubsystemHandler(cfg, inner)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
