package logger

import (
	"context"
	"log/slog"
)

// componentKey 组件属性名，与 pkg/lib/log.LazyLogger 一致
const componentKey = "component"

// subsystemHandler 按组件过滤级别的 slog.Handler
//
// LazyLogger 通过 With("component", name) 附加组件名，
// handler 在 WithAttrs 时识别该属性并切换到该组件的级别。
type subsystemHandler struct {
	cfg   *Config
	level slog.Level
	inner slog.Handler
}

func newSubsystemHandler(cfg *Config, inner slog.Handler) *subsystemHandler {
	return &subsystemHandler{
		cfg:   cfg,
		level: cfg.DefaultLevel,
		inner: inner,
	}
}

// Enabled 检查是否启用指定级别
func (h *subsystemHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle 处理日志记录
func (h *subsystemHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性，遇到组件名时切换级别
func (h *subsystemHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, a := range attrs {
		if a.Key == componentKey {
			level = h.cfg.LevelForSubsystem(a.Value.String())
		}
	}
	return &subsystemHandler{
		cfg:   h.cfg,
		level: level,
		inner: h.inner.WithAttrs(attrs),
	}
}

// WithGroup 添加组
func (h *subsystemHandler) WithGroup(name string) slog.Handler {
	return &subsystemHandler{
		cfg:   h.cfg,
		level: h.level,
		inner: h.inner.WithGroup(name),
	}
}
