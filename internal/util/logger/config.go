// Package logger 安装 janus 的全局日志 handler
//
// 支持通过环境变量配置：
//   - JANUS_LOG_LEVEL: 日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: core/swarm=debug,peerservice=warn,info
//   - JANUS_LOG_FORMAT: 日志格式 (text 或 json)
//   - JANUS_LOG_FILE: 日志文件路径，设置后按大小滚动写入文件
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// SubsystemLevels 各组件的日志级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// File 日志文件路径，为空时输出到 stderr
	File string

	// MaxSizeMB 单个日志文件最大体积
	MaxSizeMB int

	// MaxBackups 保留的旧日志文件数
	MaxBackups int
}

// LevelForSubsystem 获取指定组件的日志级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
		MaxSizeMB:       100,
		MaxBackups:      3,
	}
}

// ConfigFromEnv 从环境变量解析配置
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if levelStr := os.Getenv("JANUS_LOG_LEVEL"); levelStr != "" {
		parseLevelConfig(cfg, levelStr)
	}

	if strings.EqualFold(os.Getenv("JANUS_LOG_FORMAT"), "json") {
		cfg.Format = FormatJSON
	}

	cfg.File = os.Getenv("JANUS_LOG_FILE")
	return cfg
}

// parseLevelConfig 解析日志级别配置字符串
// 格式: subsystem=level,subsystem=level,defaultLevel
func parseLevelConfig(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, levelName, ok := strings.Cut(part, "="); ok {
			if level, ok := parseLevel(strings.TrimSpace(levelName)); ok {
				cfg.SubsystemLevels[strings.TrimSpace(name)] = level
			}
			continue
		}

		if level, ok := parseLevel(part); ok {
			cfg.DefaultLevel = level
		}
	}
}

// parseLevel 解析日志级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
