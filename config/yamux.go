package config

import (
	"fmt"
	"time"
)

// YamuxConfig yamux 多路复用配置
type YamuxConfig struct {
	// KeepAliveInterval 心跳间隔
	KeepAliveInterval Duration `json:"keep_alive_interval"`

	// ConnectionWriteTimeout 写超时
	ConnectionWriteTimeout Duration `json:"connection_write_timeout"`

	// MaxStreamWindowSize 单流最大窗口
	MaxStreamWindowSize uint32 `json:"max_stream_window_size"`
}

// DefaultYamuxConfig 返回默认 yamux 配置
func DefaultYamuxConfig() YamuxConfig {
	return YamuxConfig{
		KeepAliveInterval:      Duration(30 * time.Second),
		ConnectionWriteTimeout: Duration(10 * time.Second),
		MaxStreamWindowSize:    16 * 1024 * 1024,
	}
}

// Validate 验证 yamux 配置
func (c YamuxConfig) Validate() error {
	if c.KeepAliveInterval <= 0 || c.ConnectionWriteTimeout <= 0 {
		return fmt.Errorf("%w: yamux timeouts must be positive", ErrInvalidConfig)
	}
	// yamux 要求窗口不小于初始窗口 256KiB
	if c.MaxStreamWindowSize < 256*1024 {
		return fmt.Errorf("%w: max_stream_window_size must be at least 256KiB", ErrInvalidConfig)
	}
	return nil
}
