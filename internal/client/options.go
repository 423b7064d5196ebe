package client

import (
	"time"

	"github.com/dep2p/go-janus/config"
)

type options struct {
	dialTimeout time.Duration
	yamux       config.YamuxConfig
	eventBuffer int
}

func defaultOptions() options {
	return options{
		dialTimeout: 20 * time.Second,
		yamux:       config.DefaultYamuxConfig(),
		eventBuffer: 64,
	}
}

// Option 客户端选项
type Option func(*options)

// WithDialTimeout 设置拨号与握手超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dialTimeout = d
		}
	}
}

// WithYamuxConfig 设置多路复用参数
func WithYamuxConfig(cfg config.YamuxConfig) Option {
	return func(o *options) {
		o.yamux = cfg
	}
}

// WithEventBuffer 设置事件 channel 的缓冲大小
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.eventBuffer = n
		}
	}
}
