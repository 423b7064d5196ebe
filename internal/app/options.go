package app

import (
	"time"

	"go.uber.org/fx"
)

type options struct {
	startTimeout time.Duration
	stopTimeout  time.Duration
	extra        []fx.Option
}

func defaultOptions() options {
	return options{
		startTimeout: 30 * time.Second,
		stopTimeout:  30 * time.Second,
	}
}

// Option Bootstrap 配置选项
type Option func(*options)

// WithStartTimeout 设置启动超时
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startTimeout = d
	}
}

// WithStopTimeout 设置停止超时
func WithStopTimeout(d time.Duration) Option {
	return func(o *options) {
		o.stopTimeout = d
	}
}

// WithFxOptions 追加 fx 选项，例如替换身份或注入额外的 Invoke
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}
