// Package yamux 在 TCP 连接之上建立 yamux 会话
//
// 节点与客户端的每条连接都是一个 yamux 会话，
// 拨号方打开一条流承载握手与后续帧。
package yamux

import (
	"io"
	"time"

	"github.com/hashicorp/yamux"

	"github.com/dep2p/go-janus/config"
)

// NewYamuxConfig 由 janus 配置生成 yamux.Config
func NewYamuxConfig(cfg config.YamuxConfig) *yamux.Config {
	yc := &yamux.Config{
		AcceptBacklog:          16,
		EnableKeepAlive:        true,
		KeepAliveInterval:      cfg.KeepAliveInterval.Duration(),
		ConnectionWriteTimeout: cfg.ConnectionWriteTimeout.Duration(),
		MaxStreamWindowSize:    cfg.MaxStreamWindowSize,
		StreamOpenTimeout:      75 * time.Second,
		StreamCloseTimeout:     5 * time.Minute,
		LogOutput:              io.Discard, // 禁用 yamux 自带日志
	}
	return yc
}
