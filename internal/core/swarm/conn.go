package swarm

import (
	"errors"

	"github.com/Arceliar/phony"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/internal/core/muxer/yamux"
	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/types"
)

// connection 一条完成握手的连接
//
// 字段在创建后只读；写操作通过 phony.Inbox 串行执行。
type connection struct {
	phony.Inbox

	peer     types.PeerID
	role     wire.Role
	addr     ma.Multiaddr
	outbound bool

	muxer *yamux.Muxer
	wc    *wire.Conn

	// closed 仅在 actor 内访问
	closed bool
}

// send 异步写入一帧
func (c *connection) send(f *wire.Frame) {
	c.Act(nil, func() {
		if c.closed {
			return
		}
		err := c.wc.WriteFrame(f)
		switch {
		case err == nil:
		case errors.Is(err, wire.ErrFrameTooLarge):
			// 未写出任何字节，连接仍可用
			logger.Warn("帧过大，丢弃", "peer", c.peer.ShortString(), "type", f.Type, "error", err)
		default:
			logger.Debug("write frame failed", "peer", c.peer.ShortString(), "type", f.Type, "error", err)
			c.shutdown()
		}
	})
}

// close 异步关闭连接；goodbye 非空时先发送告别帧
func (c *connection) close(goodbye *wire.Frame) {
	c.Act(nil, func() {
		if c.closed {
			return
		}
		if goodbye != nil {
			_ = c.wc.WriteFrame(goodbye)
		}
		c.shutdown()
	})
}

// shutdown 在 actor 内调用
func (c *connection) shutdown() {
	c.closed = true
	_ = c.wc.Close()
	_ = c.muxer.Close()
}
