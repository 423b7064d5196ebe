package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Arceliar/phony"
	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-janus/internal/core/muxer/yamux"
	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/call"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/lib/log"
	"github.com/dep2p/go-janus/pkg/types"
)

var logger = log.Logger("client")

// Client 已连接到节点的客户端
type Client struct {
	// sender 串行写帧
	sender phony.Inbox

	key   crypto.PrivateKey
	local types.PeerID
	node  types.PeerID
	addr  ma.Multiaddr

	muxer *yamux.Muxer
	wc    *wire.Conn

	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Connect 拨号 bootstrap 并完成握手
func Connect(ctx context.Context, bootstrap ma.Multiaddr, key crypto.PrivateKey, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	local, err := crypto.PeerIDFromPrivateKey(key)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, o.dialTimeout)
	defer cancel()

	var d manet.Dialer
	raw, err := d.DialContext(dialCtx, bootstrap)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", bootstrap, err)
	}

	m, err := yamux.NewMuxer(raw, false, o.yamux)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	st, err := m.OpenStream(dialCtx)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	wc := wire.NewConn(st)
	remote, err := wire.Handshake(wc, key, wire.RoleClient, o.dialTimeout)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	if remote.Role != wire.RoleNode {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %s is not a node", wire.ErrHandshakeFailed, remote.ID.ShortString())
	}

	c := &Client{
		key:    key,
		local:  local,
		node:   remote.ID,
		addr:   bootstrap,
		muxer:  m,
		wc:     wc,
		events: make(chan Event, o.eventBuffer+1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	// 缓冲至少为 1，首个事件不会阻塞
	c.events <- NewConnection{PeerID: remote.ID, Multiaddr: bootstrap}
	logger.Info("已连接节点", "node", remote.ID.ShortString(), "addr", bootstrap, "self", local.ShortString())

	go c.readLoop()
	return c, nil
}

// PeerID 返回客户端自身的 PeerID
func (c *Client) PeerID() types.PeerID {
	return c.local
}

// Key 返回客户端身份密钥
func (c *Client) Key() crypto.PrivateKey {
	return c.key
}

// Node 返回所连节点的 PeerID
func (c *Client) Node() types.PeerID {
	return c.node
}

// Events 返回事件 channel，连接结束后关闭
func (c *Client) Events() <-chan Event {
	return c.events
}

// Send 发送命令，写操作异步执行
func (c *Client) Send(cmd Command) error {
	select {
	case <-c.done:
		return ErrTransportClosed
	case <-c.stop:
		return ErrTransportClosed
	default:
	}

	switch cmd := cmd.(type) {
	case Call:
		if cmd.Node.IsEmpty() || cmd.Call == nil {
			return ErrInvalidCommand
		}
		data, err := call.Marshal(cmd.Call)
		if err != nil {
			return err
		}
		f := wire.Relay(c.local, cmd.Node, data)
		if err := f.CheckSize(); err != nil {
			return err
		}
		c.write(f)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
}

func (c *Client) write(f *wire.Frame) {
	c.sender.Act(nil, func() {
		err := c.wc.WriteFrame(f)
		switch {
		case err == nil:
		case errors.Is(err, wire.ErrFrameTooLarge):
			logger.Warn("帧过大，丢弃", "type", f.Type, "error", err)
		default:
			logger.Warn("写帧失败", "type", f.Type, "error", err)
			_ = c.muxer.Close()
		}
	})
}

// Stop 发送告别帧并关闭连接，重复调用无副作用
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.sender.Act(nil, func() {
			_ = c.wc.WriteFrame(wire.Goodbye(c.local))
			_ = c.wc.Close()
			_ = c.muxer.Close()
		})
	})
}

// Done 后台读循环退出后关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		f, err := c.wc.ReadFrame()
		if err != nil {
			select {
			case <-c.stop:
			default:
				logger.Info("与节点的连接断开", "node", c.node.ShortString(), "error", err)
			}
			_ = c.muxer.Close()
			return
		}

		var ev Event
		switch f.Type {
		case wire.TypeRelay:
			fc, err := call.Unmarshal(f.Data)
			if err != nil {
				logger.Warn("无法解码调用", "src", f.Src.ShortString(), "error", err)
				continue
			}
			ev = FunctionCall{Call: fc, Sender: f.Src}
		case wire.TypeNetworkState:
			ev = NetworkState{From: f.Src, Peers: f.Peers}
		case wire.TypeGoodbye:
			logger.Info("节点告别", "node", c.node.ShortString())
			_ = c.muxer.Close()
			return
		default:
			continue
		}

		select {
		case c.events <- ev:
		case <-c.stop:
			return
		}
	}
}
