package yamux

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/hashicorp/yamux"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/pkg/lib/log"
)

var logger = log.Logger("core/muxer")

// ErrMuxerClosed 会话已关闭
var ErrMuxerClosed = errors.New("muxer closed")

// Muxer 封装 yamux.Session
type Muxer struct {
	session  *yamux.Session
	isServer bool
}

// NewMuxer 在 conn 上建立 yamux 会话
//
// isServer 为 true 时作为监听方，否则作为拨号方。
func NewMuxer(conn net.Conn, isServer bool, cfg config.YamuxConfig) (*Muxer, error) {
	yc := NewYamuxConfig(cfg)
	if err := yamux.VerifyConfig(yc); err != nil {
		return nil, fmt.Errorf("invalid yamux config: %w", err)
	}

	var (
		session *yamux.Session
		err     error
	)
	if isServer {
		session, err = yamux.Server(conn, yc)
	} else {
		session, err = yamux.Client(conn, yc)
	}
	if err != nil {
		return nil, fmt.Errorf("创建 yamux 会话失败: %w", err)
	}

	logger.Debug("yamux session established", "remote", conn.RemoteAddr(), "server", isServer)
	return &Muxer{session: session, isServer: isServer}, nil
}

// OpenStream 打开新流
//
// yamux 的 OpenStream 不支持 context，在单独的 goroutine 中等待。
func (m *Muxer) OpenStream(ctx context.Context) (net.Conn, error) {
	if m.IsClosed() {
		return nil, ErrMuxerClosed
	}

	type result struct {
		stream *yamux.Stream
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		s, err := m.session.OpenStream()
		resultCh <- result{stream: s, err: err}
	}()

	select {
	case <-ctx.Done():
		// 关闭可能晚到的孤立流
		go func() {
			if r := <-resultCh; r.stream != nil {
				_ = r.stream.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, fmt.Errorf("创建流失败: %w", r.err)
		}
		return r.stream, nil
	}
}

// AcceptStream 接受对端打开的流
func (m *Muxer) AcceptStream() (net.Conn, error) {
	s, err := m.session.AcceptStream()
	if err != nil {
		return nil, fmt.Errorf("接受流失败: %w", err)
	}
	return s, nil
}

// Close 关闭会话及其所有流
func (m *Muxer) Close() error {
	return m.session.Close()
}

// IsClosed 检查会话是否已关闭
func (m *Muxer) IsClosed() bool {
	return m.session.IsClosed()
}

// CloseChan 会话关闭时关闭的 channel
func (m *Muxer) CloseChan() <-chan struct{} {
	return m.session.CloseChan()
}

// IsServer 是否为监听方
func (m *Muxer) IsServer() bool {
	return m.isServer
}
