package swarm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-janus/internal/core/muxer/yamux"
	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/internal/util/queue"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/lib/log"
	"github.com/dep2p/go-janus/pkg/types"
)

var logger = log.Logger("core/swarm")

var errGoodbye = errors.New("remote said goodbye")

// Swarm 连接群
//
// 除 Ready 外的所有方法只能由所有者 goroutine 调用。
type Swarm struct {
	cfg   Config
	key   crypto.PrivateKey
	local types.PeerID

	listener manet.Listener

	conns   map[types.PeerID]*connection
	addrs   map[types.PeerID][]ma.Multiaddr
	pending map[types.PeerID][]*wire.Frame
	dialing map[types.PeerID]bool

	// retired 同时拨号中落选、等待关闭的连接
	retired map[*connection]struct{}

	// events 后台 goroutine 与所有者之间唯一的共享结构
	events *queue.Unbounded[event]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New 创建 Swarm，调用 Listen 之前不接受入站连接
func New(key crypto.PrivateKey, cfg Config) (*Swarm, error) {
	local, err := crypto.PeerIDFromPrivateKey(key)
	if err != nil {
		return nil, err
	}
	if cfg.Role == 0 {
		cfg.Role = wire.RoleNode
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Swarm{
		cfg:     cfg,
		key:     key,
		local:   local,
		conns:   make(map[types.PeerID]*connection),
		addrs:   make(map[types.PeerID][]ma.Multiaddr),
		pending: make(map[types.PeerID][]*wire.Frame),
		dialing: make(map[types.PeerID]bool),
		retired: make(map[*connection]struct{}),
		events:  queue.New[event](),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// LocalPeer 返回本地节点 ID
func (s *Swarm) LocalPeer() types.PeerID {
	return s.local
}

// Listen 在配置的地址上监听
func (s *Swarm) Listen() error {
	if s.closed {
		return ErrSwarmClosed
	}
	if s.listener != nil {
		return ErrAlreadyListening
	}

	l, err := manet.Listen(s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = l
	logger.Info("监听成功", "addr", l.Multiaddr(), "peer", s.local.ShortString())

	s.wg.Add(1)
	go s.acceptLoop(l)
	return nil
}

// ListenAddr 返回实际监听地址，未监听时返回 nil
func (s *Swarm) ListenAddr() ma.Multiaddr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Multiaddr()
}

// AddAddrs 记录节点地址，供后续拨号使用
func (s *Swarm) AddAddrs(peer types.PeerID, addrs ...ma.Multiaddr) {
	for _, a := range addrs {
		if !containsAddr(s.addrs[peer], a) {
			s.addrs[peer] = append(s.addrs[peer], a)
		}
	}
}

// Addrs 返回已知的节点地址
func (s *Swarm) Addrs(peer types.PeerID) []ma.Multiaddr {
	return append([]ma.Multiaddr(nil), s.addrs[peer]...)
}

// IsConnected 是否已与节点建立连接
func (s *Swarm) IsConnected(peer types.PeerID) bool {
	_, ok := s.conns[peer]
	return ok
}

// Peers 返回已连接的节点
func (s *Swarm) Peers() []types.PeerID {
	peers := make([]types.PeerID, 0, len(s.conns))
	for p := range s.conns {
		peers = append(peers, p)
	}
	return peers
}

// Send 向已连接的节点发送一帧
func (s *Swarm) Send(peer types.PeerID, f *wire.Frame) error {
	if s.closed {
		return ErrSwarmClosed
	}
	if err := f.CheckSize(); err != nil {
		return err
	}
	c, ok := s.conns[peer]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoConnection, peer.ShortString())
	}
	c.send(f)
	return nil
}

// SendOrDial 已连接时直接发送，否则缓存该帧并拨号，连接建立后发出
func (s *Swarm) SendOrDial(peer types.PeerID, f *wire.Frame) error {
	if s.closed {
		return ErrSwarmClosed
	}
	if err := f.CheckSize(); err != nil {
		return err
	}
	if c, ok := s.conns[peer]; ok {
		c.send(f)
		return nil
	}
	if err := s.Dial(peer); err != nil {
		return err
	}
	s.pending[peer] = append(s.pending[peer], f)
	return nil
}

// Dial 异步拨号，结果以 PeerConnected 事件或日志体现
func (s *Swarm) Dial(peer types.PeerID) error {
	switch {
	case s.closed:
		return ErrSwarmClosed
	case peer == s.local:
		return ErrDialToSelf
	case s.dialing[peer] || s.conns[peer] != nil:
		return nil
	}

	addrs := s.addrs[peer]
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoAddresses, peer.ShortString())
	}

	s.dialing[peer] = true
	s.wg.Add(1)
	go s.dialPeer(peer, append([]ma.Multiaddr(nil), addrs...))
	return nil
}

// Ready 内部事件队列非空时可读
func (s *Swarm) Ready() <-chan struct{} {
	return s.events.Ready()
}

// Poll 非阻塞地处理内部事件，返回下一个对外事件
func (s *Swarm) Poll() (Event, bool) {
	for {
		ev, ok := s.events.TryPop()
		if !ok {
			return nil, false
		}
		if out, ok := s.handle(ev); ok {
			return out, true
		}
	}
}

func (s *Swarm) handle(ev event) (Event, bool) {
	switch ev := ev.(type) {
	case connEstablished:
		return s.handleEstablished(ev.conn)

	case connClosed:
		c := ev.conn
		delete(s.retired, c)
		c.close(nil)
		if s.conns[c.peer] != c {
			return nil, false
		}
		delete(s.conns, c.peer)
		logger.Info("连接断开", "peer", c.peer.ShortString(), "reason", ev.err)
		return PeerDisconnected{Peer: c.peer}, true

	case frameReceived:
		// 落选连接在关闭前仍可能送达对端已发出的帧
		return FrameReceived{From: ev.conn.peer, Role: ev.conn.role, Frame: ev.frame}, true

	case dialFailed:
		delete(s.dialing, ev.peer)
		if dropped := len(s.pending[ev.peer]); dropped > 0 {
			logger.Warn("拨号失败，丢弃待发送帧", "peer", ev.peer.ShortString(), "dropped", dropped, "error", ev.err)
		} else {
			logger.Debug("拨号失败", "peer", ev.peer.ShortString(), "error", ev.err)
		}
		delete(s.pending, ev.peer)
	}
	return nil, false
}

func (s *Swarm) handleEstablished(c *connection) (Event, bool) {
	if c.outbound {
		delete(s.dialing, c.peer)
	}
	if s.closed {
		c.close(nil)
		return nil, false
	}
	if c.outbound {
		s.AddAddrs(c.peer, c.addr)
	}

	if existing, ok := s.conns[c.peer]; ok {
		if !s.preferred(c) || s.preferred(existing) {
			logger.Debug("已存在连接，淘汰重复连接", "peer", c.peer.ShortString(), "outbound", c.outbound)
			s.retire(c)
			return nil, false
		}
		logger.Debug("切换到优先连接", "peer", c.peer.ShortString(), "outbound", c.outbound)
		s.conns[c.peer] = c
		s.retire(existing)
		return nil, false
	}

	s.conns[c.peer] = c

	for _, f := range s.pending[c.peer] {
		c.send(f)
	}
	delete(s.pending, c.peer)

	logger.Info("连接建立", "peer", c.peer.ShortString(), "addr", c.addr, "role", c.role, "outbound", c.outbound)
	return PeerConnected{Peer: c.peer, Addr: c.addr, Role: c.role}, true
}

// preferred 两端对同一节点的多条连接取舍一致：保留由 PeerID 较小一方拨出的连接
func (s *Swarm) preferred(c *connection) bool {
	return c.outbound == (s.local < c.peer)
}

// retire 淘汰一条重复连接
//
// 由拨号方发送告别帧，对端读到后关闭；已写入的帧先于告别帧送达。
// 超过 SocketTimeout 仍未关闭时强制关闭。
func (s *Swarm) retire(c *connection) {
	s.retired[c] = struct{}{}
	if c.outbound {
		c.send(wire.Goodbye(s.local))
	}
	time.AfterFunc(s.cfg.SocketTimeout, func() { c.close(nil) })
}

// Exit 向所有节点发送告别帧并关闭一切，返回前等待后台 goroutine 退出
func (s *Swarm) Exit() {
	if s.closed {
		return
	}
	s.closed = true

	// 先取消，接受循环据此区分正常关闭
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}

	goodbye := wire.Goodbye(s.local)
	for peer, c := range s.conns {
		c.close(goodbye)
		delete(s.conns, peer)
	}
	for c := range s.retired {
		c.close(nil)
		delete(s.retired, c)
	}
	s.events.Close()

	// 关闭已推送但尚未处理的连接，其读循环随之退出
	for {
		ev, ok := s.events.TryPop()
		if !ok {
			break
		}
		if e, ok := ev.(connEstablished); ok {
			e.conn.close(nil)
		}
	}

	s.wg.Wait()
	logger.Info("swarm 已关闭", "peer", s.local.ShortString())
}

func (s *Swarm) acceptLoop(l manet.Listener) {
	defer s.wg.Done()

	for {
		raw, err := l.Accept()
		if err != nil {
			if s.ctx.Err() == nil {
				logger.Warn("接受连接失败", "error", err)
			}
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c, err := s.upgrade(raw, false)
			if err != nil {
				logger.Debug("入站连接握手失败", "remote", raw.RemoteMultiaddr(), "error", err)
				_ = raw.Close()
				return
			}
			s.run(c)
		}()
	}
}

func (s *Swarm) dialPeer(peer types.PeerID, addrs []ma.Multiaddr) {
	defer s.wg.Done()

	var errs []error
	for _, addr := range addrs {
		c, err := s.dialAddr(peer, addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		s.run(c)
		return
	}
	s.push(dialFailed{peer: peer, err: &DialError{Peer: peer, Errors: errs}})
}

func (s *Swarm) dialAddr(peer types.PeerID, addr ma.Multiaddr) (*connection, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SocketTimeout)
	defer cancel()

	var d manet.Dialer
	raw, err := d.DialContext(ctx, addr)
	if err != nil {
		return nil, err
	}

	c, err := s.upgrade(raw, true)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	if c.peer != peer {
		c.close(nil)
		return nil, fmt.Errorf("%w: dialed %s, got %s", ErrPeerIDMismatch, peer.ShortString(), c.peer.ShortString())
	}
	return c, nil
}

// upgrade 建立 yamux 会话并完成握手
func (s *Swarm) upgrade(raw manet.Conn, outbound bool) (*connection, error) {
	// Exit 时中断尚未完成的握手
	stop := context.AfterFunc(s.ctx, func() { _ = raw.Close() })
	defer stop()

	m, err := yamux.NewMuxer(raw, !outbound, s.cfg.Yamux)
	if err != nil {
		return nil, err
	}

	// 握手整体限时，超时即关闭会话
	timer := time.AfterFunc(s.cfg.SocketTimeout, func() { _ = m.Close() })

	var st net.Conn
	if outbound {
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SocketTimeout)
		st, err = m.OpenStream(ctx)
		cancel()
	} else {
		st, err = m.AcceptStream()
	}
	if err != nil {
		timer.Stop()
		_ = m.Close()
		return nil, err
	}

	wc := wire.NewConn(st)
	remote, err := wire.Handshake(wc, s.key, s.cfg.Role, s.cfg.SocketTimeout)
	if !timer.Stop() && err == nil {
		err = fmt.Errorf("%w: timed out", wire.ErrHandshakeFailed)
	}
	if err != nil {
		_ = wc.Close()
		_ = m.Close()
		return nil, err
	}

	return &connection{
		peer:     remote.ID,
		role:     remote.Role,
		addr:     raw.RemoteMultiaddr(),
		outbound: outbound,
		muxer:    m,
		wc:       wc,
	}, nil
}

// run 通知所有者连接已建立，然后在当前 goroutine 中读帧直到连接关闭
func (s *Swarm) run(c *connection) {
	defer c.close(nil)

	if !s.push(connEstablished{conn: c}) {
		return
	}

	for {
		f, err := c.wc.ReadFrame()
		if err != nil {
			s.push(connClosed{conn: c, err: err})
			return
		}

		switch f.Type {
		case wire.TypeRelay, wire.TypeNetworkState:
			if !s.push(frameReceived{conn: c, frame: f}) {
				return
			}
		case wire.TypeGoodbye:
			logger.Debug("收到告别", "peer", c.peer.ShortString())
			s.push(connClosed{conn: c, err: errGoodbye})
			return
		default:
			logger.Debug("忽略帧", "peer", c.peer.ShortString(), "type", f.Type)
		}
	}
}

// push 推送内部事件，队列已关闭时返回 false
func (s *Swarm) push(ev event) bool {
	return s.events.Push(ev) == nil
}

func containsAddr(addrs []ma.Multiaddr, a ma.Multiaddr) bool {
	for _, x := range addrs {
		if x.Equal(a) {
			return true
		}
	}
	return false
}
