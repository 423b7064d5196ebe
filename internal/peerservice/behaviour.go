package peerservice

import (
	"errors"

	"github.com/dep2p/go-janus/internal/core/swarm"
	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/types"
)

// Behaviour 节点网络行为
//
// 把通知翻译为 Swarm 上的帧，把 Swarm 事件翻译为出站通知。
// 与 Swarm 一样只能由所有者 goroutine 调用。
type Behaviour struct {
	swarm *swarm.Swarm
	out   []OutPeerNotification
}

// NewBehaviour 创建网络行为
func NewBehaviour(s *swarm.Swarm) *Behaviour {
	return &Behaviour{swarm: s}
}

// RelayMessage 把 data 原样转发给已连接的 dst，未连接时丢弃
func (b *Behaviour) RelayMessage(src, dst types.PeerID, data []byte) {
	if !b.swarm.IsConnected(dst) {
		logger.Debug("目标未连接，丢弃中继数据", "src", src.ShortString(), "dst", dst.ShortString(), "size", len(data))
		return
	}
	err := b.swarm.Send(dst, wire.Relay(src, dst, data))
	switch {
	case err == nil:
	case errors.Is(err, wire.ErrFrameTooLarge):
		logger.Warn("中继数据过大，丢弃", "src", src.ShortString(), "dst", dst.ShortString(), "size", len(data), "error", err)
	default:
		logger.Debug("中继发送失败", "dst", dst.ShortString(), "error", err)
	}
}

// SendNetworkState 向 dst 发送网络状态
//
// 已连接时直接发送；已知地址时拨号并在连接建立后发送；否则丢弃。
func (b *Behaviour) SendNetworkState(dst types.PeerID, state []types.PeerID) {
	f := wire.NetworkState(b.swarm.LocalPeer(), dst, state)
	if err := b.swarm.SendOrDial(dst, f); err != nil {
		logger.Warn("无法发送网络状态", "dst", dst.ShortString(), "error", err)
	}
}

// Poll 非阻塞地排空 Swarm 事件，转换为出站通知
func (b *Behaviour) Poll() {
	for ev, ok := b.swarm.Poll(); ok; ev, ok = b.swarm.Poll() {
		if n := b.convert(ev); n != nil {
			b.out = append(b.out, n)
		}
	}
}

func (b *Behaviour) convert(ev swarm.Event) OutPeerNotification {
	switch ev := ev.(type) {
	case swarm.PeerConnected:
		return PeerConnected{Peer: ev.Peer, Addr: ev.Addr}
	case swarm.PeerDisconnected:
		return PeerDisconnected{Peer: ev.Peer}
	case swarm.FrameReceived:
		f := ev.Frame
		switch f.Type {
		case wire.TypeRelay:
			// 客户端直连时只能以自身身份中继
			if ev.Role == wire.RoleClient && f.Src != ev.From {
				logger.Warn("客户端冒用来源，丢弃中继数据", "from", ev.From.ShortString(), "src", f.Src.ShortString())
				return nil
			}
			return RelayReceived{Src: f.Src, Dst: f.Dst, Data: f.Data}
		case wire.TypeNetworkState:
			return NetworkStateReceived{Src: ev.From, State: f.Peers}
		}
	}
	return nil
}

// PopOutEvent 按先进先出顺序取出一个出站通知
func (b *Behaviour) PopOutEvent() (OutPeerNotification, bool) {
	if len(b.out) == 0 {
		return nil, false
	}
	n := b.out[0]
	b.out[0] = nil
	b.out = b.out[1:]
	return n, true
}

// HasOutEvents 是否还有待取出的出站通知
func (b *Behaviour) HasOutEvents() bool {
	return len(b.out) > 0
}

// Ready Swarm 有新事件时可读
func (b *Behaviour) Ready() <-chan struct{} {
	return b.swarm.Ready()
}
