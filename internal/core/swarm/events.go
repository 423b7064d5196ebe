package swarm

import (
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/types"
)

// Event Swarm 对外事件
type Event interface {
	isEvent()
}

// PeerConnected 与节点完成握手
type PeerConnected struct {
	Peer types.PeerID
	Addr ma.Multiaddr
	Role wire.Role
}

// PeerDisconnected 与节点的连接已断开
type PeerDisconnected struct {
	Peer types.PeerID
}

// FrameReceived 收到中继或网络状态帧
//
// From 与 Role 来自握手认证，Frame.Src 由发送方声明。
type FrameReceived struct {
	From  types.PeerID
	Role  wire.Role
	Frame *wire.Frame
}

func (PeerConnected) isEvent()    {}
func (PeerDisconnected) isEvent() {}
func (FrameReceived) isEvent()    {}

// 内部事件，由后台 goroutine 推送，所有者在 Poll 中处理
type event interface {
	isInternal()
}

type connEstablished struct {
	conn *connection
}

type connClosed struct {
	conn *connection
	err  error
}

type frameReceived struct {
	conn  *connection
	frame *wire.Frame
}

type dialFailed struct {
	peer types.PeerID
	err  error
}

func (connEstablished) isInternal() {}
func (connClosed) isInternal()      {}
func (frameReceived) isInternal()   {}
func (dialFailed) isInternal()      {}
