package peerservice

import (
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/pkg/types"
)

// InPeerNotification 投递给节点服务的通知
type InPeerNotification interface {
	isInPeerNotification()
}

// Relay 把 Data 原样转发给已连接的 Dst
type Relay struct {
	Src  types.PeerID
	Dst  types.PeerID
	Data []byte
}

// NetworkState 把网络状态发送给 Dst，未连接时按已知地址拨号
type NetworkState struct {
	Dst   types.PeerID
	State []types.PeerID
}

func (Relay) isInPeerNotification()        {}
func (NetworkState) isInPeerNotification() {}

// OutPeerNotification 节点服务产生的通知
type OutPeerNotification interface {
	isOutPeerNotification()
	fmt.Stringer
}

// RelayReceived 收到中继数据
type RelayReceived struct {
	Src  types.PeerID
	Dst  types.PeerID
	Data []byte
}

// NetworkStateReceived 收到网络状态
type NetworkStateReceived struct {
	Src   types.PeerID
	State []types.PeerID
}

// PeerConnected 与节点或客户端建立连接
type PeerConnected struct {
	Peer types.PeerID
	Addr ma.Multiaddr
}

// PeerDisconnected 连接断开
type PeerDisconnected struct {
	Peer types.PeerID
}

func (RelayReceived) isOutPeerNotification()        {}
func (NetworkStateReceived) isOutPeerNotification() {}
func (PeerConnected) isOutPeerNotification()        {}
func (PeerDisconnected) isOutPeerNotification()     {}

func (n RelayReceived) String() string {
	return fmt.Sprintf("RelayReceived{%s -> %s, %d bytes}", n.Src.ShortString(), n.Dst.ShortString(), len(n.Data))
}

func (n NetworkStateReceived) String() string {
	return fmt.Sprintf("NetworkStateReceived{%s, %d peers}", n.Src.ShortString(), len(n.State))
}

func (n PeerConnected) String() string {
	return fmt.Sprintf("PeerConnected{%s at %s}", n.Peer.ShortString(), n.Addr)
}

func (n PeerDisconnected) String() string {
	return fmt.Sprintf("PeerDisconnected{%s}", n.Peer.ShortString())
}
