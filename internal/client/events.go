package client

import (
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/pkg/call"
	"github.com/dep2p/go-janus/pkg/types"
)

// Event 客户端事件
type Event interface {
	isEvent()
}

// NewConnection 与节点完成握手
type NewConnection struct {
	PeerID    types.PeerID
	Multiaddr ma.Multiaddr
}

// FunctionCall 收到经节点中继的调用
type FunctionCall struct {
	Call   *call.FunctionCall
	Sender types.PeerID
}

// NetworkState 节点推送的网络状态
type NetworkState struct {
	From  types.PeerID
	Peers []types.PeerID
}

func (NewConnection) isEvent() {}
func (FunctionCall) isEvent()  {}
func (NetworkState) isEvent()  {}

// Command 客户端命令
type Command interface {
	isCommand()
}

// Call 把调用交给节点 Node 路由
type Call struct {
	Node types.PeerID
	Call *call.FunctionCall
}

func (Call) isCommand() {}
