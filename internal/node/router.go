// Package node 实现中继节点的路由
//
// Router 消费节点服务的出站通知：
//
//   - 目标是其他已连接节点的中继数据原样转发
//   - 目标是本节点的调用按 target 路由：跳过指向本节点的前缀后，
//     下一段是 Peer/Client 时转发给该节点；是 Service 时转发给注册了该服务的客户端
//   - Service("provide") 调用登记服务提供者，提供者为回复地址的签名方
//   - 新连接建立时向其推送当前已连接的节点列表
package node

import (
	"context"
	"errors"

	"github.com/dep2p/go-janus/internal/peerservice"
	"github.com/dep2p/go-janus/pkg/address"
	"github.com/dep2p/go-janus/pkg/call"
	"github.com/dep2p/go-janus/pkg/lib/log"
	"github.com/dep2p/go-janus/pkg/types"
)

var logger = log.Logger("node")

// Router 中继路由，状态只在 Run 的 goroutine 内访问
type Router struct {
	self types.PeerID
	desc *peerservice.Descriptor

	connected map[types.PeerID]bool
	providers map[string]types.PeerID
}

// NewRouter 创建路由
func NewRouter(self types.PeerID, desc *peerservice.Descriptor) *Router {
	return &Router{
		self:      self,
		desc:      desc,
		connected: make(map[types.PeerID]bool),
		providers: make(map[string]types.PeerID),
	}
}

// Run 处理出站通知直到节点服务退出或 ctx 结束
func (r *Router) Run(ctx context.Context) error {
	for {
		n, err := r.desc.Recv(ctx)
		if errors.Is(err, peerservice.ErrChannelClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		r.handle(n)
	}
}

func (r *Router) handle(n peerservice.OutPeerNotification) {
	switch n := n.(type) {
	case peerservice.PeerConnected:
		r.connected[n.Peer] = true
		r.send(peerservice.NetworkState{Dst: n.Peer, State: r.peers()})

	case peerservice.PeerDisconnected:
		delete(r.connected, n.Peer)
		for name, p := range r.providers {
			if p == n.Peer {
				delete(r.providers, name)
				logger.Info("服务提供者断开", "service", name, "peer", n.Peer.ShortString())
			}
		}

	case peerservice.RelayReceived:
		if n.Dst != r.self {
			r.forward(n.Src, n.Dst, n.Data)
			return
		}
		r.route(n.Src, n.Data)

	case peerservice.NetworkStateReceived:
		logger.Debug("收到网络状态", "src", n.Src.ShortString(), "peers", len(n.State))
	}
}

// route 按调用的 target 路由发给本节点的数据
func (r *Router) route(src types.PeerID, data []byte) {
	c, err := call.Unmarshal(data)
	if err != nil {
		logger.Warn("无法解码调用", "src", src.ShortString(), "error", err)
		return
	}
	if c.Target == nil {
		logger.Debug("调用缺少 target", "src", src.ShortString(), "uuid", c.UUID)
		return
	}

	segs := c.Target.Segments()
	i := 0
	for i < len(segs) && segs[i].Equal(address.Peer(r.self)) {
		i++
	}
	if i == len(segs) {
		logger.Debug("调用终止于本节点", "uuid", c.UUID)
		return
	}

	if id, ok := segs[i].PeerID(); ok {
		r.forward(src, id, data)
		return
	}

	name, ok := segs[i].ServiceName()
	if !ok {
		logger.Debug("无法路由", "uuid", c.UUID, "target", c.Target)
		return
	}
	if name == call.ProvideService {
		r.register(src, c)
		return
	}
	if provider, ok := r.providers[name]; ok {
		r.forward(src, provider, data)
		return
	}
	logger.Info("服务没有提供者", "service", name, "uuid", c.UUID)
}

// register 登记服务提供者
func (r *Router) register(src types.PeerID, c *call.FunctionCall) {
	serviceID, ok := c.StringArg(call.ArgServiceID)
	if !ok || serviceID == "" || c.ReplyTo == nil {
		logger.Warn("注册调用参数无效", "src", src.ShortString(), "uuid", c.UUID)
		return
	}
	if err := address.Verify(*c.ReplyTo); err != nil {
		logger.Warn("注册调用回复地址无效", "src", src.ShortString(), "error", err)
		return
	}
	provider, err := address.Signer(*c.ReplyTo)
	if err != nil {
		logger.Warn("注册调用缺少签名方", "src", src.ShortString(), "error", err)
		return
	}

	r.providers[serviceID] = provider
	logger.Info("登记服务提供者", "service", serviceID, "provider", provider.ShortString())
}

func (r *Router) forward(src, dst types.PeerID, data []byte) {
	if !r.connected[dst] {
		logger.Debug("目标未连接，丢弃", "src", src.ShortString(), "dst", dst.ShortString())
		return
	}
	r.send(peerservice.Relay{Src: src, Dst: dst, Data: data})
}

func (r *Router) send(n peerservice.InPeerNotification) {
	if err := r.desc.Send(n); err != nil {
		logger.Debug("节点服务已关闭", "error", err)
	}
}

func (r *Router) peers() []types.PeerID {
	peers := make([]types.PeerID, 0, len(r.connected)+1)
	peers = append(peers, r.self)
	for p := range r.connected {
		peers = append(peers, p)
	}
	return peers
}
