package peerservice

import (
	"runtime"
	"sync/atomic"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/core/swarm"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/lib/log"
	"github.com/dep2p/go-janus/pkg/types"
)

var logger = log.Logger("peerservice")

// PeerService 节点服务
type PeerService struct {
	local     types.PeerID
	swarm     *swarm.Swarm
	behaviour *Behaviour
	desc      *Descriptor

	listenAddr ma.Multiaddr
	started    atomic.Bool
}

// New 创建节点服务
//
// 配置中的已知节点地址会登记到 Swarm，供发送网络状态时拨号。
func New(cfg *config.Config, key crypto.PrivateKey) (*PeerService, error) {
	scfg, err := swarm.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}

	s, err := swarm.New(key, scfg)
	if err != nil {
		return nil, err
	}

	for _, kp := range cfg.PeerService.KnownPeers {
		id, addrs, err := kp.Parse()
		if err != nil {
			return nil, err
		}
		s.AddAddrs(id, addrs...)
	}

	return &PeerService{
		local:     s.LocalPeer(),
		swarm:     s,
		behaviour: NewBehaviour(s),
		desc:      newDescriptor(),
	}, nil
}

// LocalPeer 返回本节点 PeerID
func (p *PeerService) LocalPeer() types.PeerID {
	return p.local
}

// ListenAddr 返回实际监听地址，Start 之前为 nil
func (p *PeerService) ListenAddr() ma.Multiaddr {
	return p.listenAddr
}

// Descriptor 返回服务句柄；Start 之前投递的通知在启动后处理
func (p *PeerService) Descriptor() *Descriptor {
	return p.desc
}

// Start 开始监听并启动调度 goroutine，只能调用一次
func (p *PeerService) Start() (*Descriptor, error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	if err := p.swarm.Listen(); err != nil {
		p.shutdown()
		return nil, err
	}
	p.listenAddr = p.swarm.ListenAddr()

	logger.Info("节点服务启动", "peer", p.local, "addr", p.listenAddr)
	go p.run()
	return p.desc, nil
}

// run 调度循环，独占 swarm 与 behaviour
func (p *PeerService) run() {
	defer p.shutdown()

	d := p.desc
	for {
		select {
		case <-d.exit:
			return
		default:
		}

		if err := p.tick(); err != nil {
			logger.Warn("出站通道关闭，节点服务退出", "error", err)
			return
		}

		if p.behaviour.HasOutEvents() {
			runtime.Gosched()
			continue
		}

		select {
		case <-d.exit:
			return
		case <-d.in.Ready():
		case <-p.behaviour.Ready():
		}
	}
}

// tick 执行一轮调度
func (p *PeerService) tick() error {
	for {
		n, ok := p.desc.in.TryPop()
		if !ok {
			break
		}
		p.handle(n)
	}

	p.behaviour.Poll()

	if n, ok := p.behaviour.PopOutEvent(); ok {
		if err := p.desc.out.Push(n); err != nil {
			return ErrChannelClosed
		}
	}
	return nil
}

func (p *PeerService) handle(n InPeerNotification) {
	switch n := n.(type) {
	case Relay:
		p.behaviour.RelayMessage(n.Src, n.Dst, n.Data)
	case NetworkState:
		p.behaviour.SendNetworkState(n.Dst, n.State)
	}
}

// shutdown 关闭入站通道、告别所有节点、关闭出站通道
func (p *PeerService) shutdown() {
	d := p.desc
	d.in.Close()
	p.swarm.Exit()
	d.out.Close()
	d.Exit()
	close(d.done)
	logger.Info("节点服务已退出", "peer", p.local.ShortString())
}
