package ipfs

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-janus/internal/client"
	"github.com/dep2p/go-janus/pkg/address"
	"github.com/dep2p/go-janus/pkg/call"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/lib/log"
	"github.com/dep2p/go-janus/pkg/types"
)

var logger = log.Logger("ipfs")

// ArgMultiaddr 回复中携带 IPFS 地址的参数键
const ArgMultiaddr = "multiaddr"

// StopReason Run 退出的原因
type StopReason int

const (
	// StoppedBySignal 收到停止信号或 ctx 结束
	StoppedBySignal StopReason = iota + 1
	// StoppedByClosedTransport 客户端传输已关闭
	StoppedByClosedTransport
)

func (r StopReason) String() string {
	switch r {
	case StoppedBySignal:
		return "stopped by signal"
	case StoppedByClosedTransport:
		return "transport closed"
	default:
		return "unknown"
	}
}

// Transport 编排所需的客户端传输，*client.Client 实现该接口
type Transport interface {
	PeerID() types.PeerID
	Key() crypto.PrivateKey
	Events() <-chan client.Event
	Send(client.Command) error
	Stop()
	Done() <-chan struct{}
}

type orchestrator struct {
	cfg   Config
	t     Transport
	relay types.PeerID
}

// Run 运行编排循环直到 stop 关闭、ctx 结束或传输关闭
//
// 退出时恰好调用一次 t.Stop() 并等待 t.Done()。
// cfg 无效时直接返回 ErrInvalidConfig，不触碰 t。
func Run(ctx context.Context, cfg Config, t Transport, stop <-chan struct{}) (StopReason, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	o := &orchestrator{cfg: cfg, t: t}

	defer func() {
		t.Stop()
		<-t.Done()
		logger.Info("客户端已退出")
	}()

	ticker := cfg.Clock.Ticker(cfg.Interval)
	defer ticker.Stop()

	tickC := ticker.C
	if cfg.MaxRegistrations <= 0 {
		tickC = nil
	}
	ticks := 0

	events := t.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				logger.Warn("客户端传输已关闭")
				return StoppedByClosedTransport, nil
			}
			o.handleEvent(ev)

		case <-tickC:
			ticks++
			o.register()
			if ticks >= cfg.MaxRegistrations {
				ticker.Stop()
				tickC = nil
			}

		case <-stop:
			logger.Info("收到停止信号")
			return StoppedBySignal, nil

		case <-ctx.Done():
			logger.Info("上下文结束", "error", ctx.Err())
			return StoppedBySignal, nil
		}
	}
}

func (o *orchestrator) handleEvent(ev client.Event) {
	switch ev := ev.(type) {
	case client.NewConnection:
		if ev.Multiaddr != nil && ev.Multiaddr.Equal(o.cfg.Bootstrap) {
			o.relay = ev.PeerID
			logger.Info("引导节点已连接，开始注册", "relay", ev.PeerID.ShortString())
			return
		}
		logger.Info("忽略非引导节点连接", "peer", ev.PeerID.ShortString(), "addr", ev.Multiaddr)

	case client.FunctionCall:
		o.handleCall(ev)

	default:
		logger.Debug("忽略事件", "event", ev)
	}
}

func (o *orchestrator) handleCall(ev client.FunctionCall) {
	c := ev.Call
	if c == nil || c.Target == nil || c.ReplyTo == nil || !c.Target.Contains(address.Service(o.cfg.ServiceID)) {
		logger.Info("忽略调用", "sender", ev.Sender.ShortString(), "call", c)
		return
	}
	if err := address.Verify(*c.ReplyTo); err != nil {
		logger.Warn("回复地址未通过验证，忽略调用", "sender", ev.Sender.ShortString(), "reply_to", c.ReplyTo, "error", err)
		return
	}

	logger.Info("收到服务调用，请节点转发回复", "service", o.cfg.ServiceID, "sender", ev.Sender.ShortString(), "reply_to", c.ReplyTo)
	if o.relay.IsEmpty() {
		logger.Warn("无法回复", "service", o.cfg.ServiceID, "error", ErrNoActiveRelay)
		return
	}

	msgID, _ := c.StringArg(call.ArgMsgID)
	reply, err := call.ReplyCall(
		o.relay, o.t.PeerID(), *c.ReplyTo, msgID,
		map[string]any{ArgMultiaddr: o.cfg.IPFSAddr.String()},
		o.t.Key(),
		call.WithName("Reply on "+o.cfg.ServiceID),
	)
	if err != nil {
		logger.Warn("构建回复失败", "error", err)
		return
	}
	o.send(reply)
}

func (o *orchestrator) register() {
	if o.relay.IsEmpty() {
		logger.Debug("跳过注册", "error", ErrNoActiveRelay)
		return
	}

	c, err := call.RegistrationCall(o.t.PeerID(), o.relay, o.cfg.ServiceID, o.t.Key())
	if err != nil {
		logger.Warn("构建注册调用失败", "error", err)
		return
	}
	logger.Info("发送注册调用", "call", c)
	o.send(c)
}

func (o *orchestrator) send(c *call.FunctionCall) {
	if err := o.t.Send(client.Call{Node: o.relay, Call: c}); err != nil {
		logger.Warn("发送调用失败", "uuid", c.UUID, "error", err)
	}
}
