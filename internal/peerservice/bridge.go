package peerservice

import (
	"context"
	"errors"
	"sync"

	"github.com/dep2p/go-janus/internal/util/queue"
)

// Descriptor 节点服务的句柄
//
// 所有方法都可并发调用。
type Descriptor struct {
	in  *queue.Unbounded[InPeerNotification]
	out *queue.Unbounded[OutPeerNotification]

	exit     chan struct{}
	exitOnce sync.Once
	done     chan struct{}
}

func newDescriptor() *Descriptor {
	return &Descriptor{
		in:   queue.New[InPeerNotification](),
		out:  queue.New[OutPeerNotification](),
		exit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Send 投递入站通知，永不阻塞；服务退出后返回 ErrChannelClosed
func (d *Descriptor) Send(n InPeerNotification) error {
	if err := d.in.Push(n); err != nil {
		return ErrChannelClosed
	}
	return nil
}

// Recv 等待下一个出站通知
//
// 服务退出且已读完剩余通知后返回 ErrChannelClosed。
func (d *Descriptor) Recv(ctx context.Context) (OutPeerNotification, error) {
	n, err := d.out.Pop(ctx)
	if errors.Is(err, queue.ErrClosed) {
		return nil, ErrChannelClosed
	}
	return n, err
}

// TryRecv 非阻塞地读取出站通知
func (d *Descriptor) TryRecv() (OutPeerNotification, bool) {
	return d.out.TryPop()
}

// Exit 请求服务退出，重复调用无副作用
func (d *Descriptor) Exit() {
	d.exitOnce.Do(func() { close(d.exit) })
}

// Done 服务完全退出后关闭
func (d *Descriptor) Done() <-chan struct{} {
	return d.done
}

// Shutdown 请求退出并等待完成
func (d *Descriptor) Shutdown(ctx context.Context) error {
	d.Exit()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
