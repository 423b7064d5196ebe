package app

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/internal/peerservice"
	"github.com/dep2p/go-janus/pkg/types"
)

// Runtime 已启动的节点
type Runtime struct {
	PeerID     types.PeerID
	ListenAddr ma.Multiaddr
	Descriptor *peerservice.Descriptor

	stop func(ctx context.Context) error
}

// Stop 停止节点（触发 fx 生命周期 OnStop）
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
