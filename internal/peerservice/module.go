package peerservice

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
)

// Params 节点服务依赖参数
type Params struct {
	fx.In

	Config *config.Config
	Key    crypto.PrivateKey
}

// Output 节点服务模块输出
type Output struct {
	fx.Out

	Service    *PeerService
	Descriptor *Descriptor
}

// Module 节点服务 Fx 模块
var Module = fx.Module("peerservice",
	fx.Provide(provide),
	fx.Invoke(registerLifecycle),
)

func provide(p Params) (Output, error) {
	svc, err := New(p.Config, p.Key)
	if err != nil {
		return Output{}, err
	}
	return Output{Service: svc, Descriptor: svc.Descriptor()}, nil
}

func registerLifecycle(lc fx.Lifecycle, svc *PeerService) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			_, err := svc.Start()
			return err
		},
		OnStop: func(ctx context.Context) error {
			return svc.Descriptor().Shutdown(ctx)
		},
	})
}
