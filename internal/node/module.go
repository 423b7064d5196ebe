package node

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/peerservice"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
)

// RouterParams 路由依赖参数
type RouterParams struct {
	fx.In

	Service    *peerservice.PeerService
	Descriptor *peerservice.Descriptor
}

// Module 中继节点 Fx 模块：身份、节点服务与路由
var Module = fx.Module("node",
	fx.Provide(provideIdentity),
	peerservice.Module,
	fx.Provide(provideRouter),
	fx.Invoke(registerRouter),
)

// provideIdentity 按配置加载或生成身份密钥
func provideIdentity(cfg *config.Config) (crypto.PrivateKey, error) {
	var password []byte
	if cfg.Identity.Password != "" {
		password = []byte(cfg.Identity.Password)
	}
	key, err := crypto.LoadOrGenerateIdentity(cfg.Identity.KeyFile, password)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return key, nil
}

func provideRouter(p RouterParams) *Router {
	return NewRouter(p.Service.LocalPeer(), p.Descriptor)
}

func registerRouter(lc fx.Lifecycle, r *Router) {
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan struct{})
			go func() {
				defer close(done)
				if err := r.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("路由退出", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
