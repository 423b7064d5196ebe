// Package app 组装并运行中继节点
//
// Bootstrap 负责：
//   - 校验配置
//   - 组装 fx 模块（身份、节点服务、路由）
//   - 管理应用生命周期
package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/node"
	"github.com/dep2p/go-janus/internal/peerservice"
	"github.com/dep2p/go-janus/pkg/lib/log"
)

var logger = log.Logger("app")

// Bootstrap 应用引导程序
type Bootstrap struct {
	config *config.Config
	opts   options
	fxApp  *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(cfg *config.Config, opts ...Option) *Bootstrap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Bootstrap{config: cfg, opts: o}
}

// Start 构建并启动节点
func (b *Bootstrap) Start(ctx context.Context) (*Runtime, error) {
	if b.config == nil {
		b.config = config.NewConfig()
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	var (
		svc  *peerservice.PeerService
		desc *peerservice.Descriptor
	)
	b.fxApp = fx.New(
		fx.Supply(b.config),
		node.Module,
		fx.Options(b.opts.extra...),
		fx.NopLogger,
		fx.Populate(&svc, &desc),
	)
	if err := b.fxApp.Err(); err != nil {
		return nil, fmt.Errorf("组装模块失败: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, b.opts.startTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}

	logger.Info("节点已启动", "peer", svc.LocalPeer(), "addr", svc.ListenAddr())
	return &Runtime{
		PeerID:     svc.LocalPeer(),
		ListenAddr: svc.ListenAddr(),
		Descriptor: desc,
		stop:       b.Stop,
	}, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.opts.stopTimeout)
	defer cancel()
	return b.fxApp.Stop(stopCtx)
}
