package swarm

import (
	"fmt"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/core/wire"
)

// Config Swarm 配置
type Config struct {
	// ListenAddr 监听地址
	ListenAddr ma.Multiaddr

	// SocketTimeout 拨号与握手超时
	SocketTimeout time.Duration

	// Role 本端在握手中宣告的角色
	Role wire.Role

	// Yamux 多路复用参数
	Yamux config.YamuxConfig
}

// DefaultConfig 返回默认配置，监听 loopback 的随机端口
func DefaultConfig() Config {
	return Config{
		ListenAddr:    ma.StringCast("/ip4/127.0.0.1/tcp/0"),
		SocketTimeout: 20 * time.Second,
		Role:          wire.RoleNode,
		Yamux:         config.DefaultYamuxConfig(),
	}
}

// ConfigFrom 由 janus 配置生成 Swarm 配置
func ConfigFrom(cfg *config.Config) (Config, error) {
	listen, err := cfg.PeerService.Listen()
	if err != nil {
		return Config{}, fmt.Errorf("listen addr: %w", err)
	}
	return Config{
		ListenAddr:    listen,
		SocketTimeout: cfg.PeerService.SocketTimeout.Duration(),
		Role:          wire.RoleNode,
		Yamux:         cfg.Yamux,
	}, nil
}
