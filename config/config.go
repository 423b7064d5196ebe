// Package config 提供 janus 节点与 IPFS 客户端的配置
//
// 主 Config 嵌入各子配置，每个子配置在独立文件中定义，
// 提供 DefaultXxxConfig 默认值与 Validate 校验。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.PeerService.ListenAddr = "/ip4/0.0.0.0/tcp/9999"
//
//	// 从文件加载
//	cfg, err := config.LoadFile("janus.json")
package config

import "fmt"

// KnownPeer 已知节点配置
//
// 节点向这些 PeerID 发送网络状态时，若尚未连接则按 Addrs 拨号。
type KnownPeer struct {
	// PeerID 目标节点的 Peer ID
	PeerID string `json:"peer_id"`

	// Addrs 目标节点的 multiaddr 列表，例如 "/ip4/1.2.3.4/tcp/9999"
	Addrs []string `json:"addrs"`
}

// Config 是 janus 的完整配置结构
//
//   - Identity: 节点/客户端身份密钥
//   - PeerService: 节点监听与已知节点
//   - IPFS: IPFS 客户端的注册与应答参数
//   - Yamux: 连接多路复用参数
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// PeerService 节点服务配置
	PeerService PeerServiceConfig `json:"peer_service"`

	// IPFS 客户端编排配置
	IPFS IPFSConfig `json:"ipfs"`

	// Yamux 多路复用配置
	Yamux YamuxConfig `json:"yamux"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:    DefaultIdentityConfig(),
		PeerService: DefaultPeerServiceConfig(),
		IPFS:        DefaultIPFSConfig(),
		Yamux:       DefaultYamuxConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.PeerService.Validate(); err != nil {
		return fmt.Errorf("peer_service: %w", err)
	}
	if err := c.IPFS.Validate(); err != nil {
		return fmt.Errorf("ipfs: %w", err)
	}
	if err := c.Yamux.Validate(); err != nil {
		return fmt.Errorf("yamux: %w", err)
	}
	return nil
}
