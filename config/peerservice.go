package config

import (
	"fmt"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/pkg/types"
)

// PeerServiceConfig 节点服务配置
type PeerServiceConfig struct {
	// ListenAddr 监听地址（multiaddr）
	ListenAddr string `json:"listen_addr"`

	// SocketTimeout 拨号与握手超时
	SocketTimeout Duration `json:"socket_timeout"`

	// KnownPeers 已知节点列表
	KnownPeers []KnownPeer `json:"known_peers,omitempty"`
}

// DefaultPeerServiceConfig 返回默认节点服务配置
func DefaultPeerServiceConfig() PeerServiceConfig {
	return PeerServiceConfig{
		ListenAddr:    "/ip4/0.0.0.0/tcp/9999",
		SocketTimeout: Duration(20 * time.Second),
	}
}

// Validate 验证节点服务配置
func (c PeerServiceConfig) Validate() error {
	if _, err := ma.NewMultiaddr(c.ListenAddr); err != nil {
		return fmt.Errorf("%w: listen_addr %q: %v", ErrInvalidConfig, c.ListenAddr, err)
	}
	if c.SocketTimeout <= 0 {
		return fmt.Errorf("%w: socket_timeout must be positive", ErrInvalidConfig)
	}
	for _, kp := range c.KnownPeers {
		if _, _, err := kp.Parse(); err != nil {
			return err
		}
	}
	return nil
}

// Listen 返回解析后的监听地址
func (c PeerServiceConfig) Listen() (ma.Multiaddr, error) {
	return ma.NewMultiaddr(c.ListenAddr)
}

// Parse 解析已知节点的 PeerID 与地址
func (kp KnownPeer) Parse() (types.PeerID, []ma.Multiaddr, error) {
	id, err := types.ParsePeerID(kp.PeerID)
	if err != nil {
		return types.EmptyPeerID, nil, fmt.Errorf("%w: known peer %q: %v", ErrInvalidConfig, kp.PeerID, err)
	}
	addrs := make([]ma.Multiaddr, 0, len(kp.Addrs))
	for _, s := range kp.Addrs {
		addr, err := ma.NewMultiaddr(s)
		if err != nil {
			return types.EmptyPeerID, nil, fmt.Errorf("%w: known peer %s addr %q: %v", ErrInvalidConfig, id.ShortString(), s, err)
		}
		addrs = append(addrs, addr)
	}
	return id, addrs, nil
}
