package config

import (
	"fmt"
	"time"

	ma "github.com/multiformats/go-multiaddr"
)

// DefaultIPFSServiceID IPFS 客户端注册的服务标识
const DefaultIPFSServiceID = "IPFS.multiaddr"

// IPFSConfig IPFS 客户端编排配置
type IPFSConfig struct {
	// Bootstrap 引导（中继）节点地址
	Bootstrap string `json:"bootstrap"`

	// Multiaddr 对外公布的 IPFS 节点地址
	Multiaddr string `json:"multiaddr"`

	// ServiceID 注册的服务标识
	ServiceID string `json:"service_id"`

	// Interval 注册间隔
	Interval Duration `json:"interval"`

	// MaxRegistrations 最多注册次数
	MaxRegistrations int `json:"max_registrations"`
}

// DefaultIPFSConfig 返回默认 IPFS 配置
func DefaultIPFSConfig() IPFSConfig {
	return IPFSConfig{
		Bootstrap:        "/ip4/127.0.0.1/tcp/9999",
		Multiaddr:        "/ip4/127.0.0.1/tcp/5001",
		ServiceID:        DefaultIPFSServiceID,
		Interval:         Duration(10 * time.Second),
		MaxRegistrations: 10,
	}
}

// Validate 验证 IPFS 配置
func (c IPFSConfig) Validate() error {
	if _, err := ma.NewMultiaddr(c.Bootstrap); err != nil {
		return fmt.Errorf("%w: bootstrap %q: %v", ErrInvalidConfig, c.Bootstrap, err)
	}
	if _, err := ma.NewMultiaddr(c.Multiaddr); err != nil {
		return fmt.Errorf("%w: multiaddr %q: %v", ErrInvalidConfig, c.Multiaddr, err)
	}
	if c.ServiceID == "" {
		return fmt.Errorf("%w: service_id is empty", ErrInvalidConfig)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.MaxRegistrations < 0 {
		return fmt.Errorf("%w: max_registrations must not be negative", ErrInvalidConfig)
	}
	return nil
}
