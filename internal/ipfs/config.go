// Package ipfs 实现 IPFS 地址服务的客户端编排
//
// 连接引导节点后周期性地向其注册服务，并应答针对该服务的调用，
// 回复中携带本地 IPFS 节点的 multiaddr。
package ipfs

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-janus/config"
)

// Config 编排参数
type Config struct {
	// Bootstrap 引导节点地址，NewConnection 与之相同时记为中继
	Bootstrap ma.Multiaddr

	// IPFSAddr 回复中公布的 IPFS 地址
	IPFSAddr ma.Multiaddr

	// ServiceID 注册与应答的服务标识
	ServiceID string

	// Interval 注册间隔
	Interval time.Duration

	// MaxRegistrations 最多注册次数
	MaxRegistrations int

	// Clock 时钟，测试中替换为 clock.Mock
	Clock clock.Clock
}

// Validate 检查 Run 所需的参数
func (c Config) Validate() error {
	switch {
	case c.Bootstrap == nil:
		return fmt.Errorf("%w: bootstrap is nil", ErrInvalidConfig)
	case c.IPFSAddr == nil:
		return fmt.Errorf("%w: ipfs addr is nil", ErrInvalidConfig)
	case c.ServiceID == "":
		return fmt.Errorf("%w: service id is empty", ErrInvalidConfig)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// ConfigFrom 由 janus 配置生成编排参数
func ConfigFrom(cfg config.IPFSConfig) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return Config{
		Bootstrap:        ma.StringCast(cfg.Bootstrap),
		IPFSAddr:         ma.StringCast(cfg.Multiaddr),
		ServiceID:        cfg.ServiceID,
		Interval:         cfg.Interval.Duration(),
		MaxRegistrations: cfg.MaxRegistrations,
		Clock:            clock.New(),
	}, nil
}
