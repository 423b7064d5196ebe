package ipfs

import "errors"

var (
	// ErrNoActiveRelay 尚未与引导节点建立连接，无法发送
	ErrNoActiveRelay = errors.New("no active relay")

	// ErrInvalidConfig 编排参数无效
	ErrInvalidConfig = errors.New("invalid ipfs config")
)
