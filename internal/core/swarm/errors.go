package swarm

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-janus/pkg/types"
)

var (
	// ErrSwarmClosed Swarm 已关闭
	ErrSwarmClosed = errors.New("swarm closed")

	// ErrNoConnection 没有到该节点的连接
	ErrNoConnection = errors.New("no connection to peer")

	// ErrNoAddresses 没有该节点的地址
	ErrNoAddresses = errors.New("no addresses")

	// ErrDialToSelf 尝试拨号自己
	ErrDialToSelf = errors.New("dial to self attempted")

	// ErrPeerIDMismatch 对端身份与拨号目标不符
	ErrPeerIDMismatch = errors.New("peer id mismatch")

	// ErrAlreadyListening 已在监听
	ErrAlreadyListening = errors.New("already listening")
)

// DialError 拨号错误，包含每个地址的错误
type DialError struct {
	Peer   types.PeerID
	Errors []error
}

func (e *DialError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("failed to dial %s: unknown error", e.Peer.ShortString())
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("failed to dial %s: %v", e.Peer.ShortString(), e.Errors[0])
	}
	return fmt.Sprintf("failed to dial %s: %d errors: %v", e.Peer.ShortString(), len(e.Errors), e.Errors)
}

// Unwrap 返回第一个错误
func (e *DialError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}
