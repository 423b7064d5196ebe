package peerservice

import "errors"

var (
	// ErrChannelClosed 通知通道已关闭，服务已退出或正在退出
	ErrChannelClosed = errors.New("peer service channel closed")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("peer service already started")
)
