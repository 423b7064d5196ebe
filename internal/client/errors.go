package client

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("client transport closed")

	// ErrInvalidCommand 命令缺少必要字段
	ErrInvalidCommand = errors.New("invalid command")
)
