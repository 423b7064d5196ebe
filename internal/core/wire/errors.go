package wire

import "errors"

var (
	// ErrFrameTooLarge 帧长度超过上限
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrMalformedFrame 帧无法解码
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrHandshakeFailed 握手失败
	ErrHandshakeFailed = errors.New("handshake failed")
)
