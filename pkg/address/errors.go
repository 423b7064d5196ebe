package address

import "errors"

var (
	// ErrInvalidAddress 地址路径格式错误或签名无法验证
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownProtocol 未知的段协议码
	ErrUnknownProtocol = errors.New("unknown address protocol")
)
