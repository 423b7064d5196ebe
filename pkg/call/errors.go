package call

import "errors"

var (
	// ErrNoTarget 信封没有目标地址，不可路由
	ErrNoTarget = errors.New("call has no target")

	// ErrNoUUID 信封缺少消息 ID
	ErrNoUUID = errors.New("call has no uuid")

	// ErrUnsignedReplyTo 回复地址未签名或签名无效
	ErrUnsignedReplyTo = errors.New("reply_to is not signed by the caller")

	// ErrMalformedCall 信封编码错误
	ErrMalformedCall = errors.New("malformed call")
)
