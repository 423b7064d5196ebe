package call

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dep2p/go-janus/pkg/address"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

// ProvideService 中继节点上注册服务的内置服务名
const ProvideService = "provide"

// 参数键
const (
	ArgServiceID = "service_id"
	ArgMsgID     = "msg_id"
)

// NewMessageID 生成新的消息 ID（UUID v4）
func NewMessageID() string {
	return uuid.NewString()
}

// Option 构建器选项
type Option func(*FunctionCall)

// WithName 设置可读名称
func WithName(name string) Option {
	return func(c *FunctionCall) {
		c.Name = name
	}
}

// RegistrationCall 构建向中继注册服务的调用
//
// target = Service("provide")，arguments = {service_id}，
// reply_to = self 签名的 [Peer(relay), Peer(self)]。
func RegistrationCall(self, relay types.PeerID, serviceID string, key crypto.PrivateKey, opts ...Option) (*FunctionCall, error) {
	replyTo, err := address.SignedRelayPath(relay, self, key)
	if err != nil {
		return nil, err
	}

	args, err := structpb.NewStruct(map[string]any{ArgServiceID: serviceID})
	if err != nil {
		return nil, err
	}

	target := address.ServicePath(ProvideService)
	c := &FunctionCall{
		UUID:      NewMessageID(),
		Target:    &target,
		ReplyTo:   &replyTo,
		Arguments: args,
		Name:      fmt.Sprintf("Delegate provide service %s", serviceID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ReplyCall 构建对收到调用的回复
//
// target = dest（来自请求的回复地址），arguments = payload 加上 msg_id，
// correlationID 为空时 msg_id 为 null。
func ReplyCall(relay, self types.PeerID, dest address.Path, correlationID string, payload map[string]any, key crypto.PrivateKey, opts ...Option) (*FunctionCall, error) {
	if dest.IsEmpty() {
		return nil, ErrNoTarget
	}

	replyTo, err := address.SignedRelayPath(relay, self, key)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		fields[k] = v
	}
	if correlationID != "" {
		fields[ArgMsgID] = correlationID
	} else {
		fields[ArgMsgID] = nil
	}

	args, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: arguments: %v", ErrMalformedCall, err)
	}

	c := &FunctionCall{
		UUID:      NewMessageID(),
		Target:    &dest,
		ReplyTo:   &replyTo,
		Arguments: args,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}
