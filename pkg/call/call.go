package call

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dep2p/go-janus/pkg/address"
)

// FunctionCall 调用信封
type FunctionCall struct {
	// UUID 消息唯一 ID
	UUID string

	// Target 目标地址，nil 表示不可路由
	Target *address.Path

	// ReplyTo 已签名的回复地址
	ReplyTo *address.Path

	// Arguments 结构化参数（JSON 兼容）
	Arguments *structpb.Struct

	// Name 可读名称
	Name string
}

// Validate 检查信封是否可以离开本节点
func (c *FunctionCall) Validate() error {
	if c.UUID == "" {
		return ErrNoUUID
	}
	if c.Target == nil || c.Target.IsEmpty() {
		return ErrNoTarget
	}
	if c.ReplyTo != nil {
		if err := address.Verify(*c.ReplyTo); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsignedReplyTo, err)
		}
	}
	return nil
}

// StringArg 读取字符串类型的参数
func (c *FunctionCall) StringArg(key string) (string, bool) {
	if c.Arguments == nil {
		return "", false
	}
	v, ok := c.Arguments.GetFields()[key]
	if !ok {
		return "", false
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return s.StringValue, true
}

type callJSON struct {
	UUID      string          `json:"uuid"`
	Target    *address.Path   `json:"target,omitempty"`
	ReplyTo   *address.Path   `json:"reply_to,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Name      string          `json:"name,omitempty"`
}

// MarshalJSON 输出便于日志和调试的 JSON 形式
func (c *FunctionCall) MarshalJSON() ([]byte, error) {
	out := callJSON{
		UUID:    c.UUID,
		Target:  c.Target,
		ReplyTo: c.ReplyTo,
		Name:    c.Name,
	}
	if c.Arguments != nil {
		args, err := protojson.Marshal(c.Arguments)
		if err != nil {
			return nil, err
		}
		out.Arguments = args
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解析 MarshalJSON 的输出
func (c *FunctionCall) UnmarshalJSON(data []byte) error {
	var in callJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = FunctionCall{
		UUID:    in.UUID,
		Target:  in.Target,
		ReplyTo: in.ReplyTo,
		Name:    in.Name,
	}
	if len(in.Arguments) > 0 {
		args := &structpb.Struct{}
		if err := protojson.Unmarshal(in.Arguments, args); err != nil {
			return err
		}
		c.Arguments = args
	}
	return nil
}

// String 返回信封的 JSON 表示
func (c *FunctionCall) String() string {
	b, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("FunctionCall{uuid=%s}", c.UUID)
	}
	return string(b)
}
