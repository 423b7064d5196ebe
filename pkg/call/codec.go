package call

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dep2p/go-janus/pkg/address"
)

// 信封线上字段号
const (
	fieldUUID      protowire.Number = 1
	fieldTarget    protowire.Number = 2
	fieldReplyTo   protowire.Number = 3
	fieldArguments protowire.Number = 4
	fieldName      protowire.Number = 5
)

// Marshal 编码信封
//
// 编码前执行 Validate，不可路由或回复地址未签名的信封不会被编码。
func Marshal(c *FunctionCall) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var out []byte
	out = protowire.AppendTag(out, fieldUUID, protowire.BytesType)
	out = protowire.AppendString(out, c.UUID)

	out = protowire.AppendTag(out, fieldTarget, protowire.BytesType)
	out = protowire.AppendBytes(out, c.Target.Bytes())

	if c.ReplyTo != nil {
		out = protowire.AppendTag(out, fieldReplyTo, protowire.BytesType)
		out = protowire.AppendBytes(out, c.ReplyTo.Bytes())
	}

	if c.Arguments != nil {
		args, err := proto.MarshalOptions{Deterministic: true}.Marshal(c.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%w: arguments: %v", ErrMalformedCall, err)
		}
		out = protowire.AppendTag(out, fieldArguments, protowire.BytesType)
		out = protowire.AppendBytes(out, args)
	}

	if c.Name != "" {
		out = protowire.AppendTag(out, fieldName, protowire.BytesType)
		out = protowire.AppendString(out, c.Name)
	}
	return out, nil
}

// Unmarshal 解码信封，未知字段被跳过
//
// 解码本身不做 Validate，接收方按自身策略决定是否拒绝。
func Unmarshal(data []byte) (*FunctionCall, error) {
	c := &FunctionCall{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCall, protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedCall, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCall, protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldUUID:
			c.UUID = string(v)
		case fieldTarget:
			p, err := address.PathFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: target: %v", ErrMalformedCall, err)
			}
			c.Target = &p
		case fieldReplyTo:
			p, err := address.PathFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: reply_to: %v", ErrMalformedCall, err)
			}
			c.ReplyTo = &p
		case fieldArguments:
			args := &structpb.Struct{}
			if err := proto.Unmarshal(v, args); err != nil {
				return nil, fmt.Errorf("%w: arguments: %v", ErrMalformedCall, err)
			}
			c.Arguments = args
		case fieldName:
			c.Name = string(v)
		}
	}
	return c, nil
}
