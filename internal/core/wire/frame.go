package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-janus/pkg/types"
)

// MaxFrameSize 单帧最大字节数
const MaxFrameSize = 1 << 20

// Type 帧类型
type Type uint8

const (
	// TypeHello 握手问候
	TypeHello Type = iota + 1
	// TypeProof 握手身份证明
	TypeProof
	// TypeRelay 中继数据
	TypeRelay
	// TypeNetworkState 网络状态
	TypeNetworkState
	// TypeGoodbye 关闭前告别
	TypeGoodbye
)

func (t Type) String() string {
	switch t {
	case TypeHello:
		return "hello"
	case TypeProof:
		return "proof"
	case TypeRelay:
		return "relay"
	case TypeNetworkState:
		return "network_state"
	case TypeGoodbye:
		return "goodbye"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Role 连接一端的角色
type Role uint8

const (
	// RoleNode 中继节点
	RoleNode Role = iota + 1
	// RoleClient 客户端
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleNode:
		return "node"
	case RoleClient:
		return "client"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// Frame 一个线上帧
type Frame struct {
	Type  Type
	Src   types.PeerID
	Dst   types.PeerID
	Data  []byte
	Peers []types.PeerID
	Nonce []byte
	Role  Role
}

const (
	fieldType  protowire.Number = 1
	fieldSrc   protowire.Number = 2
	fieldDst   protowire.Number = 3
	fieldData  protowire.Number = 4
	fieldPeers protowire.Number = 5
	fieldNonce protowire.Number = 6
	fieldRole  protowire.Number = 7
)

// Relay 创建中继帧
func Relay(src, dst types.PeerID, data []byte) *Frame {
	return &Frame{Type: TypeRelay, Src: src, Dst: dst, Data: data}
}

// NetworkState 创建网络状态帧
func NetworkState(src, dst types.PeerID, peers []types.PeerID) *Frame {
	return &Frame{Type: TypeNetworkState, Src: src, Dst: dst, Peers: peers}
}

// Goodbye 创建告别帧
func Goodbye(src types.PeerID) *Frame {
	return &Frame{Type: TypeGoodbye, Src: src}
}

// Marshal 编码帧（不含长度前缀）
func (f *Frame) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Type))
	if !f.Src.IsEmpty() {
		b = appendBytes(b, fieldSrc, []byte(f.Src))
	}
	if !f.Dst.IsEmpty() {
		b = appendBytes(b, fieldDst, []byte(f.Dst))
	}
	if f.Data != nil {
		b = appendBytes(b, fieldData, f.Data)
	}
	for _, p := range f.Peers {
		b = appendBytes(b, fieldPeers, []byte(p))
	}
	if len(f.Nonce) > 0 {
		b = appendBytes(b, fieldNonce, f.Nonce)
	}
	if f.Role != 0 {
		b = protowire.AppendTag(b, fieldRole, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Role))
	}
	return b
}

// Size 返回编码后的字节数（不含长度前缀）
func (f *Frame) Size() int {
	n := protowire.SizeTag(fieldType) + protowire.SizeVarint(uint64(f.Type))
	if !f.Src.IsEmpty() {
		n += sizeBytes(fieldSrc, len(f.Src))
	}
	if !f.Dst.IsEmpty() {
		n += sizeBytes(fieldDst, len(f.Dst))
	}
	if f.Data != nil {
		n += sizeBytes(fieldData, len(f.Data))
	}
	for _, p := range f.Peers {
		n += sizeBytes(fieldPeers, len(p))
	}
	if len(f.Nonce) > 0 {
		n += sizeBytes(fieldNonce, len(f.Nonce))
	}
	if f.Role != 0 {
		n += protowire.SizeTag(fieldRole) + protowire.SizeVarint(uint64(f.Role))
	}
	return n
}

// CheckSize 帧超过 MaxFrameSize 时返回 ErrFrameTooLarge
func (f *Frame) CheckSize() error {
	if n := f.Size(); n > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	return nil
}

func sizeBytes(num protowire.Number, n int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(n)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// Unmarshal 解码帧（不含长度前缀），未知字段被跳过
func Unmarshal(b []byte) (*Frame, error) {
	f := &Frame{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case (num == fieldType || num == fieldRole) && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(m))
			}
			if v > 0xff {
				return nil, fmt.Errorf("%w: field %d out of range", ErrMalformedFrame, num)
			}
			if num == fieldType {
				f.Type = Type(v)
			} else {
				f.Role = Role(v)
			}
			b = b[m:]

		case num >= fieldSrc && num <= fieldNonce && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(m))
			}
			switch num {
			case fieldSrc:
				f.Src = types.PeerID(v)
			case fieldDst:
				f.Dst = types.PeerID(v)
			case fieldData:
				f.Data = append([]byte{}, v...)
			case fieldPeers:
				f.Peers = append(f.Peers, types.PeerID(v))
			case fieldNonce:
				f.Nonce = append([]byte{}, v...)
			}
			b = b[m:]

		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}

	if f.Type == 0 {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return f, nil
}
