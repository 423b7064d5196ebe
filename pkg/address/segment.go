package address

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/dep2p/go-janus/pkg/types"
)

// Protocol 段协议码
type Protocol uint64

const (
	// ProtocolPeer 节点段
	ProtocolPeer Protocol = 0x01
	// ProtocolClient 客户端段
	ProtocolClient Protocol = 0x02
	// ProtocolService 服务段
	ProtocolService Protocol = 0x03
	// ProtocolSignature 签名段
	ProtocolSignature Protocol = 0x04
)

// String 返回协议的文本名称
func (p Protocol) String() string {
	switch p {
	case ProtocolPeer:
		return "peer"
	case ProtocolClient:
		return "client"
	case ProtocolService:
		return "service"
	case ProtocolSignature:
		return "signature"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(p))
	}
}

func protocolByName(name string) (Protocol, bool) {
	switch name {
	case "peer":
		return ProtocolPeer, true
	case "client":
		return ProtocolClient, true
	case "service":
		return ProtocolService, true
	case "signature":
		return ProtocolSignature, true
	default:
		return 0, false
	}
}

// Segment 地址路径中的一段
//
// value 以 string 保存，签名字节在构造时被复制，段创建后不可修改。
type Segment struct {
	proto Protocol
	value string
}

// Peer 创建节点段
func Peer(id types.PeerID) Segment {
	return Segment{proto: ProtocolPeer, value: id.String()}
}

// Client 创建客户端段
func Client(id types.PeerID) Segment {
	return Segment{proto: ProtocolClient, value: id.String()}
}

// Service 创建服务段
func Service(name string) Segment {
	return Segment{proto: ProtocolService, value: name}
}

// Signature 创建签名段
func Signature(sig []byte) Segment {
	return Segment{proto: ProtocolSignature, value: string(sig)}
}

// Protocol 返回段协议
func (s Segment) Protocol() Protocol {
	return s.proto
}

// PeerID 返回 Peer/Client 段携带的节点 ID
func (s Segment) PeerID() (types.PeerID, bool) {
	if s.proto != ProtocolPeer && s.proto != ProtocolClient {
		return types.EmptyPeerID, false
	}
	return types.PeerID(s.value), true
}

// ServiceName 返回 Service 段的服务名
func (s Segment) ServiceName() (string, bool) {
	if s.proto != ProtocolService {
		return "", false
	}
	return s.value, true
}

// SignatureBytes 返回签名段的签名副本
func (s Segment) SignatureBytes() ([]byte, bool) {
	if s.proto != ProtocolSignature {
		return nil, false
	}
	return []byte(s.value), true
}

// Equal 比较两个段是否相同
func (s Segment) Equal(other Segment) bool {
	return s.proto == other.proto && s.value == other.value
}

// String 返回段的文本形式
func (s Segment) String() string {
	if s.proto == ProtocolSignature {
		return "/" + s.proto.String() + "/" + base58.Encode([]byte(s.value))
	}
	return "/" + s.proto.String() + "/" + s.value
}

// validate 检查段的值是否符合其协议
func (s Segment) validate() error {
	switch s.proto {
	case ProtocolPeer, ProtocolClient:
		if err := types.PeerID(s.value).Validate(); err != nil {
			return fmt.Errorf("%w: %s segment: %v", ErrInvalidAddress, s.proto, err)
		}
	case ProtocolService, ProtocolSignature:
		if s.value == "" {
			return fmt.Errorf("%w: empty %s segment", ErrInvalidAddress, s.proto)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownProtocol, uint64(s.proto))
	}
	return nil
}
