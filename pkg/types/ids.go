package types

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerIDPrefix PeerID 二进制形式的固定前缀
//
// 布局与 libp2p 的 identity multihash 一致：
//
//	0x00 (identity) | 0x24 (长度 36) | 0x08 0x01 (KeyType=Ed25519) | 0x12 0x20 (Data, 32 字节)
//
// 因此 PeerID 内嵌完整公钥，验证签名时无需额外查询公钥。
var PeerIDPrefix = []byte{0x00, 0x24, 0x08, 0x01, 0x12, 0x20}

// PeerIDKeySize PeerID 内嵌公钥长度
const PeerIDKeySize = 32

// peerIDSize PeerID 二进制总长度
const peerIDSize = 6 + PeerIDKeySize

// PeerID 节点唯一标识符
//
// 外部表示格式为 Base58（如 "12D3KooW..."），可直接放入配置和地址路径。
type PeerID string

// EmptyPeerID 空节点ID
const EmptyPeerID PeerID = ""

// String 返回 PeerID 的 Base58 字符串
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回 PeerID 的短字符串表示
//
// 所有 Ed25519 PeerID 共享 "12D3KooW" 前缀，因此取尾部字符用于日志。
func (id PeerID) ShortString() string {
	s := string(id)
	if len(s) <= 10 {
		return s
	}
	return s[:2] + "*" + s[len(s)-6:]
}

// IsEmpty 检查 PeerID 是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// Bytes 返回 PeerID 的二进制形式
func (id PeerID) Bytes() ([]byte, error) {
	if id.IsEmpty() {
		return nil, ErrEmptyPeerID
	}
	b, err := base58.Decode(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	if err := checkPeerIDBytes(b); err != nil {
		return nil, err
	}
	return b, nil
}

// EmbeddedKey 返回 PeerID 内嵌的原始公钥字节
func (id PeerID) EmbeddedKey() ([]byte, error) {
	b, err := id.Bytes()
	if err != nil {
		return nil, err
	}
	return b[len(PeerIDPrefix):], nil
}

// Validate 校验 PeerID 格式
func (id PeerID) Validate() error {
	_, err := id.Bytes()
	return err
}

// PeerIDFromBytes 从二进制形式创建 PeerID
func PeerIDFromBytes(b []byte) (PeerID, error) {
	if err := checkPeerIDBytes(b); err != nil {
		return EmptyPeerID, err
	}
	return PeerID(base58.Encode(b)), nil
}

// ParsePeerID 从 Base58 字符串解析 PeerID
func ParsePeerID(s string) (PeerID, error) {
	id := PeerID(s)
	if err := id.Validate(); err != nil {
		return EmptyPeerID, err
	}
	return id, nil
}

func checkPeerIDBytes(b []byte) error {
	if len(b) != peerIDSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPeerID, peerIDSize, len(b))
	}
	if !bytes.HasPrefix(b, PeerIDPrefix) {
		return fmt.Errorf("%w: unsupported multihash prefix", ErrInvalidPeerID)
	}
	return nil
}
