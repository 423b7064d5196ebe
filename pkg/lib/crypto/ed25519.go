package crypto

import (
	"crypto/ed25519"
	"fmt"
	"io"
)

// Ed25519 密钥常量
const (
	// Ed25519PublicKeySize Ed25519 公钥大小（32 字节）
	Ed25519PublicKeySize = ed25519.PublicKeySize
	// Ed25519SignatureSize Ed25519 签名大小（64 字节）
	Ed25519SignatureSize = ed25519.SignatureSize
	// Ed25519SeedSize Ed25519 种子大小（32 字节）
	Ed25519SeedSize = ed25519.SeedSize
)

// Ed25519PublicKey Ed25519 公钥实现
type Ed25519PublicKey struct {
	k ed25519.PublicKey
}

// Raw 返回原始公钥字节（副本）
func (k *Ed25519PublicKey) Raw() []byte {
	buf := make([]byte, len(k.k))
	copy(buf, k.k)
	return buf
}

// Equals 比较两个公钥是否相等
func (k *Ed25519PublicKey) Equals(other PublicKey) bool {
	return keyEqual(k, other)
}

// Verify 验证签名，签名长度错误直接视为无效
func (k *Ed25519PublicKey) Verify(data, sig []byte) bool {
	if len(sig) != Ed25519SignatureSize {
		return false
	}
	return ed25519.Verify(k.k, data, sig)
}

// Ed25519PrivateKey Ed25519 私钥实现
type Ed25519PrivateKey struct {
	k ed25519.PrivateKey
}

// Seed 返回私钥种子（32 字节）
func (k *Ed25519PrivateKey) Seed() []byte {
	return k.k.Seed()
}

// GetPublic 返回对应的公钥
func (k *Ed25519PrivateKey) GetPublic() PublicKey {
	pub := k.k.Public().(ed25519.PublicKey) //nolint:errcheck // 类型断言安全
	return &Ed25519PublicKey{k: pub}
}

// Sign 使用此私钥签名数据
func (k *Ed25519PrivateKey) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(k.k, data), nil
}

// GenerateEd25519Key 生成新的 Ed25519 密钥对
func GenerateEd25519Key(src io.Reader) (PrivateKey, PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(src)
	if err != nil {
		return nil, nil, err
	}
	return &Ed25519PrivateKey{k: priv}, &Ed25519PublicKey{k: pub}, nil
}

// UnmarshalEd25519PublicKey 从 32 字节原始数据反序列化公钥
func UnmarshalEd25519PublicKey(data []byte) (PublicKey, error) {
	if len(data) != Ed25519PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, Ed25519PublicKeySize, len(data))
	}
	k := make([]byte, Ed25519PublicKeySize)
	copy(k, data)
	return &Ed25519PublicKey{k: k}, nil
}

// PrivateKeyFromSeed 从 32 字节种子还原私钥
func PrivateKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != Ed25519SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, Ed25519SeedSize, len(seed))
	}
	return &Ed25519PrivateKey{k: ed25519.NewKeyFromSeed(seed)}, nil
}
