package crypto

import (
	"crypto/rand"
	"crypto/subtle"
)

// ============================================================================
//                              密钥接口定义
// ============================================================================

// PublicKey 公钥接口
type PublicKey interface {
	// Raw 返回原始公钥字节
	Raw() []byte

	// Equals 比较两个公钥是否相等
	Equals(PublicKey) bool

	// Verify 使用此公钥验证签名
	Verify(data, sig []byte) bool
}

// PrivateKey 私钥接口
type PrivateKey interface {
	// Seed 返回 32 字节私钥种子
	Seed() []byte

	// Sign 使用此私钥签名数据
	Sign(data []byte) ([]byte, error)

	// GetPublic 返回对应的公钥
	GetPublic() PublicKey
}

// GenerateKeyPair 使用系统随机源生成 Ed25519 密钥对
func GenerateKeyPair() (PrivateKey, PublicKey, error) {
	return GenerateEd25519Key(rand.Reader)
}

// keyEqual 使用常量时间比较两个公钥是否相等
func keyEqual(a, b PublicKey) bool {
	if a == nil || b == nil {
		return false
	}
	return subtle.ConstantTimeCompare(a.Raw(), b.Raw()) == 1
}
