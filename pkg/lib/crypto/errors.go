package crypto

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

// 密钥相关错误
var (
	// ErrNilPrivateKey 私钥为空
	ErrNilPrivateKey = errors.New("nil private key")

	// ErrNilPublicKey 公钥为空
	ErrNilPublicKey = errors.New("nil public key")

	// ErrInvalidKeySize 密钥大小无效
	ErrInvalidKeySize = errors.New("invalid key size")
)

// 密钥文件相关错误
var (
	// ErrInvalidPassword 密码为空或与密钥文件不匹配
	ErrInvalidPassword = errors.New("invalid password")

	// ErrDecryptionFailed 解密失败
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeyFile 密钥文件不是 janus 身份文件
	ErrInvalidKeyFile = errors.New("invalid key file format")
)
