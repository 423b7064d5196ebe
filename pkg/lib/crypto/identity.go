package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// ============================================================================
//                              身份文件格式
// ============================================================================

// 身份文件格式：
//
//   ┌────────────────────────────────────────────────────────────┐
//   │  Magic:     "JANUS-KEY"  (9 bytes)                         │
//   │  Version:   uint8                                           │
//   │  Encrypted: uint8 (0=否, 1=是)                              │
//   │  Data:      32 字节种子，或 salt || nonce || AES-GCM 密文   │
//   └────────────────────────────────────────────────────────────┘

const (
	keyFileMagic   = "JANUS-KEY"
	keyFileVersion = 1

	saltSize  = 16
	nonceSize = 12

	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// LoadOrGenerateIdentity 加载或生成节点身份
//
// path 为空时生成临时身份且不落盘；文件不存在时生成新身份并以 0600 权限写入。
// password 非空时种子使用 Argon2id + AES-GCM 加密存储。
func LoadOrGenerateIdentity(path string, password []byte) (PrivateKey, error) {
	if path == "" {
		priv, _, err := GenerateKeyPair()
		return priv, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return DecodeIdentity(data, password)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read identity %s: %w", path, err)
	}

	priv, _, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	encoded, err := EncodeIdentity(priv, password)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return nil, fmt.Errorf("write identity %s: %w", path, err)
	}
	return priv, nil
}

// EncodeIdentity 编码身份文件内容
func EncodeIdentity(priv PrivateKey, password []byte) ([]byte, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}

	var buf bytes.Buffer
	buf.WriteString(keyFileMagic)
	buf.WriteByte(keyFileVersion)

	seed := priv.Seed()
	if len(password) == 0 {
		buf.WriteByte(0)
		buf.Write(seed)
		return buf.Bytes(), nil
	}

	buf.WriteByte(1)
	encrypted, err := encryptData(seed, password)
	if err != nil {
		return nil, err
	}
	buf.Write(encrypted)
	return buf.Bytes(), nil
}

// DecodeIdentity 解码身份文件内容
func DecodeIdentity(data, password []byte) (PrivateKey, error) {
	if len(data) < len(keyFileMagic)+2 {
		return nil, ErrInvalidKeyFile
	}
	if string(data[:len(keyFileMagic)]) != keyFileMagic {
		return nil, ErrInvalidKeyFile
	}

	offset := len(keyFileMagic)
	if version := data[offset]; version != keyFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeyFile, version)
	}
	offset++

	encrypted := data[offset] == 1
	offset++

	seed := data[offset:]
	if encrypted {
		if len(password) == 0 {
			return nil, ErrInvalidPassword
		}
		var err error
		if seed, err = decryptData(seed, password); err != nil {
			return nil, err
		}
	}
	return PrivateKeyFromSeed(seed)
}

// encryptData 使用 AES-GCM 加密数据，输出 salt || nonce || ciphertext
func encryptData(plaintext, password []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// decryptData 使用 AES-GCM 解密数据
func decryptData(data, password []byte) ([]byte, error) {
	if len(data) < saltSize+nonceSize {
		return nil, ErrDecryptionFailed
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
