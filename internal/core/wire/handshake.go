package wire

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

const (
	handshakeContext = "janus-handshake/1"
	nonceSize        = 32
)

// Remote 握手得到的对端信息
type Remote struct {
	ID   types.PeerID
	Role Role
}

// Handshake 在 c 上完成双向身份认证
//
// timeout 大于 0 时作为整个握手的截止时间，完成后清除。
func Handshake(c *Conn, key crypto.PrivateKey, role Role, timeout time.Duration) (Remote, error) {
	self, err := crypto.PeerIDFromPrivateKey(key)
	if err != nil {
		return Remote{}, err
	}

	if timeout > 0 {
		if err := c.SetDeadline(time.Now().Add(timeout)); err != nil {
			return Remote{}, err
		}
		defer c.SetDeadline(time.Time{})
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Remote{}, err
	}
	if err := c.WriteFrame(&Frame{Type: TypeHello, Src: self, Nonce: nonce, Role: role}); err != nil {
		return Remote{}, fmt.Errorf("%w: send hello: %v", ErrHandshakeFailed, err)
	}

	hello, err := c.ReadFrame()
	if err != nil {
		return Remote{}, fmt.Errorf("%w: read hello: %v", ErrHandshakeFailed, err)
	}
	if hello.Type != TypeHello || len(hello.Nonce) != nonceSize {
		return Remote{}, fmt.Errorf("%w: unexpected %s frame", ErrHandshakeFailed, hello.Type)
	}
	if hello.Role != RoleNode && hello.Role != RoleClient {
		return Remote{}, fmt.Errorf("%w: unknown role %s", ErrHandshakeFailed, hello.Role)
	}
	remotePub, err := crypto.PublicKeyFromPeerID(hello.Src)
	if err != nil {
		return Remote{}, fmt.Errorf("%w: remote id: %v", ErrHandshakeFailed, err)
	}
	if hello.Src == self {
		return Remote{}, fmt.Errorf("%w: connected to self", ErrHandshakeFailed)
	}

	sig, err := key.Sign(proofInput(hello.Nonce, self))
	if err != nil {
		return Remote{}, err
	}
	if err := c.WriteFrame(&Frame{Type: TypeProof, Data: sig}); err != nil {
		return Remote{}, fmt.Errorf("%w: send proof: %v", ErrHandshakeFailed, err)
	}

	proof, err := c.ReadFrame()
	if err != nil {
		return Remote{}, fmt.Errorf("%w: read proof: %v", ErrHandshakeFailed, err)
	}
	if proof.Type != TypeProof {
		return Remote{}, fmt.Errorf("%w: unexpected %s frame", ErrHandshakeFailed, proof.Type)
	}
	if !remotePub.Verify(proofInput(nonce, hello.Src), proof.Data) {
		return Remote{}, fmt.Errorf("%w: bad proof from %s", ErrHandshakeFailed, hello.Src.ShortString())
	}

	return Remote{ID: hello.Src, Role: hello.Role}, nil
}

// proofInput 签名内容：上下文 || 对端 nonce || 签名方 PeerID
func proofInput(nonce []byte, signer types.PeerID) []byte {
	buf := make([]byte, 0, len(handshakeContext)+len(nonce)+len(signer))
	buf = append(buf, handshakeContext...)
	buf = append(buf, nonce...)
	return append(buf, signer...)
}
