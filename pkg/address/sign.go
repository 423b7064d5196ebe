package address

import (
	"fmt"

	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

// Signer 返回路径的签名者：最后一个 Peer 或 Client 段
//
// 末尾的签名段（如果有）不参与查找。
func Signer(p Path) (types.PeerID, error) {
	unsigned := p.Unsigned()
	for i := len(unsigned.segments) - 1; i >= 0; i-- {
		if id, ok := unsigned.segments[i].PeerID(); ok {
			return id, nil
		}
	}
	return types.EmptyPeerID, fmt.Errorf("%w: no peer segment to sign for", ErrInvalidAddress)
}

// Sign 用 key 对路径的二进制序列化签名
//
// key 必须属于路径的签名者；已签名的路径不能再次签名。
func Sign(p Path, key crypto.PrivateKey) (Segment, error) {
	if key == nil {
		return Segment{}, fmt.Errorf("%w: %v", ErrInvalidAddress, crypto.ErrNilPrivateKey)
	}
	if err := checkNoSignature(p); err != nil {
		return Segment{}, err
	}

	signer, err := Signer(p)
	if err != nil {
		return Segment{}, err
	}
	keyID, err := crypto.PeerIDFromPrivateKey(key)
	if err != nil {
		return Segment{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if keyID != signer {
		return Segment{}, fmt.Errorf("%w: key %s cannot sign for %s", ErrInvalidAddress, keyID.ShortString(), signer.ShortString())
	}

	sig, err := key.Sign(p.Bytes())
	if err != nil {
		return Segment{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return Signature(sig), nil
}

// WithSignature 返回以 sig 结尾的新路径
func WithSignature(p Path, sig Segment) (Path, error) {
	if sig.Protocol() != ProtocolSignature {
		return Path{}, fmt.Errorf("%w: %s is not a signature segment", ErrInvalidAddress, sig.Protocol())
	}
	if err := checkNoSignature(p); err != nil {
		return Path{}, err
	}
	return p.Append(sig), nil
}

// SignedRelayPath 构建由 self 签名的 [Peer(relay), Peer(self), Signature]
func SignedRelayPath(relay, self types.PeerID, key crypto.PrivateKey) (Path, error) {
	p := RelayPath(relay, self)
	sig, err := Sign(p, key)
	if err != nil {
		return Path{}, err
	}
	return WithSignature(p, sig)
}

// Verify 校验路径签名
//
// 签名段必须存在、唯一且位于末尾；签名者公钥从签名者 PeerID 中还原。
// 任何不满足条件的路径都会被拒绝。
func Verify(p Path) error {
	last, ok := p.Last()
	if !ok || last.Protocol() != ProtocolSignature {
		return fmt.Errorf("%w: missing terminal signature", ErrInvalidAddress)
	}

	unsigned := p.Unsigned()
	if err := checkNoSignature(unsigned); err != nil {
		return err
	}
	for _, seg := range unsigned.segments {
		if err := seg.validate(); err != nil {
			return err
		}
	}

	signer, err := Signer(unsigned)
	if err != nil {
		return err
	}
	pub, err := crypto.PublicKeyFromPeerID(signer)
	if err != nil {
		return fmt.Errorf("%w: signer key: %v", ErrInvalidAddress, err)
	}

	sig, _ := last.SignatureBytes()
	if !pub.Verify(unsigned.Bytes(), sig) {
		return fmt.Errorf("%w: bad signature by %s", ErrInvalidAddress, signer.ShortString())
	}
	return nil
}

// IsValid 路径签名是否有效
func IsValid(p Path) bool {
	return Verify(p) == nil
}

func checkNoSignature(p Path) error {
	for _, seg := range p.segments {
		if seg.Protocol() == ProtocolSignature {
			return fmt.Errorf("%w: path already carries a signature", ErrInvalidAddress)
		}
	}
	return nil
}
