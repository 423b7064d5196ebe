package crypto

import (
	"github.com/dep2p/go-janus/pkg/types"
)

// ============================================================================
//                              PeerID 派生
// ============================================================================

// PeerIDFromPublicKey 从公钥派生 PeerID
//
// 派生算法：Base58(PeerIDPrefix || 原始公钥)，不做哈希，公钥可逆。
func PeerIDFromPublicKey(pub PublicKey) (types.PeerID, error) {
	if pub == nil {
		return types.EmptyPeerID, ErrNilPublicKey
	}
	raw := pub.Raw()
	buf := make([]byte, 0, len(types.PeerIDPrefix)+len(raw))
	buf = append(buf, types.PeerIDPrefix...)
	buf = append(buf, raw...)
	return types.PeerIDFromBytes(buf)
}

// PeerIDFromPrivateKey 从私钥派生 PeerID
func PeerIDFromPrivateKey(priv PrivateKey) (types.PeerID, error) {
	if priv == nil {
		return types.EmptyPeerID, ErrNilPrivateKey
	}
	return PeerIDFromPublicKey(priv.GetPublic())
}

// PublicKeyFromPeerID 从 PeerID 还原公钥
func PublicKeyFromPeerID(id types.PeerID) (PublicKey, error) {
	raw, err := id.EmbeddedKey()
	if err != nil {
		return nil, err
	}
	return UnmarshalEd25519PublicKey(raw)
}

// VerifyPeerID 验证公钥是否对应给定的 PeerID
func VerifyPeerID(pub PublicKey, id types.PeerID) (bool, error) {
	derivedID, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return false, err
	}
	return derivedID == id, nil
}
