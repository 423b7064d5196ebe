// Package crypto 提供 janus 密码学工具
//
// 本包提供节点身份密钥的生成、签名验证、PeerID 派生和本地持久化。
//
// # 密钥类型
//
// 仅支持 Ed25519。PeerID 直接内嵌 Ed25519 公钥（identity multihash），
// 因此任何持有 PeerID 的一方都可以还原公钥并验证签名，
// 这是地址路径签名校验的前提。
//
// # 快速开始
//
//	priv, pub, err := crypto.GenerateKeyPair()
//	id, err := crypto.PeerIDFromPublicKey(pub)
//	pub2, err := crypto.PublicKeyFromPeerID(id)
//
// 加载或生成持久化身份：
//
//	priv, err := crypto.LoadOrGenerateIdentity("/var/lib/janus/node.key", nil)
package crypto
