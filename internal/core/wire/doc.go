// Package wire 定义节点之间以及节点与客户端之间的帧格式与握手
//
// 帧格式：
//
//	uvarint(len) || Frame
//
// Frame 使用 protobuf 线格式编码：
//
//	1: type   (varint)
//	2: src    (bytes, PeerID)
//	3: dst    (bytes, PeerID)
//	4: data   (bytes)
//	5: peers  (repeated bytes, PeerID)
//	6: nonce  (bytes)
//	7: role   (varint)
//
// 握手：双方各发送 Hello{src, nonce, role}，随后发送
// Proof{data = Sign("janus-handshake/1" || 对端 nonce || 自身 PeerID)}，
// 并以对端 PeerID 内嵌的公钥验证对端的 Proof。
package wire
