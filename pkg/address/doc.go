// Package address 实现中继寻址路径与路径签名
//
// 地址路径（Path）是一个只追加、不可变的有序段序列，描述"如何到达某个端点，
// 可选地经过一个中继，并附带签名的回复路径"。
//
// # 段类型
//
//   - Peer(id)       节点的密码学身份
//   - Client(id)     托管在节点之后的逻辑客户端
//   - Service(name)  终端跳上的具名服务
//   - Signature(sig) 对之前所有段的二进制序列化的分离签名
//
// # 中继组合
//
//	RelayPath(R, C) = /peer/R/peer/C
//
// 表示"经由中继 R 投递给 C"。C 对该路径签名后追加 Signature 段，
// 得到可在网络上传递的回复地址，中继无法伪造或改写。
//
// # 编码
//
// 二进制形式（线上格式，也是签名输入）：
//
//	uvarint(协议码) || uvarint(len(value)) || value   （逐段拼接）
//
// 每段自定界，段边界不会产生歧义。
// 文本形式仅用于日志和配置：/peer/<id>/client/<id>/service/<name>/signature/<base58>。
package address
