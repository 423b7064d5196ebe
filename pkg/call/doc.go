// Package call 定义在网络中路由的调用信封（FunctionCall）
//
// 信封携带唯一 ID、可选目标地址、已签名的回复地址、无模式的结构化参数和可读名称。
//
// # 不变量
//
//   - UUID 为 128 位随机 ID（UUID v4），每个逻辑调用一个
//   - 没有 Target 的信封不可路由，任何传输在发送前都会拒绝
//   - ReplyTo 存在时必须已由调用方签名（见 address.Verify）
//
// # 构建器
//
// RegistrationCall 和 ReplyCall 都是输入的纯函数，唯一的随机性来自 NewMessageID。
package call
