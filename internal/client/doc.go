// Package client 实现连接中继节点的客户端传输
//
// Connect 拨号引导节点、建立 yamux 会话并完成握手，之后：
//
//   - Events 依次产出 NewConnection、FunctionCall、NetworkState 事件，
//     连接结束时关闭
//   - Send 把 Call 命令编码为中继帧发给节点，由 phony actor 串行写出
//   - Stop 发送告别帧并关闭连接，Done 在后台读循环退出后关闭
package client
