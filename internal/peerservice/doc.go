// Package peerservice 实现中继节点的节点服务
//
// PeerService 独占 Swarm 与身份密钥，在唯一的 goroutine 中交替处理：
//
//   - 外部发来的 InPeerNotification（中继、网络状态）
//   - Swarm 产生的连接与帧事件
//
// 其他 goroutine 只能通过 Descriptor 与之交互：Send 投递入站通知，
// Recv 读取出站通知，Exit 请求退出，Done 等待退出完成。
//
// 每一轮调度：
//
//  1. 取出所有已就绪的入站通知并按接收顺序处理
//  2. 非阻塞地轮询 Swarm
//  3. 至多转发一个出站通知
//
// 两轮之间等待入站就绪、Swarm 就绪或退出信号；仍有待转发的出站通知时让出 CPU 而不等待。
package peerservice
