// Package swarm 管理节点的全部连接
//
// Swarm 由唯一的所有者 goroutine 驱动，不加锁：
//
//   - 后台 goroutine（接受循环、拨号、每连接读循环）只向内部事件队列推送事件
//   - 所有者通过 Ready() 等待、通过 Poll() 取出对外事件并更新连接表
//   - 每条连接的写操作由一个 phony actor 串行执行，所有者从不阻塞在套接字上
//
// 使用示例：
//
//	s, err := swarm.New(key, swarm.DefaultConfig())
//	if err := s.Listen(); err != nil { ... }
//	for {
//	    <-s.Ready()
//	    for ev, ok := s.Poll(); ok; ev, ok = s.Poll() {
//	        ...
//	    }
//	}
package swarm
