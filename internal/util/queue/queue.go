// Package queue 提供无界 FIFO 队列
//
// Go 的 channel 必须在创建时给定容量，而通知桥要求生产者永远不因网络层的
// 背压而阻塞，因此这里用切片 + 容量为 1 的就绪信号实现无界队列。
// 就绪信号可以直接放进 select，与其他事件源公平竞争。
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed 队列已关闭
var ErrClosed = errors.New("queue closed")

// Unbounded 无界 FIFO 队列，可被多个生产者和消费者并发使用
type Unbounded[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	ready chan struct{} // 容量 1，有新元素时发信号
	done  chan struct{} // 关闭时 close
}

// New 创建无界队列
func New[T any]() *Unbounded[T] {
	return &Unbounded[T]{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push 追加元素，永不阻塞；队列关闭后返回 ErrClosed
func (q *Unbounded[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *Unbounded[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop 非阻塞取出队首元素
//
// 关闭后仍可取出剩余元素。
func (q *Unbounded[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

// Pop 阻塞直到取出一个元素、ctx 结束，或队列关闭且已排空
func (q *Unbounded[T]) Pop(ctx context.Context) (T, error) {
	for {
		if v, ok := q.TryPop(); ok {
			// 多消费者时把剩余元素的信号传递下去
			if q.Len() > 0 {
				q.signal()
			}
			return v, nil
		}

		var zero T
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.ready:
		case <-q.done:
			if v, ok := q.TryPop(); ok {
				return v, nil
			}
			return zero, ErrClosed
		}
	}
}

// Ready 返回就绪信号
//
// 信号只表示"可能有元素"，收到后应使用 TryPop 排空。
func (q *Unbounded[T]) Ready() <-chan struct{} {
	return q.ready
}

// Done 返回关闭信号
func (q *Unbounded[T]) Done() <-chan struct{} {
	return q.done
}

// Len 返回当前元素数
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsClosed 队列是否已关闭
func (q *Unbounded[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close 关闭队列，重复调用无副作用
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
