// Package eventq provides the unbounded FIFO queue that links the
// pipeline stages. Push never blocks and never fails under memory
// availability; Pop never blocks and reports emptiness instead.
//
// Ordering guarantee: strict FIFO between one producer and one
// consumer sharing a queue instance. When independent producers push
// to the same queue (the relay stage and a direct command injector,
// for example), their relative order is whatever arrival order the
// hardware provides. No causal ordering is imposed or simulated: a
// command injected concurrently with in-flight relayed events may be
// delivered before or after events that were musically earlier. This
// is a deliberate non-guarantee, not an oversight.
package eventq

import "sync/atomic"

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is an unbounded multi-producer/multi-consumer linked-node FIFO
// (Michael-Scott algorithm). The zero value is not usable; call New.
type Queue[T any] struct {
	head atomic.Pointer[node[T]] // dummy node; head.next is the oldest element
	tail atomic.Pointer[node[T]]
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push appends v to the queue. Safe for any number of concurrent callers.
func (q *Queue[T]) Push(v T) {
	n := &node[T]{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help it along and retry.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

// Pop removes and returns the oldest element, or ok=false if the queue
// is observed empty. Safe for any number of concurrent callers.
func (q *Queue[T]) Pop() (v T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return v, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		value := next.value
		if q.head.CompareAndSwap(head, next) {
			return value, true
		}
	}
}

// Empty reports whether the queue was empty at the moment of the check.
// The answer is already stale by the time the caller sees it.
func (q *Queue[T]) Empty() bool {
	return q.head.Load().next.Load() == nil
}
