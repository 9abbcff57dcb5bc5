package queue

import (
	"sync/atomic"
	"unsafe"
)

// TaskQueue is an unbounded MPSC-friendly queue. Enqueue may be called from
// any goroutine; Dequeue returns nil when the queue is empty.
type TaskQueue interface {
	Enqueue(interface{})
	Dequeue() interface{}
	IsEmpty() bool
}

// Queue is a Michael-Scott lock-free linked queue. The head node is a blank
// sentinel.
type Queue struct {
	head   unsafe.Pointer
	tail   unsafe.Pointer
	length int32
}

type node struct {
	value interface{}
	next  unsafe.Pointer
}

func NewQueue() TaskQueue {
	sentinel := unsafe.Pointer(&node{})
	return &Queue{head: sentinel, tail: sentinel}
}

func (that *Queue) Enqueue(v interface{}) {
	n := &node{value: v}
	for {
		tail := load(&that.tail)
		next := load(&tail.next)
		if tail != load(&that.tail) {
			continue
		}
		if next != nil {
			// tail is lagging, help it along
			cas(&that.tail, tail, next)
			continue
		}
		if cas(&tail.next, next, n) {
			cas(&that.tail, tail, n)
			atomic.AddInt32(&that.length, 1)
			return
		}
	}
}

func (that *Queue) Dequeue() interface{} {
	for {
		head := load(&that.head)
		tail := load(&that.tail)
		next := load(&head.next)
		if head != load(&that.head) {
			continue
		}
		if head == tail {
			if next == nil {
				return nil
			}
			cas(&that.tail, tail, next)
			continue
		}
		v := next.value
		if cas(&that.head, head, next) {
			atomic.AddInt32(&that.length, -1)
			return v
		}
	}
}

func (that *Queue) IsEmpty() bool {
	return atomic.LoadInt32(&that.length) == 0
}

func load(p *unsafe.Pointer) *node {
	return (*node)(atomic.LoadPointer(p))
}

func cas(p *unsafe.Pointer, old, new *node) bool {
	return atomic.CompareAndSwapPointer(p, unsafe.Pointer(old), unsafe.Pointer(new))
}
