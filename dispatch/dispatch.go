// Package dispatch runs pipeline turns out-of-band. Turns are routed to a
// fixed set of workers by hashing the sender id, so turns from the same
// sender execute strictly in order while distinct senders run concurrently.
package dispatch

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

var (
	ErrQueueFull = errors.New("dispatch queue is full")
	ErrClosed    = errors.New("dispatch pool is closed")
)

type Task func(ctx context.Context)

type Pool struct {
	options Options
	queues  []chan Task
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// Submit enqueues a task on the worker owning key. It never blocks: a full
// queue rejects the task so the transport-facing caller can ACK and move on.
func (p *Pool) Submit(key string, task Task) error {
	if p.closed.Load() {
		return ErrClosed
	}

	queue := p.queues[p.pick(key)]

	select {
	case queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) pick(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.queues)))
}

// Shutdown stops accepting tasks, drains the queues, and waits for in-flight
// work to finish.
func (p *Pool) Shutdown() {
	if p.closed.Swap(true) {
		return
	}

	for _, queue := range p.queues {
		close(queue)
	}

	p.wg.Wait()
}

func (p *Pool) work(queue chan Task) {
	defer p.wg.Done()

	for task := range queue {
		task(p.options.Context)
	}
}

func New(opts ...Option) *Pool {
	options := NewOptions(opts...)

	p := &Pool{
		options: options,
		queues:  make([]chan Task, options.Workers),
	}

	for i := range p.queues {
		p.queues[i] = make(chan Task, options.QueueSize)
		p.wg.Add(1)
		go p.work(p.queues[i])
	}

	return p
}
