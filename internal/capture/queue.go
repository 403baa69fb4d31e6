// Package capture buffers audio chunks between a producing task (the
// microphone or an ffmpeg pipe) and the transcription consumer.
package capture

import (
	"sync"
	"sync/atomic"
)

// Policy decides what happens when a chunk arrives while the queue is full.
type Policy int

const (
	// DropNewest discards the incoming chunk. This matches the reference
	// capture behavior of dropping samples once the chunk cap is reached.
	DropNewest Policy = iota
	// DropOldest discards the oldest buffered chunk to make room.
	DropOldest
	// Block makes Push wait until the consumer drains a chunk.
	Block
)

// Queue is a bounded FIFO of audio sample chunks. Chunks are copied on
// Push so the producer may reuse its buffer.
type Queue struct {
	ch      chan []float32
	policy  Policy
	dropped atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue holding up to capacity chunks.
func NewQueue(capacity int, policy Policy) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:     make(chan []float32, capacity),
		policy: policy,
	}
}

// Push enqueues a copy of the chunk. It returns false if the chunk was
// discarded, either by policy or because the queue is closed.
func (q *Queue) Push(chunk []float32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.dropped.Add(1)
		return false
	}

	buf := make([]float32, len(chunk))
	copy(buf, chunk)

	switch q.policy {
	case DropOldest:
		for {
			select {
			case q.ch <- buf:
				return true
			default:
			}
			select {
			case <-q.ch:
				q.dropped.Add(1)
			default:
			}
		}
	case Block:
		q.ch <- buf
		return true
	default: // DropNewest
		select {
		case q.ch <- buf:
			return true
		default:
			q.dropped.Add(1)
			return false
		}
	}
}

// Chunks returns the consumer side of the queue. The channel is closed
// when Close is called and all buffered chunks have been received.
func (q *Queue) Chunks() <-chan []float32 {
	return q.ch
}

// Dropped reports how many chunks were discarded so far.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Close marks the end of the audio stream. Pushes after Close are
// discarded. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
