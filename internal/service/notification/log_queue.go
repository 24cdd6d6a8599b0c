package notification

import (
	"context"
	"sync"

	"github.com/KNICEX/scalp-runner/internal/metrics"
)

var _ LogSink = (*LogQueue)(nil)

// LogQueue 有界进度日志队列, 满了丢弃最旧的一条
type LogQueue struct {
	mu      sync.Mutex
	buf     []string
	head    int
	size    int
	dropped int64
	ready   chan struct{}
}

func NewLogQueue(capacity int) *LogQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogQueue{
		buf:   make([]string, capacity),
		ready: make(chan struct{}, 1),
	}
}

func (q *LogQueue) Publish(line string) {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.buf[q.head] = line
		q.head = (q.head + 1) % len(q.buf)
		q.dropped++
		metrics.LogLinesDropped.Inc()
	} else {
		q.buf[(q.head+q.size)%len(q.buf)] = line
		q.size++
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop 取出最旧的一条, 队列为空时返回 false
func (q *LogQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return "", false
	}
	line := q.buf[q.head]
	q.buf[q.head] = ""
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return line, true
}

func (q *LogQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *LogQueue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Drain 按入队顺序把日志交给 fn, 直到 ctx 结束
func (q *LogQueue) Drain(ctx context.Context, fn func(line string)) error {
	for {
		for {
			line, ok := q.Pop()
			if !ok {
				break
			}
			fn(line)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.ready:
		}
	}
}
