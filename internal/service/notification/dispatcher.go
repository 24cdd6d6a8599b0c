package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/KNICEX/scalp-runner/internal/metrics"
)

var _ Notifier = (*Dispatcher)(nil)

var ErrQueueFull = errors.New("notification queue full")

// Dispatcher 异步发送通知, 队列满时丢弃新消息, 发送失败只记日志
type Dispatcher struct {
	notifier Notifier
	ch       chan string
	timeout  time.Duration
	dropped  atomic.Int64
}

func NewDispatcher(notifier Notifier, capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = 1
	}
	return &Dispatcher{
		notifier: notifier,
		ch:       make(chan string, capacity),
		timeout:  30 * time.Second,
	}
}

// Notify 只入队, 不等待发送结果
func (d *Dispatcher) Notify(ctx context.Context, text string) error {
	select {
	case d.ch <- text:
		return nil
	default:
		d.dropped.Add(1)
		metrics.NotificationsDropped.Inc()
		slog.Warn("notification dropped, queue full", "text", text)
		return ErrQueueFull
	}
}

// Dropped 因队列满被丢弃的消息数
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) Name() string {
	return "notification dispatcher"
}

// Run 消费队列直到 ctx 结束, 结束前把剩余消息尽量发完
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return nil
		case text := <-d.ch:
			d.deliver(ctx, text)
		}
	}
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	for {
		select {
		case text := <-d.ch:
			d.deliver(ctx, text)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, text string) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.notifier.Notify(ctx, text); err != nil {
		metrics.NotificationsFailed.Inc()
		slog.Error("fail to deliver notification", "error", err)
	}
}
