package notification

import "context"

// Notifier 发送一条文本通知
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogSink 进度日志, Publish 不能阻塞调用方
type LogSink interface {
	Publish(line string)
}

type nopNotifier struct{}

// NewNopNotifier 未配置通知渠道时使用
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Notify(ctx context.Context, text string) error {
	return nil
}
