package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/notification"
)

// reporter 同时写 slog, 进度日志和通知
type reporter struct {
	runId    string
	notifier notification.Notifier
	logs     notification.LogSink
}

func (r *reporter) log(msg string, args ...any) {
	slog.Info(msg, append([]any{"run", r.runId}, args...)...)
	r.logs.Publish(formatLine(msg, args...))
}

func (r *reporter) notify(ctx context.Context, text string) {
	r.logs.Publish(text)
	if err := r.notifier.Notify(ctx, text); err != nil {
		slog.Warn("fail to notify", "run", r.runId, "error", err)
	}
}

// notifyDetached ctx 已取消时仍然尽量发出
func (r *reporter) notifyDetached(ctx context.Context, text string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	r.notify(dctx, text)
}

// formatLine "msg k=v k=v"
func formatLine(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	return b.String()
}
