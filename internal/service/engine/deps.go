package engine

import (
	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/notification"
	"github.com/KNICEX/scalp-runner/internal/service/strategy"
)

// Deps 运行需要的全部依赖, 显式传入, 不使用全局变量
type Deps struct {
	Exchange exchange.Service
	Clock    schedule.Clock
	Notifier notification.Notifier
	Logs     notification.LogSink

	// 可选, 为空时不记录
	Runs   repo.RunRepo
	Trades repo.TradeRepo

	// 默认扫描策略, 请求里的 strategy 字段会覆盖
	Signal  strategy.SignalConfig
	Runtime RuntimeConfig
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = schedule.NewRealClock()
	}
	if d.Notifier == nil {
		d.Notifier = notification.NewNopNotifier()
	}
	if d.Logs == nil {
		d.Logs = notification.NewLogQueue(256)
	}
	d.Runtime = d.Runtime.WithDefaults()
	return d
}
