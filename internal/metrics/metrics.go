package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scalp_scan_cycles_total",
		Help: "Scan cycles by outcome (candidate, none)",
	}, []string{"strategy", "outcome"})

	EntryRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scalp_entry_rejects_total",
		Help: "Candidates rejected by the entry filters",
	}, []string{"reason"})

	Orders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scalp_orders_total",
		Help: "Market orders by side and result (filled, empty, error)",
	}, []string{"side", "result"})

	PositionExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scalp_position_exits_total",
		Help: "Closed positions by terminal state",
	}, []string{"state"})

	PriceMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scalp_price_misses_total",
		Help: "Monitor polls without a usable price",
	})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scalp_notifications_dropped_total",
		Help: "Notifications dropped because the queue was full",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scalp_notifications_failed_total",
		Help: "Notifications that failed delivery",
	})

	LogLinesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scalp_log_lines_dropped_total",
		Help: "Progress lines evicted from the full log queue",
	})

	RelayClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scalp_relay_clients",
		Help: "Connected log relay websocket clients",
	})

	ActiveRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scalp_active_runs",
		Help: "Strategy runs in progress (0 or 1)",
	})
)
