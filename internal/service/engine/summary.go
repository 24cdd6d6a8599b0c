package engine

import (
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/monitor"
	"github.com/shopspring/decimal"
)

// TradeRecord 一次开平仓
type TradeRecord struct {
	TradingPair  exchange.TradingPair `json:"trading_pair"`
	Budget       decimal.Decimal      `json:"budget"`
	EntryPrice   decimal.Decimal      `json:"entry_price"`
	Quantity     decimal.Decimal      `json:"quantity"`
	EntryOrderId exchange.OrderId     `json:"entry_order_id"`
	EntryAt      time.Time            `json:"entry_at"`
	ExitState    monitor.State        `json:"exit_state"`
	ExitReason   monitor.ExitReason   `json:"exit_reason"`
	ExitPrice    decimal.Decimal      `json:"exit_price"`
	ExitOrderId  exchange.OrderId     `json:"exit_order_id,omitempty"`
	ChangePct    decimal.Decimal      `json:"change_pct"`
	RealizedPct  decimal.Decimal      `json:"realized_pct"`
	SellError    string               `json:"sell_error,omitempty"`
	ExitAt       time.Time            `json:"exit_at"`
}

const (
	StopReasonDuration = "duration elapsed"
	StopReasonStopped  = "stopped"
)

type RunSummary struct {
	RunId      string        `json:"run_id"`
	Strategy   string        `json:"strategy"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    time.Time     `json:"ended_at"`
	Cycles     int           `json:"cycles"`
	Entries    int           `json:"entries"`
	Wins       int           `json:"wins"`
	Losses     int           `json:"losses"`
	Timeouts   int           `json:"timeouts"`
	Trades     []TradeRecord `json:"trades"`
	StopReason string        `json:"stop_reason"`
}

func (s *RunSummary) addTrade(t TradeRecord) {
	s.Trades = append(s.Trades, t)
	switch t.ExitState {
	case monitor.StateTakeProfit:
		s.Wins++
	case monitor.StateStopLoss:
		s.Losses++
	case monitor.StateTimeout:
		s.Timeouts++
	}
}
