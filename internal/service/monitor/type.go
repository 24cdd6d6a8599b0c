package monitor

import (
	"errors"
	"sync"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateOpen       State = "OPEN"
	StateTakeProfit State = "CLOSED_TAKE_PROFIT"
	StateStopLoss   State = "CLOSED_STOP_LOSS"
	StateTimeout    State = "CLOSED_TIMEOUT"
)

func (s State) IsTerminal() bool {
	return s != StateOpen && s != ""
}

// ExitReason 平仓触发原因, 超时/截止/停止都属于 CLOSED_TIMEOUT
type ExitReason string

const (
	ReasonTakeProfit ExitReason = "take_profit"
	ReasonStopLoss   ExitReason = "stop_loss"
	ReasonTimeout    ExitReason = "timeout"
	ReasonDeadline   ExitReason = "deadline"
	ReasonStopped    ExitReason = "stopped"
)

var ErrPositionClosed = errors.New("position already closed")

// Position 当前唯一持仓, 状态只能从 OPEN 转换一次
type Position struct {
	TradingPair exchange.TradingPair
	EntryPrice  decimal.Decimal
	EntryTime   time.Time
	Quantity    decimal.Decimal // 买入成交数量, 平仓时以实时余额为准

	mu    sync.Mutex
	state State
}

func NewPosition(pair exchange.TradingPair, entryPrice decimal.Decimal, entryTime time.Time, quantity decimal.Decimal) *Position {
	return &Position{
		TradingPair: pair,
		EntryPrice:  entryPrice,
		EntryTime:   entryTime,
		Quantity:    quantity,
		state:       StateOpen,
	}
}

func (p *Position) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// tryClose 只有第一次调用返回 true
func (p *Position) tryClose(state State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateOpen {
		return false
	}
	p.state = state
	return true
}

// Exit 平仓结果
type Exit struct {
	State       State
	Reason      ExitReason
	LastPrice   decimal.Decimal // 最后一次观察到的价格, 没拿到过价格时为 0
	ChangePct   decimal.Decimal // 按 LastPrice 计算的涨跌幅
	RealizedPct decimal.Decimal // 按卖出成交均价计算, 没有成交时等于 ChangePct
	Sell        *exchange.OrderResult
	SellErr     error
	ClosedAt    time.Time
}

// Config 监控参数, 百分比单位
type Config struct {
	TakeProfit         decimal.Decimal // > 0
	LossCut            decimal.Decimal // < 0
	Timeout            time.Duration
	PollInterval       time.Duration
	Backoff            time.Duration // 取不到价格时的重试间隔
	LiquidationTimeout time.Duration // 停止时平仓的最长等待
}

func DefaultConfig() Config {
	return Config{
		PollInterval:       5 * time.Second,
		Backoff:            time.Second,
		LiquidationTimeout: 30 * time.Second,
	}
}
