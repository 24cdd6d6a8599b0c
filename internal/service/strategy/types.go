package strategy

import (
	"context"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// Candidate 扫描得到的入场候选
type Candidate struct {
	TradingPair exchange.TradingPair `json:"trading_pair"`
	SignalPrice decimal.Decimal      `json:"signal_price"`   // 信号K线收盘价
	Rate        *decimal.Decimal     `json:"rate,omitempty"` // 变化率(%), 只有变化率策略会填
	Strategy    string               `json:"strategy"`
	FoundAt     time.Time            `json:"found_at"`
}

// SignalStrategy 候选扫描策略
type SignalStrategy interface {
	Name() string
	// Scan 按顺序扫描 pairs, 没有满足条件的市场返回 nil
	// 单个市场的错误只记录并跳过, 只有 ctx 取消才返回 error
	Scan(ctx context.Context, pairs []exchange.TradingPair) (*Candidate, error)
}
