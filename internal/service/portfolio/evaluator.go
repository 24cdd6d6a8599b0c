package portfolio

import (
	"fmt"

	"github.com/KNICEX/scalp-runner/internal/service/strategy"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// EntryEvaluator 入场过滤和仓位计算, 纯函数, 不访问交易所
type EntryEvaluator struct {
	cfg EntryConfig
}

func NewEntryEvaluator(cfg EntryConfig) *EntryEvaluator {
	return &EntryEvaluator{cfg: cfg}
}

// Evaluate 依次检查: 日内极值, 区间带, 余额下限, 最后计算下单金额
func (e *EntryEvaluator) Evaluate(candidate strategy.Candidate, balance decimal.Decimal, day DayRange) Decision {
	price := candidate.SignalPrice
	if day.High.LessThan(day.Low) || !day.Low.IsPositive() {
		return reject(RejectInvalidRange, fmt.Sprintf("day range low %s high %s", day.Low, day.High))
	}

	// 1. 价格正好在日内最高/最低点
	if decimalx.ApproxEqual(price, day.High, e.cfg.Tolerance) || decimalx.ApproxEqual(price, day.Low, e.cfg.Tolerance) {
		return reject(RejectExtremum, fmt.Sprintf("price %s at day extremum [%s, %s]", price, day.Low, day.High))
	}

	// 2. 价格必须落在排除两端后的区间内
	margin := day.High.Sub(day.Low).Mul(e.cfg.BandRatio)
	lower, upper := day.Low.Add(margin), day.High.Sub(margin)
	if price.LessThan(lower) || price.GreaterThan(upper) {
		return reject(RejectOutOfBand, fmt.Sprintf("price %s outside band [%s, %s]", price, lower, upper))
	}

	// 3. 余额下限
	if balance.LessThan(e.cfg.MinBalance) {
		return reject(RejectBalanceFloor, fmt.Sprintf("balance %s below %s", balance, e.cfg.MinBalance))
	}

	budget := balance.Mul(e.cfg.InvestRatio).Div(decimalx.Hundred).Mul(e.cfg.FeeMargin)
	return Decision{
		Approved: true,
		Plan: OrderPlan{
			TradingPair: candidate.TradingPair,
			Budget:      budget,
			SignalPrice: price,
		},
	}
}

func reject(reason RejectReason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}
