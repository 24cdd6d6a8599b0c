package portfolio

import (
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// EntryConfig 入场风控参数
type EntryConfig struct {
	// 单次投入可用余额的百分比 (0, 100]
	InvestRatio decimal.Decimal

	// 可用余额低于该值不再入场
	MinBalance decimal.Decimal

	// 预留手续费, 实际下单金额 = 余额 * InvestRatio / 100 * FeeMargin
	FeeMargin decimal.Decimal

	// 日内区间两端各排除的比例
	BandRatio decimal.Decimal

	// 判断价格等于日内高低点的容差
	Tolerance decimal.Decimal
}

func DefaultEntryConfig(investRatio decimal.Decimal) EntryConfig {
	return EntryConfig{
		InvestRatio: investRatio,
		MinBalance:  decimal.NewFromInt(5100),
		FeeMargin:   decimal.RequireFromString("0.98"),
		BandRatio:   decimal.RequireFromString("0.05"),
		Tolerance:   decimal.RequireFromString("0.000001"),
	}
}

// DayRange 当日最高/最低价
type DayRange struct {
	High decimal.Decimal
	Low  decimal.Decimal
}

type RejectReason string

const (
	RejectExtremum     RejectReason = "price_at_day_extremum"
	RejectOutOfBand    RejectReason = "price_outside_day_band"
	RejectBalanceFloor RejectReason = "balance_below_floor"
	RejectInvalidRange RejectReason = "invalid_day_range"
)

// OrderPlan 通过风控后的下单计划
type OrderPlan struct {
	TradingPair exchange.TradingPair
	Budget      decimal.Decimal // 以 quote 计价的市价买入金额
	SignalPrice decimal.Decimal
}

type Decision struct {
	Approved bool
	Plan     OrderPlan
	Reason   RejectReason // 未通过时的原因
	Detail   string
}
