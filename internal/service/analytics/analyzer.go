package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KNICEX/scalp-runner/internal/entity"
	"github.com/KNICEX/scalp-runner/internal/repo"
	"github.com/KNICEX/scalp-runner/internal/service/monitor"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func NewAnalyzer(runs repo.RunRepo, trades repo.TradeRepo) *Analyzer {
	return &Analyzer{
		runs:   runs,
		trades: trades,
		now:    time.Now,
	}
}

// Analyzer 根据运行日志生成绩效报告
type Analyzer struct {
	runs   repo.RunRepo
	trades repo.TradeRepo
	now    func() time.Time
}

func (a *Analyzer) Analyze(ctx context.Context, runId string) (Report, error) {
	run, err := a.runs.FindByRunId(ctx, runId)
	if err != nil {
		return Report{}, fmt.Errorf("find run %s: %w", runId, err)
	}
	trades, err := a.trades.FindByRunId(ctx, runId)
	if err != nil {
		return Report{}, fmt.Errorf("find trades of run %s: %w", runId, err)
	}

	report := Build(run, trades)
	report.GeneratedAt = a.now()
	return report, nil
}

// Build 纯计算, 不访问存储
func Build(run entity.StrategyRun, trades []entity.Trade) Report {
	report := Report{
		RunId:        run.RunId,
		StrategyName: run.Strategy,
		Status:       run.Status,
		StartTime:    run.StartedAt,
	}
	if run.EndedAt != nil {
		report.EndTime = *run.EndedAt
		report.Duration = run.EndedAt.Sub(run.StartedAt)
	}
	report.Trading = tradingMetrics(trades)
	report.Equity, report.Risk = equityCurve(trades)
	return report
}

// ========== 绩效报告（输出结果）==========

// Report 一次运行的绩效报告, 收益都是百分比
type Report struct {
	// 基本信息
	RunId        string        `json:"run_id"`
	StrategyName string        `json:"strategy"`
	Status       string        `json:"status"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`

	// 交易统计
	Trading TradingMetrics `json:"trading"`

	// 风险指标
	Risk RiskMetrics `json:"risk"`

	// 资金曲线 (按投入部分复利)
	Equity []EquityPoint `json:"equity"`

	GeneratedAt time.Time `json:"generated_at"`
}

func (r Report) String() string {
	json, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(json)
}

// TradingMetrics 交易统计
type TradingMetrics struct {
	TotalTrades     int `json:"total_trades"`
	WinningTrades   int `json:"winning_trades"`
	LosingTrades    int `json:"losing_trades"`
	BreakevenTrades int `json:"breakeven_trades"`
	FailedExits     int `json:"failed_exits"` // 卖出失败, 仓位可能还在

	TakeProfits int `json:"take_profits"`
	StopLosses  int `json:"stop_losses"`
	Timeouts    int `json:"timeouts"`

	WinRate      decimal.Decimal `json:"win_rate"` // 胜率
	AvgWin       decimal.Decimal `json:"avg_win"`
	AvgLoss      decimal.Decimal `json:"avg_loss"`
	ProfitFactor decimal.Decimal `json:"profit_factor"` // 总盈利/总亏损, 没有亏损时为 0
	TotalReturn  decimal.Decimal `json:"total_return"`  // 单笔收益之和

	LargestWin  decimal.Decimal `json:"largest_win"`
	LargestLoss decimal.Decimal `json:"largest_loss"`

	AvgHoldDuration time.Duration `json:"avg_hold_duration"`
}

// RiskMetrics 风险指标
type RiskMetrics struct {
	MaxDrawdownPercent decimal.Decimal `json:"max_drawdown_percent"` // 资金曲线最大回撤
	MaxConsecutiveLoss int             `json:"max_consecutive_loss"`
}

// EquityPoint 资金曲线点, 初始为 100
type EquityPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Balance   decimal.Decimal `json:"balance"`
	Drawdown  decimal.Decimal `json:"drawdown"`
}

func realized(t entity.Trade) decimal.Decimal {
	return decimalx.FromStringOrZero(t.RealizedPct)
}

func tradingMetrics(trades []entity.Trade) TradingMetrics {
	m := TradingMetrics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return m
	}

	returns := lo.Map(trades, func(t entity.Trade, _ int) decimal.Decimal { return realized(t) })
	wins := lo.Filter(returns, func(r decimal.Decimal, _ int) bool { return r.IsPositive() })
	losses := lo.Filter(returns, func(r decimal.Decimal, _ int) bool { return r.IsNegative() })
	m.WinningTrades = len(wins)
	m.LosingTrades = len(losses)
	m.BreakevenTrades = len(trades) - len(wins) - len(losses)
	m.FailedExits = lo.CountBy(trades, func(t entity.Trade) bool { return t.SellError != "" })
	m.TakeProfits = lo.CountBy(trades, func(t entity.Trade) bool { return t.ExitState == string(monitor.StateTakeProfit) })
	m.StopLosses = lo.CountBy(trades, func(t entity.Trade) bool { return t.ExitState == string(monitor.StateStopLoss) })
	m.Timeouts = lo.CountBy(trades, func(t entity.Trade) bool { return t.ExitState == string(monitor.StateTimeout) })

	m.WinRate = decimal.NewFromInt(int64(len(wins))).Div(decimal.NewFromInt(int64(len(trades)))).Mul(decimalx.Hundred)
	m.TotalReturn = decimal.Sum(decimal.Zero, returns...)

	grossWin := decimal.Sum(decimal.Zero, wins...)
	grossLoss := decimal.Sum(decimal.Zero, losses...).Abs()
	if len(wins) > 0 {
		m.AvgWin = grossWin.Div(decimal.NewFromInt(int64(len(wins))))
		m.LargestWin = decimal.Max(wins[0], wins[1:]...)
	}
	if len(losses) > 0 {
		m.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(len(losses)))).Neg()
		m.LargestLoss = decimal.Min(losses[0], losses[1:]...)
	}
	if grossLoss.IsPositive() {
		m.ProfitFactor = grossWin.Div(grossLoss)
	}

	var hold time.Duration
	for _, t := range trades {
		if t.ExitAt.After(t.EntryAt) {
			hold += t.ExitAt.Sub(t.EntryAt)
		}
	}
	m.AvgHoldDuration = hold / time.Duration(len(trades))
	return m
}

func equityCurve(trades []entity.Trade) ([]EquityPoint, RiskMetrics) {
	var risk RiskMetrics
	balance := decimalx.Hundred
	peak := balance
	streak := 0
	points := make([]EquityPoint, 0, len(trades))
	for _, t := range trades {
		r := realized(t)
		balance = balance.Mul(decimal.NewFromInt(1).Add(r.Div(decimalx.Hundred)))
		if balance.GreaterThan(peak) {
			peak = balance
		}
		drawdown := peak.Sub(balance).Div(peak).Mul(decimalx.Hundred)
		if drawdown.GreaterThan(risk.MaxDrawdownPercent) {
			risk.MaxDrawdownPercent = drawdown
		}
		if r.IsNegative() {
			streak++
			risk.MaxConsecutiveLoss = max(risk.MaxConsecutiveLoss, streak)
		} else {
			streak = 0
		}
		points = append(points, EquityPoint{Timestamp: t.ExitAt, Balance: balance, Drawdown: drawdown})
	}
	return points, risk
}
