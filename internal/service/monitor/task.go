package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/scalp-runner/internal/metrics"
	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/internal/service/notification"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// PositionMonitor 轮询价格直到止盈/止损/超时, 然后全部卖出
type PositionMonitor struct {
	exchangeSvc exchange.Service
	clock       schedule.Clock
	notifier    notification.Notifier
	sink        notification.LogSink
	cfg         Config
}

type Option func(m *PositionMonitor)

func WithNotifier(notifier notification.Notifier) Option {
	return func(m *PositionMonitor) {
		m.notifier = notifier
	}
}

func WithLogSink(sink notification.LogSink) Option {
	return func(m *PositionMonitor) {
		m.sink = sink
	}
}

func NewPositionMonitor(exchangeSvc exchange.Service, clock schedule.Clock, cfg Config, opts ...Option) *PositionMonitor {
	m := &PositionMonitor{
		exchangeSvc: exchangeSvc,
		clock:       clock,
		notifier:    notification.NewNopNotifier(),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Watch 阻塞直到持仓关闭
// deadline 为整个运行的截止时间, 到达后按超时强制平仓
// ctx 取消时同样强制平仓, 返回 ctx.Err()
func (m *PositionMonitor) Watch(ctx context.Context, pos *Position, deadline time.Time) (Exit, error) {
	if pos.State() != StateOpen {
		return Exit{State: pos.State()}, ErrPositionClosed
	}
	var last decimal.Decimal
	for {
		if err := ctx.Err(); err != nil {
			lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.LiquidationTimeout)
			exit := m.close(lctx, pos, StateTimeout, ReasonStopped, last)
			cancel()
			return exit, err
		}

		now := m.clock.Now()
		if !now.Before(deadline) {
			return m.close(ctx, pos, StateTimeout, ReasonDeadline, last), nil
		}

		price, err := m.exchangeSvc.MarketService().Ticker(ctx, pos.TradingPair)
		if err != nil || !price.IsPositive() {
			metrics.PriceMisses.Inc()
			slog.Debug("price unavailable, backoff", "pair", pos.TradingPair, "error", err)
			_ = m.clock.Sleep(ctx, m.cfg.Backoff)
			continue
		}
		last = price

		change, _ := decimalx.PercentChange(pos.EntryPrice, price)
		elapsed := now.Sub(pos.EntryTime)
		switch {
		case change.GreaterThanOrEqual(m.cfg.TakeProfit):
			return m.close(ctx, pos, StateTakeProfit, ReasonTakeProfit, price), nil
		case change.LessThanOrEqual(m.cfg.LossCut):
			return m.close(ctx, pos, StateStopLoss, ReasonStopLoss, price), nil
		case elapsed >= m.cfg.Timeout:
			return m.close(ctx, pos, StateTimeout, ReasonTimeout, price), nil
		}

		m.publish(fmt.Sprintf("%s price %s change %s%% elapsed %s",
			pos.TradingPair, price, change.StringFixed(2), elapsed.Truncate(time.Second)))
		_ = m.clock.Sleep(ctx, m.cfg.PollInterval)
	}
}

// close 一个持仓只会执行一次, 卖出失败记录在 Exit.SellErr 中
func (m *PositionMonitor) close(ctx context.Context, pos *Position, state State, reason ExitReason, price decimal.Decimal) Exit {
	exit := Exit{State: state, Reason: reason, LastPrice: price}
	if !pos.tryClose(state) {
		exit.State = pos.State()
		exit.SellErr = ErrPositionClosed
		return exit
	}
	metrics.PositionExits.WithLabelValues(string(state)).Inc()
	if price.IsPositive() {
		exit.ChangePct, _ = decimalx.PercentChange(pos.EntryPrice, price)
	}
	exit.RealizedPct = exit.ChangePct

	exit.Sell, exit.SellErr = m.liquidate(ctx, pos)
	if exit.Sell != nil && exit.Sell.AvgPrice.IsPositive() {
		exit.RealizedPct, _ = decimalx.PercentChange(pos.EntryPrice, exit.Sell.AvgPrice)
	}
	exit.ClosedAt = m.clock.Now()

	slog.Info("position closed", "pair", pos.TradingPair, "state", state, "reason", reason,
		"entry", pos.EntryPrice, "last", price, "realized", exit.RealizedPct.StringFixed(2), "sellErr", exit.SellErr)
	text := fmt.Sprintf("[%s] %s entry %s last %s realized %s%% (%s)",
		state, pos.TradingPair, pos.EntryPrice, price, exit.RealizedPct.StringFixed(2), reason)
	if exit.SellErr != nil {
		text += fmt.Sprintf(" sell failed: %v", exit.SellErr)
	}
	if err := m.notifier.Notify(ctx, text); err != nil {
		slog.Warn("fail to notify exit", "error", err)
	}
	m.publish(text)

	if quote, err := m.exchangeSvc.AccountService().Balance(ctx, pos.TradingPair.Quote); err == nil {
		m.publish(fmt.Sprintf("%s balance %s", quote.Asset, quote.Free))
	}
	return exit
}

// liquidate 按实时余额全部卖出, 没有持仓时跳过
func (m *PositionMonitor) liquidate(ctx context.Context, pos *Position) (*exchange.OrderResult, error) {
	qty := m.heldQuantity(ctx, pos)
	if !qty.IsPositive() {
		slog.Info("nothing to sell", "pair", pos.TradingPair)
		return nil, nil
	}
	res, err := m.exchangeSvc.OrderService().MarketSell(ctx, pos.TradingPair, qty)
	if err != nil {
		metrics.Orders.WithLabelValues(string(exchange.OrderSideSell), "error").Inc()
		return nil, err
	}
	metrics.Orders.WithLabelValues(string(exchange.OrderSideSell), "filled").Inc()
	if !res.Status.IsFilled() {
		slog.Warn("sell not fully filled", "pair", pos.TradingPair, "status", res.Status,
			"qty", qty, "executed", res.ExecutedQuantity)
	}
	return &res, nil
}

// heldQuantity 读取 base 实时余额, 失败时按 Backoff 重试, 超过 LiquidationTimeout 后退回买入成交数量
func (m *PositionMonitor) heldQuantity(ctx context.Context, pos *Position) decimal.Decimal {
	backoff := m.cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	giveUp := m.clock.Now().Add(m.cfg.LiquidationTimeout)
	for {
		held, err := m.exchangeSvc.AccountService().Balance(ctx, pos.TradingPair.Base)
		if err == nil {
			return held.Free
		}
		slog.Warn("fail to read held balance", "asset", pos.TradingPair.Base, "error", err)
		if !m.clock.Now().Add(backoff).Before(giveUp) || m.clock.Sleep(ctx, backoff) != nil {
			slog.Warn("sell entry quantity instead of live balance", "pair", pos.TradingPair, "qty", pos.Quantity)
			return pos.Quantity
		}
	}
}

func (m *PositionMonitor) publish(line string) {
	if m.sink != nil {
		m.sink.Publish(line)
	}
}
