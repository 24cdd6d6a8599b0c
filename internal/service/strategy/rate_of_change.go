package strategy

import (
	"context"
	"log/slog"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/shopspring/decimal"
)

const NameRateOfChange = "rate_of_change"

var _ SignalStrategy = (*RateOfChangeStrategy)(nil)

// RateOfChangeStrategy 比较最近两根K线收盘价, 选出变化幅度最大的市场
type RateOfChangeStrategy struct {
	market      exchange.MarketService
	clock       schedule.Clock
	interval    exchange.Interval
	minMovement decimal.Decimal
}

func NewRateOfChangeStrategy(market exchange.MarketService, clock schedule.Clock, interval exchange.Interval, minMovement decimal.Decimal) *RateOfChangeStrategy {
	return &RateOfChangeStrategy{
		market:      market,
		clock:       clock,
		interval:    interval,
		minMovement: minMovement,
	}
}

func (s *RateOfChangeStrategy) Name() string {
	return NameRateOfChange
}

func (s *RateOfChangeStrategy) Scan(ctx context.Context, pairs []exchange.TradingPair) (*Candidate, error) {
	var (
		best    *Candidate
		bestAbs decimal.Decimal
	)
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		klines, err := s.market.GetKlines(ctx, exchange.GetKlinesReq{
			TradingPair: pair,
			Interval:    s.interval,
			Limit:       2,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("skip market, klines unavailable", "strategy", s.Name(), "pair", pair, "error", err)
			continue
		}
		if len(klines) < 2 {
			continue
		}
		prev, last := klines[len(klines)-2], klines[len(klines)-1]
		rate, ok := decimalx.PercentChange(prev.Close, last.Close)
		if !ok {
			continue
		}
		abs := rate.Abs()
		if abs.LessThan(s.minMovement) {
			continue
		}
		// 严格大于, 相同幅度保留先出现的
		if best == nil || abs.GreaterThan(bestAbs) {
			r := rate
			best = &Candidate{
				TradingPair: pair,
				SignalPrice: last.Close,
				Rate:        &r,
				Strategy:    s.Name(),
				FoundAt:     s.clock.Now(),
			}
			bestAbs = abs
		}
	}
	return best, nil
}
