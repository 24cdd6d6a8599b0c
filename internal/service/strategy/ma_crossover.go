package strategy

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/KNICEX/scalp-runner/internal/schedule"
	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/KNICEX/scalp-runner/pkg/decimalx"
	"github.com/markcheno/go-talib"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const NameMACrossover = "ma_crossover"

var _ SignalStrategy = (*MACrossoverStrategy)(nil)

// MACrossoverParams 均线交叉参数
type MACrossoverParams struct {
	ShortPeriod   int
	LongPeriod    int
	BullishBars   int             // 最近连续阳线数
	VolatilityCap decimal.Decimal // 单根K线涨幅上限(%), 达到即放弃
	GapTolerance  float64         // 交叉前两条均线的最大距离
	Interval      exchange.Interval
	Throttle      time.Duration // 每个市场请求后的等待
}

func DefaultMACrossoverParams() MACrossoverParams {
	return MACrossoverParams{
		ShortPeriod:   5,
		LongPeriod:    10,
		BullishBars:   2,
		VolatilityCap: decimal.RequireFromString("2.5"),
		GapTolerance:  1.5,
		Interval:      exchange.Interval3m,
		Throttle:      time.Second,
	}
}

// MACrossoverStrategy 连续阳线 + 短均线刚刚上穿长均线, 找到第一个满足的市场即返回
type MACrossoverStrategy struct {
	market exchange.MarketService
	clock  schedule.Clock
	params MACrossoverParams
}

func NewMACrossoverStrategy(market exchange.MarketService, clock schedule.Clock, params MACrossoverParams) *MACrossoverStrategy {
	return &MACrossoverStrategy{
		market: market,
		clock:  clock,
		params: params,
	}
}

func (s *MACrossoverStrategy) Name() string {
	return NameMACrossover
}

// window 需要 LongPeriod+1 根K线, 才能算出上一根的长均线
func (s *MACrossoverStrategy) window() int {
	return max(s.params.LongPeriod+1, s.params.BullishBars)
}

func (s *MACrossoverStrategy) Scan(ctx context.Context, pairs []exchange.TradingPair) (*Candidate, error) {
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		klines, err := s.market.GetKlines(ctx, exchange.GetKlinesReq{
			TradingPair: pair,
			Interval:    s.params.Interval,
			Limit:       s.window(),
		})
		// 限频: 每个市场最多 1 次/Throttle
		if sleepErr := s.clock.Sleep(ctx, s.params.Throttle); sleepErr != nil {
			return nil, sleepErr
		}
		if err != nil {
			slog.Warn("skip market, klines unavailable", "strategy", s.Name(), "pair", pair, "error", err)
			continue
		}
		if !s.qualifies(klines) {
			continue
		}
		return &Candidate{
			TradingPair: pair,
			SignalPrice: klines[len(klines)-1].Close,
			Strategy:    s.Name(),
			FoundAt:     s.clock.Now(),
		}, nil
	}
	return nil, nil
}

func (s *MACrossoverStrategy) qualifies(klines []exchange.Kline) bool {
	if len(klines) < s.window() {
		return false
	}
	recent := klines[len(klines)-s.params.BullishBars:]
	if !lo.EveryBy(recent, func(k exchange.Kline) bool { return k.IsBullish() }) {
		return false
	}
	spiked := lo.SomeBy(recent, func(k exchange.Kline) bool {
		gain, ok := decimalx.PercentChange(k.Open, k.Close)
		return !ok || gain.GreaterThanOrEqual(s.params.VolatilityCap)
	})
	if spiked {
		return false
	}

	closes := decimalx.Floats(lo.Map(klines, func(k exchange.Kline, _ int) decimal.Decimal { return k.Close }))
	short := talib.Sma(closes, s.params.ShortPeriod)
	long := talib.Sma(closes, s.params.LongPeriod)
	t := len(closes) - 1
	shortNow, shortPrev := short[t], short[t-1]
	longNow, longPrev := long[t], long[t-1]

	nearBefore := math.Abs(shortPrev-longPrev) < s.params.GapTolerance
	crossed := shortNow > longNow && shortPrev < longPrev
	return nearBefore && crossed
}
