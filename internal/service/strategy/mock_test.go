package strategy

import (
	"context"
	"time"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockMarketService struct {
	mock.Mock
}

func (m *mockMarketService) Ticker(ctx context.Context, tradingPair exchange.TradingPair) (decimal.Decimal, error) {
	args := m.Called(ctx, tradingPair)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockMarketService) GetKlines(ctx context.Context, req exchange.GetKlinesReq) ([]exchange.Kline, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exchange.Kline), args.Error(1)
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// bar 生成一根K线, high/low 取 open/close 的极值
func bar(i int, open, close float64) exchange.Kline {
	o, c := decimal.NewFromFloat(open), decimal.NewFromFloat(close)
	return exchange.Kline{
		OpenTime:  baseTime.Add(time.Duration(i) * time.Minute),
		CloseTime: baseTime.Add(time.Duration(i+1) * time.Minute),
		Open:      o,
		Close:     c,
		High:      decimal.Max(o, c),
		Low:       decimal.Min(o, c),
		Volume:    decimal.NewFromInt(1000),
	}
}

// flatBars 开盘价等于收盘价的K线序列
func flatBars(closes ...float64) []exchange.Kline {
	res := make([]exchange.Kline, len(closes))
	for i, c := range closes {
		res[i] = bar(i, c, c)
	}
	return res
}

func pair(base string) exchange.TradingPair {
	return exchange.TradingPair{Base: base, Quote: "KRW"}
}
