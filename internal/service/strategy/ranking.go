package strategy

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KNICEX/scalp-runner/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// Turnover 日成交额 (volume * close)
type Turnover struct {
	TradingPair exchange.TradingPair `json:"trading_pair"`
	Value       decimal.Decimal      `json:"value"`
}

// TopByTurnover 按最近一根日线的成交额从大到小返回前 n 个市场, 取不到日线的市场跳过
func TopByTurnover(ctx context.Context, market exchange.MarketService, pairs []exchange.TradingPair, n int) ([]Turnover, error) {
	res := make([]Turnover, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		klines, err := market.GetKlines(ctx, exchange.GetKlinesReq{
			TradingPair: pair,
			Interval:    exchange.Interval1d,
			Limit:       1,
		})
		if err != nil || len(klines) == 0 {
			slog.Debug("skip market in turnover ranking", "pair", pair, "error", err)
			continue
		}
		last := klines[len(klines)-1]
		res = append(res, Turnover{TradingPair: pair, Value: last.Volume.Mul(last.Close)})
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Value.GreaterThan(res[j].Value)
	})
	if n > 0 && len(res) > n {
		res = res[:n]
	}
	return res, nil
}
